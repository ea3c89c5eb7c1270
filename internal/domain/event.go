package domain

import "time"

// Event is a meetup entry from the public year-partitioned JSON feed.
// It is external, read-only data: never persisted, fetched per request.
type Event struct {
	Date         string `json:"date"`
	Time         string `json:"time"`
	Topic        string `json:"topic"`
	Presentation string `json:"presentation"` // speaker
	Year         int    `json:"year"`
}

// eventDateLayouts are the two formats the feed has used over time.
var eventDateLayouts = []string{
	"2006-01-02",
	"January 2, 2006",
}

// ParseEventDate parses a feed date string. The feed mixes an ISO calendar
// date with a loose month-name format. Returns the zero time and false when
// the string matches neither; callers must treat such events as not upcoming
// rather than failing.
func ParseEventDate(s string) (time.Time, bool) {
	for _, layout := range eventDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Upcoming reports whether the event's date is on or after the given day
// (time-of-day is ignored). Events with unparsable dates are never upcoming.
func (e Event) Upcoming(today time.Time) bool {
	d, ok := ParseEventDate(e.Date)
	if !ok {
		return false
	}
	midnight := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location())
	return !d.Before(midnight)
}

// FormatEventDate renders a feed date for email display, e.g.
// "Wednesday, January 15, 2025". Unparsable dates are returned as-is.
func FormatEventDate(s string) string {
	d, ok := ParseEventDate(s)
	if !ok {
		return s
	}
	return d.Format("Monday, January 2, 2006")
}

// DeliveryTally is the per-broadcast accounting returned to the caller.
// It is ephemeral: never persisted.
type DeliveryTally struct {
	Sent       int    `json:"sent"`
	Failed     int    `json:"failed"`
	EventTopic string `json:"event,omitempty"`
}
