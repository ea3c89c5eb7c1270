// Package events fetches the public year-partitioned meetup feed and answers
// "what's coming up" queries. The feed is one JSON document per year on a
// static host; availability is favored over completeness, so every failure
// mode degrades to an empty event list rather than an error.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/techmoncton/hive/internal/domain"
	"github.com/techmoncton/hive/internal/pkg/httpretry"
	"github.com/techmoncton/hive/internal/pkg/logger"
)

// Client reads the event feed. An optional Redis client caches raw year
// documents so a broadcast to thousands of subscribers doesn't hammer the
// feed host; cache errors are ignored.
type Client struct {
	baseURL   string
	startYear int
	http      httpretry.HTTPDoer
	cache     *redis.Client
	cacheTTL  time.Duration
	now       func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client (tests).
func WithHTTPClient(doer httpretry.HTTPDoer) Option {
	return func(c *Client) { c.http = doer }
}

// WithCache enables Redis caching of year documents.
func WithCache(rdb *redis.Client, ttl time.Duration) Option {
	return func(c *Client) {
		c.cache = rdb
		c.cacheTTL = ttl
	}
}

// WithClock overrides the time source (tests).
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// NewClient creates a feed client. baseURL is the feed repository root;
// startYear is the first year the feed has documents for.
func NewClient(baseURL string, startYear int, opts ...Option) *Client {
	c := &Client{
		baseURL:   baseURL,
		startYear: startYear,
		http:      httpretry.New(nil, 2),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) yearURL(year int) string {
	return fmt.Sprintf("%s/MeetUps%%20%d/MeetUps%%20%d.json", c.baseURL, year, year)
}

// FetchYear returns the events published for one year. Transport failures,
// non-success statuses, and malformed bodies all yield an empty slice; the
// problem is logged, never propagated.
func (c *Client) FetchYear(ctx context.Context, year int) []domain.Event {
	raw, ok := c.cacheGet(ctx, year)
	if !ok {
		var err error
		raw, err = c.fetchRaw(ctx, year)
		if err != nil {
			logger.Warn("event feed fetch failed", "year", year, "error", err)
			return nil
		}
		c.cacheSet(ctx, year, raw)
	}

	var evs []domain.Event
	if err := json.Unmarshal(raw, &evs); err != nil {
		logger.Warn("event feed returned malformed JSON", "year", year, "error", err)
		return nil
	}
	for i := range evs {
		evs[i].Year = year
	}
	return evs
}

func (c *Client) fetchRaw(ctx context.Context, year int) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.yearURL(year), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed returned status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func (c *Client) cacheKey(year int) string {
	return fmt.Sprintf("events:year:%d", year)
}

func (c *Client) cacheGet(ctx context.Context, year int) ([]byte, bool) {
	if c.cache == nil {
		return nil, false
	}
	raw, err := c.cache.Get(ctx, c.cacheKey(year)).Bytes()
	if err != nil {
		return nil, false
	}
	return raw, true
}

func (c *Client) cacheSet(ctx context.Context, year int, raw []byte) {
	if c.cache == nil {
		return
	}
	if err := c.cache.Set(ctx, c.cacheKey(year), raw, c.cacheTTL).Err(); err != nil {
		logger.Debug("event cache write failed", "year", year, "error", err)
	}
}

// Upcoming returns events dated today or later across the current and next
// year, sorted ascending by date. Events whose dates don't parse are excluded.
func (c *Client) Upcoming(ctx context.Context) []domain.Event {
	today := c.now()
	currentYear := today.Year()

	var all []domain.Event
	for _, year := range []int{currentYear, currentYear + 1} {
		all = append(all, c.FetchYear(ctx, year)...)
	}
	return filterUpcoming(all, today)
}

// NextEvent returns the soonest upcoming event, or false when there is none.
func (c *Client) NextEvent(ctx context.Context) (domain.Event, bool) {
	upcoming := c.Upcoming(ctx)
	if len(upcoming) == 0 {
		return domain.Event{}, false
	}
	return upcoming[0], true
}

// AllEvents returns every feed event from the start year through next year,
// for the site's event listing. No date filtering is applied.
func (c *Client) AllEvents(ctx context.Context) []domain.Event {
	var all []domain.Event
	for year := c.startYear; year <= c.now().Year()+1; year++ {
		all = append(all, c.FetchYear(ctx, year)...)
	}
	return all
}

// PastEvents returns events before today, most recent first.
func (c *Client) PastEvents(ctx context.Context) []domain.Event {
	today := c.now()
	var past []domain.Event
	for _, ev := range c.AllEvents(ctx) {
		d, ok := domain.ParseEventDate(ev.Date)
		if !ok {
			continue
		}
		midnight := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location())
		if d.Before(midnight) {
			past = append(past, ev)
		}
	}
	sortByDate(past, false)
	return past
}

func filterUpcoming(evs []domain.Event, today time.Time) []domain.Event {
	var upcoming []domain.Event
	for _, ev := range evs {
		if ev.Upcoming(today) {
			upcoming = append(upcoming, ev)
		}
	}
	sortByDate(upcoming, true)
	return upcoming
}

func sortByDate(evs []domain.Event, ascending bool) {
	sort.SliceStable(evs, func(i, j int) bool {
		di, _ := domain.ParseEventDate(evs[i].Date)
		dj, _ := domain.ParseEventDate(evs[j].Date)
		if ascending {
			return di.Before(dj)
		}
		return dj.Before(di)
	})
}
