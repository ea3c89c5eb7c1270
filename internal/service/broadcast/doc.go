// Package broadcast sends an event update to every verified subscriber.
//
// Each run picks the next upcoming event from the feed, or falls back to a
// configured link when the feed is empty, and fans the rendered email out over
// a bounded worker pool. Recipient failures are isolated: one rejected address
// never stops the run, it only increments the failed count in the tally.
//
// Runs do not coordinate with each other. Two concurrent triggers will
// double-send; the admin key on the HTTP surface is the only gate.
package broadcast
