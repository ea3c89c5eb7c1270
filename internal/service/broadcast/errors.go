package broadcast

import "errors"

// Sentinel errors for broadcast runs that never started.
var (
	// ErrNoRecipients means no verified subscribers exist. Nothing was sent.
	ErrNoRecipients = errors.New("no verified subscribers")

	// ErrNothingToSend means the feed has no upcoming event and no fallback
	// link is configured. Nothing was sent.
	ErrNothingToSend = errors.New("no upcoming event and no fallback link")
)
