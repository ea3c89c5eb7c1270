// Package mailer sends templated HTML email through a transactional provider.
// With no provider credential configured it degrades to a logging sender so
// local development never blocks on email infrastructure.
package mailer

import (
	"context"
	"fmt"
)

// Message is a single outbound email.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Sender is the interface for email providers.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// DeliveryError wraps a provider rejection. Callers count it as a failed
// delivery; it is never retried.
type DeliveryError struct {
	Provider string
	Status   int
	Err      error
}

func (e *DeliveryError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: delivery failed with status %d", e.Provider, e.Status)
	}
	return fmt.Sprintf("%s: delivery failed: %v", e.Provider, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }
