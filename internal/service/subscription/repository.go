package subscription

import (
	"context"
	"time"

	"github.com/techmoncton/hive/internal/domain"
)

// Repository defines the data access contract for subscriber records.
// Lookups are by exact normalized-email or exact-token equality. Each method
// is a single atomic store operation; the lifecycle relies on no broader
// transaction.
type Repository interface {
	// FindByEmail returns the subscriber for a normalized email, or nil if
	// none exists.
	FindByEmail(ctx context.Context, email string) (*domain.Subscriber, error)

	// FindByToken returns the subscriber holding the given verification
	// token, or nil if none exists.
	FindByToken(ctx context.Context, token string) (*domain.Subscriber, error)

	// Insert creates a new unverified subscriber. Returns ErrDuplicateEmail
	// if the email already has a record.
	Insert(ctx context.Context, email, token string) (*domain.Subscriber, error)

	// UpdateToken replaces the verification token on an unverified record,
	// invalidating the previous one.
	UpdateToken(ctx context.Context, id, token string) error

	// MarkVerified sets verified=true and stamps verified_at.
	MarkVerified(ctx context.Context, id string, at time.Time) error

	// DeleteByID hard-deletes a subscriber record.
	DeleteByID(ctx context.Context, id string) error

	// ListVerified returns every verified subscriber. No ordering guarantee;
	// each record appears exactly once.
	ListVerified(ctx context.Context) ([]domain.Subscriber, error)
}
