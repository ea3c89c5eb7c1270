package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/techmoncton/hive/internal/domain"
	"github.com/techmoncton/hive/internal/service/subscription"
)

const uniqueViolation = "23505"

// SubscriberRepo implements subscription.Repository against PostgreSQL.
type SubscriberRepo struct{ db *sql.DB }

// NewSubscriberRepo creates a Postgres-backed subscriber repository.
func NewSubscriberRepo(db *sql.DB) *SubscriberRepo { return &SubscriberRepo{db: db} }

const subscriberColumns = `id, email, verified, verification_token, verified_at, created_at`

func (r *SubscriberRepo) FindByEmail(ctx context.Context, email string) (*domain.Subscriber, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+subscriberColumns+` FROM subscribers WHERE email = $1`,
		email,
	)
	return scanSubscriber(row)
}

func (r *SubscriberRepo) FindByToken(ctx context.Context, token string) (*domain.Subscriber, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+subscriberColumns+` FROM subscribers WHERE verification_token = $1`,
		token,
	)
	return scanSubscriber(row)
}

func (r *SubscriberRepo) Insert(ctx context.Context, email, token string) (*domain.Subscriber, error) {
	sub := &domain.Subscriber{
		ID:                uuid.New().String(),
		Email:             email,
		VerificationToken: token,
	}
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO subscribers (id, email, verified, verification_token, created_at)
		VALUES ($1, $2, false, $3, NOW())
		RETURNING created_at
	`, sub.ID, sub.Email, sub.VerificationToken).Scan(&sub.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return nil, subscription.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("insert subscriber: %w", err)
	}
	return sub, nil
}

func (r *SubscriberRepo) UpdateToken(ctx context.Context, id, token string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE subscribers SET verification_token = $2 WHERE id = $1`,
		id, token,
	)
	if err != nil {
		return fmt.Errorf("update token: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return subscription.ErrTokenNotFound
	}
	return nil
}

func (r *SubscriberRepo) MarkVerified(ctx context.Context, id string, at time.Time) error {
	// The verified = false guard keeps verified_at at its first value when
	// two verify calls race.
	_, err := r.db.ExecContext(ctx,
		`UPDATE subscribers SET verified = true, verified_at = $2 WHERE id = $1 AND verified = false`,
		id, at,
	)
	if err != nil {
		return fmt.Errorf("mark verified: %w", err)
	}
	return nil
}

func (r *SubscriberRepo) DeleteByID(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM subscribers WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete subscriber: %w", err)
	}
	return nil
}

func (r *SubscriberRepo) ListVerified(ctx context.Context) ([]domain.Subscriber, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+subscriberColumns+` FROM subscribers WHERE verified = true ORDER BY created_at`,
	)
	if err != nil {
		return nil, fmt.Errorf("list verified: %w", err)
	}
	defer rows.Close()

	var out []domain.Subscriber
	for rows.Next() {
		var s domain.Subscriber
		if err := rows.Scan(&s.ID, &s.Email, &s.Verified, &s.VerificationToken, &s.VerifiedAt, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan subscriber: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func scanSubscriber(row *sql.Row) (*domain.Subscriber, error) {
	var s domain.Subscriber
	err := row.Scan(&s.ID, &s.Email, &s.Verified, &s.VerificationToken, &s.VerifiedAt, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan subscriber: %w", err)
	}
	return &s, nil
}
