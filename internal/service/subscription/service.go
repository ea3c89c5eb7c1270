package subscription

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/techmoncton/hive/internal/config"
	"github.com/techmoncton/hive/internal/domain"
	"github.com/techmoncton/hive/internal/mailer"
	"github.com/techmoncton/hive/internal/pkg/logger"
)

// Service implements the subscription lifecycle state machine.
type Service struct {
	repo      Repository
	sender    mailer.Sender
	templates *mailer.Templates
	site      config.SiteConfig

	newToken func() string
	now      func() time.Time
}

// NewService creates a subscription service.
func NewService(repo Repository, sender mailer.Sender, templates *mailer.Templates, site config.SiteConfig) *Service {
	return &Service{
		repo:      repo,
		sender:    sender,
		templates: templates,
		site:      site,
		newToken:  uuid.NewString,
		now:       time.Now,
	}
}

// Subscribe runs the subscribe transition for an email address. All three
// outcomes (new record, re-tokened unverified record, already-verified
// record) are reported to the caller identically; the only caller-visible
// failures are a malformed address and infrastructure errors.
func (s *Service) Subscribe(ctx context.Context, email string) error {
	if email == "" || !domain.ValidEmail(email) {
		return ErrInvalidEmail
	}
	normalized := domain.NormalizeEmail(email)

	existing, err := s.repo.FindByEmail(ctx, normalized)
	if err != nil {
		return fmt.Errorf("find subscriber: %w", err)
	}

	var token string
	switch {
	case existing != nil && existing.Verified:
		// Already verified: no store mutation, no email, same response.
		return nil

	case existing != nil:
		// Unverified re-subscribe: regenerate the token, invalidating the
		// previously emailed link.
		token = s.newToken()
		if err := s.repo.UpdateToken(ctx, existing.ID, token); err != nil {
			return fmt.Errorf("update token: %w", err)
		}

	default:
		token = s.newToken()
		if _, err := s.repo.Insert(ctx, normalized, token); err != nil {
			if errors.Is(err, ErrDuplicateEmail) {
				// Lost a subscribe race; the winner's email is on its way.
				logger.Debug("subscribe race lost", "email", normalized)
				return nil
			}
			return fmt.Errorf("insert subscriber: %w", err)
		}
	}

	if err := s.sendVerification(ctx, normalized, token); err != nil {
		return fmt.Errorf("send verification email: %w", err)
	}

	logger.Info("verification email sent", "email", normalized)
	return nil
}

func (s *Service) sendVerification(ctx context.Context, email, token string) error {
	verifyURL := s.site.VerifyURL(token)
	unsubscribeURL := s.site.UnsubscribeURL(token)

	html, err := s.templates.Verification(s.site.Name, verifyURL, unsubscribeURL)
	if err != nil {
		return err
	}

	// Visible in local development with the log sender and DEBUG level.
	logger.Debug("verification link", "url", verifyURL)

	return s.sender.Send(ctx, mailer.Message{
		To:      email,
		Subject: fmt.Sprintf("Verify your %s subscription", s.site.Name),
		HTML:    html,
	})
}

// Verify confirms email ownership for a token. Returns true when the record
// was already verified (the repeat call is a no-op). verified_at is stamped
// exactly once.
func (s *Service) Verify(ctx context.Context, token string) (alreadyVerified bool, err error) {
	if token == "" || !domain.ValidToken(token) {
		return false, ErrInvalidToken
	}

	sub, err := s.repo.FindByToken(ctx, strings.ToLower(token))
	if err != nil {
		return false, fmt.Errorf("find by token: %w", err)
	}
	if sub == nil {
		return false, ErrTokenNotFound
	}
	if sub.Verified {
		return true, nil
	}

	if err := s.repo.MarkVerified(ctx, sub.ID, s.now()); err != nil {
		return false, fmt.Errorf("mark verified: %w", err)
	}

	logger.Info("subscriber verified", "email", sub.Email)
	return false, nil
}

// Unsubscribe hard-deletes the record holding the token. An unknown token is
// reported as success with no store mutation, so callers can't probe which
// tokens exist; repeat calls are indistinguishable from the first.
func (s *Service) Unsubscribe(ctx context.Context, token string) error {
	if token == "" || !domain.ValidToken(token) {
		return ErrInvalidToken
	}

	sub, err := s.repo.FindByToken(ctx, strings.ToLower(token))
	if err != nil {
		return fmt.Errorf("find by token: %w", err)
	}
	if sub == nil {
		return nil
	}

	if err := s.repo.DeleteByID(ctx, sub.ID); err != nil {
		return fmt.Errorf("delete subscriber: %w", err)
	}

	logger.Info("subscriber removed", "email", sub.Email)
	return nil
}
