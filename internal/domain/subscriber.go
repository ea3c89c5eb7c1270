package domain

import (
	"regexp"
	"strings"
	"time"
)

// Subscriber is a single newsletter recipient. The verification token doubles
// as the unsubscribe credential: anyone who can verify the address can also
// remove it. Unsubscribing hard-deletes the row, so the same email can be
// subscribed again later as a brand-new record.
type Subscriber struct {
	ID                string     `json:"id" db:"id"`
	Email             string     `json:"email" db:"email"`
	Verified          bool       `json:"verified" db:"verified"`
	VerificationToken string     `json:"-" db:"verification_token"`
	VerifiedAt        *time.Time `json:"verified_at,omitempty" db:"verified_at"`
	CreatedAt         time.Time  `json:"created_at" db:"created_at"`
}

const (
	maxEmailLength     = 254
	maxLocalPartLength = 64
)

// emailRegex matches the same shape the subscribe form enforces client-side:
// non-space local part, @, non-space domain, dot, 2+ char TLD.
var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]{2,}$`)

// tokenRegex is the canonical UUID textual form (8-4-4-4-12 hex groups).
// Tokens that don't match never reach the store.
var tokenRegex = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

// NormalizeEmail trims whitespace and lower-cases an address. All store
// lookups and writes use the normalized form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidEmail reports whether the address is acceptable for subscription.
func ValidEmail(email string) bool {
	if !emailRegex.MatchString(email) {
		return false
	}
	if len(email) > maxEmailLength {
		return false
	}
	local := email[:strings.Index(email, "@")]
	return len(local) <= maxLocalPartLength
}

// ValidToken reports whether a token has the canonical UUID shape.
// Matching is case-insensitive.
func ValidToken(token string) bool {
	return tokenRegex.MatchString(strings.ToLower(token))
}
