package subscription

import "errors"

// Sentinel errors for the subscription service layer.
var (
	// ErrInvalidEmail rejects addresses that fail syntax validation.
	ErrInvalidEmail = errors.New("invalid email address")

	// ErrInvalidToken rejects tokens that are not UUID-shaped. Malformed
	// tokens never reach the store.
	ErrInvalidToken = errors.New("invalid token format")

	// ErrTokenNotFound means a well-formed token matched no record. Only the
	// verify path reports it; unsubscribe masks it as success.
	ErrTokenNotFound = errors.New("token not found")

	// ErrDuplicateEmail is returned by Repository.Insert when the normalized
	// email already exists (lost a subscribe race). The service treats it as
	// "already subscribed" and responds with the standard success message.
	ErrDuplicateEmail = errors.New("email already subscribed")
)
