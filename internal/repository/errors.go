package repository

import "errors"

var (
	// Common errors
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEntry = errors.New("duplicate entry")

	// User errors
	ErrUserNotFound = errors.New("user not found")
	ErrEmailExists  = errors.New("email already exists")

	// Session errors
	ErrSessionNotFound = errors.New("session not found")

	// Reset token errors. Not-found, used and expired are deliberately
	// merged into one sentinel so callers cannot leak which check failed.
	ErrResetTokenInvalid = errors.New("invalid reset token")

	// IdP errors
	ErrIdpAccountNotFound = errors.New("idp account not found")
)
