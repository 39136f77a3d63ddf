package models

import (
	"time"

	"github.com/google/uuid"
)

// LoginAttempt is an immutable record of one authentication attempt.
// Identifier is the email for password logins, or "provider:subjectId"
// for IdP logins; the row is written even when the user does not exist.
type LoginAttempt struct {
	ID          uuid.UUID `json:"id"`
	Identifier  string    `json:"identifier"`
	IPAddress   string    `json:"ip_address"`
	Successful  bool      `json:"successful"`
	AttemptedAt time.Time `json:"attempted_at"`
}

// PasswordResetToken represents one outstanding password reset request
type PasswordResetToken struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Token     string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
	Used      bool      `json:"used"`
	CreatedAt time.Time `json:"created_at"`
}

// IsExpired reports whether the token is past its expiry
func (t *PasswordResetToken) IsExpired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

// IsValid reports whether the token can still be redeemed
func (t *PasswordResetToken) IsValid(now time.Time) bool {
	return !t.Used && !t.IsExpired(now)
}

// IdpAccount links an external identity-provider subject to a local user
type IdpAccount struct {
	ID        uuid.UUID `json:"id"`
	Provider  string    `json:"provider"`
	SubjectID string    `json:"subject_id"`
	UserID    uuid.UUID `json:"user_id"`
	LinkedAt  time.Time `json:"linked_at"`
}
