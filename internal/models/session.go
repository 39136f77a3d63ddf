package models

import (
	"time"

	"github.com/google/uuid"
)

// Session represents one logged-in client. The token is the bearer
// credential; the signature is a server-side verification artifact and
// is never returned to callers.
type Session struct {
	ID             uuid.UUID `json:"id"`
	UserID         uuid.UUID `json:"user_id"`
	Token          string    `json:"-"`
	TokenSignature string    `json:"-"`
	IssuedAt       time.Time `json:"issued_at"`
	ExpiresAt      time.Time `json:"expires_at"`
	LastActivityAt time.Time `json:"last_activity_at"`
	IPAddress      string    `json:"ip_address"`
	UserAgent      string    `json:"user_agent"`
	IsActive       bool      `json:"is_active"`
}

// IsExpired reports whether the session is past its absolute expiry
func (s *Session) IsExpired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// IsIdle reports whether the gap since the last activity exceeds the idle timeout
func (s *Session) IsIdle(now time.Time, idleTimeout time.Duration) bool {
	return now.After(s.LastActivityAt.Add(idleTimeout))
}
