package repository

import (
	"context"
	"oversave/internal/models"
	"time"

	"github.com/google/uuid"
)

// SessionRepository defines the interface for session persistence.
//
// CreateAndSupersede must flip every other active session of the owning
// user inactive and insert the new row as one atomic unit: a concurrent
// reader sees either the pre-login or the post-login state, never two
// active sessions for the same user.
type SessionRepository interface {
	CreateAndSupersede(ctx context.Context, session *models.Session) error
	GetByToken(ctx context.Context, token string) (*models.Session, error)
	GetActiveByUser(ctx context.Context, userID uuid.UUID) ([]models.Session, error)
	Touch(ctx context.Context, id uuid.UUID, lastActivityAt, expiresAt time.Time) error
	Invalidate(ctx context.Context, token string) error
	InvalidateAllForUser(ctx context.Context, userID uuid.UUID) error
	CleanupExpired(ctx context.Context, now time.Time, idleCutoff time.Time) (int, error)
}
