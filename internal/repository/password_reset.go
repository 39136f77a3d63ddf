package repository

import (
	"context"
	"oversave/internal/models"
	"time"

	"github.com/google/uuid"
)

// PasswordResetRepository defines the interface for one-time password
// reset tokens. GetValid returns ErrResetTokenInvalid for missing, used
// and expired tokens alike.
type PasswordResetRepository interface {
	Create(ctx context.Context, token *models.PasswordResetToken) error
	GetValid(ctx context.Context, token string, now time.Time) (*models.PasswordResetToken, error)
	CountValidForUser(ctx context.Context, userID uuid.UUID, now time.Time) (int, error)
	DeleteExpired(ctx context.Context, now time.Time) (int, error)

	// Redeem completes a password reset as one atomic unit: it stores
	// the new password hash, burns the redeemed token, invalidates the
	// user's other outstanding tokens and deactivates every session of
	// the user. Either all of it happens or none of it does; a partial
	// reset must never leave a pre-change session usable. Returns
	// ErrResetTokenInvalid when the token was already used, rolling the
	// password change back with it.
	Redeem(ctx context.Context, id, userID uuid.UUID, hashedPassword string) error
}
