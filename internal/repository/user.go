package repository

import (
	"context"
	"oversave/internal/models"

	"github.com/google/uuid"
)

// UserRepository defines the interface for user-related database operations.
// Emails are normalized to lowercase on both write and lookup; users are
// never deleted by this subsystem.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}
