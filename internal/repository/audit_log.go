package repository

import (
	"context"
	"oversave/internal/models"
	"time"

	"github.com/google/uuid"
)

// AuditLogRepository defines the interface for the authentication audit trail
type AuditLogRepository interface {
	Create(ctx context.Context, log *models.CreateAuditLogRequest) error
	List(ctx context.Context, filter AuditLogFilter) ([]models.AuditLog, error)
	CleanupOld(ctx context.Context, olderThan time.Duration) (int, error)
}

// AuditLogFilter defines the filter options for listing audit logs
type AuditLogFilter struct {
	UserID        *uuid.UUID           // Filter by user ID
	Actions       []models.AuditAction // Filter by actions
	IPAddress     *string              // Filter by IP address
	CreatedBefore *time.Time           // Filter by creation time
	CreatedAfter  *time.Time           // Filter by creation time
	Limit         *int                 // Limit results
	Offset        *int                 // Offset results
}
