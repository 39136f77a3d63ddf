package repository

import (
	"context"
	"time"
)

// LoginAttemptRepository is the append-only ledger of authentication
// attempts. Rows are never mutated or deleted by the core; the counts
// feed the sliding-window lockout decision.
type LoginAttemptRepository interface {
	Create(ctx context.Context, identifier, ipAddress string, successful bool, attemptedAt time.Time) error
	CountFailedByIdentifier(ctx context.Context, identifier string, since time.Time) (int, error)
	CountFailedByIP(ctx context.Context, ipAddress string, since time.Time) (int, error)
}
