package postgres

import (
	"context"
	"database/sql"
	"oversave/internal/repository"
	"time"

	"github.com/google/uuid"
)

type loginAttemptRepository struct {
	repository.BaseRepository
}

// NewLoginAttemptRepository creates a new PostgreSQL login attempt repository
func NewLoginAttemptRepository(db *sql.DB) repository.LoginAttemptRepository {
	return &loginAttemptRepository{
		BaseRepository: repository.NewBaseRepository(db),
	}
}

// Create appends one immutable row. The identifier is not required to
// match an existing user: failed attempts against unknown emails are
// part of the ledger too.
func (r *loginAttemptRepository) Create(ctx context.Context, identifier, ipAddress string, successful bool, attemptedAt time.Time) error {
	query := `
		INSERT INTO login_attempts (id, identifier, ip_address, successful, attempted_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.DB().ExecContext(ctx, query, uuid.New(), identifier, ipAddress, successful, attemptedAt)
	return err
}

func (r *loginAttemptRepository) CountFailedByIdentifier(ctx context.Context, identifier string, since time.Time) (int, error) {
	var count int
	query := `
		SELECT COUNT(*)
		FROM login_attempts
		WHERE identifier = $1
		AND successful = false
		AND attempted_at >= $2`

	err := r.DB().QueryRowContext(ctx, query, identifier, since).Scan(&count)
	return count, err
}

func (r *loginAttemptRepository) CountFailedByIP(ctx context.Context, ipAddress string, since time.Time) (int, error) {
	var count int
	query := `
		SELECT COUNT(*)
		FROM login_attempts
		WHERE ip_address = $1
		AND successful = false
		AND attempted_at >= $2`

	err := r.DB().QueryRowContext(ctx, query, ipAddress, since).Scan(&count)
	return count, err
}
