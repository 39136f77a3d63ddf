package postgres

import (
	"context"
	"database/sql"
	"oversave/internal/models"
	"oversave/internal/repository"
	"time"

	"github.com/google/uuid"
)

type sessionRepository struct {
	repository.BaseRepository
}

// NewSessionRepository creates a new PostgreSQL session repository
func NewSessionRepository(db *sql.DB) repository.SessionRepository {
	return &sessionRepository{
		BaseRepository: repository.NewBaseRepository(db),
	}
}

// CreateAndSupersede invalidates every active session of the owning user
// and inserts the new one in a single transaction, so the single-active-
// session invariant holds under concurrent logins.
func (r *sessionRepository) CreateAndSupersede(ctx context.Context, session *models.Session) error {
	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}

	return r.WithTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`UPDATE sessions SET is_active = false WHERE user_id = $1 AND is_active = true`,
			session.UserID)
		if err != nil {
			return err
		}

		query := `
			INSERT INTO sessions (id, user_id, token, token_signature, issued_at,
			                      expires_at, last_activity_at, ip_address, user_agent, is_active)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

		_, err = tx.ExecContext(ctx, query,
			session.ID,
			session.UserID,
			session.Token,
			session.TokenSignature,
			session.IssuedAt,
			session.ExpiresAt,
			session.LastActivityAt,
			session.IPAddress,
			session.UserAgent,
			session.IsActive,
		)
		return err
	})
}

func (r *sessionRepository) GetByToken(ctx context.Context, token string) (*models.Session, error) {
	session := &models.Session{}
	query := `
		SELECT id, user_id, token, token_signature, issued_at, expires_at,
		       last_activity_at, ip_address, user_agent, is_active
		FROM sessions
		WHERE token = $1`

	err := r.DB().QueryRowContext(ctx, query, token).Scan(
		&session.ID,
		&session.UserID,
		&session.Token,
		&session.TokenSignature,
		&session.IssuedAt,
		&session.ExpiresAt,
		&session.LastActivityAt,
		&session.IPAddress,
		&session.UserAgent,
		&session.IsActive,
	)

	if err == sql.ErrNoRows {
		return nil, repository.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return session, nil
}

func (r *sessionRepository) GetActiveByUser(ctx context.Context, userID uuid.UUID) ([]models.Session, error) {
	query := `
		SELECT id, user_id, token, token_signature, issued_at, expires_at,
		       last_activity_at, ip_address, user_agent, is_active
		FROM sessions
		WHERE user_id = $1 AND is_active = true
		ORDER BY issued_at DESC`

	rows, err := r.DB().QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []models.Session
	for rows.Next() {
		var s models.Session
		err := rows.Scan(
			&s.ID,
			&s.UserID,
			&s.Token,
			&s.TokenSignature,
			&s.IssuedAt,
			&s.ExpiresAt,
			&s.LastActivityAt,
			&s.IPAddress,
			&s.UserAgent,
			&s.IsActive,
		)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}

	return sessions, rows.Err()
}

func (r *sessionRepository) Touch(ctx context.Context, id uuid.UUID, lastActivityAt, expiresAt time.Time) error {
	query := `
		UPDATE sessions
		SET last_activity_at = $1, expires_at = $2
		WHERE id = $3 AND is_active = true`

	result, err := r.DB().ExecContext(ctx, query, lastActivityAt, expiresAt, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return repository.ErrSessionNotFound
	}

	return nil
}

func (r *sessionRepository) Invalidate(ctx context.Context, token string) error {
	// Inactive rows are kept for audit retention, never deleted here
	query := `UPDATE sessions SET is_active = false WHERE token = $1`

	result, err := r.DB().ExecContext(ctx, query, token)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return repository.ErrSessionNotFound
	}

	return nil
}

func (r *sessionRepository) InvalidateAllForUser(ctx context.Context, userID uuid.UUID) error {
	query := `UPDATE sessions SET is_active = false WHERE user_id = $1 AND is_active = true`
	_, err := r.DB().ExecContext(ctx, query, userID)
	return err
}

// CleanupExpired flips rows that are expired or idle but still flagged
// active. Validation enforces the same checks per call, so this only
// keeps the is_active flag accurate for audit queries.
func (r *sessionRepository) CleanupExpired(ctx context.Context, now time.Time, idleCutoff time.Time) (int, error) {
	query := `
		UPDATE sessions
		SET is_active = false
		WHERE is_active = true
		AND (expires_at < $1 OR last_activity_at < $2)`

	result, err := r.DB().ExecContext(ctx, query, now, idleCutoff)
	if err != nil {
		return 0, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(rows), nil
}
