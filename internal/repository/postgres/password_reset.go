package postgres

import (
	"context"
	"database/sql"
	"oversave/internal/models"
	"oversave/internal/repository"
	"time"

	"github.com/google/uuid"
)

type passwordResetRepository struct {
	repository.BaseRepository
}

// NewPasswordResetRepository creates a new PostgreSQL password reset repository
func NewPasswordResetRepository(db *sql.DB) repository.PasswordResetRepository {
	return &passwordResetRepository{
		BaseRepository: repository.NewBaseRepository(db),
	}
}

func (r *passwordResetRepository) Create(ctx context.Context, token *models.PasswordResetToken) error {
	if token.ID == uuid.Nil {
		token.ID = uuid.New()
	}

	query := `
		INSERT INTO password_reset_tokens (id, user_id, token, expires_at, used)
		VALUES ($1, $2, $3, $4, false)
		RETURNING created_at`

	return r.DB().QueryRowContext(ctx, query,
		token.ID,
		token.UserID,
		token.Token,
		token.ExpiresAt,
	).Scan(&token.CreatedAt)
}

// GetValid returns ErrResetTokenInvalid for missing, used and expired
// tokens alike; the caller cannot distinguish which check failed.
func (r *passwordResetRepository) GetValid(ctx context.Context, token string, now time.Time) (*models.PasswordResetToken, error) {
	reset := &models.PasswordResetToken{}
	query := `
		SELECT id, user_id, token, expires_at, used, created_at
		FROM password_reset_tokens
		WHERE token = $1`

	err := r.DB().QueryRowContext(ctx, query, token).Scan(
		&reset.ID,
		&reset.UserID,
		&reset.Token,
		&reset.ExpiresAt,
		&reset.Used,
		&reset.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, repository.ErrResetTokenInvalid
	}
	if err != nil {
		return nil, err
	}

	if !reset.IsValid(now) {
		return nil, repository.ErrResetTokenInvalid
	}

	return reset, nil
}

func (r *passwordResetRepository) CountValidForUser(ctx context.Context, userID uuid.UUID, now time.Time) (int, error) {
	var count int
	query := `
		SELECT COUNT(*)
		FROM password_reset_tokens
		WHERE user_id = $1
		AND used = false
		AND expires_at > $2`

	err := r.DB().QueryRowContext(ctx, query, userID, now).Scan(&count)
	return count, err
}

// Redeem runs the whole reset in one transaction. Statement order does
// not matter for correctness since the transaction commits or rolls
// back as a unit, but the token burn carries the single-use check: zero
// rows affected means a concurrent redeem won the race, and the rollback
// discards the password update with it.
func (r *passwordResetRepository) Redeem(ctx context.Context, id, userID uuid.UUID, hashedPassword string) error {
	return r.WithTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `
			UPDATE users
			SET hashed_password = $1, updated_at = NOW()
			WHERE id = $2`, hashedPassword, userID)
		if err != nil {
			return err
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return repository.ErrUserNotFound
		}

		result, err = tx.ExecContext(ctx, `
			UPDATE password_reset_tokens
			SET used = true
			WHERE id = $1 AND used = false`, id)
		if err != nil {
			return err
		}
		rows, err = result.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return repository.ErrResetTokenInvalid
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE password_reset_tokens
			SET used = true
			WHERE user_id = $1 AND id != $2 AND used = false`, userID, id)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE sessions
			SET is_active = false
			WHERE user_id = $1 AND is_active = true`, userID)
		return err
	})
}

func (r *passwordResetRepository) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	query := `DELETE FROM password_reset_tokens WHERE expires_at < $1`

	result, err := r.DB().ExecContext(ctx, query, now)
	if err != nil {
		return 0, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(rows), nil
}
