package postgres

import (
	"context"
	"database/sql"
	"oversave/internal/models"
	"oversave/internal/repository"

	"github.com/google/uuid"
)

type idpAccountRepository struct {
	repository.BaseRepository
}

// NewIdpAccountRepository creates a new PostgreSQL IdP account repository
func NewIdpAccountRepository(db *sql.DB) repository.IdpAccountRepository {
	return &idpAccountRepository{
		BaseRepository: repository.NewBaseRepository(db),
	}
}

func (r *idpAccountRepository) GetByProviderAndSubject(ctx context.Context, provider, subjectID string) (*models.IdpAccount, error) {
	account := &models.IdpAccount{}
	query := `
		SELECT id, provider, subject_id, user_id, linked_at
		FROM idp_accounts
		WHERE provider = $1 AND subject_id = $2`

	err := r.DB().QueryRowContext(ctx, query, provider, subjectID).Scan(
		&account.ID,
		&account.Provider,
		&account.SubjectID,
		&account.UserID,
		&account.LinkedAt,
	)

	if err == sql.ErrNoRows {
		return nil, repository.ErrIdpAccountNotFound
	}
	if err != nil {
		return nil, err
	}
	return account, nil
}

func (r *idpAccountRepository) Link(ctx context.Context, account *models.IdpAccount) error {
	var count int
	err := r.DB().QueryRowContext(ctx,
		"SELECT COUNT(*) FROM idp_accounts WHERE provider = $1 AND subject_id = $2",
		account.Provider, account.SubjectID).Scan(&count)
	if err != nil {
		return err
	}
	if count > 0 {
		return repository.ErrDuplicateEntry
	}

	if account.ID == uuid.Nil {
		account.ID = uuid.New()
	}

	query := `
		INSERT INTO idp_accounts (id, provider, subject_id, user_id)
		VALUES ($1, $2, $3, $4)
		RETURNING linked_at`

	return r.DB().QueryRowContext(ctx, query,
		account.ID,
		account.Provider,
		account.SubjectID,
		account.UserID,
	).Scan(&account.LinkedAt)
}
