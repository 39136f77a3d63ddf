package repository

import (
	"context"
	"oversave/internal/models"
)

// IdpAccountRepository looks up the linkage between an external
// identity-provider subject and a local user
type IdpAccountRepository interface {
	GetByProviderAndSubject(ctx context.Context, provider, subjectID string) (*models.IdpAccount, error)
	Link(ctx context.Context, account *models.IdpAccount) error
}
