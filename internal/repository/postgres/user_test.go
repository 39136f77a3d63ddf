package postgres_test

import (
	"context"
	"testing"

	"oversave/internal/models"
	"oversave/internal/repository"
	"oversave/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_EmailNormalization(t *testing.T) {
	tc := testutil.NewTestContext(t)

	user := &models.User{
		Email:          "  MiXeD@Example.COM ",
		HashedPassword: "hash",
		FirstName:      "Mixed",
		LastName:       "Case",
	}
	require.NoError(t, tc.UserRepo.Create(context.Background(), user))
	require.Equal(t, "mixed@example.com", user.Email)

	// Lookup normalizes too
	got, err := tc.UserRepo.GetByEmail(context.Background(), "MIXED@example.com ")
	require.NoError(t, err)
	require.Equal(t, user.ID, got.ID)
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	tc := testutil.NewTestContext(t)
	tc.CreateTestUser("dup@example.com", "test_password")

	err := tc.UserRepo.Create(context.Background(), &models.User{
		Email:          "DUP@example.com",
		HashedPassword: "hash",
		FirstName:      "Dup",
		LastName:       "User",
	})
	require.ErrorIs(t, err, repository.ErrEmailExists)
}

func TestUserRepository_GetByID_NotFound(t *testing.T) {
	tc := testutil.NewTestContext(t)

	_, err := tc.UserRepo.GetByID(context.Background(), uuid.New())
	require.ErrorIs(t, err, repository.ErrUserNotFound)
}
