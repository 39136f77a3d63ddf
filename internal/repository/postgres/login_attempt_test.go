package postgres_test

import (
	"context"
	"testing"
	"time"

	"oversave/internal/testutil"

	"github.com/stretchr/testify/require"
)

func TestLoginAttemptRepository_Counting(t *testing.T) {
	tc := testutil.NewTestContext(t)
	ctx := context.Background()
	now := time.Now()

	// Attempts need no matching user row
	require.NoError(t, tc.LoginAttemptRepo.Create(ctx, "ghost@example.com", "10.0.0.1", false, now))
	require.NoError(t, tc.LoginAttemptRepo.Create(ctx, "ghost@example.com", "10.0.0.1", false, now))
	require.NoError(t, tc.LoginAttemptRepo.Create(ctx, "ghost@example.com", "10.0.0.2", false, now))

	// Successes and out-of-window failures do not count
	require.NoError(t, tc.LoginAttemptRepo.Create(ctx, "ghost@example.com", "10.0.0.1", true, now))
	require.NoError(t, tc.LoginAttemptRepo.Create(ctx, "ghost@example.com", "10.0.0.1", false, now.Add(-time.Hour)))

	since := now.Add(-15 * time.Minute)

	n, err := tc.LoginAttemptRepo.CountFailedByIdentifier(ctx, "ghost@example.com", since)
	require.NoError(t, err)
	require.Equal(t, 3, n)

	n, err = tc.LoginAttemptRepo.CountFailedByIP(ctx, "10.0.0.1", since)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	n, err = tc.LoginAttemptRepo.CountFailedByIdentifier(ctx, "other@example.com", since)
	require.NoError(t, err)
	require.Zero(t, n)
}
