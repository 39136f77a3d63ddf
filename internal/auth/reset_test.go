package auth_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"oversave/internal/auth"
	"oversave/internal/models"
	"oversave/internal/testutil"

	"github.com/stretchr/testify/require"
)

var resetTokenPattern = regexp.MustCompile(`^[A-Za-z0-9]{64}$`)

func TestResetService_TokenShape(t *testing.T) {
	tc := testutil.NewTestContext(t)
	tc.CreateTestUser("shape@example.com", "test_password")

	result := tc.ResetService.RequestReset(context.Background(), "shape@example.com", "127.0.0.1")
	require.True(t, result.Success)

	// 64 alphanumeric characters, visually distinct from the base64url
	// session tokens
	token := tc.EmailService.LastResetToken()
	require.Regexp(t, resetTokenPattern, token)
}

func TestResetService_TokenCapPerUser(t *testing.T) {
	tc := testutil.NewTestContext(t)
	user := tc.CreateTestUser("cap@example.com", "test_password")

	for i := 0; i < 6; i++ {
		result := tc.ResetService.RequestReset(context.Background(), "cap@example.com", "127.0.0.1")
		require.True(t, result.Success)
	}

	count, err := tc.PasswordResetRepo.CountValidForUser(context.Background(), user.ID, time.Now())
	require.NoError(t, err)
	require.Equal(t, tc.Config.Reset.MaxTokensPerUser, count)
}

func TestResetService_ResetInvalidatesOtherTokens(t *testing.T) {
	tc := testutil.NewTestContext(t)
	user := tc.CreateTestUser("others@example.com", "test_password")

	require.True(t, tc.ResetService.RequestReset(context.Background(), "others@example.com", "127.0.0.1").Success)
	first := tc.EmailService.LastResetToken()
	require.True(t, tc.ResetService.RequestReset(context.Background(), "others@example.com", "127.0.0.1").Success)
	second := tc.EmailService.LastResetToken()
	require.NotEqual(t, first, second)

	result := tc.ResetService.ResetPassword(context.Background(), second, "New!Password456", "127.0.0.1")
	require.True(t, result.Success)

	// Redeeming one token kills the user's outstanding ones
	require.False(t, tc.ResetService.ValidateToken(context.Background(), first))

	count, err := tc.PasswordResetRepo.CountValidForUser(context.Background(), user.ID, time.Now())
	require.NoError(t, err)
	require.Zero(t, count)
}

func TestResetService_ReusedTokenLeavesPasswordUntouched(t *testing.T) {
	tc := testutil.NewTestContext(t)
	tc.CreateTestUser("reuse@example.com", "test_password")

	require.True(t, tc.ResetService.RequestReset(context.Background(), "reuse@example.com", "127.0.0.1").Success)
	token := tc.EmailService.LastResetToken()

	require.True(t, tc.ResetService.ResetPassword(context.Background(), token, "New!Password456", "127.0.0.1").Success)

	// Replaying the token fails and must not touch the stored password
	result := tc.ResetService.ResetPassword(context.Background(), token, "Other!Password789", "127.0.0.1")
	require.False(t, result.Success)

	login := tc.AuthService.Login(context.Background(), models.LoginRequest{
		Email:    "reuse@example.com",
		Password: "New!Password456",
	}, "127.0.0.1", "test-agent")
	require.Equal(t, auth.OutcomeSuccess, login.Outcome)
}

func TestResetService_ExpiredTokenRejected(t *testing.T) {
	tc := testutil.NewTestContext(t)
	tc.CreateTestUser("late@example.com", "test_password")

	require.True(t, tc.ResetService.RequestReset(context.Background(), "late@example.com", "127.0.0.1").Success)
	token := tc.EmailService.LastResetToken()

	tc.ExecuteSQL("UPDATE password_reset_tokens SET expires_at = CURRENT_TIMESTAMP - INTERVAL '1 second' WHERE token = $1", token)

	result := tc.ResetService.ResetPassword(context.Background(), token, "New!Password456", "127.0.0.1")
	require.False(t, result.Success)
	require.Empty(t, result.Violations)
}

func TestResetService_CleanupExpired(t *testing.T) {
	tc := testutil.NewTestContext(t)
	tc.CreateTestUser("sweep@example.com", "test_password")

	require.True(t, tc.ResetService.RequestReset(context.Background(), "sweep@example.com", "127.0.0.1").Success)
	require.True(t, tc.ResetService.RequestReset(context.Background(), "sweep@example.com", "127.0.0.1").Success)
	live := tc.EmailService.LastResetToken()

	tc.ExecuteSQL("UPDATE password_reset_tokens SET expires_at = CURRENT_TIMESTAMP - INTERVAL '1 hour' WHERE token <> $1", live)

	n, err := tc.ResetService.CleanupExpired(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, n)

	// The live token survives the sweep
	require.True(t, tc.ResetService.ValidateToken(context.Background(), live))
}

func TestResetService_AuditTrail(t *testing.T) {
	tc := testutil.NewTestContext(t)
	tc.CreateTestUser("audited@example.com", "test_password")

	require.True(t, tc.ResetService.RequestReset(context.Background(), "audited@example.com", "127.0.0.1").Success)
	token := tc.EmailService.LastResetToken()
	require.True(t, tc.ResetService.ResetPassword(context.Background(), token, "New!Password456", "127.0.0.1").Success)

	requireAuditAction(t, tc, models.AuditActionResetRequested)
	requireAuditAction(t, tc, models.AuditActionResetCompleted)

	// A password-changed notification went out
	require.Equal(t, 1, tc.EmailService.ChangedMails)
}
