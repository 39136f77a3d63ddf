package auth_test

import (
	"context"
	"testing"
	"time"

	"oversave/internal/auth"
	"oversave/internal/models"
	"oversave/internal/repository"
	"oversave/internal/testutil"

	"github.com/stretchr/testify/require"
)

func TestService_Login_Outcomes(t *testing.T) {
	tc := testutil.NewTestContext(t)
	tc.CreateTestUser("svc@example.com", "test_password")

	t.Run("Success", func(t *testing.T) {
		result := tc.AuthService.Login(context.Background(), models.LoginRequest{
			Email:    "svc@example.com",
			Password: "test_password",
		}, "127.0.0.1", "test-agent")

		require.Equal(t, auth.OutcomeSuccess, result.Outcome)
		require.NotEmpty(t, result.Token)
		require.Equal(t, "svc@example.com", result.User.Email)
	})

	t.Run("Unknown Email And Wrong Password Are Indistinguishable", func(t *testing.T) {
		unknown := tc.AuthService.Login(context.Background(), models.LoginRequest{
			Email:    "ghost@example.com",
			Password: "test_password",
		}, "127.0.0.1", "test-agent")
		wrong := tc.AuthService.Login(context.Background(), models.LoginRequest{
			Email:    "svc@example.com",
			Password: "not_the_password",
		}, "127.0.0.1", "test-agent")

		require.Equal(t, auth.OutcomeInvalidCredentials, unknown.Outcome)
		require.Equal(t, auth.OutcomeInvalidCredentials, wrong.Outcome)
		require.Empty(t, unknown.Token)
		require.Empty(t, wrong.Token)
	})
}

func TestService_Login_RecordsAttemptsForUnknownAccounts(t *testing.T) {
	tc := testutil.NewTestContext(t)

	for i := 0; i < 3; i++ {
		tc.AuthService.Login(context.Background(), models.LoginRequest{
			Email:    "ghost@example.com",
			Password: "whatever",
		}, "127.0.0.1", "test-agent")
	}

	// Failures against nonexistent accounts still count toward lockout
	n, err := tc.LoginAttemptRepo.CountFailedByIdentifier(context.Background(),
		"ghost@example.com", time.Now().Add(-tc.Config.Lockout.Window))
	require.NoError(t, err)
	require.Equal(t, 3, n)
}

func TestService_Login_IPLockoutAcrossIdentifiers(t *testing.T) {
	tc := testutil.NewTestContext(t)
	tc.CreateTestUser("victim@example.com", "test_password")

	// One IP hammering many identifiers trips the per-IP limit
	for i := 0; i < 5; i++ {
		err := tc.LoginAttemptRepo.Create(context.Background(),
			"other@example.com", "203.0.113.9", false, time.Now())
		require.NoError(t, err)
	}

	result := tc.AuthService.Login(context.Background(), models.LoginRequest{
		Email:    "victim@example.com",
		Password: "test_password",
	}, "203.0.113.9", "test-agent")
	require.Equal(t, auth.OutcomeRateLimited, result.Outcome)

	// The same credentials from a clean IP still work
	result = tc.AuthService.Login(context.Background(), models.LoginRequest{
		Email:    "victim@example.com",
		Password: "test_password",
	}, "198.51.100.1", "test-agent")
	require.Equal(t, auth.OutcomeSuccess, result.Outcome)
}

func TestService_Signup_DuplicateEmail(t *testing.T) {
	tc := testutil.NewTestContext(t)
	tc.CreateTestUser("dup@example.com", "test_password")

	result := tc.AuthService.Signup(context.Background(), models.SignupRequest{
		Email:     "dup@example.com",
		Password:  "Sup3rSecure!Word",
		FirstName: "Dup",
		LastName:  "User",
	}, "127.0.0.1", "test-agent")

	require.Equal(t, auth.OutcomeEmailExists, result.Outcome)
	require.Empty(t, result.Token)
}

func TestService_Signup_IssuesWorkingSession(t *testing.T) {
	tc := testutil.NewTestContext(t)

	result := tc.AuthService.Signup(context.Background(), models.SignupRequest{
		Email:     "fresh@example.com",
		Password:  "Sup3rSecure!Word",
		FirstName: "Fresh",
		LastName:  "User",
	}, "127.0.0.1", "test-agent")

	require.Equal(t, auth.OutcomeSuccess, result.Outcome)

	user, err := tc.AuthService.CurrentUser(context.Background(), result.Token)
	require.NoError(t, err)
	require.Equal(t, "fresh@example.com", user.Email)
	require.Equal(t, int64(0), user.BudgetCoin)
}

func TestService_LoginWithIdp_RateLimitsOnProviderSubject(t *testing.T) {
	tc := testutil.NewTestContext(t)

	req := models.IdpLoginRequest{Provider: "google", SubjectID: "sub-1"}
	for i := 0; i < 5; i++ {
		result := tc.AuthService.LoginWithIdp(context.Background(), req, "127.0.0.1", "test-agent")
		require.Equal(t, auth.OutcomeInvalidCredentials, result.Outcome)
	}

	result := tc.AuthService.LoginWithIdp(context.Background(), req, "127.0.0.1", "test-agent")
	require.Equal(t, auth.OutcomeRateLimited, result.Outcome)
}

func TestService_AuditTrail(t *testing.T) {
	tc := testutil.NewTestContext(t)
	user := tc.CreateTestUser("trail@example.com", "test_password")

	t.Run("Signup", func(t *testing.T) {
		result := tc.AuthService.Signup(context.Background(), models.SignupRequest{
			Email:     "trail-new@example.com",
			Password:  "Sup3rSecure!Word",
			FirstName: "Trail",
			LastName:  "User",
		}, "127.0.0.1", "test-agent")
		require.Equal(t, auth.OutcomeSuccess, result.Outcome)
		requireAuditAction(t, tc, models.AuditActionSignup)
	})

	t.Run("Login Failure", func(t *testing.T) {
		result := tc.AuthService.Login(context.Background(), models.LoginRequest{
			Email:    "trail@example.com",
			Password: "wrong_password",
		}, "127.0.0.1", "test-agent")
		require.Equal(t, auth.OutcomeInvalidCredentials, result.Outcome)
		requireAuditAction(t, tc, models.AuditActionLoginFailure)
	})

	t.Run("Login Success", func(t *testing.T) {
		result := tc.AuthService.Login(context.Background(), models.LoginRequest{
			Email:    "trail@example.com",
			Password: "test_password",
		}, "127.0.0.1", "test-agent")
		require.Equal(t, auth.OutcomeSuccess, result.Outcome)

		// The success entry names its user
		logs, err := tc.AuditRepo.List(context.Background(), repository.AuditLogFilter{
			UserID:  &user.ID,
			Actions: []models.AuditAction{models.AuditActionLoginSuccess},
		})
		require.NoError(t, err)
		require.NotEmpty(t, logs)
	})

	t.Run("Logout", func(t *testing.T) {
		token := tc.LoginTestUser("trail@example.com", "test_password")
		require.NoError(t, tc.AuthService.Logout(context.Background(), token, "127.0.0.1"))
		requireAuditAction(t, tc, models.AuditActionLogout)
	})

	t.Run("Rate Limited", func(t *testing.T) {
		for i := 0; i < 5; i++ {
			tc.AuthService.Login(context.Background(), models.LoginRequest{
				Email:    "locked-trail@example.com",
				Password: "wrong_password",
			}, "10.1.1.1", "test-agent")
		}
		result := tc.AuthService.Login(context.Background(), models.LoginRequest{
			Email:    "locked-trail@example.com",
			Password: "wrong_password",
		}, "10.1.1.1", "test-agent")
		require.Equal(t, auth.OutcomeRateLimited, result.Outcome)
		requireAuditAction(t, tc, models.AuditActionLoginRateLimited)
	})

	t.Run("IdP Login", func(t *testing.T) {
		require.NoError(t, tc.IdpAccountRepo.Link(context.Background(), &models.IdpAccount{
			Provider:  "google",
			SubjectID: "trail-sub",
			UserID:    user.ID,
		}))
		result := tc.AuthService.LoginWithIdp(context.Background(), models.IdpLoginRequest{
			Provider:  "google",
			SubjectID: "trail-sub",
		}, "127.0.0.1", "test-agent")
		require.Equal(t, auth.OutcomeSuccess, result.Outcome)
		requireAuditAction(t, tc, models.AuditActionIdpLogin)
	})
}

func TestService_CurrentUser_RenewsActivity(t *testing.T) {
	tc := testutil.NewTestContext(t)
	tc.CreateTestUser("active@example.com", "test_password")
	token := tc.LoginTestUser("active@example.com", "test_password")

	// Backdate activity to near the idle limit, then make a request
	tc.ExecuteSQL("UPDATE sessions SET last_activity_at = CURRENT_TIMESTAMP - INTERVAL '4 minutes' WHERE token = $1", token)

	_, err := tc.AuthService.CurrentUser(context.Background(), token)
	require.NoError(t, err)

	// The request reset the idle clock
	session, err := tc.SessionRepo.GetByToken(context.Background(), token)
	require.NoError(t, err)
	require.WithinDuration(t, time.Now(), session.LastActivityAt, 10*time.Second)
}
