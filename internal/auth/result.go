package auth

import "oversave/internal/models"

// Outcome tags the result of an authentication attempt so call sites
// must handle every case explicitly instead of probing a nullable token.
type Outcome int

const (
	// OutcomeSuccess carries a session token and the minimal user profile
	OutcomeSuccess Outcome = iota
	// OutcomeInvalidCredentials covers unknown email and wrong password
	// alike; callers cannot tell which check failed
	OutcomeInvalidCredentials
	// OutcomeRateLimited means the lockout window rejected the attempt
	// before any credential was examined
	OutcomeRateLimited
	// OutcomeEmailExists is returned by signup for an already-registered email
	OutcomeEmailExists
	// OutcomeError covers internal failures (storage, hashing)
	OutcomeError
)

// AuthResult is the polymorphic outcome of login, signup and IdP login
type AuthResult struct {
	Outcome Outcome
	Token   string
	User    models.UserProfile
	Err     error
}

func successResult(token string, user *models.User) AuthResult {
	return AuthResult{Outcome: OutcomeSuccess, Token: token, User: user.Profile()}
}

func invalidCredentialsResult() AuthResult {
	return AuthResult{Outcome: OutcomeInvalidCredentials}
}

func rateLimitedResult() AuthResult {
	return AuthResult{Outcome: OutcomeRateLimited}
}

func errorResult(err error) AuthResult {
	return AuthResult{Outcome: OutcomeError, Err: err}
}
