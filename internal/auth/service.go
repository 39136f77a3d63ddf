// Package auth implements the session and credential security core:
// credential verification, the session state machine, failed-attempt
// rate limiting and one-time password reset tokens. The surrounding
// CRUD layer consumes it only through CurrentUser, IsValidSession,
// Logout and the reset service.
package auth

import (
	"context"
	"fmt"
	"log"
	"oversave/internal/config"
	"oversave/internal/models"
	"oversave/internal/repository"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Service orchestrates the rate limiter, the credential store and the
// session manager to implement login, signup and IdP login.
type Service struct {
	userRepo    repository.UserRepository
	idpRepo     repository.IdpAccountRepository
	attemptRepo repository.LoginAttemptRepository
	auditRepo   repository.AuditLogRepository
	sessions    *SessionManager
	lockout     config.LockoutConfig
}

// NewService creates a new authentication service
func NewService(cfg config.LockoutConfig, userRepo repository.UserRepository, idpRepo repository.IdpAccountRepository, attemptRepo repository.LoginAttemptRepository, auditRepo repository.AuditLogRepository, sessions *SessionManager) *Service {
	return &Service{
		userRepo:    userRepo,
		idpRepo:     idpRepo,
		attemptRepo: attemptRepo,
		auditRepo:   auditRepo,
		sessions:    sessions,
		lockout:     cfg,
	}
}

// IsRateLimited reports whether the identifier or the IP has reached
// the failed-attempt threshold inside the sliding lockout window. Pure
// read; it is consulted before any password comparison.
func (s *Service) IsRateLimited(ctx context.Context, identifier, ipAddress string) (bool, error) {
	since := time.Now().Add(-s.lockout.Window)

	count, err := s.attemptRepo.CountFailedByIdentifier(ctx, identifier, since)
	if err != nil {
		return false, err
	}
	if count >= s.lockout.MaxAttempts {
		return true, nil
	}

	count, err = s.attemptRepo.CountFailedByIP(ctx, ipAddress, since)
	if err != nil {
		return false, err
	}
	return count >= s.lockout.MaxAttempts, nil
}

// RecordLoginAttempt appends one row to the attempt ledger. It is
// called unconditionally: on limiter rejection, on credential mismatch
// and on success, so the ledger always reflects reality.
func (s *Service) RecordLoginAttempt(ctx context.Context, identifier, ipAddress string, successful bool) {
	if err := s.attemptRepo.Create(ctx, identifier, ipAddress, successful, time.Now()); err != nil {
		log.Printf("Failed to record login attempt for %s: %v", identifier, err)
	}
}

// Login verifies an email/password pair and mints a session. Each step
// is a hard gate: rate limit, user lookup, password comparison. Unknown
// email and wrong password produce the same outcome.
func (s *Service) Login(ctx context.Context, req models.LoginRequest, ipAddress, userAgent string) AuthResult {
	limited, err := s.IsRateLimited(ctx, req.Email, ipAddress)
	if err != nil {
		return errorResult(fmt.Errorf("failed to check rate limit: %w", err))
	}
	if limited {
		s.RecordLoginAttempt(ctx, req.Email, ipAddress, false)
		s.audit(ctx, nil, models.AuditActionLoginRateLimited, "login rejected by lockout", ipAddress, userAgent)
		return rateLimitedResult()
	}

	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err == repository.ErrUserNotFound {
		s.RecordLoginAttempt(ctx, req.Email, ipAddress, false)
		s.audit(ctx, nil, models.AuditActionLoginFailure, "login failed", ipAddress, userAgent)
		return invalidCredentialsResult()
	}
	if err != nil {
		return errorResult(fmt.Errorf("failed to look up user: %w", err))
	}

	if err := s.ComparePasswords(user.HashedPassword, req.Password); err != nil {
		s.RecordLoginAttempt(ctx, req.Email, ipAddress, false)
		s.audit(ctx, &user.ID, models.AuditActionLoginFailure, "login failed", ipAddress, userAgent)
		return invalidCredentialsResult()
	}

	session, err := s.sessions.Issue(ctx, user, ipAddress, userAgent)
	if err != nil {
		return errorResult(err)
	}

	s.RecordLoginAttempt(ctx, req.Email, ipAddress, true)
	s.audit(ctx, &user.ID, models.AuditActionLoginSuccess, "login successful", ipAddress, userAgent)
	log.Printf("User %s logged in successfully", user.Email)
	return successResult(session.Token, user)
}

// Signup registers a new user and logs them in. Duplicate email is its
// own outcome; signup is not an enumeration-sensitive surface.
func (s *Service) Signup(ctx context.Context, req models.SignupRequest, ipAddress, userAgent string) AuthResult {
	hashed, err := s.HashPassword(req.Password)
	if err != nil {
		return errorResult(fmt.Errorf("failed to hash password: %w", err))
	}

	user := &models.User{
		Email:                  req.Email,
		HashedPassword:         hashed,
		FirstName:              req.FirstName,
		MiddleName:             req.MiddleName,
		LastName:               req.LastName,
		AllowNotificationEmail: req.AllowNotificationEmail,
		BudgetCoin:             0,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if err == repository.ErrEmailExists {
			return AuthResult{Outcome: OutcomeEmailExists}
		}
		return errorResult(fmt.Errorf("failed to create user: %w", err))
	}

	session, err := s.sessions.Issue(ctx, user, ipAddress, userAgent)
	if err != nil {
		return errorResult(err)
	}

	s.audit(ctx, &user.ID, models.AuditActionSignup, "account created", ipAddress, userAgent)
	log.Printf("New user %s registered successfully", user.Email)
	return successResult(session.Token, user)
}

// LoginWithIdp authenticates a provider/subject pair already verified
// upstream. Rate limiting keys on "provider:subjectId"; an unlinked
// account fails exactly like invalid credentials.
func (s *Service) LoginWithIdp(ctx context.Context, req models.IdpLoginRequest, ipAddress, userAgent string) AuthResult {
	identifier := req.Provider + ":" + req.SubjectID

	limited, err := s.IsRateLimited(ctx, identifier, ipAddress)
	if err != nil {
		return errorResult(fmt.Errorf("failed to check rate limit: %w", err))
	}
	if limited {
		s.RecordLoginAttempt(ctx, identifier, ipAddress, false)
		s.audit(ctx, nil, models.AuditActionLoginRateLimited, "idp login rejected by lockout", ipAddress, userAgent)
		return rateLimitedResult()
	}

	account, err := s.idpRepo.GetByProviderAndSubject(ctx, req.Provider, req.SubjectID)
	if err == repository.ErrIdpAccountNotFound {
		s.RecordLoginAttempt(ctx, identifier, ipAddress, false)
		s.audit(ctx, nil, models.AuditActionLoginFailure, "idp login failed", ipAddress, userAgent)
		return invalidCredentialsResult()
	}
	if err != nil {
		return errorResult(fmt.Errorf("failed to look up idp account: %w", err))
	}

	user, err := s.userRepo.GetByID(ctx, account.UserID)
	if err != nil {
		return errorResult(fmt.Errorf("failed to look up user: %w", err))
	}

	session, err := s.sessions.Issue(ctx, user, ipAddress, userAgent)
	if err != nil {
		return errorResult(err)
	}

	s.RecordLoginAttempt(ctx, identifier, ipAddress, true)
	s.audit(ctx, &user.ID, models.AuditActionIdpLogin, "idp login successful", ipAddress, userAgent)
	log.Printf("User %s logged in via IdP %s successfully", user.Email, req.Provider)
	return successResult(session.Token, user)
}

// Logout invalidates the presented session token. The session is
// resolved first so the audit entry can name its owner; a token that
// resolves to nothing is still audited, without a user.
func (s *Service) Logout(ctx context.Context, token, ipAddress string) error {
	var userID *uuid.UUID
	if session, err := s.sessions.sessionRepo.GetByToken(ctx, token); err == nil {
		userID = &session.UserID
	}

	if err := s.sessions.Invalidate(ctx, token); err != nil {
		return err
	}

	s.audit(ctx, userID, models.AuditActionLogout, "logged out", ipAddress, "")
	return nil
}

// CurrentUser resolves the authenticated user from a bearer token and
// implicitly renews the session, so ordinary API traffic keeps it from
// idling out. All invalidity reasons surface as the validation error.
func (s *Service) CurrentUser(ctx context.Context, token string) (*models.User, error) {
	session, err := s.sessions.Validate(ctx, token)
	if err != nil {
		return nil, err
	}

	if err := s.sessions.Renew(ctx, token); err != nil {
		return nil, err
	}

	return s.userRepo.GetByID(ctx, session.UserID)
}

// IsValidSession reports whether the token passes every validation check
func (s *Service) IsValidSession(ctx context.Context, token string) bool {
	_, err := s.sessions.Validate(ctx, token)
	return err == nil
}

// Sessions exposes the session manager to collaborators that need
// InvalidateAll or Cleanup (maintenance).
func (s *Service) Sessions() *SessionManager {
	return s.sessions
}

// HashPassword hashes a password using bcrypt
func (s *Service) HashPassword(password string) (string, error) {
	return hashPassword(password)
}

// ComparePasswords compares a hashed password with a plain text password
func (s *Service) ComparePasswords(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

// audit records an authentication event. Best effort; a write failure
// never fails the operation being audited.
func (s *Service) audit(ctx context.Context, userID *uuid.UUID, action models.AuditAction, description, ipAddress, userAgent string) {
	req := &models.CreateAuditLogRequest{
		UserID:      userID,
		Action:      action,
		Description: description,
		IPAddress:   ipAddress,
		UserAgent:   userAgent,
	}
	if err := s.auditRepo.Create(ctx, req); err != nil {
		log.Printf("Failed to create audit log: %v", err)
	}
}
