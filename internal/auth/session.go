package auth

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"oversave/internal/config"
	"oversave/internal/models"
	"oversave/internal/repository"
	"time"

	"github.com/google/uuid"
)

// SessionManager issues and validates opaque session tokens and drives
// the session state machine: a session is Active until it is logged out,
// expired, idle or tampered, all of which collapse to inactive. The
// transition is one-directional.
type SessionManager struct {
	sessionRepo repository.SessionRepository
	auditRepo   repository.AuditLogRepository
	secret      []byte
	idleTimeout time.Duration
	lifetime    time.Duration
	renewWindow time.Duration
}

// NewSessionManager creates a session manager. The secret is read once
// here and never changes for the life of the process.
func NewSessionManager(cfg config.SessionConfig, sessionRepo repository.SessionRepository, auditRepo repository.AuditLogRepository) *SessionManager {
	return &SessionManager{
		sessionRepo: sessionRepo,
		auditRepo:   auditRepo,
		secret:      []byte(cfg.Secret),
		idleTimeout: cfg.IdleTimeout,
		lifetime:    cfg.Lifetime,
		renewWindow: cfg.RenewalWindow,
	}
}

// Issue creates a new session for the user, superseding every other
// active session the user holds in the same transaction. The returned
// session carries the bearer token; the signature stays server-side.
func (m *SessionManager) Issue(ctx context.Context, user *models.User, ipAddress, userAgent string) (*models.Session, error) {
	token, err := generateSessionToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session token: %w", err)
	}

	now := time.Now()
	session := &models.Session{
		UserID:         user.ID,
		Token:          token,
		TokenSignature: m.sign(token),
		IssuedAt:       now,
		ExpiresAt:      now.Add(m.lifetime),
		LastActivityAt: now,
		IPAddress:      ipAddress,
		UserAgent:      userAgent,
		IsActive:       true,
	}

	if err := m.sessionRepo.CreateAndSupersede(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to persist session: %w", err)
	}

	log.Printf("Created new session for user %s from IP %s", user.Email, ipAddress)
	return session, nil
}

// Validate checks a presented token against the store. It rejects with
// repository.ErrSessionNotFound when the token is empty, unknown or the
// session is already inactive, and with ErrSessionExpired, ErrSessionIdle
// or ErrSessionTampered when one of the per-call checks fails; those
// three also flip the session inactive before returning.
func (m *SessionManager) Validate(ctx context.Context, token string) (*models.Session, error) {
	if token == "" {
		return nil, repository.ErrSessionNotFound
	}

	session, err := m.sessionRepo.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	if !session.IsActive {
		return nil, repository.ErrSessionNotFound
	}

	now := time.Now()

	if session.IsExpired(now) {
		m.invalidate(ctx, session, models.AuditActionSessionExpired, "session passed absolute expiry")
		return nil, ErrSessionExpired
	}

	if session.IsIdle(now, m.idleTimeout) {
		m.invalidate(ctx, session, models.AuditActionSessionIdle, "session idle timeout elapsed")
		return nil, ErrSessionIdle
	}

	// Constant-time comparison: the signature check must not become a
	// timing oracle for forged tokens.
	expected := m.sign(session.Token)
	if !hmac.Equal([]byte(expected), []byte(session.TokenSignature)) {
		log.Printf("Token tampering detected for session %s", maskToken(token))
		m.invalidate(ctx, session, models.AuditActionSessionTampered, "stored signature does not match token")
		return nil, ErrSessionTampered
	}

	return session, nil
}

// Renew re-validates the token, updates the activity timestamp, and
// slides the absolute expiry forward when it is within the renewal
// window. Ordinary traffic therefore keeps a session alive as long as
// requests keep arriving inside the idle timeout.
func (m *SessionManager) Renew(ctx context.Context, token string) error {
	session, err := m.Validate(ctx, token)
	if err != nil {
		return err
	}

	now := time.Now()
	expiresAt := session.ExpiresAt
	if session.ExpiresAt.Before(now.Add(m.renewWindow)) {
		expiresAt = now.Add(m.lifetime)
	}

	return m.sessionRepo.Touch(ctx, session.ID, now, expiresAt)
}

// Invalidate flips one session inactive; used by logout. Unknown tokens
// are not an error: logout is idempotent.
func (m *SessionManager) Invalidate(ctx context.Context, token string) error {
	err := m.sessionRepo.Invalidate(ctx, token)
	if errors.Is(err, repository.ErrSessionNotFound) {
		return nil
	}
	return err
}

// InvalidateAll flips every session of a user inactive; used by
// password reset so no pre-change session stays usable.
func (m *SessionManager) InvalidateAll(ctx context.Context, userID uuid.UUID) error {
	return m.sessionRepo.InvalidateAllForUser(ctx, userID)
}

// Cleanup bulk-flips stale-but-still-active sessions. Advisory
// housekeeping only: Validate enforces the same checks on every call.
func (m *SessionManager) Cleanup(ctx context.Context) (int, error) {
	now := time.Now()
	n, err := m.sessionRepo.CleanupExpired(ctx, now, now.Add(-m.idleTimeout))
	if err != nil {
		return 0, err
	}
	if n > 0 {
		log.Printf("Cleaned up %d expired sessions", n)
	}
	return n, nil
}

func (m *SessionManager) invalidate(ctx context.Context, session *models.Session, action models.AuditAction, description string) {
	if err := m.sessionRepo.Invalidate(ctx, session.Token); err != nil {
		log.Printf("Failed to invalidate session %s: %v", maskToken(session.Token), err)
	}

	audit := &models.CreateAuditLogRequest{
		UserID:      &session.UserID,
		Action:      action,
		Description: description,
		IPAddress:   session.IPAddress,
		UserAgent:   session.UserAgent,
	}
	if err := m.auditRepo.Create(ctx, audit); err != nil {
		log.Printf("Failed to create audit log: %v", err)
	}
}

// sign computes the server-side HMAC-SHA256 signature over the token
func (m *SessionManager) sign(token string) string {
	mac := hmac.New(sha256.New, m.secret)
	mac.Write([]byte(token))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// generateSessionToken returns a high-entropy opaque token. It carries
// no decodable claims; validity is established only by store lookup.
func generateSessionToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// maskToken keeps log lines from leaking usable credentials
func maskToken(token string) string {
	if len(token) < 8 {
		return "***"
	}
	return token[:4] + "***" + token[len(token)-4:]
}
