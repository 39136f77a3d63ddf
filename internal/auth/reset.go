package auth

import (
	"context"
	"crypto/rand"
	"fmt"
	"log"
	"math/big"
	"oversave/internal/config"
	"oversave/internal/email"
	"oversave/internal/models"
	"oversave/internal/repository"
	"time"

	"github.com/google/uuid"
)

// resetTokenAlphabet is deliberately distinct from the base64url
// alphabet of session tokens
const resetTokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

const resetTokenLength = 64

// genericResetMessage is returned whether or not the email exists, to
// prevent account enumeration
const genericResetMessage = "If your email is registered, you will receive a password reset link."

// ResetResult is the outcome of a password reset operation
type ResetResult struct {
	Success    bool     `json:"success"`
	Message    string   `json:"message"`
	Violations []string `json:"violations,omitempty"`
}

// ResetService issues and redeems one-time password reset tokens. A
// successful reset invalidates every session of the user: a password
// change must never leave a pre-change session usable.
type ResetService struct {
	userRepo  repository.UserRepository
	resetRepo repository.PasswordResetRepository
	auditRepo repository.AuditLogRepository
	email     email.EmailSender
	cfg       config.ResetConfig
}

// NewResetService creates a new password reset service
func NewResetService(cfg config.ResetConfig, userRepo repository.UserRepository, resetRepo repository.PasswordResetRepository, auditRepo repository.AuditLogRepository, sender email.EmailSender) *ResetService {
	return &ResetService{
		userRepo:  userRepo,
		resetRepo: resetRepo,
		auditRepo: auditRepo,
		email:     sender,
		cfg:       cfg,
	}
}

// RequestReset starts a password reset. The outward message is the same
// whether the email exists, is unknown, or the user already holds the
// maximum number of valid tokens.
func (s *ResetService) RequestReset(ctx context.Context, emailAddr, ipAddress string) ResetResult {
	user, err := s.userRepo.GetByEmail(ctx, emailAddr)
	if err == repository.ErrUserNotFound {
		// Match the latency of the real path so response timing does
		// not leak account existence
		sleepJitter(100*time.Millisecond, 300*time.Millisecond)
		log.Printf("Password reset requested for unknown email")
		return ResetResult{Success: true, Message: genericResetMessage}
	}
	if err != nil {
		return ResetResult{Success: false, Message: "An error occurred. Please try again later."}
	}

	count, err := s.resetRepo.CountValidForUser(ctx, user.ID, time.Now())
	if err != nil {
		return ResetResult{Success: false, Message: "An error occurred. Please try again later."}
	}
	if count >= s.cfg.MaxTokensPerUser {
		log.Printf("User %s has too many active reset tokens", user.Email)
		return ResetResult{Success: true, Message: genericResetMessage}
	}

	token, err := generateResetToken()
	if err != nil {
		return ResetResult{Success: false, Message: "An error occurred. Please try again later."}
	}

	reset := &models.PasswordResetToken{
		UserID:    user.ID,
		Token:     token,
		ExpiresAt: time.Now().Add(s.cfg.TokenLifetime),
	}
	if err := s.resetRepo.Create(ctx, reset); err != nil {
		return ResetResult{Success: false, Message: "An error occurred. Please try again later."}
	}

	if err := s.email.SendPasswordResetEmail(user.Email, user.FirstName, token); err != nil {
		log.Printf("Failed to send password reset email to %s: %v", user.Email, err)
	}

	s.audit(ctx, &user.ID, models.AuditActionResetRequested, "password reset requested", ipAddress)
	log.Printf("Password reset requested for user %s", user.Email)
	return ResetResult{Success: true, Message: genericResetMessage}
}

// ValidateToken reports whether a matching, unused, unexpired token exists
func (s *ResetService) ValidateToken(ctx context.Context, token string) bool {
	if token == "" {
		return false
	}
	_, err := s.resetRepo.GetValid(ctx, token, time.Now())
	return err == nil
}

// ResetPassword redeems a token. The password policy runs first so
// violations are reported without burning the token; only when every
// check passes does it store the new hash, mark the token used,
// invalidate the user's other tokens and every one of their sessions.
func (s *ResetService) ResetPassword(ctx context.Context, token, newPassword, ipAddress string) ResetResult {
	if violations := ValidatePasswordStrength(newPassword); len(violations) > 0 {
		return ResetResult{
			Success:    false,
			Message:    "Password does not meet security requirements",
			Violations: violations,
		}
	}

	reset, err := s.resetRepo.GetValid(ctx, token, time.Now())
	if err != nil {
		log.Printf("Attempted password reset with invalid token %s", maskToken(token))
		return ResetResult{Success: false, Message: "Invalid or expired reset link. Please request a new one."}
	}

	user, err := s.userRepo.GetByID(ctx, reset.UserID)
	if err != nil {
		return ResetResult{Success: false, Message: "An error occurred. Please try again."}
	}

	hashed, err := hashPassword(newPassword)
	if err != nil {
		return ResetResult{Success: false, Message: "An error occurred. Please try again."}
	}

	// Password update, token burn, sibling-token invalidation and
	// session invalidation commit or roll back together. A reset is only
	// reported successful once all four have happened.
	if err := s.resetRepo.Redeem(ctx, reset.ID, user.ID, hashed); err != nil {
		if err == repository.ErrResetTokenInvalid {
			// The token validated moments ago; a concurrent redeem won
			// the race and this one rolled back in full.
			log.Printf("Reset token for user %s redeemed concurrently", user.Email)
			return ResetResult{Success: false, Message: "Invalid or expired reset link. Please request a new one."}
		}
		log.Printf("Failed to redeem reset token for user %s: %v", user.Email, err)
		return ResetResult{Success: false, Message: "An error occurred. Please try again."}
	}

	if err := s.email.SendPasswordChangedEmail(user.Email, user.FirstName); err != nil {
		log.Printf("Failed to send password changed email to %s: %v", user.Email, err)
	}

	s.audit(ctx, &user.ID, models.AuditActionResetCompleted, "password reset completed", ipAddress)
	log.Printf("Password successfully reset for user %s", user.Email)
	return ResetResult{
		Success: true,
		Message: "Your password has been successfully reset. Please log in with your new password.",
	}
}

// CleanupExpired deletes expired reset tokens. Used rows inside their
// expiry window are kept so replays keep failing for the same reason.
func (s *ResetService) CleanupExpired(ctx context.Context) (int, error) {
	n, err := s.resetRepo.DeleteExpired(ctx, time.Now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		log.Printf("Cleaned up %d expired password reset tokens", n)
	}
	return n, nil
}

func (s *ResetService) audit(ctx context.Context, userID *uuid.UUID, action models.AuditAction, description, ipAddress string) {
	req := &models.CreateAuditLogRequest{
		UserID:      userID,
		Action:      action,
		Description: description,
		IPAddress:   ipAddress,
	}
	if err := s.auditRepo.Create(ctx, req); err != nil {
		log.Printf("Failed to create audit log: %v", err)
	}
}

func generateResetToken() (string, error) {
	token := make([]byte, resetTokenLength)
	max := big.NewInt(int64(len(resetTokenAlphabet)))
	for i := range token {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate reset token: %w", err)
		}
		token[i] = resetTokenAlphabet[n.Int64()]
	}
	return string(token), nil
}

func sleepJitter(min, max time.Duration) {
	span := big.NewInt(int64(max - min))
	n, err := rand.Int(rand.Reader, span)
	if err != nil {
		time.Sleep(min)
		return
	}
	time.Sleep(min + time.Duration(n.Int64()))
}
