package models

import (
	"time"

	"github.com/google/uuid"
)

// AuditAction represents the type of authentication event recorded
type AuditAction string

const (
	AuditActionLoginSuccess     AuditAction = "login_success"
	AuditActionLoginFailure     AuditAction = "login_failure"
	AuditActionLoginRateLimited AuditAction = "login_rate_limited"
	AuditActionSignup           AuditAction = "signup"
	AuditActionIdpLogin         AuditAction = "idp_login"
	AuditActionLogout           AuditAction = "logout"
	AuditActionSessionExpired   AuditAction = "session_expired"
	AuditActionSessionIdle      AuditAction = "session_idle"
	// AuditActionSessionTampered flags a signature mismatch. Unlike the
	// expiry actions this indicates forgery or corruption and should be
	// routed to security monitoring.
	AuditActionSessionTampered AuditAction = "session_tampered"
	AuditActionResetRequested  AuditAction = "password_reset_requested"
	AuditActionResetCompleted  AuditAction = "password_reset_completed"
)

// AuditLog represents a record of an authentication event. The HTTP
// surface collapses all session-invalidity reasons into one generic
// outcome; the audit trail is where the specific reason is preserved.
type AuditLog struct {
	ID          uuid.UUID   `json:"id"`
	UserID      *uuid.UUID  `json:"user_id"` // nil when the actor is unknown (e.g. forged token)
	Action      AuditAction `json:"action"`
	Description string      `json:"description"`
	Metadata    string      `json:"metadata"` // JSON string with additional context
	IPAddress   string      `json:"ip_address"`
	UserAgent   string      `json:"user_agent"`
	CreatedAt   time.Time   `json:"created_at"`
}

// CreateAuditLogRequest represents the request to create a new audit log entry
type CreateAuditLogRequest struct {
	UserID      *uuid.UUID  `json:"user_id"`
	Action      AuditAction `json:"action" binding:"required"`
	Description string      `json:"description" binding:"required"`
	Metadata    string      `json:"metadata"`
	IPAddress   string      `json:"ip_address"`
	UserAgent   string      `json:"user_agent"`
}
