package models

import "time"

// AuthResponse is the response to a successful login, signup or IdP login
type AuthResponse struct {
	Token string      `json:"token"`
	User  UserProfile `json:"user"`
}

// SessionStatusResponse reports whether a presented bearer token is valid
type SessionStatusResponse struct {
	Valid bool `json:"valid"`
}

// PasswordPolicyResponse carries the specific password-policy violations.
// Password rules are a UX surface, so unlike credential failures they are
// reported in detail.
type PasswordPolicyResponse struct {
	Error      string   `json:"error"`
	Violations []string `json:"violations"`
}

// CleanupResponse reports how many rows a maintenance sweep touched
type CleanupResponse struct {
	SessionsInvalidated int `json:"sessions_invalidated"`
	ResetTokensRemoved  int `json:"reset_tokens_removed"`
	AuditLogsRemoved    int `json:"audit_logs_removed"`
}

// HealthResponse reports the API health status
type HealthResponse struct {
	Status string    `json:"status"`
	Time   time.Time `json:"time"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// SuccessResponse represents a success response
type SuccessResponse struct {
	Message string `json:"message"`
}
