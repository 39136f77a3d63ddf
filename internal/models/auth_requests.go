package models

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required"`
}

// SignupRequest represents a new account registration
type SignupRequest struct {
	Email                  string  `json:"email" binding:"required,email,max=255"`
	Password               string  `json:"password" binding:"required"`
	FirstName              string  `json:"first_name" binding:"required,notblank,max=50"`
	MiddleName             *string `json:"middle_name" binding:"omitempty,max=50"`
	LastName               string  `json:"last_name" binding:"required,notblank,max=50"`
	AllowNotificationEmail bool    `json:"allow_notification_email"`
}

// IdpLoginRequest represents a login via an external identity provider.
// The provider's own token verification is an upstream concern; this
// core only receives the verified provider/subject pair.
type IdpLoginRequest struct {
	Provider  string `json:"provider" binding:"required,max=16"`
	SubjectID string `json:"subject_id" binding:"required,max=255"`
}

// PasswordResetRequest represents a request to start a password reset
type PasswordResetRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// CompleteResetRequest represents the request to complete a password reset
type CompleteResetRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}
