package auth

import (
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 12

// hashPassword hashes a password using bcrypt
func hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// ValidatePasswordStrength checks a candidate password against the
// policy and returns every violation. Password rules are a UX surface:
// unlike credential failures, the specifics are meant to be shown.
func ValidatePasswordStrength(password string) []string {
	var violations []string

	if len(password) < minPasswordLength {
		violations = append(violations, "Password must be at least 12 characters long")
	}

	var hasUpper, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		case strings.ContainsRune("!@#$%^&*()_+-=[]{};':\"\\|,.<>/?", r):
			hasSpecial = true
		}
	}

	if !hasUpper {
		violations = append(violations, "Password must contain at least one uppercase letter")
	}
	if !hasDigit {
		violations = append(violations, "Password must contain at least one number")
	}
	if !hasSpecial {
		violations = append(violations, "Password must contain at least one special character")
	}

	lower := strings.ToLower(password)
	for _, pattern := range []string{"password", "123456", "qwerty"} {
		if strings.Contains(lower, pattern) {
			violations = append(violations, "Password cannot contain common patterns")
			break
		}
	}

	return violations
}
