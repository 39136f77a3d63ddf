package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a registered budget-tracker account
type User struct {
	ID                     uuid.UUID `json:"id"`
	Email                  string    `json:"email"`
	HashedPassword         string    `json:"-"`
	FirstName              string    `json:"first_name"`
	MiddleName             *string   `json:"middle_name,omitempty"`
	LastName               string    `json:"last_name"`
	AllowNotificationEmail bool      `json:"allow_notification_email"`
	BudgetCoin             int64     `json:"budget_coin"`
	CreatedAt              time.Time `json:"created_at"`
	UpdatedAt              time.Time `json:"updated_at"`
}

// UserProfile is the minimal view of a user handed back to authenticated callers
type UserProfile struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
}

// Profile returns the minimal profile view of the user
func (u *User) Profile() UserProfile {
	return UserProfile{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}
