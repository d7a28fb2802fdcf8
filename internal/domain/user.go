package domain

import "time"

// User is a login identity. Staff users belong to the admin namespace,
// everyone else to the storefront.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FirstName    string    `json:"firstName,omitempty"`
	LastName     string    `json:"lastName,omitempty"`
	IsStaff      bool      `json:"isStaff"`
	CreatedAt    time.Time `json:"createdAt"`
}

type Session struct {
	ID        string
	UserID    string
	IsStaff   bool
	ExpiresAt time.Time
	CreatedAt time.Time
}
