package domain

import "time"

// AccountStatus represents the lifecycle state of an account.
type AccountStatus string

const (
	StatusActive    AccountStatus = "active"
	StatusSuspended AccountStatus = "suspended"
	StatusDeleted   AccountStatus = "deleted"
)

// Account is the core aggregate root.
type Account struct {
	ID             string        `json:"id"`
	Username       string        `json:"username"`
	Email          string        `json:"email"`
	PasswordHash   string        `json:"-"`
	FirstName      string        `json:"first_name"`
	LastName       string        `json:"last_name"`
	Birthdate      time.Time     `json:"birthdate"`
	RegisterDate   time.Time     `json:"register_date"`
	LastLoginDate  time.Time     `json:"last_login_date"`
	Status         AccountStatus `json:"status"`
	ProfilePicture string        `json:"profile_picture,omitempty"`
}
