package handler

import "time"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// messageResponse is the envelope for plain-confirmation responses.
type messageResponse struct {
	Message string `json:"message"`
}

// --- Request / Response types ---

type registerRequest struct {
	Username  string `json:"username"   validate:"required"`
	Password  string `json:"password"   validate:"required,min=8"`
	Email     string `json:"email"      validate:"required,email"`
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name"  validate:"required"`
	Birthdate string `json:"birthdate"  validate:"required"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token string `json:"token"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=8"`
}

type updateUserRequest struct {
	Email     *string `json:"email,omitempty"      validate:"omitempty,email"`
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Birthdate *string `json:"birthdate,omitempty"`
}

type accountResponse struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	Birthdate      time.Time `json:"birthdate"`
	RegisterDate   time.Time `json:"register_date"`
	LastLoginDate  time.Time `json:"last_login_date"`
	Status         string    `json:"status"`
	ProfilePicture string    `json:"profile_picture,omitempty"`
}

type userEnvelope struct {
	Message string          `json:"message"`
	User    accountResponse `json:"user"`
}

// birthdateLayout is the wire format for birthdates.
const birthdateLayout = "2006-01-02"
