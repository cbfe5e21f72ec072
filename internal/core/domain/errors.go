package domain

import "errors"

var (
	ErrMissingField       = errors.New("missing required field")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrAlreadyExists      = errors.New("user already exists")
	ErrAccountNotFound    = errors.New("user not found")
	ErrInvalidCredentials = errors.New("user/password not match")
	ErrInvalidToken       = errors.New("invalid token")
	ErrPasswordMismatch   = errors.New("old password not match")
	ErrAccessDenied       = errors.New("access denied")
	ErrNoFile             = errors.New("no file uploaded")
	ErrUnsupportedFile    = errors.New("invalid file type")
	ErrFileTooLarge       = errors.New("file too large")
	ErrTooManyAttempts    = errors.New("too many login attempts")
)
