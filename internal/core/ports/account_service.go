package ports

import (
	"context"
	"time"

	"github.com/userhub/account-api/internal/core/domain"
)

// RegisterInput carries the fields required to create an account.
type RegisterInput struct {
	Username  string
	Password  string
	Email     string
	FirstName string
	LastName  string
	Birthdate time.Time
}

// AccountService orchestrates registration, authentication and profile
// maintenance. The username argument on mutating operations is the identity
// decoded from the caller's token by the auth middleware.
type AccountService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.Account, error)
	Login(ctx context.Context, username, password string) (string, error)
	ChangePassword(ctx context.Context, username, oldPassword, newPassword string) error
	UpdateProfilePicture(ctx context.Context, username, targetID, picturePath string) (*domain.Account, error)
	UpdateAccount(ctx context.Context, username, targetID string, update AccountUpdate) (*domain.Account, error)
	DeleteAccount(ctx context.Context, username, targetID string) error
}
