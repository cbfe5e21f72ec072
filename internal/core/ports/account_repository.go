package ports

import (
	"context"
	"time"

	"github.com/userhub/account-api/internal/core/domain"
)

// AccountUpdate carries the partial-field changes applied by UpdateAccount.
// Nil pointers mean "leave unchanged".
type AccountUpdate struct {
	Email     *string
	FirstName *string
	LastName  *string
	Birthdate *time.Time
}

// AccountRepository defines the persistence contract for accounts.
// Implementations must enforce uniqueness on username and email and
// translate driver-level failures into domain errors.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) (*domain.Account, error)
	FindByUsername(ctx context.Context, username string) (*domain.Account, error)
	FindByID(ctx context.Context, id string) (*domain.Account, error)
	UpdatePassword(ctx context.Context, username, passwordHash string) error
	UpdateLastLogin(ctx context.Context, username string, at time.Time) error
	UpdateProfilePicture(ctx context.Context, id, picturePath string) (*domain.Account, error)
	Update(ctx context.Context, id string, update AccountUpdate) (*domain.Account, error)
	Delete(ctx context.Context, id string) error
}
