package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/userhub/account-api/internal/core/domain"
	"github.com/userhub/account-api/internal/core/ports"
)

const minPasswordLength = 8

// AccountService implements registration, authentication and profile
// maintenance on top of the account store, the credential hasher and the
// token service.
type AccountService struct {
	repo    ports.AccountRepository
	hasher  ports.CredentialHasher
	tokens  ports.TokenService
	limiter ports.LoginLimiter
	logger  zerolog.Logger
}

func NewAccountService(repo ports.AccountRepository, hasher ports.CredentialHasher, tokens ports.TokenService, limiter ports.LoginLimiter, logger zerolog.Logger) *AccountService {
	return &AccountService{repo: repo, hasher: hasher, tokens: tokens, limiter: limiter, logger: logger}
}

// Register validates the input, hashes the password and creates the account.
// The store's uniqueness constraint on username and email is the single
// source of truth for duplicates.
func (s *AccountService) Register(ctx context.Context, input ports.RegisterInput) (*domain.Account, error) {
	if input.Username == "" || input.Password == "" || input.Email == "" ||
		input.FirstName == "" || input.LastName == "" || input.Birthdate.IsZero() {
		return nil, domain.ErrMissingField
	}
	if len(input.Password) < minPasswordLength {
		return nil, domain.ErrWeakPassword
	}

	hash, err := s.hasher.Hash(ctx, input.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	account := &domain.Account{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hash,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Birthdate:    input.Birthdate,
		RegisterDate: now,
		Status:       domain.StatusActive,
	}

	created, err := s.repo.Create(ctx, account)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("username", created.Username).Msg("account registered")
	return created, nil
}

// Login authenticates the credentials and issues an identity token.
func (s *AccountService) Login(ctx context.Context, username, password string) (string, error) {
	if username == "" || password == "" {
		return "", domain.ErrMissingField
	}

	if s.limiter != nil {
		allowed, err := s.limiter.Allow(ctx, username)
		if err != nil {
			// Throttling is advisory; never turn a limiter outage into a login outage.
			s.logger.Warn().Err(err).Msg("login limiter unavailable")
		} else if !allowed {
			return "", domain.ErrTooManyAttempts
		}
	}

	account, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return "", err
	}

	ok, err := s.hasher.Verify(ctx, password, account.PasswordHash)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(account.Username)
	if err != nil {
		return "", err
	}

	if err := s.repo.UpdateLastLogin(ctx, account.Username, time.Now().UTC()); err != nil {
		s.logger.Warn().Err(err).Str("username", account.Username).Msg("last login update failed")
	}
	if s.limiter != nil {
		if err := s.limiter.Reset(ctx, username); err != nil {
			s.logger.Warn().Err(err).Msg("login limiter reset failed")
		}
	}

	return token, nil
}

// ChangePassword verifies the old password for the authenticated account and
// persists a hash of the new one.
func (s *AccountService) ChangePassword(ctx context.Context, username, oldPassword, newPassword string) error {
	if username == "" || oldPassword == "" || newPassword == "" {
		return domain.ErrMissingField
	}

	account, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return err
	}

	ok, err := s.hasher.Verify(ctx, oldPassword, account.PasswordHash)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrPasswordMismatch
	}

	hash, err := s.hasher.Hash(ctx, newPassword)
	if err != nil {
		return err
	}

	if err := s.repo.UpdatePassword(ctx, account.Username, hash); err != nil {
		return err
	}

	s.logger.Info().Str("username", account.Username).Msg("password changed")
	return nil
}

// UpdateProfilePicture points the target account at a newly stored picture.
func (s *AccountService) UpdateProfilePicture(ctx context.Context, username, targetID, picturePath string) (*domain.Account, error) {
	if username == "" || targetID == "" || picturePath == "" {
		return nil, domain.ErrMissingField
	}
	if err := s.authorizeOwner(ctx, username, targetID); err != nil {
		return nil, err
	}
	return s.repo.UpdateProfilePicture(ctx, targetID, picturePath)
}

// UpdateAccount applies partial profile updates to the target account.
func (s *AccountService) UpdateAccount(ctx context.Context, username, targetID string, update ports.AccountUpdate) (*domain.Account, error) {
	if username == "" || targetID == "" {
		return nil, domain.ErrMissingField
	}
	if err := s.authorizeOwner(ctx, username, targetID); err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, targetID, update)
}

// DeleteAccount removes the target account.
func (s *AccountService) DeleteAccount(ctx context.Context, username, targetID string) error {
	if username == "" || targetID == "" {
		return domain.ErrMissingField
	}
	if err := s.authorizeOwner(ctx, username, targetID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, targetID); err != nil {
		return err
	}
	s.logger.Info().Str("account_id", targetID).Msg("account deleted")
	return nil
}

// authorizeOwner enforces that the identity decoded from the token owns the
// target resource. Applied uniformly to every mutating operation.
func (s *AccountService) authorizeOwner(ctx context.Context, username, targetID string) error {
	account, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return err
	}
	if account.ID != targetID {
		return domain.ErrAccessDenied
	}
	return nil
}
