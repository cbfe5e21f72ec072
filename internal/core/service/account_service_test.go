package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/userhub/account-api/internal/core/domain"
	"github.com/userhub/account-api/internal/core/ports"
)

// testHasher runs bcrypt inline at MinCost to keep tests fast.
type testHasher struct{}

func (testHasher) Hash(_ context.Context, plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.MinCost)
	return string(hash), err
}

func (testHasher) Verify(_ context.Context, plaintext, hash string) (bool, error) {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil, nil
}

type stubLimiter struct {
	allowed bool
	resets  int
}

func (l *stubLimiter) Allow(context.Context, string) (bool, error) { return l.allowed, nil }
func (l *stubLimiter) Reset(context.Context, string) error {
	l.resets++
	return nil
}

type stubAccountRepo struct {
	accounts map[string]*domain.Account // keyed by username
	nextID   int
}

func newStubAccountRepo() *stubAccountRepo {
	return &stubAccountRepo{accounts: make(map[string]*domain.Account)}
}

func cloneAccount(a *domain.Account) *domain.Account {
	if a == nil {
		return nil
	}
	clone := *a
	return &clone
}

func (r *stubAccountRepo) Create(_ context.Context, account *domain.Account) (*domain.Account, error) {
	if _, exists := r.accounts[account.Username]; exists {
		return nil, domain.ErrAlreadyExists
	}
	for _, a := range r.accounts {
		if a.Email == account.Email {
			return nil, domain.ErrAlreadyExists
		}
	}
	r.nextID++
	created := cloneAccount(account)
	created.ID = fmt.Sprintf("id-%d", r.nextID)
	r.accounts[created.Username] = cloneAccount(created)
	return created, nil
}

func (r *stubAccountRepo) FindByUsername(_ context.Context, username string) (*domain.Account, error) {
	a, ok := r.accounts[username]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return cloneAccount(a), nil
}

func (r *stubAccountRepo) FindByID(_ context.Context, id string) (*domain.Account, error) {
	for _, a := range r.accounts {
		if a.ID == id {
			return cloneAccount(a), nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (r *stubAccountRepo) UpdatePassword(_ context.Context, username, passwordHash string) error {
	a, ok := r.accounts[username]
	if !ok {
		return domain.ErrAccountNotFound
	}
	a.PasswordHash = passwordHash
	return nil
}

func (r *stubAccountRepo) UpdateLastLogin(_ context.Context, username string, at time.Time) error {
	a, ok := r.accounts[username]
	if !ok {
		return domain.ErrAccountNotFound
	}
	a.LastLoginDate = at
	return nil
}

func (r *stubAccountRepo) UpdateProfilePicture(_ context.Context, id, picturePath string) (*domain.Account, error) {
	for _, a := range r.accounts {
		if a.ID == id {
			a.ProfilePicture = picturePath
			return cloneAccount(a), nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (r *stubAccountRepo) Update(_ context.Context, id string, update ports.AccountUpdate) (*domain.Account, error) {
	for _, a := range r.accounts {
		if a.ID == id {
			if update.Email != nil {
				a.Email = *update.Email
			}
			if update.FirstName != nil {
				a.FirstName = *update.FirstName
			}
			if update.LastName != nil {
				a.LastName = *update.LastName
			}
			if update.Birthdate != nil {
				a.Birthdate = *update.Birthdate
			}
			return cloneAccount(a), nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (r *stubAccountRepo) Delete(_ context.Context, id string) error {
	for username, a := range r.accounts {
		if a.ID == id {
			delete(r.accounts, username)
			return nil
		}
	}
	return domain.ErrAccountNotFound
}

func newTestAccountService(t *testing.T) (*AccountService, *stubAccountRepo, *TokenService) {
	t.Helper()
	repo := newStubAccountRepo()
	tokens := newTestTokenService(t, time.Hour)
	svc := NewAccountService(repo, testHasher{}, tokens, nil, zerolog.Nop())
	return svc, repo, tokens
}

func registerInput(username string) ports.RegisterInput {
	return ports.RegisterInput{
		Username:  username,
		Password:  "password1",
		Email:     username + "@example.com",
		FirstName: "Test",
		LastName:  "User",
		Birthdate: time.Date(1990, 6, 15, 0, 0, 0, 0, time.UTC),
	}
}

func TestAccountService_Register_Success(t *testing.T) {
	svc, _, _ := newTestAccountService(t)

	account, err := svc.Register(context.Background(), registerInput("alice"))
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if account.ID == "" {
		t.Fatalf("expected assigned id")
	}
	if account.PasswordHash == "password1" {
		t.Fatalf("expected password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte("password1")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
	if account.Status != domain.StatusActive {
		t.Fatalf("expected active status, got %s", account.Status)
	}
	if account.RegisterDate.IsZero() {
		t.Fatalf("expected register date to be set")
	}
}

func TestAccountService_Register_MissingFields(t *testing.T) {
	svc, _, _ := newTestAccountService(t)

	cases := map[string]func(*ports.RegisterInput){
		"username":   func(in *ports.RegisterInput) { in.Username = "" },
		"password":   func(in *ports.RegisterInput) { in.Password = "" },
		"email":      func(in *ports.RegisterInput) { in.Email = "" },
		"first_name": func(in *ports.RegisterInput) { in.FirstName = "" },
		"last_name":  func(in *ports.RegisterInput) { in.LastName = "" },
		"birthdate":  func(in *ports.RegisterInput) { in.Birthdate = time.Time{} },
	}
	for name, blank := range cases {
		input := registerInput("alice")
		blank(&input)
		if _, err := svc.Register(context.Background(), input); err != domain.ErrMissingField {
			t.Fatalf("%s: expected ErrMissingField, got %v", name, err)
		}
	}
}

func TestAccountService_Register_WeakPassword(t *testing.T) {
	svc, _, _ := newTestAccountService(t)

	input := registerInput("alice")
	input.Password = "short1"
	if _, err := svc.Register(context.Background(), input); err != domain.ErrWeakPassword {
		t.Fatalf("expected ErrWeakPassword, got %v", err)
	}
}

func TestAccountService_Register_Duplicate(t *testing.T) {
	svc, repo, _ := newTestAccountService(t)

	if _, err := svc.Register(context.Background(), registerInput("bob")); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if _, err := svc.Register(context.Background(), registerInput("bob")); err != domain.ErrAlreadyExists {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
	if len(repo.accounts) != 1 {
		t.Fatalf("expected account count to stay at 1, got %d", len(repo.accounts))
	}
}

func TestAccountService_Login_Success(t *testing.T) {
	svc, repo, tokens := newTestAccountService(t)

	if _, err := svc.Register(context.Background(), registerInput("carol")); err != nil {
		t.Fatalf("register: %v", err)
	}

	token, err := svc.Login(context.Background(), "carol", "password1")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	username, err := tokens.Verify(token)
	if err != nil {
		t.Fatalf("token verify: %v", err)
	}
	if username != "carol" {
		t.Fatalf("expected token for carol, got %q", username)
	}
	if repo.accounts["carol"].LastLoginDate.IsZero() {
		t.Fatalf("expected last login date to be stamped")
	}
}

func TestAccountService_Login_UserNotFound(t *testing.T) {
	svc, _, _ := newTestAccountService(t)

	if _, err := svc.Login(context.Background(), "ghost", "password1"); err != domain.ErrAccountNotFound {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestAccountService_Login_WrongPassword(t *testing.T) {
	svc, _, _ := newTestAccountService(t)

	_, _ = svc.Register(context.Background(), registerInput("dave"))
	if _, err := svc.Login(context.Background(), "dave", "wrongpass"); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAccountService_Login_Throttled(t *testing.T) {
	repo := newStubAccountRepo()
	tokens := newTestTokenService(t, time.Hour)
	limiter := &stubLimiter{allowed: false}
	svc := NewAccountService(repo, testHasher{}, tokens, limiter, zerolog.Nop())

	_, _ = svc.Register(context.Background(), registerInput("eve"))
	if _, err := svc.Login(context.Background(), "eve", "password1"); err != domain.ErrTooManyAttempts {
		t.Fatalf("expected ErrTooManyAttempts, got %v", err)
	}
}

func TestAccountService_Login_ResetsLimiter(t *testing.T) {
	repo := newStubAccountRepo()
	tokens := newTestTokenService(t, time.Hour)
	limiter := &stubLimiter{allowed: true}
	svc := NewAccountService(repo, testHasher{}, tokens, limiter, zerolog.Nop())

	_, _ = svc.Register(context.Background(), registerInput("fred"))
	if _, err := svc.Login(context.Background(), "fred", "password1"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if limiter.resets != 1 {
		t.Fatalf("expected limiter reset once, got %d", limiter.resets)
	}
}

func TestAccountService_ChangePassword(t *testing.T) {
	svc, _, _ := newTestAccountService(t)

	_, _ = svc.Register(context.Background(), registerInput("grace"))

	if err := svc.ChangePassword(context.Background(), "grace", "wrongpass", "password2new"); err != domain.ErrPasswordMismatch {
		t.Fatalf("expected ErrPasswordMismatch, got %v", err)
	}
	if err := svc.ChangePassword(context.Background(), "", "password1", "password2new"); err != domain.ErrMissingField {
		t.Fatalf("expected ErrMissingField, got %v", err)
	}
	if err := svc.ChangePassword(context.Background(), "ghost", "password1", "password2new"); err != domain.ErrAccountNotFound {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}

	if err := svc.ChangePassword(context.Background(), "grace", "password1", "password2new"); err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}
	if _, err := svc.Login(context.Background(), "grace", "password1"); err != domain.ErrInvalidCredentials {
		t.Fatalf("old password should no longer verify, got %v", err)
	}
	if _, err := svc.Login(context.Background(), "grace", "password2new"); err != nil {
		t.Fatalf("new password should verify, got %v", err)
	}
}

func TestAccountService_UpdateAccount_AccessDenied(t *testing.T) {
	svc, repo, _ := newTestAccountService(t)

	_, _ = svc.Register(context.Background(), registerInput("henry"))
	victim, _ := svc.Register(context.Background(), registerInput("ivy"))
	before := cloneAccount(repo.accounts["ivy"])

	email := "new@example.com"
	if _, err := svc.UpdateAccount(context.Background(), "henry", victim.ID, ports.AccountUpdate{Email: &email}); err != domain.ErrAccessDenied {
		t.Fatalf("expected ErrAccessDenied, got %v", err)
	}
	if repo.accounts["ivy"].Email != before.Email {
		t.Fatalf("target record must remain unmodified")
	}
}

func TestAccountService_UpdateAccount_Owner(t *testing.T) {
	svc, _, _ := newTestAccountService(t)

	created, _ := svc.Register(context.Background(), registerInput("jack"))
	first := "Jacques"
	updated, err := svc.UpdateAccount(context.Background(), "jack", created.ID, ports.AccountUpdate{FirstName: &first})
	if err != nil {
		t.Fatalf("UpdateAccount: %v", err)
	}
	if updated.FirstName != "Jacques" {
		t.Fatalf("expected updated first name, got %q", updated.FirstName)
	}
}

func TestAccountService_DeleteAccount(t *testing.T) {
	svc, repo, _ := newTestAccountService(t)

	_, _ = svc.Register(context.Background(), registerInput("kate"))
	victim, _ := svc.Register(context.Background(), registerInput("liam"))

	if err := svc.DeleteAccount(context.Background(), "kate", victim.ID); err != domain.ErrAccessDenied {
		t.Fatalf("expected ErrAccessDenied, got %v", err)
	}
	if _, ok := repo.accounts["liam"]; !ok {
		t.Fatalf("target record must survive denied delete")
	}

	if err := svc.DeleteAccount(context.Background(), "liam", victim.ID); err != nil {
		t.Fatalf("DeleteAccount: %v", err)
	}
	if _, ok := repo.accounts["liam"]; ok {
		t.Fatalf("expected account to be deleted")
	}
}

func TestAccountService_UpdateProfilePicture_OwnerOnly(t *testing.T) {
	svc, _, _ := newTestAccountService(t)

	created, _ := svc.Register(context.Background(), registerInput("mona"))
	_, _ = svc.Register(context.Background(), registerInput("nick"))

	if _, err := svc.UpdateProfilePicture(context.Background(), "nick", created.ID, "uploads/x.png"); err != domain.ErrAccessDenied {
		t.Fatalf("expected ErrAccessDenied, got %v", err)
	}

	updated, err := svc.UpdateProfilePicture(context.Background(), "mona", created.ID, "uploads/x.png")
	if err != nil {
		t.Fatalf("UpdateProfilePicture: %v", err)
	}
	if updated.ProfilePicture != "uploads/x.png" {
		t.Fatalf("expected picture reference, got %q", updated.ProfilePicture)
	}
}

func TestAccountService_EndToEnd(t *testing.T) {
	svc, _, tokens := newTestAccountService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, registerInput("alice")); err != nil {
		t.Fatalf("register: %v", err)
	}

	token, err := svc.Login(ctx, "alice", "password1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	username, err := tokens.Verify(token)
	if err != nil || username != "alice" {
		t.Fatalf("token verify: %q %v", username, err)
	}

	if err := svc.ChangePassword(ctx, username, "password1", "password2new"); err != nil {
		t.Fatalf("change password: %v", err)
	}
	if _, err := svc.Login(ctx, "alice", "password1"); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected old password rejection, got %v", err)
	}
	if _, err := svc.Login(ctx, "alice", "password2new"); err != nil {
		t.Fatalf("login with new password: %v", err)
	}
}
