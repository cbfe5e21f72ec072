package ports

// TokenService issues and verifies signed, time-limited identity tokens.
type TokenService interface {
	// Issue signs a token carrying the given username.
	Issue(username string) (string, error)
	// Verify checks signature and expiry and returns the carried username.
	// Every failure mode collapses to domain.ErrInvalidToken.
	Verify(token string) (string, error)
}
