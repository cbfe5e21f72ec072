package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/userhub/account-api/internal/core/domain"
)

// Internal verification outcomes. Callers outside this package only ever see
// domain.ErrInvalidToken so that responses cannot be used as an oracle for
// why a token was rejected.
var (
	errTokenExpired      = errors.New("token expired")
	errTokenMalformed    = errors.New("token malformed")
	errTokenBadSignature = errors.New("token signature invalid")
)

// TokenService issues and verifies HS256-signed identity tokens.
type TokenService struct {
	secret   []byte
	tokenTTL time.Duration
	logger   zerolog.Logger
}

// NewTokenService returns a TokenService signing with secret. The secret must
// be non-empty; startup is expected to fail before this is ever called with
// an empty one.
func NewTokenService(secret string, tokenTTL time.Duration, logger zerolog.Logger) (*TokenService, error) {
	if secret == "" {
		return nil, errors.New("token service: signing secret is not set")
	}
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &TokenService{secret: []byte(secret), tokenTTL: tokenTTL, logger: logger}, nil
}

// Issue signs a payload {username, iat} expiring tokenTTL after issuance.
func (s *TokenService) Issue(username string) (string, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"username": username,
		"iat":      now.Unix(),
		"exp":      now.Add(s.tokenTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.secret)
}

// Verify checks signature and expiry and returns the carried username.
func (s *TokenService) Verify(token string) (string, error) {
	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return s.secret, nil
	})
	if err != nil || !tkn.Valid {
		s.logger.Debug().Err(classifyTokenError(err)).Msg("token rejected")
		return "", domain.ErrInvalidToken
	}

	username, _ := claims["username"].(string)
	if username == "" {
		s.logger.Debug().Msg("token rejected: missing username claim")
		return "", domain.ErrInvalidToken
	}
	return username, nil
}

// classifyTokenError tags the rejection reason for internal logging only.
func classifyTokenError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return errTokenExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return errTokenBadSignature
	case err != nil:
		return errTokenMalformed
	default:
		return errTokenMalformed
	}
}
