package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/userhub/account-api/internal/core/ports"
)

// TokenHeader is the request header carrying the identity token.
const TokenHeader = "token"

// Auth verifies the identity token and injects the decoded username into
// context. Missing and invalid tokens are both rejected with 400, keeping
// the response indistinguishable beyond a generic reason.
func Auth(tokens ports.TokenService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := c.Request().Header.Get(TokenHeader)
			if token == "" {
				return echo.NewHTTPError(http.StatusBadRequest, "token is required")
			}

			username, err := tokens.Verify(token)
			if err != nil {
				return echo.NewHTTPError(http.StatusBadRequest, "invalid token")
			}

			c.Set("username", username)
			return next(c)
		}
	}
}
