package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ctxUsername extracts the identity injected by the Auth middleware and
// fast-fails before any service call: a missing username means the
// middleware did not run or the token carried no identity.
func ctxUsername(c echo.Context) (string, error) {
	username, _ := c.Get("username").(string)
	if username == "" {
		return "", echo.NewHTTPError(http.StatusBadRequest, "invalid token")
	}
	return username, nil
}
