package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/userhub/account-api/internal/api/metrics"
	"github.com/userhub/account-api/internal/core/domain"
	"github.com/userhub/account-api/internal/core/ports"
)

// AccountHandler handles HTTP requests for account operations.
type AccountHandler struct {
	service ports.AccountService
	files   ports.FileStore
}

func NewAccountHandler(service ports.AccountService, files ports.FileStore) *AccountHandler {
	return &AccountHandler{service: service, files: files}
}

func toAccountResponse(a *domain.Account) accountResponse {
	return accountResponse{
		ID:             a.ID,
		Username:       a.Username,
		Email:          a.Email,
		FirstName:      a.FirstName,
		LastName:       a.LastName,
		Birthdate:      a.Birthdate,
		RegisterDate:   a.RegisterDate,
		LastLoginDate:  a.LastLoginDate,
		Status:         string(a.Status),
		ProfilePicture: a.ProfilePicture,
	}
}

// Register creates a new account.
//
// @Summary      Register a new user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Registration details"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /register [post]
func (h *AccountHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	birthdate, err := time.Parse(birthdateLayout, req.Birthdate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "birthdate must be formatted as " + birthdateLayout})
	}

	_, err = h.service.Register(c.Request().Context(), ports.RegisterInput{
		Username:  req.Username,
		Password:  req.Password,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Birthdate: birthdate,
	})
	if err != nil {
		metrics.RegistrationsTotal.WithLabelValues("error").Inc()
		switch {
		case errors.Is(err, domain.ErrMissingField),
			errors.Is(err, domain.ErrWeakPassword),
			errors.Is(err, domain.ErrAlreadyExists):
			return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		}
		return err
	}

	metrics.RegistrationsTotal.WithLabelValues("ok").Inc()
	return c.JSON(http.StatusOK, messageResponse{Message: "user registered"})
}

// Login authenticates credentials and returns an identity token.
//
// @Summary      Login
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  errorResponse
// @Failure      429   {object}  errorResponse
// @Router       /login [post]
func (h *AccountHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	token, err := h.service.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		switch {
		case errors.Is(err, domain.ErrMissingField),
			errors.Is(err, domain.ErrAccountNotFound),
			errors.Is(err, domain.ErrInvalidCredentials):
			return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		case errors.Is(err, domain.ErrTooManyAttempts):
			return c.JSON(http.StatusTooManyRequests, errorResponse{Error: err.Error()})
		}
		return err
	}

	metrics.LoginsTotal.WithLabelValues("ok").Inc()
	return c.JSON(http.StatusOK, loginResponse{Token: token})
}

// ChangePassword replaces the authenticated account's password.
//
// @Summary      Change password
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        token  header    string                 true  "Identity token"
// @Param        body   body      changePasswordRequest  true  "Old and new passwords"
// @Success      200    {object}  messageResponse
// @Failure      400    {object}  errorResponse
// @Router       /change-password [put]
func (h *AccountHandler) ChangePassword(c echo.Context) error {
	username, err := ctxUsername(c)
	if err != nil {
		return err
	}

	var req changePasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	err = h.service.ChangePassword(c.Request().Context(), username, req.OldPassword, req.NewPassword)
	if err != nil {
		metrics.PasswordChangesTotal.WithLabelValues("error").Inc()
		switch {
		case errors.Is(err, domain.ErrMissingField),
			errors.Is(err, domain.ErrAccountNotFound),
			errors.Is(err, domain.ErrPasswordMismatch):
			return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		}
		return err
	}

	metrics.PasswordChangesTotal.WithLabelValues("ok").Inc()
	return c.JSON(http.StatusOK, messageResponse{Message: "password changed"})
}

// UpdateProfilePicture stores an uploaded picture and associates it with the
// target account.
//
// @Summary      Update profile picture
// @Tags         users
// @Accept       multipart/form-data
// @Produce      json
// @Param        token  header    string  true  "Identity token"
// @Param        id     path      string  true  "Account id"
// @Param        image  formData  file    true  "Profile picture (JPEG/PNG, max 5 MiB)"
// @Success      200    {object}  userEnvelope
// @Failure      400    {object}  errorResponse
// @Failure      403    {object}  errorResponse
// @Failure      404    {object}  errorResponse
// @Router       /user/{id}/photo [put]
func (h *AccountHandler) UpdateProfilePicture(c echo.Context) error {
	username, err := ctxUsername(c)
	if err != nil {
		return err
	}
	targetID := c.Param("id")

	fileHeader, err := c.FormFile("image")
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: domain.ErrNoFile.Error()})
	}

	src, err := fileHeader.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	picturePath, err := h.files.Save(
		c.Request().Context(),
		fileHeader.Filename,
		fileHeader.Header.Get(echo.HeaderContentType),
		fileHeader.Size,
		src,
	)
	if err != nil {
		metrics.ProfileUploadsTotal.WithLabelValues("error").Inc()
		switch {
		case errors.Is(err, domain.ErrUnsupportedFile), errors.Is(err, domain.ErrFileTooLarge):
			return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		}
		return err
	}

	account, err := h.service.UpdateProfilePicture(c.Request().Context(), username, targetID, picturePath)
	if err != nil {
		metrics.ProfileUploadsTotal.WithLabelValues("error").Inc()
		return h.mapOwnershipError(c, err)
	}

	metrics.ProfileUploadsTotal.WithLabelValues("ok").Inc()
	return c.JSON(http.StatusOK, userEnvelope{Message: "profile picture updated", User: toAccountResponse(account)})
}

// UpdateUser applies partial profile updates to the target account.
//
// @Summary      Update user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        token  header    string             true  "Identity token"
// @Param        id     path      string             true  "Account id"
// @Param        body   body      updateUserRequest  true  "Fields to update"
// @Success      200    {object}  userEnvelope
// @Failure      400    {object}  errorResponse
// @Failure      403    {object}  errorResponse
// @Failure      404    {object}  errorResponse
// @Router       /user/{id} [put]
func (h *AccountHandler) UpdateUser(c echo.Context) error {
	username, err := ctxUsername(c)
	if err != nil {
		return err
	}
	targetID := c.Param("id")

	var req updateUserRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	update := ports.AccountUpdate{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}
	if req.Birthdate != nil {
		birthdate, err := time.Parse(birthdateLayout, *req.Birthdate)
		if err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "birthdate must be formatted as " + birthdateLayout})
		}
		update.Birthdate = &birthdate
	}

	account, err := h.service.UpdateAccount(c.Request().Context(), username, targetID, update)
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		}
		return h.mapOwnershipError(c, err)
	}

	return c.JSON(http.StatusOK, userEnvelope{Message: "user updated", User: toAccountResponse(account)})
}

// DeleteUser removes the target account.
//
// @Summary      Delete user
// @Tags         users
// @Produce      json
// @Param        token  header    string  true  "Identity token"
// @Param        id     path      string  true  "Account id"
// @Success      200    {object}  messageResponse
// @Failure      403    {object}  errorResponse
// @Failure      404    {object}  errorResponse
// @Router       /user/{id} [delete]
func (h *AccountHandler) DeleteUser(c echo.Context) error {
	username, err := ctxUsername(c)
	if err != nil {
		return err
	}
	targetID := c.Param("id")

	if err := h.service.DeleteAccount(c.Request().Context(), username, targetID); err != nil {
		return h.mapOwnershipError(c, err)
	}

	return c.JSON(http.StatusOK, messageResponse{Message: "user deleted"})
}

// mapOwnershipError renders the shared failure modes of owner-gated operations.
func (h *AccountHandler) mapOwnershipError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrAccessDenied):
		return c.JSON(http.StatusForbidden, errorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrAccountNotFound):
		return c.JSON(http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrMissingField):
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}
	return err
}
