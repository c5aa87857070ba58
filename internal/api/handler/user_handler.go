package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/natours/tour-booking-api/internal/api/crud"
	"github.com/natours/tour-booking-api/internal/core/domain"
	"github.com/natours/tour-booking-api/internal/core/ports"
)

// updateMeWhitelist limits self-service profile edits; role and password
// material stay out of reach.
var updateMeWhitelist = crud.NewWhitelist("name", "email", "photo")

// passwordFields are rejected outright on the profile route so nobody
// sneaks a password change past the dedicated flow.
var passwordFields = []string{"password", "passwordConfirm", "password_hash"}

// UserHandler serves the self-service account routes. Admin user CRUD is
// wired straight from the generic handlers in the router.
type UserHandler struct {
	users ports.UserRepository
	col   ports.Collection[domain.User]
}

func NewUserHandler(users ports.UserRepository, col ports.Collection[domain.User]) *UserHandler {
	return &UserHandler{users: users, col: col}
}

// Me returns the authenticated user's own record.
func (h *UserHandler) Me(c echo.Context) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"status": "success",
		"data":   echo.Map{"user": user},
	})
}

// UpdateMe applies a whitelisted partial update to the caller's own
// profile. Password fields on this route are an error, not a no-op.
func (h *UserHandler) UpdateMe(c echo.Context) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}

	body := ports.Doc{}
	if err := c.Bind(&body); err != nil {
		return fmt.Errorf("%w: invalid request body", domain.ErrValidation)
	}
	for _, field := range passwordFields {
		if _, present := body[field]; present {
			return fmt.Errorf("%w: this route is not for password updates, please use /updateMyPassword", domain.ErrValidation)
		}
	}

	body = updateMeWhitelist.Strip(body)
	if len(body) == 0 {
		return fmt.Errorf("%w: you didn't include any fields to change", domain.ErrValidation)
	}

	updated, err := h.col.UpdateByID(c.Request().Context(), user.ID, body)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"status": "success",
		"data":   echo.Map{"user": updated},
	})
}

// DisableMe soft-deletes the caller's account. The record stays in
// storage but disappears from every default read. DeleteMe is the same
// operation under its older route name; hard deletion is admin-only.
func (h *UserHandler) DisableMe(c echo.Context) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	if err := h.users.SetActive(c.Request().Context(), user.ID, false); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// DeleteMe aliases DisableMe.
func (h *UserHandler) DeleteMe(c echo.Context) error {
	return h.DisableMe(c)
}

// CreateUser is deliberately not implemented; accounts only come into
// existence through signup.
func (h *UserHandler) CreateUser(c echo.Context) error {
	return echo.NewHTTPError(http.StatusInternalServerError, "this route is not defined, please use /signup instead")
}
