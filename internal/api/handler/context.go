package handler

import (
	"fmt"

	"github.com/labstack/echo/v4"

	"github.com/natours/tour-booking-api/internal/api/middleware"
	"github.com/natours/tour-booking-api/internal/core/domain"
)

// requireUser extracts the account injected by the Protect middleware and
// fast-fails when it is missing, which means the route was wired without
// the guard.
func requireUser(c echo.Context) (*domain.User, error) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return nil, fmt.Errorf("%w: you are not logged in, please log in to get access", domain.ErrUnauthorized)
	}
	return user, nil
}
