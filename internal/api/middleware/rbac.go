package middleware

import (
	"fmt"

	"github.com/labstack/echo/v4"

	"github.com/natours/tour-booking-api/internal/core/domain"
)

// RestrictTo gates a route to the listed roles. It must run after Protect;
// a request without a resolved user is rejected outright. domain.RoleAll
// admits any authenticated identity.
func RestrictTo(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	_, any := allowed[domain.RoleAll]

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, ok := CurrentUser(c)
			if !ok {
				return fmt.Errorf("%w: you are not logged in, please log in to get access", domain.ErrUnauthorized)
			}
			if any {
				return next(c)
			}
			if _, ok := allowed[user.Role]; !ok {
				return fmt.Errorf("%w: you do not have permission to perform this action", domain.ErrForbidden)
			}
			return next(c)
		}
	}
}
