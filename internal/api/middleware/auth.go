// Package middleware holds the request-level guards: authentication,
// role gating, rate limiting and body shape checks.
package middleware

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/natours/tour-booking-api/internal/core/domain"
	"github.com/natours/tour-booking-api/internal/core/ports"
	"github.com/natours/tour-booking-api/pkg/logger"
)

// userContextKey is where the resolved account lives on the echo context.
const userContextKey = "user"

// cookieName is the session cookie carrying the JWT for browser clients.
const cookieName = "jwt"

// loggedOutValue is the cookie payload written by logout; it is treated
// the same as no cookie at all.
const loggedOutValue = "loggedout"

// CurrentUser returns the account resolved by Protect or IsLoggedIn.
func CurrentUser(c echo.Context) (*domain.User, bool) {
	user, ok := c.Get(userContextKey).(*domain.User)
	return user, ok
}

// Protect admits only requests carrying a valid session token whose
// subject still resolves to a live account that has not rotated its
// password since the token was issued. The resolved user is stored on the
// context for downstream handlers.
func Protect(secret string, users ports.UserLoader) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := extractToken(c)
			if token == "" {
				return fmt.Errorf("%w: you are not logged in, please log in to get access", domain.ErrUnauthorized)
			}

			user, err := resolveUser(c, secret, users, token)
			if err != nil {
				return err
			}

			c.Set(userContextKey, user)
			return next(c)
		}
	}
}

// IsLoggedIn resolves the session cookie for rendered pages but never
// fails the request: an absent or broken token simply leaves the context
// without a user.
func IsLoggedIn(secret string, users ports.UserLoader) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := cookieToken(c)
			if token == "" {
				return next(c)
			}

			user, err := resolveUser(c, secret, users, token)
			if err != nil {
				logger.Get().Debug().Err(err).Msg("view session token not usable")
				return next(c)
			}

			c.Set(userContextKey, user)
			return next(c)
		}
	}
}

// resolveUser validates the token and maps it back to a live account.
func resolveUser(c echo.Context, secret string, users ports.UserLoader, token string) (*domain.User, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("%w: invalid token, please log in again", domain.ErrUnauthorized)
	}

	user, err := users.FindByID(c.Request().Context(), claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("%w: the user belonging to this token no longer exists", domain.ErrUnauthorized)
	}

	issuedAt := time.Time{}
	if claims.IssuedAt != nil {
		issuedAt = claims.IssuedAt.Time
	}
	if user.ChangedPasswordAfter(issuedAt) {
		return nil, fmt.Errorf("%w: password was recently changed, please log in again", domain.ErrUnauthorized)
	}

	return user, nil
}

// extractToken prefers the Authorization bearer header and falls back to
// the session cookie.
func extractToken(c echo.Context) string {
	const prefix = "Bearer "
	auth := c.Request().Header.Get(echo.HeaderAuthorization)
	if len(auth) > len(prefix) && auth[:len(prefix)] == prefix {
		return auth[len(prefix):]
	}
	return cookieToken(c)
}

func cookieToken(c echo.Context) string {
	cookie, err := c.Cookie(cookieName)
	if err != nil || cookie.Value == "" || cookie.Value == loggedOutValue {
		return ""
	}
	return cookie.Value
}
