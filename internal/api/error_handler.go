// Package api wires handlers, middleware and views into the HTTP server.
package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/natours/tour-booking-api/internal/core/domain"
	"github.com/natours/tour-booking-api/pkg/logger"
)

// genericMessage replaces non-operational error details in production.
const genericMessage = "something went very wrong!"

// NewErrorHandler builds the single normalization point for every error
// escaping a handler or middleware. API paths answer JSON, everything else
// renders the error page. In production, only deliberately raised errors
// expose their message; unexpected ones are logged and masked.
func NewErrorHandler(production bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, message := classify(err)

		if status >= http.StatusInternalServerError {
			logger.Get().Error().Err(err).
				Str("method", c.Request().Method).
				Str("path", c.Request().URL.Path).
				Msg("unhandled error")
		}
		if production && status >= http.StatusInternalServerError && !domain.Operational(err) {
			message = genericMessage
		}

		if strings.HasPrefix(c.Request().URL.Path, "/api") {
			body := echo.Map{
				"status":  statusWord(status),
				"message": message,
			}
			if !production {
				body["error"] = err.Error()
			}
			if err := c.JSON(status, body); err != nil {
				logger.Get().Error().Err(err).Msg("writing error response")
			}
			return
		}

		if message == genericMessage {
			message = "Please try again later."
		}
		if err := c.Render(status, "error", echo.Map{
			"Title":   "Something went wrong!",
			"Message": message,
		}); err != nil {
			logger.Get().Error().Err(err).Msg("rendering error page")
			_ = c.String(status, message)
		}
	}
}

// classify maps an error to its response status and client message.
func classify(err error) (int, string) {
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		if msg, ok := httpErr.Message.(string); ok {
			return httpErr.Code, msg
		}
		return httpErr.Code, http.StatusText(httpErr.Code)
	}

	switch {
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrDuplicate),
		errors.Is(err, domain.ErrInvalidID):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, err.Error()
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, err.Error()
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, err.Error()
	}
	return http.StatusInternalServerError, err.Error()
}

// statusWord follows the fail/error convention: fail for client faults,
// error for server faults.
func statusWord(status int) string {
	if status < http.StatusInternalServerError {
		return "fail"
	}
	return "error"
}
