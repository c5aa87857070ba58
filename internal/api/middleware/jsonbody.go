package middleware

import (
	"bufio"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// RequireJSONBody rejects API write requests whose body does not start
// with a JSON object or array. It peeks the first non-space byte and puts
// the buffered reader back on the request.
func RequireJSONBody() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			switch req.Method {
			case http.MethodPost, http.MethodPatch, http.MethodPut:
			default:
				return next(c)
			}
			if req.ContentLength == 0 || req.Body == nil {
				return next(c)
			}
			// Raw webhook payloads carry their own signature check and
			// must not be consumed here.
			if strings.Contains(req.Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
				buffered := bufio.NewReader(req.Body)
				req.Body = readCloser{buffered, req.Body}
				first, err := firstNonSpace(buffered)
				if err != nil && err != io.EOF {
					return err
				}
				if err == nil && first != '{' && first != '[' {
					return echo.NewHTTPError(http.StatusBadRequest, "request body must be a JSON object or array")
				}
			}
			return next(c)
		}
	}
}

func firstNonSpace(r *bufio.Reader) (byte, error) {
	for i := 1; ; i++ {
		peeked, err := r.Peek(i)
		if err != nil {
			return 0, err
		}
		switch peeked[i-1] {
		case ' ', '\t', '\r', '\n':
			continue
		default:
			return peeked[i-1], nil
		}
	}
}

type readCloser struct {
	io.Reader
	io.Closer
}
