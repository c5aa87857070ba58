package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/natours/tour-booking-api/internal/core/domain"
)

const testSecret = "test-secret"

type stubLoader struct {
	user *domain.User
	err  error
}

func (s *stubLoader) FindByID(context.Context, string) (*domain.User, error) {
	return s.user, s.err
}

func signTestToken(t *testing.T, subject string, issuedAt time.Time) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(issuedAt.Add(time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	return token
}

func protectedContext(token, via string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	switch via {
	case "header":
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	case "cookie":
		req.AddCookie(&http.Cookie{Name: "jwt", Value: token})
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func okNext(c echo.Context) error { return c.NoContent(http.StatusOK) }

func TestProtect_NoToken(t *testing.T) {
	mw := Protect(testSecret, &stubLoader{})
	c, _ := protectedContext("", "")

	err := mw(okNext)(c)
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestProtect_ValidHeaderToken(t *testing.T) {
	user := &domain.User{ID: "u1", Role: domain.RoleUser}
	mw := Protect(testSecret, &stubLoader{user: user})

	c, rec := protectedContext(signTestToken(t, "u1", time.Now()), "header")
	if err := mw(okNext)(c); err != nil {
		t.Fatalf("middleware error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	got, ok := CurrentUser(c)
	if !ok || got.ID != "u1" {
		t.Fatalf("user not stored on context: %v", got)
	}
}

func TestProtect_ValidCookieToken(t *testing.T) {
	mw := Protect(testSecret, &stubLoader{user: &domain.User{ID: "u1"}})

	c, _ := protectedContext(signTestToken(t, "u1", time.Now()), "cookie")
	if err := mw(okNext)(c); err != nil {
		t.Fatalf("middleware error: %v", err)
	}
}

func TestProtect_LoggedOutCookie(t *testing.T) {
	mw := Protect(testSecret, &stubLoader{user: &domain.User{ID: "u1"}})

	c, _ := protectedContext("loggedout", "cookie")
	err := mw(okNext)(c)
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestProtect_WrongSecret(t *testing.T) {
	claims := jwt.RegisteredClaims{Subject: "u1", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))}
	token, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("other-secret"))

	mw := Protect(testSecret, &stubLoader{user: &domain.User{ID: "u1"}})
	c, _ := protectedContext(token, "header")

	err := mw(okNext)(c)
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestProtect_ExpiredToken(t *testing.T) {
	claims := jwt.RegisteredClaims{
		Subject:   "u1",
		IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}

	mw := Protect(testSecret, &stubLoader{user: &domain.User{ID: "u1"}})
	c, _ := protectedContext(token, "header")

	if err := mw(okNext)(c); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized for expired token, got %v", err)
	}
}

func TestProtect_UserGone(t *testing.T) {
	mw := Protect(testSecret, &stubLoader{err: domain.ErrNotFound})

	c, _ := protectedContext(signTestToken(t, "ghost", time.Now()), "header")
	err := mw(okNext)(c)
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestProtect_PasswordRotatedAfterIssue(t *testing.T) {
	user := &domain.User{ID: "u1", PasswordChangedAt: time.Now()}
	mw := Protect(testSecret, &stubLoader{user: user})

	c, _ := protectedContext(signTestToken(t, "u1", time.Now().Add(-time.Hour)), "header")
	err := mw(okNext)(c)
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestIsLoggedIn_NeverFails(t *testing.T) {
	mw := IsLoggedIn(testSecret, &stubLoader{err: domain.ErrNotFound})

	// Broken token: request still goes through, anonymously.
	c, rec := protectedContext("garbage", "cookie")
	if err := mw(okNext)(c); err != nil {
		t.Fatalf("middleware error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if _, ok := CurrentUser(c); ok {
		t.Fatal("no user should be set")
	}
}

func TestIsLoggedIn_SetsUser(t *testing.T) {
	mw := IsLoggedIn(testSecret, &stubLoader{user: &domain.User{ID: "u1"}})

	c, _ := protectedContext(signTestToken(t, "u1", time.Now()), "cookie")
	if err := mw(okNext)(c); err != nil {
		t.Fatalf("middleware error: %v", err)
	}
	if user, ok := CurrentUser(c); !ok || user.ID != "u1" {
		t.Fatalf("user not resolved: %v", user)
	}
}
