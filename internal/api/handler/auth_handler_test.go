package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/natours/tour-booking-api/internal/core/domain"
	"github.com/natours/tour-booking-api/internal/core/ports"
)

type stubAuthService struct {
	signupFn func(ctx context.Context, in ports.SignupInput) (string, *domain.User, error)
	loginFn  func(ctx context.Context, email, password string) (string, *domain.User, error)
	updateFn func(ctx context.Context, userID, current, password, confirm string) (string, *domain.User, error)
}

func (s *stubAuthService) Signup(ctx context.Context, in ports.SignupInput) (string, *domain.User, error) {
	return s.signupFn(ctx, in)
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubAuthService) ForgotPassword(context.Context, string) error { return nil }

func (s *stubAuthService) ResetPassword(context.Context, string, string, string) (string, *domain.User, error) {
	return "", nil, nil
}

func (s *stubAuthService) UpdatePassword(ctx context.Context, userID, current, password, confirm string) (string, *domain.User, error) {
	return s.updateFn(ctx, userID, current, password, confirm)
}

func (s *stubAuthService) SignToken(string) (string, time.Time, error) {
	return "", time.Time{}, nil
}

func authContext(t *testing.T, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator(validator.New())
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestAuthHandler_Signup_Success(t *testing.T) {
	stub := &stubAuthService{
		signupFn: func(_ context.Context, in ports.SignupInput) (string, *domain.User, error) {
			if in.Name != "Alice" || in.Email != "alice@example.com" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return "token123", &domain.User{ID: "u1", Name: in.Name, Email: in.Email}, nil
		},
	}
	h := NewAuthHandler(stub, 90, false)

	c, rec := authContext(t, http.MethodPost, "/api/v1/users/signup",
		`{"name":"Alice","email":"alice@example.com","password":"password123","passwordConfirm":"password123"}`)
	if err := h.Signup(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["token"] != "token123" {
		t.Fatalf("expected token, got %v", resp["token"])
	}

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != "jwt" || cookies[0].Value != "token123" {
		t.Fatalf("session cookie not set: %+v", cookies)
	}
	if !cookies[0].HttpOnly {
		t.Fatal("cookie must be http-only")
	}
}

func TestAuthHandler_Signup_MissingFields(t *testing.T) {
	stub := &stubAuthService{
		signupFn: func(context.Context, ports.SignupInput) (string, *domain.User, error) {
			t.Fatal("service should not be called")
			return "", nil, nil
		},
	}
	h := NewAuthHandler(stub, 90, false)

	c, _ := authContext(t, http.MethodPost, "/api/v1/users/signup", `{"name":"Alice"}`)
	err := h.Signup(c)
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAuthHandler_Login_ErrorPassedToHandlerChain(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(context.Context, string, string) (string, *domain.User, error) {
			return "", nil, domain.ErrUnauthorized
		},
	}
	h := NewAuthHandler(stub, 90, false)

	c, _ := authContext(t, http.MethodPost, "/api/v1/users/login",
		`{"email":"alice@example.com","password":"bad"}`)
	err := h.Login(c)
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestAuthHandler_Logout_OverwritesCookie(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{}, 90, false)

	c, rec := authContext(t, http.MethodGet, "/api/v1/users/logout", "")
	if err := h.Logout(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Value != "loggedout" {
		t.Fatalf("logout cookie not set: %+v", cookies)
	}
	if cookies[0].Expires.After(time.Now().Add(time.Minute)) {
		t.Fatalf("logout cookie should be short-lived: %v", cookies[0].Expires)
	}
}

func TestAuthHandler_UpdatePassword_RequiresUser(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{}, 90, false)

	c, _ := authContext(t, http.MethodPatch, "/api/v1/users/updateMyPassword",
		`{"passwordCurrent":"a","password":"b","passwordConfirm":"b"}`)
	err := h.UpdatePassword(c)
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestAuthHandler_UpdatePassword_Success(t *testing.T) {
	stub := &stubAuthService{
		updateFn: func(_ context.Context, userID, current, password, confirm string) (string, *domain.User, error) {
			if userID != "u1" || current != "old-password" {
				t.Fatalf("unexpected args: %s %s", userID, current)
			}
			return "fresh-token", &domain.User{ID: userID}, nil
		},
	}
	h := NewAuthHandler(stub, 90, false)

	c, rec := authContext(t, http.MethodPatch, "/api/v1/users/updateMyPassword",
		`{"passwordCurrent":"old-password","password":"new-password1","passwordConfirm":"new-password1"}`)
	c.Set("user", &domain.User{ID: "u1"})

	if err := h.UpdatePassword(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
