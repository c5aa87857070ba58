package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/natours/tour-booking-api/internal/core/domain"
	"github.com/natours/tour-booking-api/internal/core/ports"
)

type fakeUserRepo struct {
	users map[string]*domain.User // by id

	resetUserID string
	resetHash   string
	resetExpire time.Time

	updatedHash      string
	updatedChangedAt time.Time
}

func newFakeUserRepo(users ...*domain.User) *fakeUserRepo {
	r := &fakeUserRepo{users: map[string]*domain.User{}}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	if u, ok := r.users[id]; ok {
		return u, nil
	}
	return nil, domain.ErrNotFound
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	user.ID = "new-user"
	r.users[user.ID] = user
	return user, nil
}

func (r *fakeUserRepo) SetResetToken(_ context.Context, userID, tokenHash string, expiresAt time.Time) error {
	r.resetUserID, r.resetHash, r.resetExpire = userID, tokenHash, expiresAt
	return nil
}

func (r *fakeUserRepo) FindByResetToken(_ context.Context, tokenHash string, now time.Time) (*domain.User, error) {
	if tokenHash == r.resetHash && r.resetHash != "" && now.Before(r.resetExpire) {
		return r.users[r.resetUserID], nil
	}
	return nil, domain.ErrValidation
}

func (r *fakeUserRepo) UpdatePassword(_ context.Context, userID, passwordHash string, changedAt time.Time) error {
	r.updatedHash, r.updatedChangedAt = passwordHash, changedAt
	if u, ok := r.users[userID]; ok {
		u.PasswordHash = passwordHash
		u.PasswordChangedAt = changedAt
	}
	return nil
}

func (r *fakeUserRepo) SetActive(_ context.Context, userID string, active bool) error {
	if u, ok := r.users[userID]; ok {
		u.Active = active
	}
	return nil
}

type fakeMailer struct {
	welcomeTo string
	resetURL  string
	sendErr   error
}

func (m *fakeMailer) SendWelcome(_ context.Context, user *domain.User, _ string) error {
	m.welcomeTo = user.Email
	return m.sendErr
}

func (m *fakeMailer) SendPasswordReset(_ context.Context, _ *domain.User, url string) error {
	m.resetURL = url
	return m.sendErr
}

func newAuthService(repo *fakeUserRepo, mailer *fakeMailer) *AuthService {
	return NewAuthService(repo, mailer, "test-secret", time.Hour, "http://localhost:8080", zerolog.Nop())
}

func hashFor(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hashing fixture password: %v", err)
	}
	return string(h)
}

func TestSignup_PasswordMismatch(t *testing.T) {
	svc := newAuthService(newFakeUserRepo(), &fakeMailer{})

	_, _, err := svc.Signup(context.Background(), ports.SignupInput{
		Name: "a", Email: "a@x.io", Password: "password1", PasswordConfirm: "password2",
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSignup_PasswordTooShort(t *testing.T) {
	svc := newAuthService(newFakeUserRepo(), &fakeMailer{})

	_, _, err := svc.Signup(context.Background(), ports.SignupInput{
		Name: "a", Email: "a@x.io", Password: "short", PasswordConfirm: "short",
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSignup_Success(t *testing.T) {
	repo := newFakeUserRepo()
	mailer := &fakeMailer{}
	svc := newAuthService(repo, mailer)

	token, user, err := svc.Signup(context.Background(), ports.SignupInput{
		Name: "Alice", Email: "alice@x.io", Password: "password123", PasswordConfirm: "password123",
	})
	if err != nil {
		t.Fatalf("signup failed: %v", err)
	}
	if user.Role != domain.RoleUser {
		t.Fatalf("expected default role, got %q", user.Role)
	}
	if user.PasswordHash == "password123" || user.PasswordHash == "" {
		t.Fatal("password stored unhashed")
	}
	if mailer.welcomeTo != "alice@x.io" {
		t.Fatalf("welcome email not sent: %q", mailer.welcomeTo)
	}

	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return []byte("test-secret"), nil
	})
	if err != nil || !parsed.Valid || claims.Subject != user.ID {
		t.Fatalf("token not usable: %v (subject %q)", err, claims.Subject)
	}
}

func TestSignup_MailFailureDoesNotBlock(t *testing.T) {
	svc := newAuthService(newFakeUserRepo(), &fakeMailer{sendErr: errors.New("smtp down")})

	_, _, err := svc.Signup(context.Background(), ports.SignupInput{
		Name: "Bob", Email: "bob@x.io", Password: "password123", PasswordConfirm: "password123",
	})
	if err != nil {
		t.Fatalf("signup should survive a mail outage: %v", err)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	repo := newFakeUserRepo(&domain.User{
		ID: "u1", Email: "alice@x.io", PasswordHash: hashFor(t, "password123"), Active: true,
	})
	svc := newAuthService(repo, &fakeMailer{})

	_, _, err := svc.Login(context.Background(), "alice@x.io", "wrong-password")
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestLogin_UnknownEmailSameError(t *testing.T) {
	svc := newAuthService(newFakeUserRepo(), &fakeMailer{})

	_, _, err := svc.Login(context.Background(), "ghost@x.io", "whatever1")
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	// Unknown account and wrong password must be indistinguishable.
	if !strings.Contains(err.Error(), "incorrect email or password") {
		t.Fatalf("unexpected message: %v", err)
	}
}

func TestLogin_Success(t *testing.T) {
	repo := newFakeUserRepo(&domain.User{
		ID: "u1", Email: "alice@x.io", PasswordHash: hashFor(t, "password123"), Active: true,
	})
	svc := newAuthService(repo, &fakeMailer{})

	token, user, err := svc.Login(context.Background(), "alice@x.io", "password123")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if token == "" || user.ID != "u1" {
		t.Fatalf("unexpected result: token=%q user=%+v", token, user)
	}
}

func TestForgotPassword_StoresHashNotRawToken(t *testing.T) {
	repo := newFakeUserRepo(&domain.User{ID: "u1", Email: "alice@x.io"})
	mailer := &fakeMailer{}
	svc := newAuthService(repo, mailer)

	if err := svc.ForgotPassword(context.Background(), "alice@x.io"); err != nil {
		t.Fatalf("forgot password failed: %v", err)
	}

	parts := strings.Split(mailer.resetURL, "/")
	rawToken := parts[len(parts)-1]
	if rawToken == "" {
		t.Fatalf("no token in reset URL: %q", mailer.resetURL)
	}
	if repo.resetHash == rawToken {
		t.Fatal("raw token stored; only its hash may be persisted")
	}
	if repo.resetHash != hashToken(rawToken) {
		t.Fatal("stored hash does not match the emailed token")
	}
	if until := time.Until(repo.resetExpire); until <= 0 || until > resetTokenExpiry {
		t.Fatalf("unexpected expiry: %v", repo.resetExpire)
	}
}

func TestForgotPassword_RollsBackOnMailFailure(t *testing.T) {
	repo := newFakeUserRepo(&domain.User{ID: "u1", Email: "alice@x.io"})
	svc := newAuthService(repo, &fakeMailer{sendErr: errors.New("smtp down")})

	err := svc.ForgotPassword(context.Background(), "alice@x.io")
	if err == nil {
		t.Fatal("expected error")
	}
	if repo.resetHash != "" || !repo.resetExpire.IsZero() {
		t.Fatalf("reset fields not rolled back: %q %v", repo.resetHash, repo.resetExpire)
	}
}

func TestResetPassword_Roundtrip(t *testing.T) {
	repo := newFakeUserRepo(&domain.User{ID: "u1", Email: "alice@x.io"})
	mailer := &fakeMailer{}
	svc := newAuthService(repo, mailer)

	if err := svc.ForgotPassword(context.Background(), "alice@x.io"); err != nil {
		t.Fatalf("forgot password failed: %v", err)
	}
	parts := strings.Split(mailer.resetURL, "/")
	rawToken := parts[len(parts)-1]

	token, user, err := svc.ResetPassword(context.Background(), rawToken, "new-password1", "new-password1")
	if err != nil {
		t.Fatalf("reset failed: %v", err)
	}
	if token == "" || user.ID != "u1" {
		t.Fatalf("unexpected result: token=%q user=%+v", token, user)
	}
	if bcrypt.CompareHashAndPassword([]byte(repo.updatedHash), []byte("new-password1")) != nil {
		t.Fatal("new password not stored")
	}
	if !repo.updatedChangedAt.Before(time.Now()) {
		t.Fatalf("changed-at should be stamped in the past: %v", repo.updatedChangedAt)
	}
}

func TestResetPassword_BadToken(t *testing.T) {
	svc := newAuthService(newFakeUserRepo(), &fakeMailer{})

	_, _, err := svc.ResetPassword(context.Background(), "bogus", "new-password1", "new-password1")
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUpdatePassword_WrongCurrent(t *testing.T) {
	repo := newFakeUserRepo(&domain.User{
		ID: "u1", PasswordHash: hashFor(t, "password123"), Active: true,
	})
	svc := newAuthService(repo, &fakeMailer{})

	_, _, err := svc.UpdatePassword(context.Background(), "u1", "not-it", "new-password1", "new-password1")
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestUpdatePassword_Success(t *testing.T) {
	repo := newFakeUserRepo(&domain.User{
		ID: "u1", PasswordHash: hashFor(t, "password123"), Active: true,
	})
	svc := newAuthService(repo, &fakeMailer{})

	token, _, err := svc.UpdatePassword(context.Background(), "u1", "password123", "new-password1", "new-password1")
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if token == "" {
		t.Fatal("expected a fresh token")
	}
	if bcrypt.CompareHashAndPassword([]byte(repo.updatedHash), []byte("new-password1")) != nil {
		t.Fatal("new password not stored")
	}
}
