package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/natours/tour-booking-api/internal/core/domain"
	"github.com/natours/tour-booking-api/internal/core/ports"
)

const (
	bcryptCost       = 12
	minPasswordLen   = 8
	maxPasswordLen   = 30
	resetTokenExpiry = 10 * time.Minute
)

// AuthService implements signup, login and the password lifecycle.
type AuthService struct {
	users     ports.UserRepository
	mailer    ports.Mailer
	jwtSecret string
	tokenTTL  time.Duration
	baseURL   string
	log       zerolog.Logger
}

func NewAuthService(users ports.UserRepository, mailer ports.Mailer, jwtSecret string, tokenTTL time.Duration, baseURL string, log zerolog.Logger) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{
		users:     users,
		mailer:    mailer,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		baseURL:   baseURL,
		log:       log,
	}
}

func (s *AuthService) Signup(ctx context.Context, in ports.SignupInput) (string, *domain.User, error) {
	if in.Name == "" || in.Email == "" || in.Password == "" {
		return "", nil, fmt.Errorf("%w: name, email and password are required", domain.ErrValidation)
	}
	if err := checkPassword(in.Password, in.PasswordConfirm); err != nil {
		return "", nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return "", nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Create(ctx, &domain.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: string(hash),
		Role:         domain.RoleUser,
	})
	if err != nil {
		return "", nil, err
	}

	// The welcome email is best-effort: a mail outage must not block signup.
	if err := s.mailer.SendWelcome(ctx, user, s.baseURL+"/me"); err != nil {
		s.log.Warn().Err(err).Str("email", user.Email).Msg("welcome email failed")
	}

	token, _, err := s.SignToken(user.ID)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	if email == "" || password == "" {
		return "", nil, fmt.Errorf("%w: the email and password fields are required", domain.ErrValidation)
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", nil, fmt.Errorf("%w: incorrect email or password", domain.ErrUnauthorized)
		}
		return "", nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", nil, fmt.Errorf("%w: incorrect email or password", domain.ErrUnauthorized)
	}

	token, _, err := s.SignToken(user.ID)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return err
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return fmt.Errorf("generate reset token: %w", err)
	}
	rawToken := hex.EncodeToString(raw)

	expiresAt := time.Now().UTC().Add(resetTokenExpiry)
	if err := s.users.SetResetToken(ctx, user.ID, hashToken(rawToken), expiresAt); err != nil {
		return err
	}

	resetURL := fmt.Sprintf("%s/api/v1/users/resetPassword/%s", s.baseURL, rawToken)
	if err := s.mailer.SendPasswordReset(ctx, user, resetURL); err != nil {
		// Roll back so the stored hash never outlives a mail we failed to
		// deliver.
		if rbErr := s.users.SetResetToken(ctx, user.ID, "", time.Time{}); rbErr != nil {
			s.log.Error().Err(rbErr).Str("user_id", user.ID).Msg("reset token rollback failed")
		}
		return fmt.Errorf("send reset email: %w", err)
	}
	return nil
}

func (s *AuthService) ResetPassword(ctx context.Context, rawToken, password, confirm string) (string, *domain.User, error) {
	if err := checkPassword(password, confirm); err != nil {
		return "", nil, err
	}

	user, err := s.users.FindByResetToken(ctx, hashToken(rawToken), time.Now().UTC())
	if err != nil {
		return "", nil, err
	}

	if err := s.setPassword(ctx, user, password); err != nil {
		return "", nil, err
	}

	token, _, err := s.SignToken(user.ID)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (s *AuthService) UpdatePassword(ctx context.Context, userID, current, password, confirm string) (string, *domain.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return "", nil, err
	}

	// Credential semantics here: a failed confirmation or current-password
	// check answers 401, unlike the admin update path's 404.
	if password != confirm {
		return "", nil, fmt.Errorf("%w: passwords are not the same", domain.ErrUnauthorized)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)) != nil {
		return "", nil, fmt.Errorf("%w: invalid password, try to restore your password", domain.ErrUnauthorized)
	}
	if len(password) < minPasswordLen || len(password) > maxPasswordLen {
		return "", nil, fmt.Errorf("%w: the password should be %d to %d characters", domain.ErrValidation, minPasswordLen, maxPasswordLen)
	}

	if err := s.setPassword(ctx, user, password); err != nil {
		return "", nil, err
	}

	token, _, err := s.SignToken(user.ID)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// SignToken derives a fresh HS256 session token for the given user id.
func (s *AuthService) SignToken(userID string) (string, time.Time, error) {
	now := time.Now().UTC()
	expiresAt := now.Add(s.tokenTTL)

	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return token, expiresAt, nil
}

func (s *AuthService) setPassword(ctx context.Context, user *domain.User, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	// Stamp the change slightly in the past so a token signed in the same
	// second as the rotation still fails the changed-after check.
	changedAt := time.Now().UTC().Add(-5 * time.Second)
	return s.users.UpdatePassword(ctx, user.ID, string(hash), changedAt)
}

func checkPassword(password, confirm string) error {
	if password != confirm {
		return fmt.Errorf("%w: passwords don't match, please make sure they are the same", domain.ErrValidation)
	}
	if len(password) < minPasswordLen || len(password) > maxPasswordLen {
		return fmt.Errorf("%w: the password should be %d to %d characters", domain.ErrValidation, minPasswordLen, maxPasswordLen)
	}
	return nil
}

func hashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
