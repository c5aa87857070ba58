package ports

import (
	"context"
	"time"

	"github.com/natours/tour-booking-api/internal/core/domain"
)

// SignupInput is the payload accepted by AuthService.Signup.
type SignupInput struct {
	Name            string
	Email           string
	Password        string
	PasswordConfirm string
}

// AuthService implements signup, login and the password lifecycle.
type AuthService interface {
	Signup(ctx context.Context, in SignupInput) (string, *domain.User, error)
	Login(ctx context.Context, email, password string) (string, *domain.User, error)

	// ForgotPassword generates a reset token, stores only its hash with a
	// short expiry and emails the raw token.
	ForgotPassword(ctx context.Context, email string) error

	// ResetPassword redeems a raw reset token for a new password and
	// returns a fresh session token.
	ResetPassword(ctx context.Context, rawToken, password, confirm string) (string, *domain.User, error)

	// UpdatePassword rotates the password of an authenticated user after
	// checking the current one.
	UpdatePassword(ctx context.Context, userID, current, password, confirm string) (string, *domain.User, error)

	// SignToken derives a fresh session token for the given user id.
	SignToken(userID string) (string, time.Time, error)
}

// TourService exposes the aggregation and geospatial reads.
type TourService interface {
	Stats(ctx context.Context) ([]domain.TourStats, error)
	MonthlyPlan(ctx context.Context, year int) ([]domain.MonthlyPlanEntry, error)
	Within(ctx context.Context, distance float64, lng, lat float64, unit string) ([]domain.Tour, error)
	Distances(ctx context.Context, lng, lat float64, unit string) ([]domain.TourDistance, error)
}

// ReviewService orchestrates review writes and the explicit aggregate
// recompute on the parent tour.
type ReviewService interface {
	// RecalculateTourRating recomputes count and mean from the tour's
	// reviews and writes them back. Zero reviews resets to the defaults.
	RecalculateTourRating(ctx context.Context, tourID string) error
}

// CheckoutInput describes what a checkout session sells.
type CheckoutInput struct {
	Tour       *domain.Tour
	User       *domain.User
	Reference  string
	SuccessURL string
	CancelURL  string
}

// BookingService creates checkout sessions and converts verified webhook
// events into booking records.
type BookingService interface {
	CreateCheckoutSession(ctx context.Context, tourID string, user *domain.User) (*domain.CheckoutSession, error)

	// HandleCheckoutCompleted verifies the webhook payload and records a
	// booking when the event is a completed checkout. The bool reports
	// whether a booking was written; other event types are acknowledged
	// without one.
	HandleCheckoutCompleted(ctx context.Context, payload []byte, signature string) (bool, error)
}
