package ports

import (
	"context"
	"time"

	"github.com/natours/tour-booking-api/internal/core/domain"
)

// UserLoader is the minimal read surface the auth middleware needs to
// resolve a token's subject to a live account.
type UserLoader interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
}

// UserRepository covers auth-specific user access that falls outside the
// generic collection path (hidden password fields, reset-token lookups).
type UserRepository interface {
	UserLoader

	// FindByEmail includes the password hash; inactive accounts resolve to
	// domain.ErrNotFound.
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)

	// SetResetToken stores the hashed reset token and its expiry; both
	// empty values clear the fields (rollback after a failed email send).
	SetResetToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error

	// FindByResetToken matches the stored hash and requires the expiry to
	// be in the future.
	FindByResetToken(ctx context.Context, tokenHash string, now time.Time) (*domain.User, error)

	// UpdatePassword swaps the hash, stamps password_changed_at and clears
	// any reset fields.
	UpdatePassword(ctx context.Context, userID, passwordHash string, changedAt time.Time) error

	// SetActive toggles soft deletion.
	SetActive(ctx context.Context, userID string, active bool) error
}

// TourRepository covers tour reads that go beyond the generic collection:
// aggregations and geospatial search.
type TourRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Tour, error)
	FindBySlug(ctx context.Context, slug string) (*domain.Tour, error)
	FindAll(ctx context.Context) ([]domain.Tour, error)
	FindByGuide(ctx context.Context, guideID string) ([]domain.Tour, error)

	Stats(ctx context.Context, minRating float64) ([]domain.TourStats, error)
	MonthlyPlan(ctx context.Context, year int) ([]domain.MonthlyPlanEntry, error)

	// Within returns tours whose start location lies inside the sphere cap
	// of the given radius (radians) around [lng, lat].
	Within(ctx context.Context, lng, lat, radiusRad float64) ([]domain.Tour, error)

	// Distances returns every tour's distance from [lng, lat], scaled by
	// multiplier (metres to km or miles).
	Distances(ctx context.Context, lng, lat, multiplier float64) ([]domain.TourDistance, error)

	// SetRating writes the recomputed aggregate onto the tour.
	SetRating(ctx context.Context, tourID string, avg float64, count int) error
}

// ReviewRepository covers the review aggregate recompute and per-user reads.
type ReviewRepository interface {
	FindByUser(ctx context.Context, userID string) ([]domain.Review, error)

	// Summarise aggregates count and mean rating over one tour's reviews.
	// A tour with no reviews yields a zero-valued summary.
	Summarise(ctx context.Context, tourID string) (domain.RatingSummary, error)
}

// BookingRepository covers booking reads/writes outside the generic path.
type BookingRepository interface {
	Create(ctx context.Context, b *domain.Booking) (*domain.Booking, error)
	FindByUser(ctx context.Context, userID string) ([]domain.Booking, error)
}
