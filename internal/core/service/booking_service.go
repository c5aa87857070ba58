package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/natours/tour-booking-api/internal/core/domain"
	"github.com/natours/tour-booking-api/internal/core/ports"
)

// BookingService creates checkout sessions and turns verified webhook
// events into booking records.
type BookingService struct {
	tours    ports.TourRepository
	users    ports.UserRepository
	bookings ports.BookingRepository
	provider ports.PaymentProvider
	baseURL  string
	log      zerolog.Logger
}

func NewBookingService(
	tours ports.TourRepository,
	users ports.UserRepository,
	bookings ports.BookingRepository,
	provider ports.PaymentProvider,
	baseURL string,
	log zerolog.Logger,
) *BookingService {
	return &BookingService{
		tours:    tours,
		users:    users,
		bookings: bookings,
		provider: provider,
		baseURL:  baseURL,
		log:      log,
	}
}

func (s *BookingService) CreateCheckoutSession(ctx context.Context, tourID string, user *domain.User) (*domain.CheckoutSession, error) {
	tour, err := s.tours.FindByID(ctx, tourID)
	if err != nil {
		return nil, err
	}

	sess, err := s.provider.CreateCheckoutSession(ctx, ports.CheckoutInput{
		Tour:       tour,
		User:       user,
		Reference:  uuid.NewString(),
		SuccessURL: s.baseURL + "/?alert=booking",
		CancelURL:  s.baseURL + "/tour/" + tour.Slug,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("tour_id", tour.ID).
		Str("user_id", user.ID).
		Str("session_id", sess.ID).
		Msg("checkout session created")
	return sess, nil
}

// HandleCheckoutCompleted verifies the webhook signature, then records the
// booking for the session's buyer. Events of other types are acknowledged
// without side effects.
func (s *BookingService) HandleCheckoutCompleted(ctx context.Context, payload []byte, signature string) (bool, error) {
	completed, err := s.provider.VerifyCheckoutCompleted(payload, signature)
	if err != nil {
		return false, err
	}
	if completed == nil {
		return false, nil
	}

	user, err := s.users.FindByEmail(ctx, completed.CustomerEmail)
	if err != nil {
		return false, fmt.Errorf("webhook buyer lookup: %w", err)
	}

	booking, err := s.bookings.Create(ctx, &domain.Booking{
		TourID:    completed.TourID,
		UserID:    user.ID,
		Price:     float64(completed.AmountTotal) / 100,
		Paid:      true,
		Reference: completed.Reference,
	})
	if err != nil {
		return false, err
	}

	s.log.Info().
		Str("booking_id", booking.ID).
		Str("tour_id", booking.TourID).
		Str("user_id", booking.UserID).
		Msg("booking created from checkout webhook")
	return true, nil
}
