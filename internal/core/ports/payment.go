package ports

import (
	"context"

	"github.com/natours/tour-booking-api/internal/core/domain"
)

// PaymentProvider abstracts the external checkout service.
type PaymentProvider interface {
	CreateCheckoutSession(ctx context.Context, in CheckoutInput) (*domain.CheckoutSession, error)

	// VerifyCheckoutCompleted authenticates the webhook payload against the
	// signature header before trusting any of its fields. Payloads for
	// other event types return (nil, nil).
	VerifyCheckoutCompleted(payload []byte, signature string) (*domain.CheckoutCompleted, error)
}
