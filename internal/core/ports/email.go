package ports

import (
	"context"

	"github.com/natours/tour-booking-api/internal/core/domain"
)

// Mailer sends templated transactional email.
type Mailer interface {
	// SendWelcome greets a new account; url points at the account page.
	SendWelcome(ctx context.Context, user *domain.User, url string) error

	// SendPasswordReset delivers the raw reset token url. The caller rolls
	// back the stored reset fields if this fails.
	SendPasswordReset(ctx context.Context, user *domain.User, url string) error
}
