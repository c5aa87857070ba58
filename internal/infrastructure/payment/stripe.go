// Package payment adapts the Stripe checkout API behind ports.PaymentProvider.
package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
	"github.com/stripe/stripe-go/v79/webhook"

	"github.com/natours/tour-booking-api/internal/core/domain"
	"github.com/natours/tour-booking-api/internal/core/ports"
)

const referenceMetadataKey = "booking_reference"

// StripeProvider implements ports.PaymentProvider against the Stripe API.
type StripeProvider struct {
	api           *client.API
	webhookSecret string
}

func NewStripeProvider(secretKey, webhookSecret string) *StripeProvider {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &StripeProvider{api: api, webhookSecret: webhookSecret}
}

func (p *StripeProvider) CreateCheckoutSession(ctx context.Context, in ports.CheckoutInput) (*domain.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Params:             stripe.Params{Context: ctx},
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		SuccessURL:         stripe.String(in.SuccessURL),
		CancelURL:          stripe.String(in.CancelURL),
		CustomerEmail:      stripe.String(in.User.Email),
		ClientReferenceID:  stripe.String(in.Tour.ID),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			Quantity: stripe.Int64(1),
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency: stripe.String(string(stripe.CurrencyUSD)),
				// Stripe expects minor units.
				UnitAmount: stripe.Int64(int64(in.Tour.Price * 100)),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name:        stripe.String(in.Tour.Name + " Tour"),
					Description: stripe.String(in.Tour.Summary),
				},
			},
		}},
	}
	params.AddMetadata(referenceMetadataKey, in.Reference)

	sess, err := p.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}

	return &domain.CheckoutSession{ID: sess.ID, URL: sess.URL}, nil
}

// VerifyCheckoutCompleted authenticates the webhook payload before trusting
// any field in it. Events other than checkout.session.completed return
// (nil, nil) so the handler can acknowledge and skip them.
func (p *StripeProvider) VerifyCheckoutCompleted(payload []byte, signature string) (*domain.CheckoutCompleted, error) {
	event, err := webhook.ConstructEvent(payload, signature, p.webhookSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: webhook signature verification failed", domain.ErrUnauthorized)
	}

	if event.Type != "checkout.session.completed" {
		return nil, nil
	}

	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return nil, fmt.Errorf("decode checkout session: %w", err)
	}

	email := sess.CustomerEmail
	if email == "" && sess.CustomerDetails != nil {
		email = sess.CustomerDetails.Email
	}

	return &domain.CheckoutCompleted{
		TourID:        sess.ClientReferenceID,
		CustomerEmail: email,
		AmountTotal:   sess.AmountTotal,
		Reference:     sess.Metadata[referenceMetadataKey],
		CompletedAt:   time.Unix(event.Created, 0).UTC(),
	}, nil
}
