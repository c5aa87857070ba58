package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/natours/tour-booking-api/internal/core/domain"
)

type stubBookingService struct {
	created      bool
	err          error
	gotPayload   []byte
	gotSignature string
}

func (s *stubBookingService) CreateCheckoutSession(context.Context, string, *domain.User) (*domain.CheckoutSession, error) {
	return &domain.CheckoutSession{ID: "cs_test", URL: "https://pay.example/cs_test"}, s.err
}

func (s *stubBookingService) HandleCheckoutCompleted(_ context.Context, payload []byte, signature string) (bool, error) {
	s.gotPayload = payload
	s.gotSignature = signature
	return s.created, s.err
}

func webhookContext(body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/webhook-checkout", strings.NewReader(body))
	req.Header.Set("Stripe-Signature", "t=1,v1=abc")
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestWebhook_PassesRawPayloadAndSignature(t *testing.T) {
	svc := &stubBookingService{created: true}
	h := NewBookingHandler(svc, nil)

	payload := `{"type":"checkout.session.completed"}`
	c, rec := webhookContext(payload)
	if err := h.Webhook(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if string(svc.gotPayload) != payload {
		t.Fatalf("payload altered before verification: %q", svc.gotPayload)
	}
	if svc.gotSignature != "t=1,v1=abc" {
		t.Fatalf("signature header not forwarded: %q", svc.gotSignature)
	}
	if !strings.Contains(rec.Body.String(), `"received":true`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

// The webhook route is mounted with its own body cap; an oversized event
// must be refused before it reaches signature verification.
func TestWebhook_OversizedBodyRejected(t *testing.T) {
	svc := &stubBookingService{}
	h := NewBookingHandler(svc, nil)
	guarded := echomiddleware.BodyLimit(WebhookBodyLimit)(h.Webhook)

	c, _ := webhookContext(strings.Repeat("a", 2<<20))
	err := guarded(c)

	var httpErr *echo.HTTPError
	if !errors.As(err, &httpErr) || httpErr.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %v", err)
	}
	if svc.gotPayload != nil {
		t.Fatal("oversized payload must not reach the service")
	}
}
