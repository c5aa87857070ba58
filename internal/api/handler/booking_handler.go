package handler

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/natours/tour-booking-api/internal/api/crud"
	"github.com/natours/tour-booking-api/internal/api/metrics"
	"github.com/natours/tour-booking-api/internal/core/domain"
	"github.com/natours/tour-booking-api/internal/core/ports"
)

var bookingWhitelist = crud.NewWhitelist("tour", "user", "price", "paid")

// WebhookBodyLimit caps the raw webhook payload. The route skips the API
// group's 50K limit, so it carries its own, sized for provider events.
const WebhookBodyLimit = "1M"

// BookingHandler serves checkout and the payment webhook. Admin booking
// CRUD comes from the generic handlers.
type BookingHandler struct {
	svc ports.BookingService
	col ports.Collection[domain.Booking]
}

func NewBookingHandler(svc ports.BookingService, col ports.Collection[domain.Booking]) *BookingHandler {
	return &BookingHandler{svc: svc, col: col}
}

// CheckoutSession opens a payment session for the given tour on behalf of
// the authenticated user.
//
// @Summary      Create a checkout session
// @Tags         bookings
// @Produce      json
// @Param        tourId  path      string  true  "Tour id"
// @Success      200     {object}  map[string]any
// @Failure      404     {object}  map[string]string
// @Router       /api/v1/bookings/checkout-session/{tourId} [get]
func (h *BookingHandler) CheckoutSession(c echo.Context) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}

	session, err := h.svc.CreateCheckoutSession(c.Request().Context(), c.Param("tourId"), user)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"status":  "success",
		"session": session,
	})
}

// Webhook receives the payment provider's checkout-completed callback. The
// raw body must reach signature verification untouched.
func (h *BookingHandler) Webhook(c echo.Context) error {
	payload, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "could not read webhook payload")
	}

	signature := c.Request().Header.Get("Stripe-Signature")
	created, err := h.svc.HandleCheckoutCompleted(c.Request().Context(), payload, signature)
	if err != nil {
		return err
	}

	if created {
		metrics.BookingsCreatedTotal.WithLabelValues("webhook").Inc()
	}
	return c.JSON(http.StatusOK, echo.Map{"received": true})
}

// AdminCreate is the manual booking write, counted separately from the
// webhook path.
func (h *BookingHandler) AdminCreate() echo.HandlerFunc {
	return crud.CreateOne(h.col, bookingWhitelist,
		crud.WithAfterWrite[domain.Booking](func(echo.Context, *domain.Booking) error {
			metrics.BookingsCreatedTotal.WithLabelValues("api").Inc()
			return nil
		}),
	)
}
