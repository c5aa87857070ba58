package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/natours/tour-booking-api/internal/api/middleware"
	"github.com/natours/tour-booking-api/internal/core/domain"
	"github.com/natours/tour-booking-api/internal/core/ports"
	"github.com/natours/tour-booking-api/pkg/logger"
)

// bookingAlert is shown after a successful checkout redirect. The webhook
// may land after the redirect does, hence the wording.
const bookingAlert = "Your booking was successful! Please check your email for a confirmation. " +
	"If your booking doesn't show up here immediately, please come back later."

// ViewHandler renders the server-side pages.
type ViewHandler struct {
	tours    ports.TourRepository
	tourCol  ports.Collection[domain.Tour]
	reviews  ports.ReviewRepository
	bookings ports.BookingRepository
}

func NewViewHandler(
	tours ports.TourRepository,
	tourCol ports.Collection[domain.Tour],
	reviews ports.ReviewRepository,
	bookings ports.BookingRepository,
) *ViewHandler {
	return &ViewHandler{tours: tours, tourCol: tourCol, reviews: reviews, bookings: bookings}
}

// Alert maps the alert query parameter to its banner message for every
// rendered page.
func Alert(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if c.QueryParam("alert") == "booking" {
			c.Set("alert", bookingAlert)
		}
		return next(c)
	}
}

// Overview lists every visible tour.
func (h *ViewHandler) Overview(c echo.Context) error {
	tours, err := h.tours.FindAll(c.Request().Context())
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "overview", h.page(c, "All Tours", echo.Map{"Tours": tours}))
}

// TourDetail renders one tour with its guides and reviews expanded.
func (h *ViewHandler) TourDetail(c echo.Context) error {
	tour, err := h.tours.FindBySlug(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return err
	}
	tour, err = h.tourCol.FindByID(c.Request().Context(), tour.ID, "reviews", "guides")
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "tour", h.page(c, tour.Name+" Tour", echo.Map{"Tour": tour}))
}

func (h *ViewHandler) LoginForm(c echo.Context) error {
	return c.Render(http.StatusOK, "login", h.page(c, "Log into your account", nil))
}

func (h *ViewHandler) SignupForm(c echo.Context) error {
	return c.Render(http.StatusOK, "signup", h.page(c, "Create your account", nil))
}

// Account renders the authenticated user's settings page.
func (h *ViewHandler) Account(c echo.Context) error {
	return c.Render(http.StatusOK, "account", h.page(c, "Your account", nil))
}

// MyTours lists the tours the user has booked, rendered with the overview
// template.
func (h *ViewHandler) MyTours(c echo.Context) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}

	bookings, err := h.bookings.FindByUser(c.Request().Context(), user.ID)
	if err != nil {
		return err
	}

	tours := []domain.Tour{}
	for _, b := range bookings {
		tour, err := h.tours.FindByID(c.Request().Context(), b.TourID)
		if err != nil {
			// A booked tour may have been unpublished since; skip it.
			logger.Get().Debug().Err(err).Str("tour_id", b.TourID).Msg("booked tour not renderable")
			continue
		}
		tours = append(tours, *tour)
	}
	return c.Render(http.StatusOK, "overview", h.page(c, "My Tours", echo.Map{"Tours": tours}))
}

// MyReviews lists the reviews the user has written.
func (h *ViewHandler) MyReviews(c echo.Context) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}

	reviews, err := h.reviews.FindByUser(c.Request().Context(), user.ID)
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "reviews", h.page(c, "My Reviews", echo.Map{"Reviews": reviews}))
}

// ManageTours is the leader/admin tour administration page.
func (h *ViewHandler) ManageTours(c echo.Context) error {
	tours, err := h.tours.FindAll(c.Request().Context())
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "manage", h.page(c, "Manage Tours", echo.Map{"Tours": tours}))
}

// page assembles the common template data: title, the logged-in user when
// present, the alert banner, then the page's own entries.
func (h *ViewHandler) page(c echo.Context, title string, extra echo.Map) echo.Map {
	data := echo.Map{"Title": title}
	if user, ok := middleware.CurrentUser(c); ok {
		data["User"] = user
	}
	if alert, ok := c.Get("alert").(string); ok {
		data["Alert"] = alert
	}
	for k, v := range extra {
		data[k] = v
	}
	return data
}
