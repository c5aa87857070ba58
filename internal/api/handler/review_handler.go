package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/natours/tour-booking-api/internal/api/crud"
	"github.com/natours/tour-booking-api/internal/api/metrics"
	"github.com/natours/tour-booking-api/internal/core/domain"
	"github.com/natours/tour-booking-api/internal/core/ports"
)

var (
	reviewCreateWhitelist = crud.NewWhitelist("review", "rating", "tour", "user")
	reviewUpdateWhitelist = crud.NewWhitelist("review", "rating")
)

// deletedReviewTourKey carries the parent tour id across a delete so the
// rating can be recomputed once the review is gone.
const deletedReviewTourKey = "deleted_review_tour"

// ReviewHandler assembles the review routes from the generic handlers,
// adding identity defaults on create and the rating recompute after every
// write.
type ReviewHandler struct {
	col ports.Collection[domain.Review]
	svc ports.ReviewService
}

func NewReviewHandler(col ports.Collection[domain.Review], svc ports.ReviewService) *ReviewHandler {
	return &ReviewHandler{col: col, svc: svc}
}

// Create fills the tour id from the nested route and the user id from the
// authenticated identity when the body omits them, then recomputes the
// tour's rating.
func (h *ReviewHandler) Create() echo.HandlerFunc {
	return crud.CreateOne(h.col, reviewCreateWhitelist,
		crud.WithPrepare[domain.Review](func(c echo.Context, doc ports.Doc) {
			if tourID, _ := doc["tour"].(string); tourID == "" {
				if param := c.Param("tourId"); param != "" {
					doc["tour"] = param
				}
			}
			if userID, _ := doc["user"].(string); userID == "" {
				if user, ok := requireUserSilent(c); ok {
					doc["user"] = user.ID
				}
			}
		}),
		crud.WithAfterWrite[domain.Review](h.recalculate),
	)
}

// Update recomputes the rating after the change lands.
func (h *ReviewHandler) Update() echo.HandlerFunc {
	return crud.UpdateOne(h.col, reviewUpdateWhitelist,
		crud.WithAfterWrite[domain.Review](h.recalculate),
	)
}

// Delete looks the review up first so its parent tour is known once the
// record is gone, then recomputes that tour's rating.
func (h *ReviewHandler) Delete() echo.HandlerFunc {
	return crud.DeleteOne(h.col,
		crud.WithBeforeDelete[domain.Review](func(c echo.Context, id string) error {
			review, err := h.col.FindByID(c.Request().Context(), id)
			if err != nil {
				return err
			}
			c.Set(deletedReviewTourKey, review.TourID)
			return nil
		}),
		crud.WithAfterDelete[domain.Review](func(c echo.Context, _ string) error {
			tourID, _ := c.Get(deletedReviewTourKey).(string)
			if tourID == "" {
				return nil
			}
			metrics.ReviewWritesTotal.Inc()
			return h.svc.RecalculateTourRating(c.Request().Context(), tourID)
		}),
	)
}

func (h *ReviewHandler) recalculate(c echo.Context, review *domain.Review) error {
	metrics.ReviewWritesTotal.Inc()
	return h.svc.RecalculateTourRating(c.Request().Context(), review.TourID)
}

// requireUserSilent is requireUser without the error; create falls back to
// whatever the body carries when no identity is present (admin tooling).
func requireUserSilent(c echo.Context) (*domain.User, bool) {
	user, err := requireUser(c)
	return user, err == nil
}
