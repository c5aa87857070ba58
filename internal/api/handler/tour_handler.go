package handler

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/natours/tour-booking-api/internal/core/domain"
	"github.com/natours/tour-booking-api/internal/core/ports"
)

// TourHandler serves the aggregation and geospatial tour reads. Plain tour
// CRUD is wired from the generic handlers in the router.
type TourHandler struct {
	svc ports.TourService
}

func NewTourHandler(svc ports.TourService) *TourHandler {
	return &TourHandler{svc: svc}
}

// AliasTopTours presets the list query to the five best-rated cheap tours.
// It rewrites the request's query string before the generic list handler
// interprets it, so a caller's own parameters cannot override the alias.
func AliasTopTours(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		q := url.Values{}
		q.Set("limit", "5")
		q.Set("sort", "-ratings_average,price")
		q.Set("fields", "name,price,ratings_average,summary,difficulty")
		c.Request().URL.RawQuery = q.Encode()
		return next(c)
	}
}

// Stats reports per-difficulty aggregates over well-rated tours.
func (h *TourHandler) Stats(c echo.Context) error {
	stats, err := h.svc.Stats(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"status": "success",
		"data":   echo.Map{"stats": stats},
	})
}

// MonthlyPlan reports tour starts grouped by calendar month of a year.
func (h *TourHandler) MonthlyPlan(c echo.Context) error {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		return fmt.Errorf("%w: year must be a number", domain.ErrValidation)
	}

	plan, err := h.svc.MonthlyPlan(c.Request().Context(), year)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"status": "success",
		"data":   echo.Map{"plan": plan},
	})
}

// Within lists tours starting inside a radius around a point.
// Route shape: /tours-within/:distance/center/:latlng/unit/:unit
func (h *TourHandler) Within(c echo.Context) error {
	distance, err := strconv.ParseFloat(c.Param("distance"), 64)
	if err != nil {
		return fmt.Errorf("%w: distance must be a number", domain.ErrValidation)
	}
	lat, lng, err := parseLatLng(c.Param("latlng"))
	if err != nil {
		return err
	}

	tours, err := h.svc.Within(c.Request().Context(), distance, lng, lat, c.Param("unit"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"status": "success",
		"data": echo.Map{
			"tourCount": len(tours),
			"tours":     tours,
		},
	})
}

// Distances lists every tour's distance from a point.
// Route shape: /distances/:latlng/unit/:unit
func (h *TourHandler) Distances(c echo.Context) error {
	lat, lng, err := parseLatLng(c.Param("latlng"))
	if err != nil {
		return err
	}

	distances, err := h.svc.Distances(c.Request().Context(), lng, lat, c.Param("unit"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"status": "success",
		"data":   echo.Map{"distances": distances},
	})
}

// parseLatLng splits a "lat,lng" route segment into its coordinates.
func parseLatLng(raw string) (lat, lng float64, err error) {
	parts := strings.Split(raw, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%w: please provide latitude and longitude in the format lat,lng", domain.ErrValidation)
	}
	lat, errLat := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	lng, errLng := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if errLat != nil || errLng != nil {
		return 0, 0, fmt.Errorf("%w: please provide latitude and longitude in the format lat,lng", domain.ErrValidation)
	}
	return lat, lng, nil
}
