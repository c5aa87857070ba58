package service

import (
	"context"
	"fmt"

	"github.com/natours/tour-booking-api/internal/core/domain"
	"github.com/natours/tour-booking-api/internal/core/ports"
)

// Earth radii used to convert a surface distance into radians for
// $centerSphere queries.
const (
	earthRadiusKm = 6378.1
	earthRadiusMi = 3963.2

	metresToKm = 0.001
	metresToMi = 0.000621371

	// statsMinRating keeps the statistics focused on well-rated tours.
	statsMinRating = 4.2
)

// TourService exposes aggregation and geospatial reads over tours.
type TourService struct {
	tours ports.TourRepository
}

func NewTourService(tours ports.TourRepository) *TourService {
	return &TourService{tours: tours}
}

func (s *TourService) Stats(ctx context.Context) ([]domain.TourStats, error) {
	return s.tours.Stats(ctx, statsMinRating)
}

func (s *TourService) MonthlyPlan(ctx context.Context, year int) ([]domain.MonthlyPlanEntry, error) {
	if year < 1000 || year > 9999 {
		return nil, fmt.Errorf("%w: %d is not a valid year", domain.ErrValidation, year)
	}
	return s.tours.MonthlyPlan(ctx, year)
}

func (s *TourService) Within(ctx context.Context, distance, lng, lat float64, unit string) ([]domain.Tour, error) {
	if distance <= 0 {
		return nil, fmt.Errorf("%w: distance must be positive", domain.ErrValidation)
	}
	radius := distance / earthRadiusMi
	if unit == "km" {
		radius = distance / earthRadiusKm
	}
	return s.tours.Within(ctx, lng, lat, radius)
}

func (s *TourService) Distances(ctx context.Context, lng, lat float64, unit string) ([]domain.TourDistance, error) {
	multiplier := metresToMi
	if unit == "km" {
		multiplier = metresToKm
	}
	return s.tours.Distances(ctx, lng, lat, multiplier)
}
