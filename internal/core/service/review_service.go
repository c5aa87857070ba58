package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/natours/tour-booking-api/internal/core/ports"
)

// Defaults restored on a tour once its last review disappears.
const (
	defaultRatingsAverage  = 4.5
	defaultRatingsQuantity = 0
)

// ReviewService orchestrates the aggregate-rating recompute that follows
// every review write. The recompute is an explicit application step, not a
// storage-layer hook, so the write path stays visible in one place.
type ReviewService struct {
	reviews ports.ReviewRepository
	tours   ports.TourRepository
	log     zerolog.Logger
}

func NewReviewService(reviews ports.ReviewRepository, tours ports.TourRepository, log zerolog.Logger) *ReviewService {
	return &ReviewService{reviews: reviews, tours: tours, log: log}
}

// RecalculateTourRating recomputes count and mean from the tour's reviews
// and writes them back onto the tour record. The recompute happens after
// the review write commits; the two writes are not atomic across failure.
func (s *ReviewService) RecalculateTourRating(ctx context.Context, tourID string) error {
	summary, err := s.reviews.Summarise(ctx, tourID)
	if err != nil {
		return err
	}

	avg, count := summary.Average, summary.Count
	if count == 0 {
		avg, count = defaultRatingsAverage, defaultRatingsQuantity
	}

	if err := s.tours.SetRating(ctx, tourID, avg, count); err != nil {
		return err
	}

	s.log.Debug().
		Str("tour_id", tourID).
		Float64("avg", avg).
		Int("count", count).
		Msg("tour rating recomputed")
	return nil
}
