package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"github.com/natours/tour-booking-api/internal/core/domain"
)

type fakeReviewRepo struct {
	summary domain.RatingSummary
}

func (r *fakeReviewRepo) FindByUser(context.Context, string) ([]domain.Review, error) {
	return nil, nil
}

func (r *fakeReviewRepo) Summarise(context.Context, string) (domain.RatingSummary, error) {
	return r.summary, nil
}

// ratingRecorder implements TourRepository for the single call the review
// service makes.
type ratingRecorder struct {
	tourID string
	avg    float64
	count  int
}

func (r *ratingRecorder) FindByID(context.Context, string) (*domain.Tour, error) { return nil, nil }
func (r *ratingRecorder) FindBySlug(context.Context, string) (*domain.Tour, error) {
	return nil, nil
}
func (r *ratingRecorder) FindAll(context.Context) ([]domain.Tour, error)             { return nil, nil }
func (r *ratingRecorder) FindByGuide(context.Context, string) ([]domain.Tour, error) { return nil, nil }
func (r *ratingRecorder) Stats(context.Context, float64) ([]domain.TourStats, error) { return nil, nil }
func (r *ratingRecorder) MonthlyPlan(context.Context, int) ([]domain.MonthlyPlanEntry, error) {
	return nil, nil
}
func (r *ratingRecorder) Within(context.Context, float64, float64, float64) ([]domain.Tour, error) {
	return nil, nil
}
func (r *ratingRecorder) Distances(context.Context, float64, float64, float64) ([]domain.TourDistance, error) {
	return nil, nil
}

func (r *ratingRecorder) SetRating(_ context.Context, tourID string, avg float64, count int) error {
	r.tourID, r.avg, r.count = tourID, avg, count
	return nil
}

func TestRecalculateTourRating_WritesSummary(t *testing.T) {
	tours := &ratingRecorder{}
	svc := NewReviewService(&fakeReviewRepo{summary: domain.RatingSummary{Count: 3, Average: 4.2}}, tours, zerolog.Nop())

	if err := svc.RecalculateTourRating(context.Background(), "t1"); err != nil {
		t.Fatalf("recompute failed: %v", err)
	}
	if tours.tourID != "t1" || tours.avg != 4.2 || tours.count != 3 {
		t.Fatalf("unexpected write: %+v", tours)
	}
}

func TestRecalculateTourRating_LastReviewResetsDefaults(t *testing.T) {
	tours := &ratingRecorder{}
	svc := NewReviewService(&fakeReviewRepo{}, tours, zerolog.Nop())

	if err := svc.RecalculateTourRating(context.Background(), "t1"); err != nil {
		t.Fatalf("recompute failed: %v", err)
	}
	if tours.avg != 4.5 || tours.count != 0 {
		t.Fatalf("expected defaults 4.5/0, got %v/%v", tours.avg, tours.count)
	}
}
