package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/natours/tour-booking-api/internal/core/domain"
)

type ReviewRepository struct {
	col *mongo.Collection
}

func NewReviewRepository(db *mongo.Database) *ReviewRepository {
	return &ReviewRepository{col: db.Collection(colReviews)}
}

func (r *ReviewRepository) FindByUser(ctx context.Context, userID string) ([]domain.Review, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{"user": userID})
	if err != nil {
		return nil, fmt.Errorf("list reviews by user: %w", err)
	}
	defer cur.Close(ctx)

	reviews := []domain.Review{}
	if err := cur.All(ctx, &reviews); err != nil {
		return nil, fmt.Errorf("decode reviews: %w", err)
	}
	return reviews, nil
}

// Summarise aggregates count and mean rating over one tour's reviews. A
// tour without reviews yields the zero summary.
func (r *ReviewRepository) Summarise(ctx context.Context, tourID string) (domain.RatingSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"tour": tourID}}},
		{{Key: "$group", Value: bson.M{
			"_id":     "$tour",
			"count":   bson.M{"$sum": 1},
			"average": bson.M{"$avg": "$rating"},
		}}},
	}

	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return domain.RatingSummary{}, fmt.Errorf("summarise reviews: %w", err)
	}
	defer cur.Close(ctx)

	var rows []domain.RatingSummary
	if err := cur.All(ctx, &rows); err != nil {
		return domain.RatingSummary{}, fmt.Errorf("decode review summary: %w", err)
	}
	if len(rows) == 0 {
		return domain.RatingSummary{}, nil
	}
	return rows[0], nil
}
