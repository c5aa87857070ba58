package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/natours/tour-booking-api/internal/core/domain"
)

// TourRepository carries the reads that go beyond the generic collection:
// statistics, the monthly plan and geospatial search.
type TourRepository struct {
	col *mongo.Collection
}

func NewTourRepository(db *mongo.Database) *TourRepository {
	return &TourRepository{col: db.Collection(colTours)}
}

// visible excludes secret tours, mirroring the typed collection's base filter.
func visible(filter bson.M) bson.M {
	filter["secret"] = bson.M{"$ne": true}
	return filter
}

func (r *TourRepository) FindByID(ctx context.Context, id string) (*domain.Tour, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var t domain.Tour
	err := r.col.FindOne(ctx, visible(bson.M{"_id": id})).Decode(&t)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: no tour with this id", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("find tour: %w", err)
	}
	return &t, nil
}

func (r *TourRepository) FindBySlug(ctx context.Context, slug string) (*domain.Tour, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var t domain.Tour
	err := r.col.FindOne(ctx, visible(bson.M{"slug": slug})).Decode(&t)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: can't find that tour name", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("find tour by slug: %w", err)
	}
	return &t, nil
}

func (r *TourRepository) FindAll(ctx context.Context) ([]domain.Tour, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, visible(bson.M{}))
	if err != nil {
		return nil, fmt.Errorf("list tours: %w", err)
	}
	defer cur.Close(ctx)

	tours := []domain.Tour{}
	if err := cur.All(ctx, &tours); err != nil {
		return nil, fmt.Errorf("decode tours: %w", err)
	}
	return tours, nil
}

func (r *TourRepository) FindByGuide(ctx context.Context, guideID string) ([]domain.Tour, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, visible(bson.M{"guides": bson.M{"$in": []string{guideID}}}))
	if err != nil {
		return nil, fmt.Errorf("list tours by guide: %w", err)
	}
	defer cur.Close(ctx)

	tours := []domain.Tour{}
	if err := cur.All(ctx, &tours); err != nil {
		return nil, fmt.Errorf("decode tours: %w", err)
	}
	return tours, nil
}

// Stats groups tours by difficulty, keeping only those at or above
// minRating, and reports counts plus price and rating aggregates.
func (r *TourRepository) Stats(ctx context.Context, minRating float64) ([]domain.TourStats, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"ratings_average": bson.M{"$gte": minRating}}}},
		{{Key: "$group", Value: bson.M{
			"_id":           bson.M{"$toUpper": "$difficulty"},
			"num_tours":     bson.M{"$sum": 1},
			"total_ratings": bson.M{"$sum": "$ratings_quantity"},
			"avg_rating":    bson.M{"$avg": "$ratings_average"},
			"avg_price":     bson.M{"$avg": "$price"},
			"min_price":     bson.M{"$min": "$price"},
			"max_price":     bson.M{"$max": "$price"},
		}}},
		{{Key: "$sort", Value: bson.M{"avg_price": -1}}},
	}

	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("tour stats: %w", err)
	}
	defer cur.Close(ctx)

	stats := []domain.TourStats{}
	if err := cur.All(ctx, &stats); err != nil {
		return nil, fmt.Errorf("decode tour stats: %w", err)
	}
	return stats, nil
}

var monthNames = [...]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// MonthlyPlan unwinds start dates within the given year and groups tour
// starts per calendar month.
func (r *TourRepository) MonthlyPlan(ctx context.Context, year int) ([]domain.MonthlyPlanEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	from := fmt.Sprintf("%d-01-01T00:00:00Z", year)
	to := fmt.Sprintf("%d-12-31T23:59:59Z", year)

	pipeline := mongo.Pipeline{
		{{Key: "$unwind", Value: "$start_dates"}},
		{{Key: "$match", Value: bson.M{"start_dates": bson.M{
			"$gte": bson.M{"$dateFromString": bson.M{"dateString": from}},
			"$lte": bson.M{"$dateFromString": bson.M{"dateString": to}},
		}}}},
		{{Key: "$group", Value: bson.M{
			"_id":             bson.M{"$month": "$start_dates"},
			"num_tour_starts": bson.M{"$sum": 1},
			"tours":           bson.M{"$push": "$name"},
		}}},
		{{Key: "$sort", Value: bson.M{"_id": 1}}},
	}

	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("monthly plan: %w", err)
	}
	defer cur.Close(ctx)

	var rows []struct {
		Month     int      `bson:"_id"`
		NumStarts int      `bson:"num_tour_starts"`
		Tours     []string `bson:"tours"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode monthly plan: %w", err)
	}

	plan := make([]domain.MonthlyPlanEntry, 0, len(rows))
	for _, row := range rows {
		name := ""
		if row.Month >= 1 && row.Month <= 12 {
			name = monthNames[row.Month-1]
		}
		plan = append(plan, domain.MonthlyPlanEntry{
			Month:     fmt.Sprintf("%d - %s", row.Month, name),
			NumStarts: row.NumStarts,
			Tours:     row.Tours,
		})
	}
	return plan, nil
}

// Within returns tours starting inside the sphere cap of radiusRad radians
// around [lng, lat].
func (r *TourRepository) Within(ctx context.Context, lng, lat, radiusRad float64) ([]domain.Tour, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := visible(bson.M{
		"start_location": bson.M{
			"$geoWithin": bson.M{
				"$centerSphere": bson.A{bson.A{lng, lat}, radiusRad},
			},
		},
	})

	cur, err := r.col.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("tours within: %w", err)
	}
	defer cur.Close(ctx)

	tours := []domain.Tour{}
	if err := cur.All(ctx, &tours); err != nil {
		return nil, fmt.Errorf("decode tours within: %w", err)
	}
	return tours, nil
}

// Distances runs $geoNear from [lng, lat]; multiplier converts metres into
// the caller's unit. $geoNear must be the first pipeline stage.
func (r *TourRepository) Distances(ctx context.Context, lng, lat, multiplier float64) ([]domain.TourDistance, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$geoNear", Value: bson.M{
			"near": bson.M{
				"type":        "Point",
				"coordinates": bson.A{lng, lat},
			},
			"distanceField":      "distance",
			"distanceMultiplier": multiplier,
		}}},
		{{Key: "$project", Value: bson.M{"distance": 1, "name": 1}}},
	}

	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("tour distances: %w", err)
	}
	defer cur.Close(ctx)

	distances := []domain.TourDistance{}
	if err := cur.All(ctx, &distances); err != nil {
		return nil, fmt.Errorf("decode tour distances: %w", err)
	}
	return distances, nil
}

// SetRating writes the recomputed review aggregate back onto the tour.
func (r *TourRepository) SetRating(ctx context.Context, tourID string, avg float64, count int) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": tourID}, bson.M{
		"$set": bson.M{
			"ratings_average":  avg,
			"ratings_quantity": count,
		},
	})
	if err != nil {
		return fmt.Errorf("set tour rating: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: no tour with this id", domain.ErrNotFound)
	}
	return nil
}
