package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates every index the service relies on. The unique ones
// back the duplicate-signup and one-review-per-(user,tour) invariants.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	users := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "password_reset_token", Value: 1}}},
	}
	if _, err := db.Collection(colUsers).Indexes().CreateMany(ctx, users); err != nil {
		return fmt.Errorf("user indexes: %w", err)
	}

	tours := []mongo.IndexModel{
		{Keys: bson.D{{Key: "price", Value: 1}}},
		{Keys: bson.D{{Key: "slug", Value: 1}}},
		{Keys: bson.D{{Key: "start_location", Value: "2dsphere"}}},
	}
	if _, err := db.Collection(colTours).Indexes().CreateMany(ctx, tours); err != nil {
		return fmt.Errorf("tour indexes: %w", err)
	}

	reviews := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user", Value: 1}, {Key: "tour", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	if _, err := db.Collection(colReviews).Indexes().CreateMany(ctx, reviews); err != nil {
		return fmt.Errorf("review indexes: %w", err)
	}

	bookings := []mongo.IndexModel{
		{Keys: bson.D{{Key: "user", Value: 1}}},
		{Keys: bson.D{{Key: "tour", Value: 1}}},
	}
	if _, err := db.Collection(colBookings).Indexes().CreateMany(ctx, bookings); err != nil {
		return fmt.Errorf("booking indexes: %w", err)
	}

	return nil
}
