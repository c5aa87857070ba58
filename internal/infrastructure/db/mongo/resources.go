package mongo

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/gosimple/slug"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/natours/tour-booking-api/internal/core/domain"
	"github.com/natours/tour-booking-api/internal/core/ports"
)

// Collection names.
const (
	colTours    = "tours"
	colUsers    = "users"
	colReviews  = "reviews"
	colBookings = "bookings"
)

// NewTourCollection wires the tours resource: schema rules mirroring the
// tour model, slug derivation on writes, secret tours hidden from reads,
// and reviews/guides expanders for detail fetches.
func NewTourCollection(db *mongo.Database, v *validator.Validate) *TypedCollection[domain.Tour] {
	createRules := map[string]any{
		"name":            "required,min=5,max=40",
		"duration":        "required,gt=0",
		"max_group_size":  "required,gt=0",
		"difficulty":      "required,oneof=easy medium difficult",
		"price":           "omitempty,gt=0,max=3000",
		"summary":         "required",
		"image_cover":     "required",
		"ratings_average": "omitempty,min=1,max=5",
	}
	updateRules := map[string]any{
		"name":            "min=5,max=40",
		"duration":        "gt=0",
		"max_group_size":  "gt=0",
		"difficulty":      "oneof=easy medium difficult",
		"price":           "gt=0,max=3000",
		"summary":         "min=1",
		"image_cover":     "min=1",
		"ratings_average": "min=1,max=5",
	}

	return NewCollection[domain.Tour](db, colTours, "tour", v,
		WithRules[domain.Tour](createRules, updateRules),
		WithDefaults[domain.Tour](ports.Doc{
			"price":            2000.0,
			"ratings_average":  4.5,
			"ratings_quantity": 0,
		}),
		WithBeforeWrite[domain.Tour](func(doc ports.Doc) {
			if name, ok := doc["name"].(string); ok && name != "" {
				doc["slug"] = slug.Make(name)
			}
		}),
		WithBaseFilter[domain.Tour](bson.M{"secret": bson.M{"$ne": true}}),
		WithPopulate[domain.Tour]("reviews", populateTourReviews),
		WithPopulate[domain.Tour]("guides", populateTourGuides),
	)
}

func populateTourReviews(ctx context.Context, db *mongo.Database, tour *domain.Tour) error {
	cur, err := db.Collection(colReviews).Find(ctx, bson.M{"tour": tour.ID})
	if err != nil {
		return err
	}
	defer cur.Close(ctx)
	tour.Reviews = []domain.Review{}
	return cur.All(ctx, &tour.Reviews)
}

func populateTourGuides(ctx context.Context, db *mongo.Database, tour *domain.Tour) error {
	if len(tour.GuideIDs) == 0 {
		return nil
	}
	cur, err := db.Collection(colUsers).Find(ctx, bson.M{
		"_id":    bson.M{"$in": tour.GuideIDs},
		"active": true,
	})
	if err != nil {
		return err
	}
	defer cur.Close(ctx)
	tour.Guides = []domain.User{}
	return cur.All(ctx, &tour.Guides)
}

// NewUserCollection wires the users resource for the admin CRUD path. The
// password lifecycle never goes through here; see UserRepository.
func NewUserCollection(db *mongo.Database, v *validator.Validate) *TypedCollection[domain.User] {
	createRules := map[string]any{
		"name":  "required,min=3,max=30",
		"email": "required,email",
		"role":  "omitempty,oneof=user co-leader leader admin",
	}
	updateRules := map[string]any{
		"name":  "min=3,max=30",
		"email": "email",
		"role":  "oneof=user co-leader leader admin",
	}

	return NewCollection[domain.User](db, colUsers, "user", v,
		WithRules[domain.User](createRules, updateRules),
		WithDefaults[domain.User](ports.Doc{
			"role":   domain.RoleUser,
			"photo":  "default.jpg",
			"active": true,
		}),
		WithBaseFilter[domain.User](bson.M{"active": true}),
	)
}

// NewReviewCollection wires the reviews resource. The unique (user, tour)
// index enforces one review per pair; the author expander resolves the
// writing user for detail reads.
func NewReviewCollection(db *mongo.Database, v *validator.Validate) *TypedCollection[domain.Review] {
	createRules := map[string]any{
		"rating": "required,min=1,max=5",
		"tour":   "required",
		"user":   "required",
	}
	updateRules := map[string]any{
		"rating": "min=1,max=5",
	}

	return NewCollection[domain.Review](db, colReviews, "review", v,
		WithRules[domain.Review](createRules, updateRules),
		WithPopulate[domain.Review]("author", populateReviewAuthor),
	)
}

func populateReviewAuthor(ctx context.Context, db *mongo.Database, review *domain.Review) error {
	var author domain.User
	err := db.Collection(colUsers).FindOne(ctx, bson.M{"_id": review.UserID}).Decode(&author)
	if err == mongo.ErrNoDocuments {
		return nil
	}
	if err != nil {
		return err
	}
	review.Author = &author
	return nil
}

// NewBookingCollection wires the bookings resource for the admin CRUD path.
func NewBookingCollection(db *mongo.Database, v *validator.Validate) *TypedCollection[domain.Booking] {
	createRules := map[string]any{
		"tour":  "required",
		"user":  "required",
		"price": "required,gt=0",
	}
	updateRules := map[string]any{
		"tour": "min=1",
		"user": "min=1",
	}

	return NewCollection[domain.Booking](db, colBookings, "booking", v,
		WithRules[domain.Booking](createRules, updateRules),
		WithDefaults[domain.Booking](ports.Doc{"paid": true}),
	)
}
