package domain

import "time"

// Review is a rating with optional text, unique per (user, tour) pair.
type Review struct {
	ID      string  `json:"id" bson:"_id,omitempty"`
	Review  string  `json:"review,omitempty" bson:"review,omitempty"`
	Rating  float64 `json:"rating" bson:"rating"`
	TourID  string  `json:"tour" bson:"tour"`
	UserID  string  `json:"user" bson:"user"`
	Author  *User   `json:"author,omitempty" bson:"-"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// RatingSummary is the aggregate recomputed from a tour's reviews.
type RatingSummary struct {
	Count   int     `bson:"count"`
	Average float64 `bson:"average"`
}
