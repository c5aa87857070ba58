package domain

import "time"

// Tour difficulty enumeration.
const (
	DifficultyEasy      = "easy"
	DifficultyMedium    = "medium"
	DifficultyDifficult = "difficult"
)

// Location is a GeoJSON point with presentation metadata.
type Location struct {
	Type        string    `json:"type" bson:"type"`
	Coordinates []float64 `json:"coordinates" bson:"coordinates"` // [lng, lat]
	Address     string    `json:"address,omitempty" bson:"address,omitempty"`
	Description string    `json:"description,omitempty" bson:"description,omitempty"`
	Day         int       `json:"day,omitempty" bson:"day,omitempty"`
}

// Tour is the primary sellable resource.
type Tour struct {
	ID           string  `json:"id" bson:"_id,omitempty"`
	Name         string  `json:"name" bson:"name"`
	Slug         string  `json:"slug" bson:"slug"`
	Duration     int     `json:"duration" bson:"duration"`
	MaxGroupSize int     `json:"max_group_size" bson:"max_group_size"`
	Difficulty   string  `json:"difficulty" bson:"difficulty"`
	Price        float64 `json:"price" bson:"price"`
	Discount     float64 `json:"price_discount,omitempty" bson:"price_discount,omitempty"`
	Summary      string  `json:"summary" bson:"summary"`
	Description  string  `json:"description,omitempty" bson:"description,omitempty"`
	ImageCover   string  `json:"image_cover" bson:"image_cover"`
	Images       []string `json:"images,omitempty" bson:"images,omitempty"`

	// RatingsAverage and RatingsQuantity are derived from child reviews and
	// recomputed by the review service after every review write.
	RatingsAverage  float64 `json:"ratings_average" bson:"ratings_average"`
	RatingsQuantity int     `json:"ratings_quantity" bson:"ratings_quantity"`

	StartDates    []time.Time `json:"start_dates,omitempty" bson:"start_dates,omitempty"`
	StartLocation *Location   `json:"start_location,omitempty" bson:"start_location,omitempty"`
	Locations     []Location  `json:"locations,omitempty" bson:"locations,omitempty"`

	// GuideIDs reference leading users; expanded on demand.
	GuideIDs []string `json:"guides,omitempty" bson:"guides,omitempty"`
	Guides   []User   `json:"guide_details,omitempty" bson:"-"`
	Reviews  []Review `json:"reviews,omitempty" bson:"-"`

	// Secret tours never appear in list or detail reads.
	Secret bool `json:"-" bson:"secret,omitempty"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// TourStats is one row of the per-difficulty statistics aggregation.
type TourStats struct {
	Difficulty   string  `json:"difficulty" bson:"_id"`
	NumTours     int     `json:"num_tours" bson:"num_tours"`
	TotalRatings int     `json:"total_ratings" bson:"total_ratings"`
	AvgRating    float64 `json:"avg_rating" bson:"avg_rating"`
	AvgPrice     float64 `json:"avg_price" bson:"avg_price"`
	MinPrice     float64 `json:"min_price" bson:"min_price"`
	MaxPrice     float64 `json:"max_price" bson:"max_price"`
}

// MonthlyPlanEntry is one row of the starts-per-month aggregation.
type MonthlyPlanEntry struct {
	Month     string   `json:"month" bson:"month"`
	NumStarts int      `json:"num_tour_starts" bson:"num_tour_starts"`
	Tours     []string `json:"tours" bson:"tours"`
}

// TourDistance is one row of the distance-from-point aggregation.
type TourDistance struct {
	ID       string  `json:"id" bson:"_id"`
	Name     string  `json:"name" bson:"name"`
	Distance float64 `json:"distance" bson:"distance"`
}
