package domain

import "time"

// Booking records a purchase of a tour by a user. Most bookings originate
// from the payment provider's checkout-completed webhook; admins can also
// create them manually.
type Booking struct {
	ID     string  `json:"id" bson:"_id,omitempty"`
	TourID string  `json:"tour" bson:"tour"`
	UserID string  `json:"user" bson:"user"`
	Price  float64 `json:"price" bson:"price"`
	Paid   bool    `json:"paid" bson:"paid"`

	// Reference is an opaque id handed to support staff; it also doubles as
	// the checkout session's client reference.
	Reference string `json:"reference,omitempty" bson:"reference,omitempty"`

	Tour *Tour `json:"tour_details,omitempty" bson:"-"`
	User *User `json:"user_details,omitempty" bson:"-"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// CheckoutSession is what the payment provider returns when a checkout is
// initiated; the client is redirected to URL.
type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// CheckoutCompleted is the trusted payload extracted from a verified
// checkout-completed webhook event.
type CheckoutCompleted struct {
	TourID        string
	CustomerEmail string
	AmountTotal   int64 // minor units
	Reference     string
	CompletedAt   time.Time
}
