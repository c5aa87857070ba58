package mongo

import (
	"testing"
	"time"

	"github.com/natours/tour-booking-api/internal/core/ports"
)

type gadget struct {
	ID        string    `bson:"_id"`
	Name      string    `bson:"name"`
	Price     float64   `bson:"price"`
	Secret    bool      `bson:"secret"`
	Rev       int       `bson:"rev"`
	CreatedAt time.Time `bson:"created_at"`
}

// A create must answer with the written record even when the base filter
// would hide it from normal reads (secret tours, disabled users).
func TestDecodeWritten_ReturnsFilteredOutRecords(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Millisecond)
	body := ports.Doc{
		"_id":        "64f000000000000000000001",
		"name":       "hidden launch",
		"price":      float64(497),
		"secret":     true,
		"created_at": now,
		revField:     1,
	}

	rec, err := decodeWritten[gadget]("gadget", body)
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if rec.ID != "64f000000000000000000001" || rec.Name != "hidden launch" {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if !rec.Secret {
		t.Fatal("secret flag lost on the way back")
	}
	if rec.Price != 497 {
		t.Fatalf("expected price 497, got %v", rec.Price)
	}
	if !rec.CreatedAt.Equal(now) {
		t.Fatalf("expected created_at %v, got %v", now, rec.CreatedAt)
	}
}

func TestDecodeWritten_DropsBookkeepingField(t *testing.T) {
	body := ports.Doc{
		"_id":  "64f000000000000000000002",
		"name": "plain",
		revField: 7,
	}

	rec, err := decodeWritten[gadget]("gadget", body)
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if rec.Rev != 0 {
		t.Fatalf("bookkeeping field leaked into the record: rev=%d", rec.Rev)
	}
	if _, present := body[revField]; !present {
		t.Fatal("caller's body must not be mutated")
	}
}
