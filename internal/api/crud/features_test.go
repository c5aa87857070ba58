package crud

import (
	"net/url"
	"reflect"
	"testing"

	"github.com/natours/tour-booking-api/internal/core/ports"
)

func buildQuery(raw string) ports.ListQuery {
	values, _ := url.ParseQuery(raw)
	return NewFeatures(values).Filter().Sort().SelectFields().Paginate().Query()
}

func TestFeatures_FilterEquality(t *testing.T) {
	q := buildQuery("difficulty=easy&duration=5")

	if q.Filter["difficulty"] != "easy" {
		t.Fatalf("expected difficulty filter, got %v", q.Filter["difficulty"])
	}
	if q.Filter["duration"] != 5.0 {
		t.Fatalf("expected numeric duration, got %v (%T)", q.Filter["duration"], q.Filter["duration"])
	}
}

func TestFeatures_FilterComparison(t *testing.T) {
	q := buildQuery("price[lte]=1500&duration[gte]=5")

	price, ok := q.Filter["price"].(map[string]any)
	if !ok || price["$lte"] != 1500.0 {
		t.Fatalf("expected price $lte 1500, got %v", q.Filter["price"])
	}
	duration, ok := q.Filter["duration"].(map[string]any)
	if !ok || duration["$gte"] != 5.0 {
		t.Fatalf("expected duration $gte 5, got %v", q.Filter["duration"])
	}
}

func TestFeatures_FilterCombinedComparisons(t *testing.T) {
	q := buildQuery("price[gte]=500&price[lte]=1500")

	price, ok := q.Filter["price"].(map[string]any)
	if !ok {
		t.Fatalf("expected operator map, got %v", q.Filter["price"])
	}
	if price["$gte"] != 500.0 || price["$lte"] != 1500.0 {
		t.Fatalf("expected both bounds, got %v", price)
	}
}

func TestFeatures_ReservedParamsNotFilters(t *testing.T) {
	q := buildQuery("sort=price&page=2&limit=10&fields=name")

	if len(q.Filter) != 0 {
		t.Fatalf("reserved params leaked into filter: %v", q.Filter)
	}
}

func TestFeatures_SortExplicit(t *testing.T) {
	q := buildQuery("sort=-ratings_average,price")

	want := []ports.SortKey{
		{Field: "ratings_average", Desc: true},
		{Field: "price"},
	}
	if !reflect.DeepEqual(q.Sort, want) {
		t.Fatalf("unexpected sort: %+v", q.Sort)
	}
}

func TestFeatures_SortDefault(t *testing.T) {
	q := buildQuery("")

	want := []ports.SortKey{{Field: "created_at", Desc: true}}
	if !reflect.DeepEqual(q.Sort, want) {
		t.Fatalf("expected newest-first default, got %+v", q.Sort)
	}
}

func TestFeatures_Fields(t *testing.T) {
	q := buildQuery("fields=name,price, duration")

	want := []string{"name", "price", "duration"}
	if !reflect.DeepEqual(q.Fields, want) {
		t.Fatalf("unexpected projection: %v", q.Fields)
	}
}

func TestFeatures_Paginate(t *testing.T) {
	q := buildQuery("page=2&limit=10")

	if q.Skip != 10 || q.Limit != 10 {
		t.Fatalf("expected skip 10 limit 10, got skip %d limit %d", q.Skip, q.Limit)
	}
}

func TestFeatures_PaginateDefaults(t *testing.T) {
	for _, raw := range []string{"", "page=0&limit=-3", "page=abc&limit=xyz"} {
		q := buildQuery(raw)
		if q.Skip != 0 || q.Limit != 100 {
			t.Fatalf("%q: expected skip 0 limit 100, got skip %d limit %d", raw, q.Skip, q.Limit)
		}
	}
}
