package ports

import "context"

// Doc is a schemaless record body as bound from a JSON request or handed to
// the storage layer. Field names follow the stored (bson) naming.
type Doc = map[string]any

// SortKey is one element of an ordered sort specification.
type SortKey struct {
	Field string
	Desc  bool
}

// ListQuery is the interpreted form of a raw query-parameter mapping:
// filter predicates, a sort order, a field projection and a page window.
// It is rebuilt per request and carries no identity.
type ListQuery struct {
	// Filter maps field names to either an equality value or an operator
	// map such as {"$gte": 500}. Field names are not validated against the
	// resource schema.
	Filter map[string]any
	Sort   []SortKey
	// Fields is the projection; nil means "default projection" (everything
	// except the internal rev bookkeeping field).
	Fields []string
	Skip   int64
	Limit  int64
}

// Collection is the single read/write path the generic CRUD handlers use.
// A typed implementation exists per resource; T is the decoded record type.
type Collection[T any] interface {
	// Resource returns the singular resource name used in response payloads
	// and error messages ("tour", "user", ...).
	Resource() string

	// FindByID fetches one record, optionally expanding the named
	// referenced relations. Returns domain.ErrNotFound when absent and
	// domain.ErrInvalidID when the id cannot be parsed.
	FindByID(ctx context.Context, id string, populate ...string) (*T, error)

	// List runs the interpreted query merged with an extra equality scope
	// (parent filtering, e.g. reviews under one tour). An empty result is
	// not an error.
	List(ctx context.Context, q ListQuery, scope Doc) ([]T, error)

	// Insert validates doc against the resource's create schema, applies
	// defaults, persists and returns the stored record.
	Insert(ctx context.Context, doc Doc) (*T, error)

	// UpdateByID validates the partial doc against the resource's update
	// schema and applies it. Returns domain.ErrNotFound when id does not
	// resolve.
	UpdateByID(ctx context.Context, id string, doc Doc) (*T, error)

	// DeleteByID removes the record, domain.ErrNotFound when absent.
	DeleteByID(ctx context.Context, id string) error
}
