package mongo

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/natours/tour-booking-api/internal/core/domain"
	"github.com/natours/tour-booking-api/internal/core/ports"
)

// revField is the internal bookkeeping field excluded from reads unless a
// projection explicitly asks for it.
const revField = "rev"

// PopulateFunc expands one named relation on a decoded record.
type PopulateFunc[T any] func(ctx context.Context, db *mongo.Database, rec *T) error

// TypedCollection implements ports.Collection[T] on top of a mongo
// collection. Ids are stored as ObjectID hex strings so records decode
// straight into their domain types.
type TypedCollection[T any] struct {
	db       *mongo.Database
	col      *mongo.Collection
	resource string

	validate    *validator.Validate
	createRules map[string]any
	updateRules map[string]any

	defaults    ports.Doc
	beforeWrite func(doc ports.Doc)
	baseFilter  bson.M
	populate    map[string]PopulateFunc[T]
}

// Option configures a TypedCollection at construction time.
type Option[T any] func(*TypedCollection[T])

// WithRules installs per-resource schema rules for create and update, in
// go-playground/validator ValidateMap form. Update rules are applied only to
// the fields present in the partial body.
func WithRules[T any](create, update map[string]any) Option[T] {
	return func(tc *TypedCollection[T]) {
		tc.createRules = create
		tc.updateRules = update
	}
}

// WithDefaults merges the given values into create bodies for fields the
// caller left out.
func WithDefaults[T any](defaults ports.Doc) Option[T] {
	return func(tc *TypedCollection[T]) { tc.defaults = defaults }
}

// WithBeforeWrite runs fn on every create and update body before it is
// persisted (derived fields such as slugs).
func WithBeforeWrite[T any](fn func(ports.Doc)) Option[T] {
	return func(tc *TypedCollection[T]) { tc.beforeWrite = fn }
}

// WithBaseFilter restricts every read to documents matching filter (secret
// tours, inactive users).
func WithBaseFilter[T any](filter bson.M) Option[T] {
	return func(tc *TypedCollection[T]) { tc.baseFilter = filter }
}

// WithPopulate registers a named relation expander usable from FindByID.
func WithPopulate[T any](name string, fn PopulateFunc[T]) Option[T] {
	return func(tc *TypedCollection[T]) { tc.populate[name] = fn }
}

// NewCollection builds the typed collection for one resource.
func NewCollection[T any](db *mongo.Database, name, resource string, v *validator.Validate, opts ...Option[T]) *TypedCollection[T] {
	tc := &TypedCollection[T]{
		db:       db,
		col:      db.Collection(name),
		resource: resource,
		validate: v,
		populate: map[string]PopulateFunc[T]{},
	}
	for _, opt := range opts {
		opt(tc)
	}
	return tc
}

func (tc *TypedCollection[T]) Resource() string { return tc.resource }

// Raw exposes the underlying mongo collection for repository-level queries
// (aggregations) that live beside the generic path.
func (tc *TypedCollection[T]) Raw() *mongo.Collection { return tc.col }

func (tc *TypedCollection[T]) FindByID(ctx context.Context, id string, populate ...string) (*T, error) {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return nil, fmt.Errorf("%w: %q is not a valid %s id", domain.ErrInvalidID, id, tc.resource)
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := tc.scoped(bson.M{"_id": id})
	opts := options.FindOne().SetProjection(bson.M{revField: 0})

	var rec T
	if err := tc.col.FindOne(ctx, filter, opts).Decode(&rec); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: no %s with this id", domain.ErrNotFound, tc.resource)
		}
		return nil, fmt.Errorf("find %s: %w", tc.resource, err)
	}

	for _, name := range populate {
		fn, ok := tc.populate[name]
		if !ok {
			continue
		}
		if err := fn(ctx, tc.db, &rec); err != nil {
			return nil, fmt.Errorf("populate %s.%s: %w", tc.resource, name, err)
		}
	}
	return &rec, nil
}

func (tc *TypedCollection[T]) List(ctx context.Context, q ports.ListQuery, scope ports.Doc) ([]T, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := tc.scoped(bson.M{})
	for k, v := range q.Filter {
		filter[k] = v
	}
	for k, v := range scope {
		filter[k] = v
	}

	opts := options.Find().SetSkip(q.Skip).SetLimit(q.Limit)

	sortSpec := bson.D{}
	for _, key := range q.Sort {
		dir := 1
		if key.Desc {
			dir = -1
		}
		sortSpec = append(sortSpec, bson.E{Key: key.Field, Value: dir})
	}
	if len(sortSpec) > 0 {
		opts.SetSort(sortSpec)
	}

	if q.Fields != nil {
		projection := bson.M{}
		for _, f := range q.Fields {
			projection[f] = 1
		}
		opts.SetProjection(projection)
	} else {
		opts.SetProjection(bson.M{revField: 0})
	}

	cur, err := tc.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", tc.resource, err)
	}
	defer cur.Close(ctx)

	out := []T{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode %s list: %w", tc.resource, err)
	}
	return out, nil
}

func (tc *TypedCollection[T]) Insert(ctx context.Context, doc ports.Doc) (*T, error) {
	body := cloneDoc(doc)
	for k, v := range tc.defaults {
		if _, present := body[k]; !present {
			body[k] = v
		}
	}

	if err := tc.check(body, tc.createRules); err != nil {
		return nil, err
	}
	if tc.beforeWrite != nil {
		tc.beforeWrite(body)
	}

	now := time.Now().UTC()
	id := primitive.NewObjectID().Hex()
	body["_id"] = id
	body["created_at"] = now
	body["updated_at"] = now
	body[revField] = 1

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := tc.col.InsertOne(ctx, body); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("%w: this %s already exists", domain.ErrDuplicate, tc.resource)
		}
		return nil, fmt.Errorf("insert %s: %w", tc.resource, err)
	}

	// Creates answer with the written document itself. A scoped read-back
	// would miss records the base filter hides (secret tours, inactive
	// users) and misreport a committed write as not found.
	return decodeWritten[T](tc.resource, body)
}

// decodeWritten maps a just-persisted body back into the record type.
func decodeWritten[T any](resource string, body ports.Doc) (*T, error) {
	doc := cloneDoc(body)
	delete(doc, revField)

	raw, err := bson.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", resource, err)
	}
	var rec T
	if err := bson.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decode %s: %w", resource, err)
	}
	return &rec, nil
}

func (tc *TypedCollection[T]) UpdateByID(ctx context.Context, id string, doc ports.Doc) (*T, error) {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return nil, fmt.Errorf("%w: %q is not a valid %s id", domain.ErrInvalidID, id, tc.resource)
	}
	if len(doc) == 0 {
		return nil, fmt.Errorf("%w: nothing to update", domain.ErrValidation)
	}

	body := cloneDoc(doc)
	if err := tc.check(body, tc.partialRules(body)); err != nil {
		return nil, err
	}
	if tc.beforeWrite != nil {
		tc.beforeWrite(body)
	}
	body["updated_at"] = time.Now().UTC()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	update := bson.M{"$set": body, "$inc": bson.M{revField: 1}}
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(bson.M{revField: 0})

	var rec T
	err := tc.col.FindOneAndUpdate(ctx, tc.scoped(bson.M{"_id": id}), update, opts).Decode(&rec)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: no %s with this id", domain.ErrNotFound, tc.resource)
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("%w: this %s already exists", domain.ErrDuplicate, tc.resource)
		}
		return nil, fmt.Errorf("update %s: %w", tc.resource, err)
	}
	return &rec, nil
}

func (tc *TypedCollection[T]) DeleteByID(ctx context.Context, id string) error {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return fmt.Errorf("%w: %q is not a valid %s id", domain.ErrInvalidID, id, tc.resource)
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := tc.col.DeleteOne(ctx, tc.scoped(bson.M{"_id": id}))
	if err != nil {
		return fmt.Errorf("delete %s: %w", tc.resource, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%w: no %s with this id", domain.ErrNotFound, tc.resource)
	}
	return nil
}

func (tc *TypedCollection[T]) scoped(filter bson.M) bson.M {
	for k, v := range tc.baseFilter {
		if _, present := filter[k]; !present {
			filter[k] = v
		}
	}
	return filter
}

// partialRules keeps only the update rules for fields actually present in
// the body, so a partial update never fails on absent fields.
func (tc *TypedCollection[T]) partialRules(body ports.Doc) map[string]any {
	rules := map[string]any{}
	for field, rule := range tc.updateRules {
		if _, present := body[field]; present {
			rules[field] = rule
		}
	}
	return rules
}

// check runs ValidateMap and folds the per-field failures into a single
// operational validation error with a stable field order.
func (tc *TypedCollection[T]) check(body ports.Doc, rules map[string]any) error {
	if tc.validate == nil || len(rules) == 0 {
		return nil
	}
	failed := tc.validate.ValidateMap(body, rules)
	if len(failed) == 0 {
		return nil
	}

	fields := make([]string, 0, len(failed))
	for field := range failed {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	msgs := make([]string, 0, len(fields))
	for _, field := range fields {
		msgs = append(msgs, describeFailure(field, failed[field]))
	}
	return fmt.Errorf("%w: %s", domain.ErrValidation, strings.Join(msgs, "; "))
}

func describeFailure(field string, failure any) string {
	errs, ok := failure.(validator.ValidationErrors)
	if !ok || len(errs) == 0 {
		return field + " is invalid"
	}
	fe := errs[0]
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, fe.Tag())
	}
}

func cloneDoc(doc ports.Doc) ports.Doc {
	out := make(ports.Doc, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	return out
}
