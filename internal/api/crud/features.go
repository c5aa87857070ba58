package crud

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/natours/tour-booking-api/internal/core/ports"
)

// Pagination defaults applied on missing or invalid input. There is no
// upper clamp on limit.
const (
	defaultPage  = 1
	defaultLimit = 100
)

// Parameters with reserved meaning; everything else is a filter predicate.
var reservedParams = map[string]struct{}{
	"sort":   {},
	"page":   {},
	"limit":  {},
	"fields": {},
}

// comparison suffixes rewritten into query-engine operator form.
var comparisonOps = map[string]string{
	"gte": "$gte",
	"gt":  "$gt",
	"lte": "$lte",
	"lt":  "$lt",
}

// Features interprets a raw query-parameter mapping into a ports.ListQuery
// through four chainable steps applied in fixed order:
//
//	NewFeatures(values).Filter().Sort().SelectFields().Paginate().Query()
//
// The steps are independent except that pagination operates on the already
// filtered and sorted window, so it must come last.
type Features struct {
	values url.Values
	query  ports.ListQuery
}

func NewFeatures(values url.Values) *Features {
	return &Features{values: values, query: ports.ListQuery{Filter: map[string]any{}}}
}

// Filter turns every non-reserved parameter into a predicate. Keys of the
// form name[op] with op in {gte,gt,lte,lt} become comparison predicates;
// anything else is an equality match. Field names are accepted verbatim,
// unvalidated against any schema.
func (f *Features) Filter() *Features {
	for key, vals := range f.values {
		if _, reserved := reservedParams[key]; reserved || len(vals) == 0 {
			continue
		}
		value := coerce(vals[0])

		if name, op, ok := splitComparison(key); ok {
			operators, _ := f.query.Filter[name].(map[string]any)
			if operators == nil {
				operators = map[string]any{}
			}
			operators[op] = value
			f.query.Filter[name] = operators
			continue
		}
		f.query.Filter[key] = value
	}
	return f
}

// Sort splits the sort parameter on commas into ordered sort keys; a
// leading '-' marks a key descending. Without the parameter, ordering
// defaults to newest first.
func (f *Features) Sort() *Features {
	raw := f.values.Get("sort")
	if raw == "" {
		f.query.Sort = []ports.SortKey{{Field: "created_at", Desc: true}}
		return f
	}

	for _, key := range strings.Split(raw, ",") {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		if rest, found := strings.CutPrefix(key, "-"); found {
			f.query.Sort = append(f.query.Sort, ports.SortKey{Field: rest, Desc: true})
		} else {
			f.query.Sort = append(f.query.Sort, ports.SortKey{Field: key})
		}
	}
	return f
}

// SelectFields projects only the named fields when a fields parameter is
// present; the storage layer otherwise excludes its internal bookkeeping
// field by default.
func (f *Features) SelectFields() *Features {
	raw := f.values.Get("fields")
	if raw == "" {
		return f
	}
	for _, field := range strings.Split(raw, ",") {
		if field = strings.TrimSpace(field); field != "" {
			f.query.Fields = append(f.query.Fields, field)
		}
	}
	return f
}

// Paginate coerces page and limit to positive integers, falling back to
// the defaults, and derives the skip offset.
func (f *Features) Paginate() *Features {
	page := positiveInt(f.values.Get("page"), defaultPage)
	limit := positiveInt(f.values.Get("limit"), defaultLimit)

	f.query.Skip = int64((page - 1) * limit)
	f.query.Limit = int64(limit)
	return f
}

// Query returns the interpreted list query.
func (f *Features) Query() ports.ListQuery {
	return f.query
}

// splitComparison recognises keys of the form name[op].
func splitComparison(key string) (name, op string, ok bool) {
	open := strings.IndexByte(key, '[')
	if open <= 0 || !strings.HasSuffix(key, "]") {
		return "", "", false
	}
	mapped, known := comparisonOps[key[open+1:len(key)-1]]
	if !known {
		return "", "", false
	}
	return key[:open], mapped, true
}

// coerce turns numeric-looking parameter values into numbers so comparison
// predicates work on numeric fields.
func coerce(raw string) any {
	if n, err := strconv.ParseFloat(raw, 64); err == nil {
		return n
	}
	if raw == "true" {
		return true
	}
	if raw == "false" {
		return false
	}
	return raw
}

func positiveInt(raw string, fallback int) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
