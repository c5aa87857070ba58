package crud

import (
	"fmt"
	"sort"
	"strings"

	"github.com/natours/tour-booking-api/internal/core/domain"
	"github.com/natours/tour-booking-api/internal/core/ports"
)

// Whitelist enumerates the field names an operation may accept for a
// resource. Instances are declared once per resource next to the route
// wiring, so the allowed surface is visible at startup rather than spread
// over per-request variadics.
type Whitelist struct {
	fields map[string]struct{}
	names  []string
}

// NewWhitelist builds a whitelist from the given field names.
func NewWhitelist(fields ...string) *Whitelist {
	w := &Whitelist{fields: make(map[string]struct{}, len(fields)), names: fields}
	for _, f := range fields {
		w.fields[f] = struct{}{}
	}
	return w
}

// Fields returns the allowed names, for diagnostics.
func (w *Whitelist) Fields() []string { return w.names }

// Strip returns a copy of doc holding only whitelisted fields. Unknown
// fields are silently dropped; nested values are passed through unchanged.
func (w *Whitelist) Strip(doc ports.Doc) ports.Doc {
	out := make(ports.Doc, len(doc))
	for k, v := range doc {
		if _, ok := w.fields[k]; ok {
			out[k] = v
		}
	}
	return out
}

// Check fails when doc contains any field outside the whitelist.
func (w *Whitelist) Check(doc ports.Doc) error {
	var extra []string
	for k := range doc {
		if _, ok := w.fields[k]; !ok {
			extra = append(extra, k)
		}
	}
	if len(extra) == 0 {
		return nil
	}
	sort.Strings(extra)
	return fmt.Errorf("%w: field(s) not allowed: %s", domain.ErrValidation, strings.Join(extra, ", "))
}
