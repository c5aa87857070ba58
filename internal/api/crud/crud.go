// Package crud implements the generic request pipeline shared by every
// resource: the query feature builder plus the five parametrized handlers
// (create, read-one, read-many, update, delete). Handlers are generic over
// ports.Collection[T], so a resource opts in by supplying its typed
// collection, its field whitelists and, where needed, a couple of hooks.
package crud

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/natours/tour-booking-api/internal/core/domain"
	"github.com/natours/tour-booking-api/internal/core/ports"
)

// hooks carries the optional per-operation extension points. Each handler
// reads only the hooks that make sense for it.
type hooks[T any] struct {
	prepare      func(echo.Context, ports.Doc)
	afterWrite   func(echo.Context, *T) error
	beforeDelete func(echo.Context, string) error
	afterDelete  func(echo.Context, string) error
	scopeParam   string
	scopeField   string
}

// Option configures one generic handler.
type Option[T any] func(*hooks[T])

// WithPrepare mutates the bound body before whitelisting and persistence
// (e.g. filling a review's tour/user ids from route and identity context).
func WithPrepare[T any](fn func(echo.Context, ports.Doc)) Option[T] {
	return func(h *hooks[T]) { h.prepare = fn }
}

// WithAfterWrite runs after a successful create or update; a returned
// error fails the request after the write has committed.
func WithAfterWrite[T any](fn func(echo.Context, *T) error) Option[T] {
	return func(h *hooks[T]) { h.afterWrite = fn }
}

// WithBeforeDelete runs before the delete, while the record still exists.
func WithBeforeDelete[T any](fn func(echo.Context, string) error) Option[T] {
	return func(h *hooks[T]) { h.beforeDelete = fn }
}

// WithAfterDelete runs once the record is gone.
func WithAfterDelete[T any](fn func(echo.Context, string) error) Option[T] {
	return func(h *hooks[T]) { h.afterDelete = fn }
}

// WithScope restricts GetAll to records whose field equals the named route
// parameter, when present (nested reviews under a tour).
func WithScope[T any](param, field string) Option[T] {
	return func(h *hooks[T]) { h.scopeParam, h.scopeField = param, field }
}

func buildHooks[T any](opts []Option[T]) hooks[T] {
	var h hooks[T]
	for _, opt := range opts {
		opt(&h)
	}
	return h
}

// CreateOne persists a new record. With a whitelist, any field outside it
// fails the request; without one the body is stored as bound. Nested
// values are persisted unchanged either way.
func CreateOne[T any](col ports.Collection[T], wl *Whitelist, opts ...Option[T]) echo.HandlerFunc {
	h := buildHooks(opts)
	return func(c echo.Context) error {
		body, err := bindDoc(c)
		if err != nil {
			return err
		}
		if h.prepare != nil {
			h.prepare(c, body)
		}
		if wl != nil {
			if err := wl.Check(body); err != nil {
				return err
			}
		}

		rec, err := col.Insert(c.Request().Context(), body)
		if err != nil {
			return err
		}
		if h.afterWrite != nil {
			if err := h.afterWrite(c, rec); err != nil {
				return err
			}
		}

		return c.JSON(http.StatusCreated, envelope(col.Resource(), rec))
	}
}

// GetOne fetches by the :id route parameter, optionally expanding the
// named relations.
func GetOne[T any](col ports.Collection[T], populate ...string) echo.HandlerFunc {
	return func(c echo.Context) error {
		rec, err := col.FindByID(c.Request().Context(), c.Param("id"), populate...)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, envelope(col.Resource(), rec))
	}
}

// GetAll lists records through the query feature builder. An empty result
// is a success with a zero count.
func GetAll[T any](col ports.Collection[T], opts ...Option[T]) echo.HandlerFunc {
	h := buildHooks(opts)
	return func(c echo.Context) error {
		q := NewFeatures(c.QueryParams()).
			Filter().
			Sort().
			SelectFields().
			Paginate().
			Query()

		var scope ports.Doc
		if h.scopeParam != "" {
			if parent := c.Param(h.scopeParam); parent != "" {
				scope = ports.Doc{h.scopeField: parent}
			}
		}

		recs, err := col.List(c.Request().Context(), q, scope)
		if err != nil {
			return err
		}

		return c.JSON(http.StatusOK, echo.Map{
			"status": "success",
			"data": echo.Map{
				col.Resource() + "Count": len(recs),
				col.Resource():           recs,
			},
		})
	}
}

// UpdateOne applies a partial update restricted to the whitelist. Fields
// outside it are silently dropped; an empty body is rejected before any
// storage call.
func UpdateOne[T any](col ports.Collection[T], wl *Whitelist, opts ...Option[T]) echo.HandlerFunc {
	h := buildHooks(opts)
	return func(c echo.Context) error {
		body, err := bindDoc(c)
		if err != nil {
			return err
		}
		if len(body) == 0 {
			return fmt.Errorf("%w: could not find any data to change to", domain.ErrValidation)
		}
		if wl != nil {
			body = wl.Strip(body)
			if len(body) == 0 {
				return fmt.Errorf("%w: you didn't include any fields to change", domain.ErrValidation)
			}
		}

		rec, err := col.UpdateByID(c.Request().Context(), c.Param("id"), body)
		if err != nil {
			return err
		}
		if h.afterWrite != nil {
			if err := h.afterWrite(c, rec); err != nil {
				return err
			}
		}

		return c.JSON(http.StatusOK, envelope(col.Resource(), rec))
	}
}

// DeleteOne removes by id, answering 204 on success and the not-found
// error otherwise — never a silent success.
func DeleteOne[T any](col ports.Collection[T], opts ...Option[T]) echo.HandlerFunc {
	h := buildHooks(opts)
	return func(c echo.Context) error {
		id := c.Param("id")
		if h.beforeDelete != nil {
			if err := h.beforeDelete(c, id); err != nil {
				return err
			}
		}
		if err := col.DeleteByID(c.Request().Context(), id); err != nil {
			return err
		}
		if h.afterDelete != nil {
			if err := h.afterDelete(c, id); err != nil {
				return err
			}
		}
		return c.NoContent(http.StatusNoContent)
	}
}

func bindDoc(c echo.Context) (ports.Doc, error) {
	body := ports.Doc{}
	if err := c.Bind(&body); err != nil {
		return nil, fmt.Errorf("%w: invalid request body", domain.ErrValidation)
	}
	return body, nil
}

func envelope(resource string, rec any) echo.Map {
	return echo.Map{
		"status": "success",
		"data":   echo.Map{resource: rec},
	}
}
