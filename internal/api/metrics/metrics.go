// Package metrics defines and registers all custom Prometheus metrics for
// the tour-booking API. It is the single source of truth for metric names,
// labels, and help strings. Registration happens at import time through
// promauto; the router additionally mounts the echoprometheus request
// middleware for generic HTTP metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "natours"

// SignupsTotal counts account registrations.
// Label:
//   - result: "ok" or "error"
var SignupsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "signups_total",
		Help:      "Total number of signup attempts, by result.",
	},
	[]string{"result"},
)

// LoginsTotal counts login attempts.
// Label:
//   - result: "ok" or "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// BookingsCreatedTotal counts booking records written.
// Label:
//   - source: "webhook" (checkout completed) or "api" (admin CRUD)
var BookingsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bookings_created_total",
		Help:      "Total number of bookings created, by source.",
	},
	[]string{"source"},
)

// ReviewWritesTotal counts review create/update/delete operations that
// triggered a tour-rating recompute.
var ReviewWritesTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "review_writes_total",
		Help:      "Total number of review writes followed by a rating recompute.",
	},
)

// RateLimitedTotal counts API requests rejected by the per-caller limit.
var RateLimitedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rate_limited_total",
		Help:      "Total number of requests rejected by the rate limiter.",
	},
)
