// Package metrics defines and registers all custom Prometheus metrics for
// the TechFix panel gateway. It is the single source of truth for metric
// names, labels, and help strings; metrics register with the default
// registry at import time via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "techfix"

// ── Session metrics ───────────────────────────────────────────────────────────

// LoginsTotal counts login attempts by outcome.
// Label:
//   - result: "success", "rejected" (upstream said no), or "error" (transport)
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// LogoutsTotal counts session revocations, including those forced by an
// upstream 401.
// Label:
//   - reason: "user" or "unauthenticated"
var LogoutsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logouts_total",
		Help:      "Total number of session revocations, by reason.",
	},
	[]string{"reason"},
)

// SessionChangeEvents counts store change notifications observed by this
// replica, the signal that keeps replicas converged after a remote
// login or logout.
var SessionChangeEvents = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_change_events_total",
		Help:      "Total number of session store change notifications received.",
	},
)

// RegisterActiveSessions exposes the number of live sessions cached by this
// replica as a gauge. Called once at startup with the manager's counter.
func RegisterActiveSessions(count func() float64) {
	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "active_sessions",
		Help:      "Number of live sessions cached by this replica.",
	}, count)
}

// ── Guard metrics ─────────────────────────────────────────────────────────────

// GuardDecisionsTotal counts route-guard evaluations.
// Label:
//   - decision: "allow", "redirect_to_login", or "redirect_to_unauthorized"
var GuardDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "guard_decisions_total",
		Help:      "Total number of route guard decisions, by decision.",
	},
	[]string{"decision"},
)

// ── Upstream metrics ──────────────────────────────────────────────────────────

// UpstreamRequestDuration measures one proxied round trip to the TechFix API.
// Label:
//   - endpoint: coarse endpoint family (e.g. "auth", "repair_orders")
var UpstreamRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "upstream_request_duration_seconds",
		Help:      "Duration of requests to the upstream TechFix API.",
		Buckets:   prometheus.DefBuckets, // .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10
	},
	[]string{"endpoint"},
)
