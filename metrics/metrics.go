package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the service's Prometheus collectors.
	Registry = prometheus.NewRegistry()

	authAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "flashplan",
			Subsystem: "auth",
			Name:      "attempts_total",
			Help:      "Register and login attempts by outcome.",
		},
		[]string{"operation", "result"},
	)

	sessionEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "flashplan",
			Subsystem: "sessions",
			Name:      "events_total",
			Help:      "Session creations, resolutions and revocations by result.",
		},
		[]string{"event", "result"},
	)

	ledgerOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "flashplan",
			Subsystem: "ledger",
			Name:      "operations_total",
			Help:      "Membership and favorite operations by outcome.",
		},
		[]string{"operation", "result"},
	)
)

func init() {
	Registry.MustRegister(authAttempts, sessionEvents, ledgerOps)
}

// RecordAuth counts a register/login attempt, e.g. ("login", "invalid_credentials").
func RecordAuth(operation, result string) {
	authAttempts.WithLabelValues(operation, result).Inc()
}

// RecordSession counts a session event, e.g. ("resolve", "expired").
func RecordSession(event, result string) {
	sessionEvents.WithLabelValues(event, result).Inc()
}

// RecordLedger counts a membership/favorite operation, e.g. ("join", "conflict").
func RecordLedger(operation, result string) {
	ledgerOps.WithLabelValues(operation, result).Inc()
}

// Handler exposes Registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
