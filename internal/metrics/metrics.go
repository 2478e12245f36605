package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// CodesSent counts outbound SMS code deliveries, including the
	// substituted test-phone ones.
	CodesSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sms_codes_sent_total",
			Help: "Total number of one-time codes dispatched",
		},
		[]string{"channel"},
	)

	// ActivationsCreated counts newly minted activations (reused ones are
	// not counted).
	ActivationsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "activations_created_total",
			Help: "Total number of activation records created",
		},
	)

	// ActivationsCompleted counts successful code redemptions.
	ActivationsCompleted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "activations_completed_total",
			Help: "Total number of completed activations",
		},
		[]string{"new_user"},
	)

	// TokenRefreshes counts refresh attempts by outcome.
	TokenRefreshes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "token_refresh_total",
			Help: "Total number of token refresh attempts",
		},
		[]string{"result"},
	)
)

// Register adds all collectors to the default prometheus registry.
func Register() {
	prometheus.MustRegister(
		CodesSent,
		ActivationsCreated,
		ActivationsCompleted,
		TokenRefreshes,
	)
}
