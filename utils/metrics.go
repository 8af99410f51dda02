package utils

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Engine metrics. Counters only; the engine is small enough that
// rollbacks and upstream failures are the signals worth watching.
var (
	CheckinsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gateway_checkins_total",
		Help: "Check-in/check-out toggles processed, by direction and outcome.",
	}, []string{"direction", "outcome"})

	RollbacksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gateway_optimistic_rollbacks_total",
		Help: "Optimistic toggles reverted after an upstream failure.",
	})

	PollTicksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gateway_poll_ticks_total",
		Help: "Reconciliation poll ticks, by poller and outcome.",
	}, []string{"poller", "outcome"})

	UpstreamErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gateway_upstream_errors_total",
		Help: "Upstream ChMS call failures, by operation.",
	}, []string{"operation"})
)
