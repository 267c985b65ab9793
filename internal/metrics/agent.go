// Package metrics holds the Prometheus collectors of the ordering line.
// Labels stay low-cardinality: never a call id or customer field.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Turn outcomes
const (
	OutcomeOK       = "ok"
	OutcomeReplay   = "replay"
	OutcomeBusy     = "busy"
	OutcomeError    = "error"
	OutcomeFinished = "finished"
)

var (
	TurnsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "phone_order_turns_total",
		Help: "Dialogue turns handled, by outcome.",
	}, []string{"outcome"})

	TurnDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "phone_order_turn_duration_seconds",
		Help:    "Time spent handling one dialogue turn, collaborator calls included.",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 4, 8, 16},
	})

	ExtractionFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "phone_order_extraction_failures_total",
		Help: "Utterances the NLU collaborator could not parse.",
	})

	ClarificationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "phone_order_clarifications_total",
		Help: "Ambiguous extras mentions that raised a clarification question.",
	})

	OrdersPlacedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "phone_order_orders_placed_total",
		Help: "Confirmed orders, by fulfillment mode.",
	}, []string{"mode"})

	PersistFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "phone_order_persist_failures_total",
		Help: "Placed orders that could not be handed to persistence.",
	})

	SynthesisFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "phone_order_synthesis_failures_total",
		Help: "Replies spoken with the telephony fallback voice because synthesis failed.",
	})
)

func RecordTurn(outcome string, seconds float64) {
	TurnsTotal.WithLabelValues(outcome).Inc()
	if seconds >= 0 {
		TurnDuration.Observe(seconds)
	}
}

func RecordOrderPlaced(mode string) {
	if mode == "" {
		mode = "unknown"
	}
	OrdersPlacedTotal.WithLabelValues(mode).Inc()
}
