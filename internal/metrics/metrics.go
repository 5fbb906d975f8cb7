// Package metrics holds the Prometheus collectors for the decision and
// protocol loops.  Everything registers on the default registry and is
// served by the operator API's /metrics endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	FramesProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "parkgate_frames_processed_total",
		Help: "Decision cycles processed per lane.",
	}, []string{"lane"})

	Decisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "parkgate_decisions_total",
		Help: "Consensus decisions by lane and resulting action.",
	}, []string{"lane", "action"})

	GateActuations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "parkgate_gate_actuations_total",
		Help: "Gate open/close sequences per lane.",
	}, []string{"lane"})

	AlarmsRaised = promauto.NewCounter(prometheus.CounterOpts{
		Name: "parkgate_alarms_total",
		Help: "Alarm sequences fired on denied exits.",
	})

	AlertsRaised = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "parkgate_alerts_raised_total",
		Help: "Alert records created, by alert type.",
	}, []string{"type"})

	PaymentsSettled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "parkgate_payments_settled_total",
		Help: "Payment handshakes that committed to the ledger.",
	})

	PaymentFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "parkgate_payment_failures_total",
		Help: "Payment handshakes that ended without a commit, by reason.",
	}, []string{"reason"})
)
