package app

import (
	"github.com/prometheus/client_golang/prometheus"

	"triggertest/pkg/trigger"
)

var (
	triggersSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "triggertest_triggers_sent_total",
			Help: "Trigger bytes written to the port",
		},
		[]string{"kind"},
	)
	writeFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "triggertest_write_failures_total",
			Help: "Failed trigger writes",
		},
	)
	statusChanges = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "triggertest_status_changes_total",
			Help: "State transitions of the sequencer and the burst campaign",
		},
		[]string{"event"},
	)
	lastTrigger = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "triggertest_last_trigger_value",
			Help: "Value of the last written trigger",
		},
	)
)

func init() {
	prometheus.MustRegister(triggersSent, writeFailures, statusChanges, lastTrigger)
}

func eventName(t trigger.EventType) string {
	switch t {
	case trigger.Starting:
		return "starting"
	case trigger.Sent:
		return "sent"
	case trigger.BurstSent:
		return "burst_sent"
	case trigger.BurstDone:
		return "burst_done"
	case trigger.Ready:
		return "ready"
	case trigger.Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// observe updates the metrics for one event.
func observe(e trigger.Event, kind string) {
	statusChanges.WithLabelValues(eventName(e.Type)).Inc()

	switch e.Type {
	case trigger.Sent:
		triggersSent.WithLabelValues(kind).Inc()
		lastTrigger.Set(float64(e.Value))
	case trigger.Failed:
		writeFailures.Inc()
	}
}
