package counters

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var notificationCounter = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "checkout",
	Name:      "notifications_received",
	Help:      "Total number of received notifications by kind.",
}, []string{"kind"})

var outcomeCounter = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "checkout",
	Name:      "dispatch_outcomes",
	Help:      "Dispatch outcomes by kind.",
}, []string{"kind", "outcome"})

var commandCounter = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "checkout",
	Name:      "order_commands",
	Help:      "Outbound order commands by result.",
}, []string{"command", "result"})

func CountNotification(kind string) {
	if len(kind) == 0 {
		return
	}
	notificationCounter.With(prometheus.Labels{"kind": kind}).Inc()
}

func CountOutcome(kind, outcome string) {
	if len(kind) == 0 || len(outcome) == 0 {
		return
	}
	outcomeCounter.With(prometheus.Labels{"kind": kind, "outcome": outcome}).Inc()
}

func CountCommand(command, result string) {
	if len(command) == 0 || len(result) == 0 {
		return
	}
	commandCounter.With(prometheus.Labels{"command": command, "result": result}).Inc()
}
