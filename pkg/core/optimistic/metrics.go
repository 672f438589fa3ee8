package optimistic

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var mutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "catering",
	Name:      "mutations_total",
	Help:      "Total number of optimistic mutations broken down by command and outcome.",
}, []string{"command", "outcome"})

func recordMutation(command string, outcome State) {
	mutationsTotal.WithLabelValues(command, outcome.String()).Inc()
}
