package assignee

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var lookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "catering",
	Subsystem: "assignee",
	Name:      "lookups_total",
	Help:      "Total number of shift assignee lookups broken down by kind and result.",
}, []string{"kind", "result"})

func recordLookup(kind string, ok bool) {
	result := "ok"
	if !ok {
		result = "failed"
	}
	lookupsTotal.WithLabelValues(kind, result).Inc()
}
