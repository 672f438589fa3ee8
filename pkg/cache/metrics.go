package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cacheRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "catering",
		Subsystem: "cache",
		Name:      "requests_total",
		Help:      "Total number of query cache reads broken down by entity and hit/miss.",
	}, []string{"entity", "result"})

	cacheInvalidations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "catering",
		Subsystem: "cache",
		Name:      "invalidate_total",
		Help:      "Total number of query cache invalidations broken down by entity and action.",
	}, []string{"entity", "action"})
)

func recordRequest(entity Entity, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	cacheRequests.WithLabelValues(string(entity), result).Inc()
}

func recordInvalidate(entity Entity, action string) {
	cacheInvalidations.WithLabelValues(string(entity), action).Inc()
}
