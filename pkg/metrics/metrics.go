package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Engine counters, registered once on the default registry. The HTTP layer
// exposes them on /metrics.
var (
	FixesProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "pandu",
		Name:      "fixes_processed_total",
		Help:      "Positioning fixes run through the location filter.",
	})

	RoutesCalculated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "pandu",
		Name:      "routes_calculated_total",
		Help:      "Route calculations, including direct-route fallbacks.",
	})

	MatchesServed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "pandu",
		Name:      "matches_served_total",
		Help:      "Observations produced by the route matcher.",
	})

	RouteCalculationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "pandu",
		Name:      "route_calculation_seconds",
		Help:      "Wall time of CalculateRoutes calls.",
		Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
	})
)
