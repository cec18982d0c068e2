package source

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// cyclesTotal counts completed acquisition cycles by the tier that supplied the data.
	cyclesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cafe_acquisition_cycles_total",
		Help: "Completed acquisition cycles by supplying tier",
	}, []string{"tier"})

	tierAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cafe_acquisition_tier_attempts_total",
		Help: "Tier attempts by tier and outcome",
	}, []string{"tier", "outcome"})

	cycleDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "cafe_acquisition_cycle_duration_seconds",
		Help:    "Acquisition cycle duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~40s
	})
)
