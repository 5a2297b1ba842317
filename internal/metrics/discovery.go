package metrics

import "github.com/prometheus/client_golang/prometheus"

// Discovery-pipeline counters. Registered explicitly from main (no init()).
var (
	// CacheTotal counts response-cache outcomes by result: hit, miss, error.
	CacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "eerie",
			Name:      "response_cache_total",
			Help:      "Response cache lookups by outcome",
		},
		[]string{"result"},
	)

	// RateLimitTotal counts quota checks by outcome: allowed, rejected, error.
	RateLimitTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "eerie",
			Name:      "rate_limit_total",
			Help:      "Rate limit checks by outcome",
		},
		[]string{"result"},
	)
)

// RegisterDiscoveryMetrics registers the pipeline counters.
func RegisterDiscoveryMetrics() {
	prometheus.MustRegister(CacheTotal)
	prometheus.MustRegister(RateLimitTotal)
}
