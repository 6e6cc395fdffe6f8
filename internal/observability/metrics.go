package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequests counts backend requests by route and outcome
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "simchat",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of backend chat requests",
		},
		[]string{"route", "outcome"},
	)

	// UpstreamLatency observes completion call durations
	UpstreamLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "simchat",
			Subsystem: "upstream",
			Name:      "latency_seconds",
			Help:      "Upstream completion latency in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10), // 50ms to ~25s
		},
		[]string{"route"},
	)

	// EmailsSent counts agent mail attempts by result
	EmailsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "simchat",
			Subsystem: "agent",
			Name:      "emails_total",
			Help:      "Total number of agent email attempts",
		},
		[]string{"result"},
	)
)

// RecordRequest increments the request counter
func RecordRequest(route, outcome string) {
	HTTPRequests.WithLabelValues(route, outcome).Inc()
}

// RecordUpstreamLatency observes one upstream call
func RecordUpstreamLatency(route string, seconds float64) {
	UpstreamLatency.WithLabelValues(route).Observe(seconds)
}

// RecordEmail increments the agent email counter
func RecordEmail(result string) {
	EmailsSent.WithLabelValues(result).Inc()
}
