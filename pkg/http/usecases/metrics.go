package usecases

import (
	"github.com/prometheus/client_golang/prometheus"
)

// RoutingMetrics. prometheus counters for route queries.
type RoutingMetrics struct {
	queryCount   *prometheus.CounterVec
	settledNodes *prometheus.HistogramVec
	queryLatency *prometheus.HistogramVec
}

func NewRoutingMetrics(reg prometheus.Registerer) *RoutingMetrics {
	m := &RoutingMetrics{
		queryCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "osmrouter",
			Name:      "shortestpath_query_count",
			Help:      "The total number of shortest path query",
		}, []string{"algorithm", "metric", "outcome"}),
		settledNodes: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "osmrouter",
			Name:      "shortestpath_settled_nodes",
			Help:      "Number of vertices settled by one shortest path query",
			Buckets:   prometheus.ExponentialBuckets(16, 4, 10),
		}, []string{"algorithm"}),
		queryLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "osmrouter",
			Name:      "shortestpath_duration_seconds",
			Help:      "The duration of shortest path query",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"algorithm"}),
	}
	reg.MustRegister(m.queryCount, m.settledNodes, m.queryLatency)
	return m
}

func (m *RoutingMetrics) observe(algorithm, metric, outcome string, settled int, seconds float64) {
	if m == nil {
		return
	}
	m.queryCount.With(prometheus.Labels{"algorithm": algorithm, "metric": metric, "outcome": outcome}).Inc()
	m.queryLatency.With(prometheus.Labels{"algorithm": algorithm}).Observe(seconds)
	if settled > 0 {
		m.settledNodes.With(prometheus.Labels{"algorithm": algorithm}).Observe(float64(settled))
	}
}
