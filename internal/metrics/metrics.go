package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	pairReachableDesc = prometheus.NewDesc(
		"netcheck_pair_reachable",
		"Whether the source node's probe can reach the target node's endpoint (1) or not (0)",
		[]string{"source", "target"},
		nil,
	)

	nodesDesc = prometheus.NewDesc(
		"netcheck_nodes",
		"Number of nodes discovered in the last completed cycle",
		nil,
		nil,
	)

	probesReadyDesc = prometheus.NewDesc(
		"netcheck_probes_ready",
		"Number of probes that became ready in the last completed cycle",
		nil,
		nil,
	)

	lastCycleDesc = prometheus.NewDesc(
		"netcheck_last_cycle_timestamp_seconds",
		"Unix time the last completed cycle finished",
		nil,
		nil,
	)
)

// Metrics owns the registry and the cycle-level collectors.
type Metrics struct {
	registry *prometheus.Registry

	cycleTotal    *prometheus.CounterVec
	cycleDuration prometheus.Histogram
}

// New builds the registry: cycle counters plus a snapshot-backed
// collector for the per-pair series.
func New(store *Store) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		cycleTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "netcheck",
				Name:      "cycle_total",
				Help:      "Total number of check cycles by result",
			},
			[]string{"result"},
		),
		cycleDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "netcheck",
				Name:      "cycle_duration_seconds",
				Help:      "Duration of check cycles in seconds",
				Buckets:   prometheus.ExponentialBuckets(1, 2, 12), // 1s to ~1h
			},
		),
	}

	m.registry.MustRegister(
		m.cycleTotal,
		m.cycleDuration,
		&snapshotCollector{store: store},
	)
	return m
}

// RecordCycle records one finished cycle.
func (m *Metrics) RecordCycle(result string, duration time.Duration) {
	m.cycleTotal.WithLabelValues(result).Inc()
	m.cycleDuration.Observe(duration.Seconds())
}

// Handler returns the exposition handler for the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// snapshotCollector turns the current snapshot into const metrics at
// scrape time. When the node set changes between cycles, stale pair
// series disappear with the old snapshot instead of lingering.
type snapshotCollector struct {
	store *Store
}

func (c *snapshotCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- pairReachableDesc
	ch <- nodesDesc
	ch <- probesReadyDesc
	ch <- lastCycleDesc
}

func (c *snapshotCollector) Collect(ch chan<- prometheus.Metric) {
	snap := c.store.Snapshot()
	if snap == nil {
		return
	}

	ch <- prometheus.MustNewConstMetric(nodesDesc, prometheus.GaugeValue, float64(snap.Nodes))
	ch <- prometheus.MustNewConstMetric(probesReadyDesc, prometheus.GaugeValue, float64(snap.ProbesReady))
	ch <- prometheus.MustNewConstMetric(lastCycleDesc, prometheus.GaugeValue, float64(snap.CompletedAt.Unix()))

	for _, pair := range snap.Pairs {
		value := 0.0
		if pair.Reachable {
			value = 1.0
		}
		ch <- prometheus.MustNewConstMetric(
			pairReachableDesc,
			prometheus.GaugeValue,
			value,
			pair.Source,
			pair.Target,
		)
	}
}
