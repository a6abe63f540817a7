package observability

import (
	"github.com/prometheus/client_golang/prometheus"

	spanassert "github.com/aretw0/spanassert"
)

// Collector exposes a registry's per-matcher lifecycle counts as Prometheus
// counters. Collection snapshots the registry, so scrapes never block event
// dispatch.
type Collector struct {
	registry *spanassert.Registry

	created *prometheus.Desc
	entered *prometheus.Desc
	exited  *prometheus.Desc
	closed  *prometheus.Desc
}

var _ prometheus.Collector = (*Collector)(nil)

// NewCollector creates a collector over the given assertion registry.
// Register it with a prometheus.Registerer to expose the metrics.
func NewCollector(registry *spanassert.Registry) *Collector {
	labels := []string{"matcher"}
	return &Collector{
		registry: registry,
		created: prometheus.NewDesc("spanassert_spans_created_total",
			"Number of created transitions observed per matcher.", labels, nil),
		entered: prometheus.NewDesc("spanassert_spans_entered_total",
			"Number of entered transitions observed per matcher.", labels, nil),
		exited: prometheus.NewDesc("spanassert_spans_exited_total",
			"Number of exited transitions observed per matcher.", labels, nil),
		closed: prometheus.NewDesc("spanassert_spans_closed_total",
			"Number of closed transitions observed per matcher.", labels, nil),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.created
	ch <- c.entered
	ch <- c.exited
	ch <- c.closed
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	for _, snap := range c.registry.Snapshot() {
		ch <- prometheus.MustNewConstMetric(c.created, prometheus.CounterValue, float64(snap.Created), snap.Matcher)
		ch <- prometheus.MustNewConstMetric(c.entered, prometheus.CounterValue, float64(snap.Entered), snap.Matcher)
		ch <- prometheus.MustNewConstMetric(c.exited, prometheus.CounterValue, float64(snap.Exited), snap.Matcher)
		ch <- prometheus.MustNewConstMetric(c.closed, prometheus.CounterValue, float64(snap.Closed), snap.Matcher)
	}
}
