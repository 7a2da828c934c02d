package metric

import "github.com/prometheus/client_golang/prometheus"

// Collector samples gauges from the running server on each scrape.
type Collector struct {
	keys    func() int
	pending func() int

	keysDesc    *prometheus.Desc
	pendingDesc *prometheus.Desc
}

// NewCollector creates a collector. Either function may be nil.
func NewCollector(keys, pending func() int) *Collector {
	return &Collector{
		keys:    keys,
		pending: pending,
		keysDesc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "store", "keys"),
			"Number of entries held by the store, including lapsed ones not yet overwritten.",
			nil, nil,
		),
		pendingDesc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "workers", "pending_jobs"),
			"Number of jobs queued for the worker pool.",
			nil, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.keysDesc
	ch <- c.pendingDesc
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	if c.keys != nil {
		ch <- prometheus.MustNewConstMetric(c.keysDesc, prometheus.GaugeValue, float64(c.keys()))
	}
	if c.pending != nil {
		ch <- prometheus.MustNewConstMetric(c.pendingDesc, prometheus.GaugeValue, float64(c.pending()))
	}
}
