// Package metrics provides Prometheus metrics for maintenance cycles.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/umputun/feedkeeper/pkg/domain"
)

const namespace = "feedkeeper"

// Collector records probe and cycle statistics
type Collector struct {
	probesTotal    *prometheus.CounterVec
	probeDuration  *prometheus.HistogramVec
	cyclesTotal    *prometheus.CounterVec
	cycleDuration  prometheus.Histogram
	eventsTotal    *prometheus.CounterVec
	registrySize   prometheus.Gauge
	lastCycleTime  prometheus.Gauge
	lastCycleAlive prometheus.Gauge
}

// New creates a collector with all metrics registered in reg
func New(reg prometheus.Registerer) *Collector {
	f := promauto.With(reg)
	return &Collector{
		probesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "probes_total",
			Help:      "Total number of feed probes by outcome",
		}, []string{"result"}),

		probeDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "probe_duration_seconds",
			Help:      "Duration of feed probes in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10), // 50ms to ~25s
		}, []string{"alive"}),

		cyclesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cycles_total",
			Help:      "Total number of maintenance cycles by status",
		}, []string{"status"}),

		cycleDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cycle_duration_seconds",
			Help:      "Duration of maintenance cycles in seconds",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}),

		eventsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registry_events_total",
			Help:      "Total number of registry mutations by type",
		}, []string{"type"}),

		registrySize: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "registry_size",
			Help:      "Number of feeds in the registry after the last cycle",
		}),

		lastCycleTime: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_cycle_timestamp_seconds",
			Help:      "Unix time the last maintenance cycle finished",
		}),

		lastCycleAlive: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_cycle_alive_feeds",
			Help:      "Number of alive feeds found by the last cycle",
		}),
	}
}

// ObserveProbe records a single probe result
func (c *Collector) ObserveProbe(res domain.ProbeResult) {
	result := "alive"
	if !res.Alive {
		result = string(res.Error)
		if result == "" {
			result = "unknown"
		}
	}
	c.probesTotal.WithLabelValues(result).Inc()
	if res.Duration > 0 {
		alive := "false"
		if res.Alive {
			alive = "true"
		}
		c.probeDuration.WithLabelValues(alive).Observe(res.Duration.Seconds())
	}
}

// ObserveCycle records a finished cycle. Registry size is updated only for persisted cycles.
func (c *Collector) ObserveCycle(report domain.CycleReport) {
	status := "ok"
	switch {
	case report.Error != "":
		status = "failed"
	case report.DryRun:
		status = "dry_run"
	}
	c.cyclesTotal.WithLabelValues(status).Inc()
	c.cycleDuration.Observe(report.Duration().Seconds())
	c.lastCycleTime.Set(float64(report.FinishedAt.Unix()))
	if report.Error != "" {
		return
	}

	c.lastCycleAlive.Set(float64(report.Alive))
	c.eventsTotal.WithLabelValues(string(domain.EventRepaired)).Add(float64(report.Repaired))
	c.eventsTotal.WithLabelValues(string(domain.EventRepairFailed)).Add(float64(report.RepairFailed))
	c.eventsTotal.WithLabelValues(string(domain.EventEvicted)).Add(float64(report.Evicted))
	c.eventsTotal.WithLabelValues(string(domain.EventDiscovered)).Add(float64(report.Discovered))
	if report.Persisted {
		c.registrySize.Set(float64(report.RegistrySize))
	}
}
