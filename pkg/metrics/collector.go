package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"pecron-mqtt-bridge/pkg/coordinator"
	"pecron-mqtt-bridge/pkg/registry"
)

// Collector implements prometheus.Collector over the coordinator registry.
// Counters are read from each coordinator's stats at scrape time, the same
// way the bridge's own summary logging does.
type Collector struct {
	registry *registry.Registry

	refreshCycles   *prometheus.Desc
	refreshFailures *prometheus.Desc
	sessionsCreated *prometheus.Desc
	sessionResets   *prometheus.Desc
	skippedDevices  *prometheus.Desc
	knownDevices    *prometheus.Desc
	lastRefresh     *prometheus.Desc
	lastDuration    *prometheus.Desc
}

// NewCollector creates a collector over the given registry
func NewCollector(reg *registry.Registry) *Collector {
	return &Collector{
		registry: reg,
		refreshCycles: prometheus.NewDesc(
			"pecron_refresh_cycles_total",
			"Completed refresh cycles per account",
			[]string{"account"},
			nil,
		),
		refreshFailures: prometheus.NewDesc(
			"pecron_refresh_failures_total",
			"Failed refresh cycles per account",
			[]string{"account"},
			nil,
		),
		sessionsCreated: prometheus.NewDesc(
			"pecron_sessions_created_total",
			"Vendor API sessions created per account",
			[]string{"account"},
			nil,
		),
		sessionResets: prometheus.NewDesc(
			"pecron_session_resets_total",
			"Mid-cycle session resets triggered by authentication failures",
			[]string{"account"},
			nil,
		),
		skippedDevices: prometheus.NewDesc(
			"pecron_skipped_devices_total",
			"Per-device fetches skipped due to transport or unknown errors",
			[]string{"account"},
			nil,
		),
		knownDevices: prometheus.NewDesc(
			"pecron_known_devices",
			"Devices discovered on the current session",
			[]string{"account"},
			nil,
		),
		lastRefresh: prometheus.NewDesc(
			"pecron_last_refresh_timestamp_seconds",
			"Unix time of the last successful refresh",
			[]string{"account"},
			nil,
		),
		lastDuration: prometheus.NewDesc(
			"pecron_refresh_duration_seconds",
			"Duration of the most recent refresh cycle",
			[]string{"account"},
			nil,
		),
	}
}

// Describe implements prometheus.Collector
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.refreshCycles
	ch <- c.refreshFailures
	ch <- c.sessionsCreated
	ch <- c.sessionResets
	ch <- c.skippedDevices
	ch <- c.knownDevices
	ch <- c.lastRefresh
	ch <- c.lastDuration
}

// Collect implements prometheus.Collector
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.registry.Each(func(id string, coord *coordinator.Coordinator) {
		stats := coord.Stats()
		ch <- prometheus.MustNewConstMetric(c.refreshCycles, prometheus.CounterValue,
			float64(stats.Refreshes), id)
		ch <- prometheus.MustNewConstMetric(c.refreshFailures, prometheus.CounterValue,
			float64(stats.RefreshFailures), id)
		ch <- prometheus.MustNewConstMetric(c.sessionsCreated, prometheus.CounterValue,
			float64(stats.SessionsCreated), id)
		ch <- prometheus.MustNewConstMetric(c.sessionResets, prometheus.CounterValue,
			float64(stats.SessionResets), id)
		ch <- prometheus.MustNewConstMetric(c.skippedDevices, prometheus.CounterValue,
			float64(stats.SkippedDevices), id)
		ch <- prometheus.MustNewConstMetric(c.knownDevices, prometheus.GaugeValue,
			float64(stats.KnownDevices), id)
		if !stats.LastRefresh.IsZero() {
			ch <- prometheus.MustNewConstMetric(c.lastRefresh, prometheus.GaugeValue,
				float64(stats.LastRefresh.Unix()), id)
		}
		ch <- prometheus.MustNewConstMetric(c.lastDuration, prometheus.GaugeValue,
			stats.LastDuration.Seconds(), id)
	})
}
