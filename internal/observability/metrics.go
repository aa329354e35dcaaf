// Package observability holds the hydrolog Prometheus counters.
package observability

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the counters recorded by the gateway and tracker.
type Metrics struct {
	registry *prometheus.Registry

	entriesLogged   *prometheus.CounterVec
	daysArchived    *prometheus.CounterVec
	historyEvicted  *prometheus.CounterVec
	malformedRecord *prometheus.CounterVec
	lastRollover    prometheus.Gauge
}

// New builds a Metrics set registered on its own registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		entriesLogged: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hydrolog",
			Name:      "entries_logged_total",
			Help:      "Entries appended to a live daily log.",
		}, []string{"domain"}),
		daysArchived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hydrolog",
			Name:      "days_archived_total",
			Help:      "Days moved from a live log into history.",
		}, []string{"domain"}),
		historyEvicted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hydrolog",
			Name:      "history_evicted_total",
			Help:      "History records dropped by the retention cap.",
		}, []string{"domain"}),
		malformedRecord: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hydrolog",
			Name:      "malformed_records_total",
			Help:      "Stored records that failed to decode and were treated as empty.",
		}, []string{"key"}),
		lastRollover: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "hydrolog",
			Subsystem: "tracker",
			Name:      "last_rollover_timestamp_seconds",
			Help:      "Unix timestamp of the most recent day rollover.",
		}),
	}
	m.registry.MustRegister(m.entriesLogged, m.daysArchived, m.historyEvicted, m.malformedRecord, m.lastRollover)
	return m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// EntryLogged counts one logged entry for domain.
func (m *Metrics) EntryLogged(domain string) {
	if m == nil {
		return
	}
	m.entriesLogged.WithLabelValues(domain).Inc()
}

// DayArchived counts one day moved into domain's history.
func (m *Metrics) DayArchived(domain string) {
	if m == nil {
		return
	}
	m.daysArchived.WithLabelValues(domain).Inc()
}

// HistoryEvicted adds n records dropped from domain's history by the retention cap.
func (m *Metrics) HistoryEvicted(domain string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.historyEvicted.WithLabelValues(domain).Add(float64(n))
}

// MalformedRecord counts a stored record under key that failed to decode.
func (m *Metrics) MalformedRecord(key string) {
	if m == nil {
		return
	}
	m.malformedRecord.WithLabelValues(key).Inc()
}

// RolledOver updates the rollover watermark gauge.
func (m *Metrics) RolledOver(unixSeconds int64) {
	if m == nil {
		return
	}
	m.lastRollover.Set(float64(unixSeconds))
}

// WriteTextfile dumps the registry in the node_exporter textfile format.
// An empty path is a no-op.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
