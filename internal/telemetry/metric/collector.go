package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/yndnr/rest0-go/internal/core/snapshot"
)

// SnapshotCollector reports the current configuration snapshot at scrape time.
type SnapshotCollector struct {
	load func() *snapshot.Snapshot
	now  func() time.Time

	age  *prometheus.Desc
	info *prometheus.Desc
}

// NewSnapshotCollector creates a collector reading snapshots from load.
func NewSnapshotCollector(load func() *snapshot.Snapshot) *SnapshotCollector {
	return &SnapshotCollector{
		load: load,
		now:  time.Now,
		age: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "config", "snapshot_age_seconds"),
			"Seconds since the current snapshot was resolved.",
			nil, nil,
		),
		info: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "config", "snapshot_info"),
			"The current snapshot fingerprint and source; value is always 1.",
			[]string{"hash", "source"}, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *SnapshotCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.age
	ch <- c.info
}

// Collect implements prometheus.Collector.
func (c *SnapshotCollector) Collect(ch chan<- prometheus.Metric) {
	s := c.load()
	if s == nil {
		return
	}
	ch <- prometheus.MustNewConstMetric(c.age, prometheus.GaugeValue, c.now().Sub(s.ResolvedAt()).Seconds())
	ch <- prometheus.MustNewConstMetric(c.info, prometheus.GaugeValue, 1, s.Hex(), string(s.Source()))
}
