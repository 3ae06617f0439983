// System collector: uptime, boot time, load averages and the host info metric.
package collector

import (
	"github.com/sakti/agemon/internal/models"
	"github.com/sakti/agemon/internal/sampler"
)

// System metric names.
const (
	MetricSystemUptime   = "agemon_system_uptime_seconds"
	MetricSystemBootTime = "agemon_system_boot_time_seconds"
	MetricSystemLoad1    = "agemon_system_load1"
	MetricSystemLoad5    = "agemon_system_load5"
	MetricSystemLoad15   = "agemon_system_load15"

	// MetricInfo is an info metric: its value is always 1 and its labels
	// carry the host's descriptive strings, which the numeric sample model
	// cannot hold.
	MetricInfo = "agemon_info"
)

// SystemCollector collects host identity and load metrics.
type SystemCollector struct{}

// NewSystemCollector creates a new system collector.
func NewSystemCollector() *SystemCollector {
	return &SystemCollector{}
}

// Name returns the collector identifier.
func (c *SystemCollector) Name() string { return "system" }

// Collect emits the scalar gauges followed by agemon_info.
func (c *SystemCollector) Collect(snap *sampler.Snapshot, cycle models.Cycle) []models.TimeSeries {
	s := snap.System
	return []models.TimeSeries{
		models.NewSeries(cycle, MetricSystemUptime, float64(s.UptimeSeconds)),
		models.NewSeries(cycle, MetricSystemBootTime, float64(s.BootTime)),
		models.NewSeries(cycle, MetricSystemLoad1, s.Load1),
		models.NewSeries(cycle, MetricSystemLoad5, s.Load5),
		models.NewSeries(cycle, MetricSystemLoad15, s.Load15),
		models.NewSeries(cycle, MetricInfo, 1,
			models.Label{Name: "os_name", Value: s.OSName},
			models.Label{Name: "os_version", Value: s.OSVersion},
			models.Label{Name: "kernel_version", Value: s.KernelVersion},
			models.Label{Name: "arch", Value: s.Arch},
		),
	}
}
