// CPU usage collector: overall and per-core utilisation plus core count.
package collector

import (
	"strconv"

	"github.com/sakti/agemon/internal/models"
	"github.com/sakti/agemon/internal/sampler"
)

// CPU metric names.
const (
	MetricCPUUsage     = "agemon_cpu_usage_percent"
	MetricCPUCoreCount = "agemon_cpu_core_count"
	MetricCPUCoreUsage = "agemon_cpu_core_usage_percent"
)

// CPUCollector collects CPU usage metrics.
type CPUCollector struct{}

// NewCPUCollector creates a new CPU collector.
func NewCPUCollector() *CPUCollector {
	return &CPUCollector{}
}

// Name returns the collector identifier.
func (c *CPUCollector) Name() string { return "cpu" }

// Collect emits the aggregate usage, the logical core count and one usage
// gauge per core labeled with its index.
func (c *CPUCollector) Collect(snap *sampler.Snapshot, cycle models.Cycle) []models.TimeSeries {
	series := make([]models.TimeSeries, 0, 2+len(snap.CPU.PerCore))
	series = append(series,
		models.NewSeries(cycle, MetricCPUUsage, snap.CPU.Usage),
		models.NewSeries(cycle, MetricCPUCoreCount, float64(snap.CPU.LogicalCores)),
	)

	for i, usage := range snap.CPU.PerCore {
		series = append(series, models.NewSeries(cycle, MetricCPUCoreUsage, usage,
			models.Label{Name: "cpu", Value: strconv.Itoa(i)}))
	}
	return series
}
