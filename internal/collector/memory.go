// RAM and swap collector.
package collector

import (
	"github.com/sakti/agemon/internal/models"
	"github.com/sakti/agemon/internal/sampler"
)

// Memory and swap metric names.
const (
	MetricMemoryTotal     = "agemon_memory_total_bytes"
	MetricMemoryUsed      = "agemon_memory_used_bytes"
	MetricMemoryFree      = "agemon_memory_free_bytes"
	MetricMemoryAvailable = "agemon_memory_available_bytes"
	MetricMemoryUsage     = "agemon_memory_usage_ratio"

	MetricSwapTotal = "agemon_swap_total_bytes"
	MetricSwapUsed  = "agemon_swap_used_bytes"
	MetricSwapFree  = "agemon_swap_free_bytes"
	MetricSwapUsage = "agemon_swap_usage_ratio"
)

// MemoryCollector collects RAM and swap usage metrics.
type MemoryCollector struct{}

// NewMemoryCollector creates a new memory collector.
func NewMemoryCollector() *MemoryCollector {
	return &MemoryCollector{}
}

// Name returns the collector identifier.
func (c *MemoryCollector) Name() string { return "memory" }

// Collect emits byte gauges and a used/total ratio for memory and swap.
// A zero total yields a ratio of 0.
func (c *MemoryCollector) Collect(snap *sampler.Snapshot, cycle models.Cycle) []models.TimeSeries {
	m := snap.Memory
	return []models.TimeSeries{
		models.NewSeries(cycle, MetricMemoryTotal, float64(m.Total)),
		models.NewSeries(cycle, MetricMemoryUsed, float64(m.Used)),
		models.NewSeries(cycle, MetricMemoryFree, float64(m.Free)),
		models.NewSeries(cycle, MetricMemoryAvailable, float64(m.Available)),
		models.NewSeries(cycle, MetricMemoryUsage, ratio(m.Used, m.Total)),

		models.NewSeries(cycle, MetricSwapTotal, float64(m.SwapTotal)),
		models.NewSeries(cycle, MetricSwapUsed, float64(m.SwapUsed)),
		models.NewSeries(cycle, MetricSwapFree, float64(m.SwapFree)),
		models.NewSeries(cycle, MetricSwapUsage, ratio(m.SwapUsed, m.SwapTotal)),
	}
}
