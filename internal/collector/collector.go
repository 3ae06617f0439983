// Package collector defines the Collector interface and provides
// implementations that turn sampler readings into labeled time-series.
package collector

import (
	"github.com/sakti/agemon/internal/models"
	"github.com/sakti/agemon/internal/sampler"
)

// Collector is the interface that all metric collectors must implement.
// Each collector transforms one OS subsystem's readings.
type Collector interface {
	// Name returns the unique identifier for this collector.
	Name() string

	// Collect converts the snapshot into series stamped with the cycle's
	// hostname and timestamp. It performs no I/O and never fails; missing
	// readings degrade to fallback values.
	Collect(snap *sampler.Snapshot, cycle models.Cycle) []models.TimeSeries
}

// ratio returns part/total, or 0 when total is 0.
func ratio(part, total uint64) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total)
}
