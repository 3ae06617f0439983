// Disk usage collector: per-mount capacity and removable-media flag.
package collector

import (
	"github.com/sakti/agemon/internal/models"
	"github.com/sakti/agemon/internal/sampler"
)

// Disk metric names.
const (
	MetricDiskTotal     = "agemon_disk_total_bytes"
	MetricDiskAvailable = "agemon_disk_available_bytes"
	MetricDiskUsed      = "agemon_disk_used_bytes"
	MetricDiskUsage     = "agemon_disk_usage_ratio"
	MetricDiskRemovable = "agemon_disk_removable"
)

// DiskCollector collects disk usage metrics per mount point.
type DiskCollector struct{}

// NewDiskCollector creates a new disk collector.
func NewDiskCollector() *DiskCollector {
	return &DiskCollector{}
}

// Name returns the collector identifier.
func (c *DiskCollector) Name() string { return "disk" }

// Collect emits five series per filesystem, each labeled with mount_point,
// device and fs_type.
func (c *DiskCollector) Collect(snap *sampler.Snapshot, cycle models.Cycle) []models.TimeSeries {
	series := make([]models.TimeSeries, 0, 5*len(snap.Disks))
	for _, d := range snap.Disks {
		labels := []models.Label{
			{Name: "mount_point", Value: d.MountPoint},
			{Name: "device", Value: d.Device},
			{Name: "fs_type", Value: d.FSType},
		}
		used := diskUsed(d.Total, d.Available)

		series = append(series,
			models.NewSeries(cycle, MetricDiskTotal, float64(d.Total), labels...),
			models.NewSeries(cycle, MetricDiskAvailable, float64(d.Available), labels...),
			models.NewSeries(cycle, MetricDiskUsed, float64(used), labels...),
			models.NewSeries(cycle, MetricDiskUsage, ratio(used, d.Total), labels...),
			models.NewSeries(cycle, MetricDiskRemovable, boolValue(d.Removable), labels...),
		)
	}
	return series
}

// diskUsed is total-available, floored at zero for inconsistent readings.
func diskUsed(total, available uint64) uint64 {
	if available > total {
		return 0
	}
	return total - available
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
