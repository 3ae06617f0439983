// Package sampler reads operating-system counters into a Snapshot.
// Uses gopsutil for cross-platform CPU, memory, disk, network and host metrics.
package sampler

import "context"

// Source refreshes a caller-owned Snapshot in place.
//
// Refresh always leaves snap in a usable state: readings that could not be
// obtained are zeroed or set to "unknown", and the underlying failures are
// returned joined for logging.
type Source interface {
	Refresh(ctx context.Context, snap *Snapshot) error
}

// Snapshot holds one refresh worth of OS readings.
type Snapshot struct {
	Hostname string
	CPU      CPUReading
	Memory   MemoryReading
	Disks    []DiskReading
	Networks []InterfaceReading
	System   SystemReading
}

// CPUReading holds global and per-core utilisation in percent (0-100).
type CPUReading struct {
	Usage        float64
	PerCore      []float64
	LogicalCores int
}

// MemoryReading holds RAM and swap sizes in bytes.
type MemoryReading struct {
	Total     uint64
	Used      uint64
	Free      uint64
	Available uint64

	SwapTotal uint64
	SwapUsed  uint64
	SwapFree  uint64
}

// DiskReading describes one mounted filesystem.
type DiskReading struct {
	MountPoint string
	Device     string
	FSType     string
	Total      uint64
	Available  uint64
	Removable  bool
}

// InterfaceReading holds cumulative counters for one network interface.
type InterfaceReading struct {
	Name        string
	BytesRecv   uint64
	BytesSent   uint64
	PacketsRecv uint64
	PacketsSent uint64
	ErrIn       uint64
	ErrOut      uint64
}

// SystemReading holds host identity and load.
type SystemReading struct {
	UptimeSeconds uint64
	BootTime      uint64
	Load1         float64
	Load5         float64
	Load15        float64

	OSName        string
	OSVersion     string
	KernelVersion string
	Arch          string
}
