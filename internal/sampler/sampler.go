package sampler

import (
	"context"
	"errors"
	"fmt"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/net"
	"go.uber.org/zap"

	"github.com/sakti/agemon/internal/platform"
)

const unknown = "unknown"

// Sampler is the gopsutil-backed Source. It keeps the previous CPU times so
// that usage is reported over the interval between two refreshes.
// A Sampler must not be refreshed concurrently.
type Sampler struct {
	platform platform.Platform
	logger   *zap.Logger

	prevTotal   cpu.TimesStat
	prevPerCore []cpu.TimesStat
}

// New creates a Sampler. The platform is used for the removable-media flag;
// pass nil to report every disk as fixed.
func New(p platform.Platform, logger *zap.Logger) *Sampler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sampler{
		platform: p,
		logger:   logger,
	}
}

// Refresh re-reads every subsystem into snap.
func (s *Sampler) Refresh(ctx context.Context, snap *Snapshot) error {
	return errors.Join(
		s.refreshCPU(ctx, &snap.CPU),
		s.refreshMemory(ctx, &snap.Memory),
		s.refreshDisks(ctx, snap),
		s.refreshNetworks(ctx, snap),
		s.refreshSystem(ctx, snap),
	)
}

// refreshCPU computes utilisation from the cumulative CPU times. The first
// refresh has no baseline and reports the average since boot.
func (s *Sampler) refreshCPU(ctx context.Context, r *CPUReading) error {
	var errs []error

	total, err := cpu.TimesWithContext(ctx, false)
	if err != nil || len(total) == 0 {
		errs = append(errs, fmt.Errorf("cpu times: %w", orEmpty(err)))
		r.Usage = 0
	} else {
		r.Usage = busyPercent(s.prevTotal, total[0])
		s.prevTotal = total[0]
	}

	perCore, err := cpu.TimesWithContext(ctx, true)
	if err != nil {
		errs = append(errs, fmt.Errorf("per-cpu times: %w", err))
		perCore = nil
	}
	if len(perCore) != len(s.prevPerCore) {
		// Core set changed (first refresh or hotplug); restart the baseline.
		s.prevPerCore = make([]cpu.TimesStat, len(perCore))
	}
	r.PerCore = r.PerCore[:0]
	for i, t := range perCore {
		r.PerCore = append(r.PerCore, busyPercent(s.prevPerCore[i], t))
		s.prevPerCore[i] = t
	}

	count, err := cpu.CountsWithContext(ctx, true)
	if err != nil {
		errs = append(errs, fmt.Errorf("cpu counts: %w", err))
		count = len(perCore)
	}
	r.LogicalCores = count

	return errors.Join(errs...)
}

func (s *Sampler) refreshMemory(ctx context.Context, r *MemoryReading) error {
	var errs []error

	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		errs = append(errs, fmt.Errorf("virtual memory: %w", err))
		r.Total, r.Used, r.Free, r.Available = 0, 0, 0, 0
	} else {
		r.Total, r.Used, r.Free, r.Available = vm.Total, vm.Used, vm.Free, vm.Available
	}

	sw, err := mem.SwapMemoryWithContext(ctx)
	if err != nil {
		errs = append(errs, fmt.Errorf("swap memory: %w", err))
		r.SwapTotal, r.SwapUsed, r.SwapFree = 0, 0, 0
	} else {
		r.SwapTotal, r.SwapUsed, r.SwapFree = sw.Total, sw.Used, sw.Free
	}

	return errors.Join(errs...)
}

// refreshDisks lists local filesystems. Inaccessible partitions are skipped.
func (s *Sampler) refreshDisks(ctx context.Context, snap *Snapshot) error {
	snap.Disks = snap.Disks[:0]

	partitions, err := disk.PartitionsWithContext(ctx, false)
	if err != nil {
		return fmt.Errorf("disk partitions: %w", err)
	}

	for _, p := range partitions {
		if !includeMount(p.Fstype, p.Mountpoint) {
			s.logger.Debug("Skipping pseudo/network filesystem",
				zap.String("mount", p.Mountpoint),
				zap.String("fstype", p.Fstype))
			continue
		}

		usage, err := disk.UsageWithContext(ctx, p.Mountpoint)
		if err != nil {
			s.logger.Debug("Skipping inaccessible partition",
				zap.String("mount", p.Mountpoint),
				zap.Error(err))
			continue
		}

		removable := false
		if s.platform != nil {
			removable = s.platform.IsRemovable(p.Device, p.Mountpoint)
		}

		snap.Disks = append(snap.Disks, DiskReading{
			MountPoint: orUnknown(p.Mountpoint),
			Device:     orUnknown(p.Device),
			FSType:     orUnknown(p.Fstype),
			Total:      usage.Total,
			Available:  usage.Free,
			Removable:  removable,
		})
	}
	return nil
}

func (s *Sampler) refreshNetworks(ctx context.Context, snap *Snapshot) error {
	snap.Networks = snap.Networks[:0]

	counters, err := net.IOCountersWithContext(ctx, true)
	if err != nil {
		return fmt.Errorf("network counters: %w", err)
	}

	for _, c := range counters {
		snap.Networks = append(snap.Networks, InterfaceReading{
			Name:        orUnknown(c.Name),
			BytesRecv:   c.BytesRecv,
			BytesSent:   c.BytesSent,
			PacketsRecv: c.PacketsRecv,
			PacketsSent: c.PacketsSent,
			ErrIn:       c.Errin,
			ErrOut:      c.Errout,
		})
	}
	return nil
}

func (s *Sampler) refreshSystem(ctx context.Context, snap *Snapshot) error {
	var errs []error
	r := &snap.System

	info, err := host.InfoWithContext(ctx)
	if err != nil || info == nil {
		errs = append(errs, fmt.Errorf("host info: %w", orEmpty(err)))
		info = &host.InfoStat{}
	}
	snap.Hostname = orUnknown(info.Hostname)
	r.UptimeSeconds = info.Uptime
	r.BootTime = info.BootTime
	r.OSName = osName(info)
	r.OSVersion = orUnknown(info.PlatformVersion)
	r.KernelVersion = orUnknown(info.KernelVersion)
	r.Arch = orUnknown(info.KernelArch)

	avg, err := load.AvgWithContext(ctx)
	if err != nil || avg == nil {
		errs = append(errs, fmt.Errorf("load average: %w", orEmpty(err)))
		r.Load1, r.Load5, r.Load15 = 0, 0, 0
	} else {
		r.Load1, r.Load5, r.Load15 = avg.Load1, avg.Load5, avg.Load15
	}

	return errors.Join(errs...)
}

// osName prefers the distribution name (e.g. "ubuntu") over the kernel family.
func osName(info *host.InfoStat) string {
	if info.Platform != "" {
		return info.Platform
	}
	return orUnknown(info.OS)
}

// busyPercent returns the share of non-idle time between two cumulative
// readings, clamped to 0-100.
func busyPercent(prev, cur cpu.TimesStat) float64 {
	prevAll, prevBusy := cpuTotals(prev)
	curAll, curBusy := cpuTotals(cur)

	if curBusy <= prevBusy {
		return 0
	}
	if curAll <= prevAll {
		return 100
	}
	return clamp((curBusy-prevBusy)/(curAll-prevAll)*100, 0, 100)
}

// cpuTotals returns total and busy time. Guest time is already accounted in
// user time by the kernel, so it is not added again.
func cpuTotals(t cpu.TimesStat) (all, busy float64) {
	all = t.User + t.System + t.Idle + t.Nice + t.Iowait + t.Irq + t.Softirq + t.Steal
	busy = all - t.Idle - t.Iowait
	return all, busy
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func orUnknown(s string) string {
	if s == "" {
		return unknown
	}
	return s
}

var errEmpty = errors.New("no data")

func orEmpty(err error) error {
	if err == nil {
		return errEmpty
	}
	return err
}
