package collector

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakti/agemon/internal/models"
	"github.com/sakti/agemon/internal/sampler"
)

var testCycle = models.Cycle{Hostname: "node-1", Timestamp: 1700000000000}

// fakeSource fills snapshots from a fixed template and counts refreshes.
type fakeSource struct {
	snap      sampler.Snapshot
	err       error
	refreshes int
}

func (f *fakeSource) Refresh(_ context.Context, snap *sampler.Snapshot) error {
	f.refreshes++
	*snap = f.snap
	snap.CPU.Usage = float64(f.refreshes)
	return f.err
}

func testSnapshot() sampler.Snapshot {
	return sampler.Snapshot{
		Hostname: "sampled-host",
		CPU: sampler.CPUReading{
			Usage:        42.5,
			PerCore:      []float64{10, 75},
			LogicalCores: 2,
		},
		Memory: sampler.MemoryReading{
			Total: 1000, Used: 250, Free: 500, Available: 700,
			SwapTotal: 0, SwapUsed: 0, SwapFree: 0,
		},
		Disks: []sampler.DiskReading{
			{MountPoint: "/", Device: "/dev/sda1", FSType: "ext4", Total: 1000, Available: 400},
			{MountPoint: "/media/usb", Device: "/dev/sdb1", FSType: "vfat", Total: 500, Available: 700, Removable: true},
		},
		Networks: []sampler.InterfaceReading{
			{Name: "eth0", BytesRecv: 100, BytesSent: 200, PacketsRecv: 3, PacketsSent: 4, ErrIn: 5, ErrOut: 6},
		},
		System: sampler.SystemReading{
			UptimeSeconds: 3600, BootTime: 1699996400,
			Load1: 0.5, Load5: 0.25, Load15: 0.125,
			OSName: "ubuntu", OSVersion: "22.04", KernelVersion: "6.5.0", Arch: "x86_64",
		},
	}
}

// find returns the value of the first series named name whose labels
// include every pair in match.
func find(t *testing.T, series []models.TimeSeries, name string, match ...models.Label) float64 {
	t.Helper()
	for _, ts := range series {
		if ts.Name() != name {
			continue
		}
		ok := true
		for _, l := range match {
			if v, _ := ts.Label(l.Name); v != l.Value {
				ok = false
				break
			}
		}
		if ok {
			require.Len(t, ts.Samples, 1)
			return ts.Samples[0].Value
		}
	}
	t.Fatalf("series %s %v not found", name, match)
	return 0
}

func TestCPUCollector(t *testing.T) {
	snap := testSnapshot()
	series := NewCPUCollector().Collect(&snap, testCycle)

	require.Len(t, series, 4)
	assert.Equal(t, 42.5, find(t, series, MetricCPUUsage))
	assert.Equal(t, 2.0, find(t, series, MetricCPUCoreCount))
	assert.Equal(t, 10.0, find(t, series, MetricCPUCoreUsage, models.Label{Name: "cpu", Value: "0"}))
	assert.Equal(t, 75.0, find(t, series, MetricCPUCoreUsage, models.Label{Name: "cpu", Value: "1"}))
}

func TestMemoryCollector(t *testing.T) {
	snap := testSnapshot()
	series := NewMemoryCollector().Collect(&snap, testCycle)

	require.Len(t, series, 9)
	assert.Equal(t, 1000.0, find(t, series, MetricMemoryTotal))
	assert.Equal(t, 250.0, find(t, series, MetricMemoryUsed))
	assert.Equal(t, 500.0, find(t, series, MetricMemoryFree))
	assert.Equal(t, 700.0, find(t, series, MetricMemoryAvailable))
	assert.Equal(t, 0.25, find(t, series, MetricMemoryUsage))
	assert.Equal(t, 0.0, find(t, series, MetricSwapUsage))
}

func TestRatio_ZeroTotal(t *testing.T) {
	for _, used := range []uint64{0, 1, math.MaxUint64} {
		r := ratio(used, 0)
		assert.Equal(t, 0.0, r)
		assert.False(t, math.IsNaN(r))
		assert.False(t, math.IsInf(r, 0))
	}
}

func TestDiskCollector(t *testing.T) {
	snap := testSnapshot()
	series := NewDiskCollector().Collect(&snap, testCycle)
	require.Len(t, series, 10)

	root := models.Label{Name: "mount_point", Value: "/"}
	assert.Equal(t, 1000.0, find(t, series, MetricDiskTotal, root))
	assert.Equal(t, 400.0, find(t, series, MetricDiskAvailable, root))
	assert.Equal(t, 600.0, find(t, series, MetricDiskUsed, root))
	assert.Equal(t, 0.6, find(t, series, MetricDiskUsage, root))
	assert.Equal(t, 0.0, find(t, series, MetricDiskRemovable, root))

	usb := models.Label{Name: "mount_point", Value: "/media/usb"}
	assert.Equal(t, 0.0, find(t, series, MetricDiskUsed, usb), "available > total must floor at zero")
	assert.Equal(t, 0.0, find(t, series, MetricDiskUsage, usb))
	assert.Equal(t, 1.0, find(t, series, MetricDiskRemovable, usb))

	for _, ts := range series {
		for _, name := range []string{"mount_point", "device", "fs_type"} {
			_, ok := ts.Label(name)
			assert.True(t, ok, "%s missing %s", ts.Name(), name)
		}
	}
}

func TestDiskUsed(t *testing.T) {
	assert.Equal(t, uint64(100), diskUsed(500, 400))
	assert.Equal(t, uint64(0), diskUsed(500, 700))
	assert.Equal(t, uint64(0), diskUsed(0, 0))
}

func TestNetworkCollector(t *testing.T) {
	snap := testSnapshot()
	series := NewNetworkCollector().Collect(&snap, testCycle)
	require.Len(t, series, 6)

	eth0 := models.Label{Name: "interface", Value: "eth0"}
	assert.Equal(t, 100.0, find(t, series, MetricNetReceivedBytes, eth0))
	assert.Equal(t, 200.0, find(t, series, MetricNetTransmittedBytes, eth0))
	assert.Equal(t, 3.0, find(t, series, MetricNetReceivedPackets, eth0))
	assert.Equal(t, 4.0, find(t, series, MetricNetTransmittedPackets, eth0))
	assert.Equal(t, 5.0, find(t, series, MetricNetReceiveErrors, eth0))
	assert.Equal(t, 6.0, find(t, series, MetricNetTransmitErrors, eth0))
}

func TestSystemCollector(t *testing.T) {
	snap := testSnapshot()
	series := NewSystemCollector().Collect(&snap, testCycle)
	require.Len(t, series, 6)

	assert.Equal(t, 3600.0, find(t, series, MetricSystemUptime))
	assert.Equal(t, 1699996400.0, find(t, series, MetricSystemBootTime))
	assert.Equal(t, 0.5, find(t, series, MetricSystemLoad1))
	assert.Equal(t, 0.25, find(t, series, MetricSystemLoad5))
	assert.Equal(t, 0.125, find(t, series, MetricSystemLoad15))

	info := series[len(series)-1]
	assert.Equal(t, MetricInfo, info.Name())
	assert.Equal(t, 1.0, info.Samples[0].Value)
	for name, want := range map[string]string{
		"os_name": "ubuntu", "os_version": "22.04", "kernel_version": "6.5.0", "arch": "x86_64",
	} {
		v, _ := info.Label(name)
		assert.Equal(t, want, v)
	}
}

func TestSystemCollector_UnknownStrings(t *testing.T) {
	snap := sampler.Snapshot{}
	series := NewSystemCollector().Collect(&snap, models.Cycle{})

	info := series[len(series)-1]
	for _, name := range []string{"hostname", "os_name", "os_version", "kernel_version", "arch"} {
		v, _ := info.Label(name)
		assert.Equal(t, models.Unknown, v, name)
	}
}

func newTestRegistry(src *fakeSource, hostname string) *Registry {
	r := NewRegistry(src, hostname, nil)
	r.now = func() time.Time { return time.UnixMilli(1700000000123) }
	r.Register(NewCPUCollector())
	r.Register(NewMemoryCollector())
	r.Register(NewDiskCollector())
	r.Register(NewNetworkCollector())
	r.Register(NewSystemCollector())
	return r
}

func TestRegistry_CycleInvariants(t *testing.T) {
	src := &fakeSource{snap: testSnapshot()}
	series := newTestRegistry(src, "").Collect(context.Background())

	assert.Equal(t, 1, src.refreshes)
	require.Len(t, series, 4+9+10+6+6)
	for _, ts := range series {
		assert.True(t, strings.HasPrefix(ts.Name(), models.MetricPrefix), ts.Name())
		host, _ := ts.Label(models.HostnameLabel)
		assert.Equal(t, "sampled-host", host)
		require.Len(t, ts.Samples, 1)
		assert.Equal(t, int64(1700000000123), ts.Samples[0].Timestamp)
	}
}

func TestRegistry_CollectorOrder(t *testing.T) {
	series := newTestRegistry(&fakeSource{snap: testSnapshot()}, "").Collect(context.Background())

	assert.Equal(t, MetricCPUUsage, series[0].Name())
	assert.Equal(t, MetricMemoryTotal, series[4].Name())
	assert.Equal(t, MetricDiskTotal, series[13].Name())
	assert.Equal(t, MetricNetReceivedBytes, series[23].Name())
	assert.Equal(t, MetricInfo, series[len(series)-1].Name())
}

func TestRegistry_StableSchemaAcrossCycles(t *testing.T) {
	src := &fakeSource{snap: testSnapshot()}
	r := newTestRegistry(src, "")

	names := func(series []models.TimeSeries) []string {
		out := make([]string, len(series))
		for i, ts := range series {
			out[i] = ts.Name()
		}
		return out
	}

	first := r.Collect(context.Background())
	second := r.Collect(context.Background())

	assert.Equal(t, 2, src.refreshes)
	assert.Equal(t, names(first), names(second))
	assert.NotEqual(t, first[0].Samples[0].Value, second[0].Samples[0].Value)
}

func TestRegistry_HostnameResolution(t *testing.T) {
	series := newTestRegistry(&fakeSource{snap: testSnapshot()}, "override").Collect(context.Background())
	host, _ := series[0].Label(models.HostnameLabel)
	assert.Equal(t, "override", host)

	series = newTestRegistry(&fakeSource{}, "").Collect(context.Background())
	host, _ = series[0].Label(models.HostnameLabel)
	assert.Equal(t, models.Unknown, host)
}

func TestRegistry_RefreshErrorDegrades(t *testing.T) {
	src := &fakeSource{snap: testSnapshot(), err: errors.New("load average: not supported")}
	series := newTestRegistry(src, "").Collect(context.Background())
	assert.NotEmpty(t, series)
}

func TestRegistry_CollectorsCopy(t *testing.T) {
	r := newTestRegistry(&fakeSource{}, "")
	list := r.Collectors()
	require.Len(t, list, 5)
	list[0] = nil
	assert.NotNil(t, r.Collectors()[0])
}
