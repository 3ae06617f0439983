package sampler

import (
	"context"
	"testing"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusyPercent(t *testing.T) {
	tests := []struct {
		name string
		prev cpu.TimesStat
		cur  cpu.TimesStat
		want float64
	}{
		{
			name: "half busy",
			prev: cpu.TimesStat{User: 10, Idle: 10},
			cur:  cpu.TimesStat{User: 20, Idle: 20},
			want: 50,
		},
		{
			name: "iowait counts as idle",
			prev: cpu.TimesStat{},
			cur:  cpu.TimesStat{System: 25, Idle: 50, Iowait: 25},
			want: 25,
		},
		{
			name: "no busy progress",
			prev: cpu.TimesStat{User: 10, Idle: 10},
			cur:  cpu.TimesStat{User: 10, Idle: 30},
			want: 0,
		},
		{
			name: "counter went backwards",
			prev: cpu.TimesStat{User: 10, Idle: 100},
			cur:  cpu.TimesStat{User: 20, Idle: 50},
			want: 100,
		},
		{
			name: "fully busy",
			prev: cpu.TimesStat{User: 5},
			cur:  cpu.TimesStat{User: 15},
			want: 100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, busyPercent(tt.prev, tt.cur), 1e-9)
		})
	}
}

func TestIncludeMount(t *testing.T) {
	tests := []struct {
		fsType string
		mount  string
		want   bool
	}{
		{"ext4", "/", true},
		{"apfs", "/System/Volumes/Data", false},
		{"tmpfs", "/run", false},
		{"nfs4", "/mnt/share", false},
		{"vfat", "/media/usb", true},
	}

	for _, tt := range tests {
		t.Run(tt.fsType+tt.mount, func(t *testing.T) {
			assert.Equal(t, tt.want, includeMount(tt.fsType, tt.mount))
		})
	}
}

func TestOSName(t *testing.T) {
	assert.Equal(t, "ubuntu", osName(&host.InfoStat{OS: "linux", Platform: "ubuntu"}))
	assert.Equal(t, "linux", osName(&host.InfoStat{OS: "linux"}))
	assert.Equal(t, "unknown", osName(&host.InfoStat{}))
}

func TestSampler_RefreshFillsSnapshot(t *testing.T) {
	s := New(nil, nil)
	var snap Snapshot

	// Degraded readings are reported, never fatal; the snapshot stays usable.
	_ = s.Refresh(context.Background(), &snap)

	assert.NotEmpty(t, snap.Hostname)
	assert.NotEmpty(t, snap.System.OSName)
	assert.NotEmpty(t, snap.System.Arch)
	assert.GreaterOrEqual(t, snap.CPU.Usage, 0.0)
	assert.LessOrEqual(t, snap.CPU.Usage, 100.0)

	_ = s.Refresh(context.Background(), &snap)
	require.Len(t, s.prevPerCore, len(snap.CPU.PerCore))
	for _, v := range snap.CPU.PerCore {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 100.0)
	}
}
