//go:build linux

// Linux Platform implementation backed by sysfs.
package platform

import (
	"os"
	"path/filepath"
	"strings"
)

// LinuxPlatform implements Platform by reading the block-device attributes
// exposed under /sys/class/block.
type LinuxPlatform struct {
	sysRoot string
}

// New creates a Linux platform instance rooted at /sys.
func New() Platform {
	return &LinuxPlatform{sysRoot: "/sys"}
}

// Name returns the platform identifier.
func (p *LinuxPlatform) Name() string { return "linux" }

// IsRemovable reads the removable attribute of the block device backing
// device. Partitions carry no attribute of their own, so the parent disk
// is consulted when the partition entry has none.
func (p *LinuxPlatform) IsRemovable(device, mountPoint string) bool {
	if !strings.HasPrefix(device, "/dev/") {
		return false
	}
	name := filepath.Base(device)

	entry := filepath.Join(p.sysRoot, "class", "block", name)
	resolved, err := filepath.EvalSymlinks(entry)
	if err != nil {
		return false
	}

	if v, ok := readFlag(filepath.Join(resolved, "removable")); ok {
		return v
	}
	v, _ := readFlag(filepath.Join(filepath.Dir(resolved), "removable"))
	return v
}

// readFlag parses a sysfs 0/1 attribute file.
func readFlag(path string) (value, ok bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, false
	}
	return strings.TrimSpace(string(data)) == "1", true
}
