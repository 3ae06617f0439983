// Package platform provides an OS abstraction layer for platform-specific
// functionality that cannot be handled by gopsutil alone.
// Each supported OS implements the Platform interface.
package platform

// Platform provides OS-specific functionality beyond what gopsutil offers.
type Platform interface {
	// IsRemovable reports whether the filesystem on device, mounted at
	// mountPoint, lives on removable media. Unknown devices report false.
	IsRemovable(device, mountPoint string) bool

	// Name returns the platform name (linux, windows, stub).
	Name() string
}
