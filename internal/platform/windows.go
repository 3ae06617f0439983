//go:build windows

// Windows-specific Platform implementation.
package platform

import (
	"strings"

	"golang.org/x/sys/windows"
)

// WindowsPlatform implements Platform for Windows systems.
type WindowsPlatform struct{}

// New creates a new Windows platform instance.
func New() Platform {
	return &WindowsPlatform{}
}

// Name returns the platform identifier.
func (p *WindowsPlatform) Name() string { return "windows" }

// IsRemovable asks the volume manager for the drive type of the mount root.
func (p *WindowsPlatform) IsRemovable(device, mountPoint string) bool {
	root := mountPoint
	if root == "" {
		root = device
	}
	if root == "" {
		return false
	}
	if !strings.HasSuffix(root, `\`) {
		root += `\`
	}

	ptr, err := windows.UTF16PtrFromString(root)
	if err != nil {
		return false
	}
	return windows.GetDriveType(ptr) == windows.DRIVE_REMOVABLE
}
