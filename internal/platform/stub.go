//go:build !linux && !windows

package platform

// StubPlatform is used where no removable-media probe is implemented.
type StubPlatform struct{}

// New creates a stub platform instance.
func New() Platform {
	return &StubPlatform{}
}

// Name returns the platform identifier.
func (p *StubPlatform) Name() string { return "stub" }

// IsRemovable always returns false.
func (p *StubPlatform) IsRemovable(device, mountPoint string) bool { return false }
