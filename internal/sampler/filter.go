package sampler

import "strings"

// pseudoFSTypes contains filesystem types that should be excluded from disk metrics.
// These are virtual/system filesystems and network/remote filesystems that don't
// represent local storage devices.
var pseudoFSTypes = map[string]bool{
	// Virtual / system filesystems
	"devfs":         true,
	"autofs":        true,
	"nullfs":        true,
	"tmpfs":         true,
	"sysfs":         true,
	"proc":          true,
	"procfs":        true,
	"devtmpfs":      true,
	"cgroup":        true,
	"cgroup2":       true,
	"overlay":       true,
	"squashfs":      true,
	"fuse.snapfuse": true,
	"nsfs":          true,
	"pstore":        true,
	"debugfs":       true,
	"tracefs":       true,
	"securityfs":    true,
	"configfs":      true,
	"fusectl":       true,
	"mqueue":        true,
	"hugetlbfs":     true,
	"binfmt_misc":   true,
	"efivarfs":      true,
	"bpf":           true,
	"ramfs":         true,

	// Network / remote filesystems
	"nfs":           true,
	"nfs4":          true,
	"cifs":          true,
	"smbfs":         true,
	"fuse.sshfs":    true,
	"fuse.rclone":   true,
	"9p":            true,
	"afs":           true,
	"glusterfs":     true,
	"lustre":        true,
	"ceph":          true,
	"fuse.ceph":     true,
	"fuse.s3fs":     true,
	"fuse.gcsfuse":  true,
	"fuse.blobfuse": true,
	"davfs2":        true,
}

// systemMountPrefixes are macOS system volumes and other OS-internal paths.
var systemMountPrefixes = []string{
	"/System/Volumes/",
	"/private/var/vm",
}

// includeMount reports whether a partition should produce disk readings.
func includeMount(fsType, mountPoint string) bool {
	if pseudoFSTypes[fsType] {
		return false
	}
	for _, prefix := range systemMountPrefixes {
		if strings.HasPrefix(mountPoint, prefix) {
			return false
		}
	}
	return true
}
