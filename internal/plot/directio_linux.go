//go:build linux

package plot

import (
	"os"

	"golang.org/x/sys/unix"
)

// openDirectIO opens path with O_DIRECT, bypassing the page cache so reads
// must be sector-aligned.
func openDirectIO(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_RDONLY|unix.O_DIRECT, 0)
}

// getSectorSize returns the block size statfs reports for the filesystem
// holding path, used as the direct-I/O sector size, or 0 (disabling direct
// I/O) if it cannot be determined.
func getSectorSize(path string) uint64 {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return 0
	}
	if stat.Bsize <= 0 {
		return 0
	}
	return uint64(stat.Bsize)
}
