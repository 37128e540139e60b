//go:build windows

package plot

import (
	"os"

	"golang.org/x/sys/windows"
)

const fileFlagNoBuffering = 0x20000000

// openDirectIO opens path with FILE_FLAG_NO_BUFFERING, the Windows
// equivalent of O_DIRECT.
func openDirectIO(path string) (*os.File, error) {
	pathPtr, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return nil, err
	}
	handle, err := windows.CreateFile(
		pathPtr,
		windows.GENERIC_READ,
		windows.FILE_SHARE_READ,
		nil,
		windows.OPEN_EXISTING,
		fileFlagNoBuffering,
		0,
	)
	if err != nil {
		return nil, err
	}
	return os.NewFile(uintptr(handle), path), nil
}

// getSectorSize returns the logical sector size of the volume backing
// path, or 0 if it cannot be determined.
func getSectorSize(path string) uint64 {
	var sectorsPerCluster, bytesPerSector, freeClusters, totalClusters uint32
	root := windows.StringToUTF16Ptr(volumeRoot(path))
	if err := windows.GetDiskFreeSpace(root, &sectorsPerCluster, &bytesPerSector, &freeClusters, &totalClusters); err != nil {
		return 0
	}
	return uint64(bytesPerSector)
}

func volumeRoot(path string) string {
	if len(path) >= 3 && path[1] == ':' {
		return path[:3]
	}
	return `C:\`
}
