//go:build windows

package driveio

import (
	"fmt"
	"path/filepath"

	"golang.org/x/sys/windows"
)

// DeviceID returns the volume GUID backing path, the Windows analogue of a
// Unix block-device identifier.
func DeviceID(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	root := abs[:3] // "C:\"
	var volumeName [windows.MAX_PATH]uint16
	rootPtr, err := windows.UTF16PtrFromString(root)
	if err != nil {
		return "", err
	}
	if err := windows.GetVolumeNameForVolumeMountPoint(rootPtr, &volumeName[0], windows.MAX_PATH); err != nil {
		return "", fmt.Errorf("get volume guid for %s: %w", root, err)
	}
	return windows.UTF16ToString(volumeName[:]), nil
}
