//go:build linux

// Package driveio resolves the physical device backing a plot file, so the
// scanner can group plots by drive_id (one reader goroutine per spindle).
package driveio

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// DeviceID returns a string identifying the physical device that hosts
// path, using the filesystem's device number.
func DeviceID(path string) (string, error) {
	var stat unix.Stat_t
	if err := unix.Stat(path, &stat); err != nil {
		return "", fmt.Errorf("stat %s: %w", path, err)
	}
	return fmt.Sprintf("dev-%d", stat.Dev), nil
}
