//go:build linux

package worker

import (
	"golang.org/x/sys/unix"
)

// pinCurrentThread pins the calling OS thread to coreID, the Linux
// implementation of the original's core_affinity::set_for_current.
// Callers must have already called runtime.LockOSThread.
func pinCurrentThread(coreID int) error {
	var set unix.CPUSet
	set.Zero()
	set.Set(coreID)
	return unix.SchedSetaffinity(0, &set)
}
