package worker

import (
	"runtime"

	"github.com/klauspost/cpuid/v2"

	"github.com/emmanuelapp/scavenger/internal/display"
)

// PinCPUWorker pins the calling goroutine's OS thread to one of the
// physical cores cpuid.CPU enumerates, round-robin over workerIndex.
func PinCPUWorker(workerIndex int, disp display.Displayer) {
	numCores := cpuid.CPU.PhysicalCores
	if numCores <= 0 {
		numCores = runtime.NumCPU()
	}
	if numCores <= 0 {
		return
	}

	runtime.LockOSThread()
	coreID := workerIndex % numCores
	if err := pinCurrentThread(coreID); err != nil {
		disp.Warn("cpu worker %d: failed to pin to core %d: %v", workerIndex, coreID, err)
	}
}
