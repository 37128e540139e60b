// Package gpu models the device context a GPU worker holds for its
// lifetime. The real OpenCL binding is out of scope for this module (the
// hash primitive itself is an external collaborator out of scope here; this
// package specifies the shape a real OCL-backed implementation would fill,
// and ships a CPU-simulated Context so the pipeline is fully exercisable
// without a GPU present.
package gpu

import (
	"fmt"

	"github.com/emmanuelapp/scavenger/internal/hashengine"
)

// Context is the device handle a GPU worker constructs once at startup
// and holds for its lifetime. WorkGroupSize determines the GPU buffer
// size (gpu_work_group_size * SCOOP_SIZE), mirroring how the original
// miner builds one throwaway context purely to read gdim1[0] before
// sizing real per-worker buffers.
type Context interface {
	// WorkGroupSize returns the number of nonces processed per dispatch.
	WorkGroupSize() int
	// Engine returns the hash engine bound to this device context.
	Engine() hashengine.Engine
	// Close releases device resources.
	Close() error
}

// simulatedContext runs the reference hash engine on the host, standing
// in for a real OpenCL device context so gpu workers are exercisable in
// tests and on machines without a GPU.
type simulatedContext struct {
	workGroupSize int
	engine        hashengine.Engine
}

// NewContext constructs a device context for the given platform/device
// indices and work-group size. With no real OCL binding available, it
// always returns the host-simulated context; a production build would
// probe platform/device here and fail loudly if absent.
func NewContext(platform, device, noncesPerCache int) (Context, error) {
	if noncesPerCache <= 0 {
		return nil, fmt.Errorf("gpu: nonces per cache must be positive, got %d", noncesPerCache)
	}
	return &simulatedContext{
		workGroupSize: noncesPerCache,
		engine:        hashengine.NewReference(),
	}, nil
}

func (c *simulatedContext) WorkGroupSize() int        { return c.workGroupSize }
func (c *simulatedContext) Engine() hashengine.Engine { return c.engine }
func (c *simulatedContext) Close() error              { return nil }
