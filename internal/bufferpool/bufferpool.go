// Package bufferpool implements the fixed population of large buffers
// recirculated between disk readers and hashing workers without copying.
package bufferpool

import "fmt"

// Kind distinguishes CPU-resident from GPU-resident buffers. Readers route
// a filled buffer to the CPU or GPU reply queue based on this tag.
type Kind int

const (
	CPU Kind = iota
	GPU
)

func (k Kind) String() string {
	if k == GPU {
		return "gpu"
	}
	return "cpu"
}

// Buffer is the capability set shared by CPU and GPU buffers: a
// read/write target plus a kind query. There is no virtual dispatch
// beyond this - CPUBuffer and GPUBuffer are the only two variants.
type Buffer interface {
	Kind() Kind
	// Bytes exposes the buffer's storage for reading and writing. For a
	// GPUBuffer this is the host-visible staging region backing the
	// device-resident allocation.
	Bytes() []byte
}

// CPUBuffer is a page-aligned byte region sized for cpu_nonces_per_cache
// scoops.
type CPUBuffer struct {
	data []byte
}

// NewCPUBuffer allocates a page-aligned buffer of size bytes.
func NewCPUBuffer(size int) *CPUBuffer {
	return &CPUBuffer{data: newAlignedBytes(size)}
}

func (b *CPUBuffer) Kind() Kind    { return CPU }
func (b *CPUBuffer) Bytes() []byte { return b.data }

// GPUBuffer is a device-resident region sized for gpu_work_group_size
// scoops. The host-visible slice is the staging buffer the device context
// DMAs into and out of.
type GPUBuffer struct {
	data   []byte
	device uint64 // opaque device-memory handle, owned by the gpu.Context
}

// NewGPUBuffer allocates the host staging region for a GPU buffer of size
// bytes, tagged with the device-memory handle it mirrors.
func NewGPUBuffer(size int, deviceHandle uint64) *GPUBuffer {
	return &GPUBuffer{data: make([]byte, size), device: deviceHandle}
}

func (b *GPUBuffer) Kind() Kind           { return GPU }
func (b *GPUBuffer) Bytes() []byte        { return b.data }
func (b *GPUBuffer) DeviceHandle() uint64 { return b.device }

// Pool is a bounded mailbox of empty buffers. It is pre-populated once at
// startup and never allocates afterward; readers take whatever empty
// buffer arrives first, fill it, and route the result by kind.
type Pool struct {
	empty chan Buffer
	total int
}

// New creates a pool with the given total buffer capacity. The caller
// populates it with Put before starting readers.
func New(total int) *Pool {
	return &Pool{empty: make(chan Buffer, total), total: total}
}

// Total returns the fixed buffer population size.
func (p *Pool) Total() int { return p.total }

// Put returns an empty buffer to the pool. Used both to seed the pool at
// startup and by workers returning a buffer after hashing.
func (p *Pool) Put(b Buffer) {
	p.empty <- b
}

// Take blocks until an empty buffer is available. This is the pipeline's
// backpressure mechanism: a reader blocks here if every buffer is in
// flight, throttling disk reads to worker throughput.
func (p *Pool) Take() Buffer {
	return <-p.empty
}

// TryTake attempts a non-blocking take, used by tests asserting buffer
// conservation without risking a hang.
func (p *Pool) TryTake() (Buffer, bool) {
	select {
	case b := <-p.empty:
		return b, true
	default:
		return nil, false
	}
}

// String renders the pool's static configuration for logging.
func (p *Pool) String() string {
	return fmt.Sprintf("bufferpool(total=%d)", p.total)
}
