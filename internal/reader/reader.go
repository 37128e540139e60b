// Package reader implements one task per physical drive, streaming scoop
// chunks into the buffer pool and routing filled buffers to the CPU or GPU
// reply queue.
package reader

import (
	"sync"

	"github.com/emmanuelapp/scavenger/internal/bufferpool"
	"github.com/emmanuelapp/scavenger/internal/display"
	"github.com/emmanuelapp/scavenger/internal/scan"
)

// ReadReply is a filled buffer bundled with the metadata a worker needs to
// hash it and the control loop needs to account for it.
type ReadReply struct {
	Buffer     bufferpool.Buffer
	Len        int
	Height     uint64
	Gensig     *[32]byte
	StartNonce uint64
	Finished   bool
}

// Reader owns every drive's plot sequence for the lifetime of the miner,
// one goroutine per distinct drive_id bounded by a reader_thread_count
// sized semaphore (rayon::ThreadPool's counterpart).
type Reader struct {
	groups []*scan.DriveGroup
	pool   *bufferpool.Pool

	cpuReplies chan *ReadReply
	gpuReplies chan *ReadReply

	sem chan struct{}

	mu         sync.Mutex
	interrupts []chan struct{}
	dones      []chan struct{}

	disp display.Displayer
}

// New builds a Reader over the scanned drive groups. threadCount bounds
// how many drive goroutines may run concurrently; values above len(groups)
// have no further effect since there is exactly one task per drive.
func New(groups []*scan.DriveGroup, threadCount int, pool *bufferpool.Pool, cpuReplies, gpuReplies chan *ReadReply, disp display.Displayer) *Reader {
	if threadCount <= 0 {
		threadCount = len(groups)
	}
	if threadCount <= 0 {
		threadCount = 1
	}
	return &Reader{
		groups:     groups,
		pool:       pool,
		cpuReplies: cpuReplies,
		gpuReplies: gpuReplies,
		sem:        make(chan struct{}, threadCount),
		disp:       disp,
	}
}

// TaskCount returns the number of per-drive reader tasks, i.e. the number
// of distinct drives - the control loop's reader_task_count.
func (r *Reader) TaskCount() int { return len(r.groups) }

// StartReading interrupts every in-flight reader task, waits for each one
// to fully exit, then spawns a fresh task per drive for the new round.
// Waiting for the prior round's goroutine is required, not optional: a
// drive's Plot holds a shared read offset and file handle, so a freshly
// spawned task for the same drive must never run concurrently with the
// task it replaces, or their Seek+Read calls interleave against the same
// file position.
func (r *Reader) StartReading(height uint64, scoop uint32, gensig *[32]byte) {
	r.mu.Lock()
	for _, interrupt := range r.interrupts {
		select {
		case interrupt <- struct{}{}:
		default:
		}
	}
	prevDones := r.dones
	r.mu.Unlock()

	for _, done := range prevDones {
		if done != nil {
			<-done
		}
	}

	r.mu.Lock()
	newInterrupts := make([]chan struct{}, len(r.groups))
	newDones := make([]chan struct{}, len(r.groups))
	for i, group := range r.groups {
		interrupt := make(chan struct{}, 1)
		done := make(chan struct{})
		newInterrupts[i] = interrupt
		newDones[i] = done
		go r.runDriveRound(group, height, scoop, gensig, interrupt, done)
	}
	r.interrupts = newInterrupts
	r.dones = newDones
	r.mu.Unlock()
}

// Wakeup schedules a fire-and-forget random seek on the first plot of each
// drive, to keep idle disks from spinning down. It competes with no round
// in progress and ignores errors.
func (r *Reader) Wakeup() {
	for _, group := range r.groups {
		group := group
		go func() {
			if len(group.Plots) == 0 {
				return
			}
			if err := group.Plots[0].SeekRandom(); err != nil {
				r.disp.Error("wakeup: error during wakeup %s: %v -> skip one round", group.Plots[0].Name, err)
			}
		}()
	}
}

// runDriveRound is one drive's reader task for a single round: iterate
// plots in order, stream scoop chunks into empty buffers, dispatch by
// buffer kind, and stop promptly once interrupted. done is closed on
// return, after the semaphore slot is released, so StartReading can tell
// the prior round for this drive has fully exited before replacing it.
func (r *Reader) runDriveRound(group *scan.DriveGroup, height uint64, scoop uint32, gensig *[32]byte, interrupt chan struct{}, done chan struct{}) {
	defer close(done)
	r.sem <- struct{}{}
	defer func() { <-r.sem }()

	plots := group.Plots
	plotCount := len(plots)

outer:
	for i, p := range plots {
		if err := p.Prepare(scoop); err != nil {
			r.disp.Error("reader: error preparing %s for reading: %v -> skip one round", p.Name, err)
			continue outer
		}

		for {
			buf := r.pool.Take()
			bs := buf.Bytes()

			bytesRead, startNonce, nextPlot, err := p.Read(bs, scoop)
			if err != nil {
				r.disp.Error("reader: error reading chunk from %s: %v -> skip one round", p.Name, err)
				bytesRead, startNonce, nextPlot = 0, 0, true
			}

			finished := i == plotCount-1 && nextPlot

			reply := &ReadReply{
				Buffer:     buf,
				Len:        bytesRead,
				Height:     height,
				Gensig:     gensig,
				StartNonce: startNonce,
				Finished:   finished,
			}

			if buf.Kind() == bufferpool.GPU {
				r.gpuReplies <- reply
			} else {
				r.cpuReplies <- reply
			}

			if nextPlot {
				break
			}

			select {
			case <-interrupt:
				break outer
			default:
			}
		}
	}
}
