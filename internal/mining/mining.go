// Package mining assembles the plot scan, buffer pool, reader, workers,
// and control loop into one running miner.
package mining

import (
	"context"
	"fmt"
	"time"

	"github.com/emmanuelapp/scavenger/internal/bufferpool"
	"github.com/emmanuelapp/scavenger/internal/config"
	"github.com/emmanuelapp/scavenger/internal/control"
	"github.com/emmanuelapp/scavenger/internal/display"
	"github.com/emmanuelapp/scavenger/internal/gpu"
	"github.com/emmanuelapp/scavenger/internal/hashengine"
	"github.com/emmanuelapp/scavenger/internal/plot"
	"github.com/emmanuelapp/scavenger/internal/poolclient"
	"github.com/emmanuelapp/scavenger/internal/reader"
	"github.com/emmanuelapp/scavenger/internal/scan"
	"github.com/emmanuelapp/scavenger/internal/worker"
)

// Miner is the fully-wired pipeline: scan result, buffer pool, reader,
// worker goroutines and the control loop that drives them.
type Miner struct {
	control     *control.Miner
	gpuContexts []gpu.Context
}

// New scans cfg.PlotDirs, builds the buffer pool and reader/worker
// pipeline, and wires them to a control loop talking to pc.
func New(cfg config.Cfg, pc poolclient.Client, disp display.Displayer) (*Miner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	result := scan.Scan(cfg.PlotDirs, cfg.HDDUseDirectIO, disp)

	var groups []*scan.DriveGroup
	for _, g := range result.Drives {
		groups = append(groups, g)
	}

	readerThreadCount := cfg.HDDReaderThreadCount
	if readerThreadCount == 0 {
		readerThreadCount = len(groups)
	}

	bufferCount := cfg.CPUWorkerThreadCount*2 + cfg.GPUWorkerThreadCount*2
	cpuBufSize := cfg.CPUNoncesPerCache * plot.ScoopSize

	var gpuContexts []gpu.Context
	gpuBufSize := 0
	if cfg.GPUWorkerThreadCount > 0 {
		dummy, err := gpu.NewContext(cfg.GPUPlatform, cfg.GPUDevice, cfg.GPUNoncesPerCache)
		if err != nil {
			return nil, fmt.Errorf("gpu context: %w", err)
		}
		gpuBufSize = dummy.WorkGroupSize() * plot.ScoopSize
		_ = dummy.Close()
	}

	pool := bufferpool.New(bufferCount)
	for i := 0; i < cfg.GPUWorkerThreadCount*2; i++ {
		pool.Put(bufferpool.NewGPUBuffer(gpuBufSize, uint64(i)))
	}
	for i := 0; i < cfg.CPUWorkerThreadCount*2; i++ {
		pool.Put(bufferpool.NewCPUBuffer(cpuBufSize))
	}

	cpuReplies := make(chan *reader.ReadReply, cfg.CPUWorkerThreadCount*2)
	gpuReplies := make(chan *reader.ReadReply, cfg.GPUWorkerThreadCount*2)
	nonceData := make(chan worker.NonceData, cfg.CPUWorkerThreadCount+cfg.GPUWorkerThreadCount)

	rd := reader.New(groups, readerThreadCount, pool, cpuReplies, gpuReplies, disp)

	referenceEngine := hashengine.NewReference()

	for i := 0; i < cfg.CPUWorkerThreadCount; i++ {
		i := i
		go func() {
			if cfg.CPUThreadPinning {
				worker.PinCPUWorker(i, disp)
			}
			worker.Run(cpuReplies, pool, nonceData, referenceEngine, disp)
		}()
	}

	for i := 0; i < cfg.GPUWorkerThreadCount; i++ {
		ctx, err := gpu.NewContext(cfg.GPUPlatform, cfg.GPUDevice, cfg.GPUNoncesPerCache)
		if err != nil {
			return nil, fmt.Errorf("gpu worker %d: %w", i, err)
		}
		gpuContexts = append(gpuContexts, ctx)
		go worker.Run(gpuReplies, pool, nonceData, ctx.Engine(), disp)
	}

	m := control.New(rd, pc, referenceEngine, disp, nonceData, control.Options{
		AccountID:      cfg.AccountID,
		TargetDeadline: cfg.TargetDeadline,
		PollInterval:   time.Duration(cfg.GetMiningInfoIntervalMS) * time.Millisecond,
		WakeupAfterMS:  cfg.WakeupAfterMS(),
	})

	return &Miner{control: m, gpuContexts: gpuContexts}, nil
}

// Run blocks, driving the control loop until ctx is cancelled.
func (m *Miner) Run(ctx context.Context) {
	m.control.Run(ctx)
}

// Close releases every GPU device context. Plot file handles are
// intentionally held open for the process lifetime and are not closed
// here.
func (m *Miner) Close() error {
	for _, ctx := range m.gpuContexts {
		_ = ctx.Close()
	}
	return nil
}
