// Package control hosts the polling and nonce-intake tasks that track
// round progress and best-so-far deadlines.
package control

import (
	"context"
	"sync"
	"time"

	"github.com/emmanuelapp/scavenger/internal/display"
	"github.com/emmanuelapp/scavenger/internal/hashengine"
	"github.com/emmanuelapp/scavenger/internal/poolclient"
	"github.com/emmanuelapp/scavenger/internal/reader"
	"github.com/emmanuelapp/scavenger/internal/worker"
)

// driveReader is the subset of reader.Reader the control loop drives.
type driveReader interface {
	StartReading(height uint64, scoop uint32, gensig *[32]byte)
	Wakeup()
	TaskCount() int
}

// state is the single-mutex-guarded mining state shared by both tasks.
type state struct {
	mu sync.Mutex

	height               uint64
	bestDeadline         uint64
	baseTarget           uint64
	roundStart           time.Time
	scanning             bool
	processedReaderTasks int
}

// Miner is the control loop: a polling task and a nonce-intake task
// sharing one state under one mutex.
type Miner struct {
	reader driveReader
	pool   poolclient.Client
	engine hashengine.Engine
	disp   display.Displayer

	accountID      uint64
	targetDeadline uint64

	pollInterval  time.Duration
	wakeupAfterMS int64

	nonceData chan worker.NonceData

	st state
}

// Options bundles Miner's configuration knobs.
type Options struct {
	AccountID      uint64
	TargetDeadline uint64
	PollInterval   time.Duration
	WakeupAfterMS  int64
}

// New builds a control loop over reader r, pool client p, and hash engine
// e. nonceData is the worker->control channel every CPU/GPU worker writes
// NonceData into.
func New(r driveReader, p poolclient.Client, e hashengine.Engine, disp display.Displayer, nonceData chan worker.NonceData, opts Options) *Miner {
	return &Miner{
		reader:         r,
		pool:           p,
		engine:         e,
		disp:           disp,
		accountID:      opts.AccountID,
		targetDeadline: opts.TargetDeadline,
		pollInterval:   opts.PollInterval,
		wakeupAfterMS:  opts.WakeupAfterMS,
		nonceData:      nonceData,
		st: state{
			bestDeadline: ^uint64(0),
			baseTarget:   1,
		},
	}
}

// Run drives both tasks until ctx is cancelled.
func (m *Miner) Run(ctx context.Context) {
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		m.pollLoop(ctx)
	}()
	go func() {
		defer wg.Done()
		m.intakeLoop(ctx)
	}()
	wg.Wait()
}

// pollLoop polls get_mining_info on a fixed interval, first tick immediate,
// advancing rounds or firing the idle wakeup heuristic.
func (m *Miner) pollLoop(ctx context.Context) {
	ticker := time.NewTicker(m.pollInterval)
	defer ticker.Stop()

	m.pollOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.pollOnce(ctx)
		}
	}
}

func (m *Miner) pollOnce(ctx context.Context) {
	info, err := m.pool.GetMiningInfo(ctx)
	if err != nil {
		m.disp.Warn("error getting mining info: %v", err)
		return
	}

	m.st.mu.Lock()
	defer m.st.mu.Unlock()

	if info.Height > m.st.height {
		m.st.bestDeadline = ^uint64(0)
		m.st.height = info.Height
		m.st.baseTarget = info.BaseTarget

		gensig, err := m.engine.DecodeGensig(info.GenerationSignature)
		if err != nil {
			m.disp.Error("cannot decode generation signature: %v", err)
			return
		}
		scoop := m.engine.CalculateScoop(info.Height, &gensig)

		m.disp.ShowNewBlock(info.Height, scoop)
		m.disp.ShowRoundProgress(m.reader.TaskCount())

		m.reader.StartReading(info.Height, scoop, &gensig)

		m.st.roundStart = nowFunc()
		m.st.processedReaderTasks = 0
		m.st.scanning = true
		return
	}

	if !m.st.scanning && m.wakeupAfterMS > 0 && elapsedMS(m.st.roundStart) >= m.wakeupAfterMS {
		m.disp.ShowWakeup()
		m.reader.Wakeup()
		m.st.roundStart = nowFunc()
	}
}

// intakeLoop receives NonceData, updates the best deadline, submits
// candidates under the target, and tracks round completion.
func (m *Miner) intakeLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case nd, ok := <-m.nonceData:
			if !ok {
				return
			}
			m.handleNonceData(ctx, nd)
		}
	}
}

func (m *Miner) handleNonceData(ctx context.Context, nd worker.NonceData) {
	m.st.mu.Lock()

	if nd.Height < m.st.height {
		// stale round; a worker can still be reporting on a height the
		// poller has already advanced past - safe to ignore outright
		m.st.mu.Unlock()
		return
	}

	deadline := nd.DeadlineRaw / m.st.baseTarget
	if deadline < m.st.bestDeadline && deadline < m.targetDeadline {
		m.st.bestDeadline = deadline
		height := nd.Height
		nonce := nd.Nonce
		go func() {
			if err := m.pool.SubmitNonce(ctx, m.accountID, nonce, height, deadline); err != nil {
				m.disp.Warn("submit nonce failed: %v", err)
			}
		}()
		m.disp.ShowDeadlineFound(nonce, deadline)
	}

	if nd.ReaderTaskProcessed {
		m.st.processedReaderTasks++
		m.disp.AdvanceRound(m.st.processedReaderTasks)
		if m.st.processedReaderTasks == m.reader.TaskCount() {
			m.disp.FinishRound(elapsedSince(m.st.roundStart))
			m.st.roundStart = nowFunc()
			m.st.scanning = false
		}
	}

	m.st.mu.Unlock()
}

func nowFunc() time.Time { return time.Now() }

func elapsedMS(since time.Time) int64 {
	if since.IsZero() {
		return 0
	}
	return time.Since(since).Milliseconds()
}

func elapsedSince(since time.Time) time.Duration {
	if since.IsZero() {
		return 0
	}
	return time.Since(since)
}
