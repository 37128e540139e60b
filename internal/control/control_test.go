package control

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/emmanuelapp/scavenger/internal/poolclient"
	"github.com/emmanuelapp/scavenger/internal/worker"
)

type nullDisplayer struct{}

func (nullDisplayer) ShowDirectoryCapacity(string, int, uint64) {}
func (nullDisplayer) ShowTotalCapacity(uint64)                  {}
func (nullDisplayer) ShowNewBlock(uint64, uint32)               {}
func (nullDisplayer) ShowRoundProgress(int)                     {}
func (nullDisplayer) AdvanceRound(int)                          {}
func (nullDisplayer) FinishRound(time.Duration)                 {}
func (nullDisplayer) ShowWakeup()                               {}
func (nullDisplayer) ShowDeadlineFound(uint64, uint64)          {}
func (nullDisplayer) Info(string, ...any)                       {}
func (nullDisplayer) Warn(string, ...any)                       {}
func (nullDisplayer) Error(string, ...any)                      {}

type fakeReader struct {
	taskCount    int
	startCalls   chan struct{ height uint64 }
	wakeupCalled chan struct{}
}

func newFakeReader(taskCount int) *fakeReader {
	return &fakeReader{
		taskCount:    taskCount,
		startCalls:   make(chan struct{ height uint64 }, 8),
		wakeupCalled: make(chan struct{}, 8),
	}
}

func (f *fakeReader) StartReading(height uint64, scoop uint32, gensig *[32]byte) {
	f.startCalls <- struct{ height uint64 }{height}
}

func (f *fakeReader) Wakeup() {
	f.wakeupCalled <- struct{}{}
}

func (f *fakeReader) TaskCount() int { return f.taskCount }

type fakePoolClient struct {
	infos     chan poolclient.MiningInfo
	submitted chan uint64
}

func (f *fakePoolClient) GetMiningInfo(ctx context.Context) (poolclient.MiningInfo, error) {
	select {
	case info := <-f.infos:
		return info, nil
	default:
		return poolclient.MiningInfo{Height: 0, BaseTarget: 1}, nil
	}
}

func (f *fakePoolClient) SubmitNonce(ctx context.Context, accountID, nonce, height, deadlineScaled uint64) error {
	f.submitted <- deadlineScaled
	return nil
}

type fakeEngine struct{}

func (fakeEngine) DecodeGensig(s string) ([32]byte, error) {
	var out [32]byte
	return out, nil
}

func (fakeEngine) CalculateScoop(height uint64, gensig *[32]byte) uint32 { return 0 }

func (fakeEngine) FindBestDeadline(scoopBytes []byte, nonceCount uint64, gensig *[32]byte, startNonce uint64) (uint64, uint64, error) {
	return 0, 0, fmt.Errorf("not used by control tests")
}

func TestPollOnceAdvancesRoundOnNewHeight(t *testing.T) {
	r := newFakeReader(3)
	pc := &fakePoolClient{infos: make(chan poolclient.MiningInfo, 1), submitted: make(chan uint64, 1)}
	pc.infos <- poolclient.MiningInfo{Height: 5, BaseTarget: 1000, GenerationSignature: "00"}

	m := New(r, pc, fakeEngine{}, nullDisplayer{}, make(chan worker.NonceData, 1), Options{
		TargetDeadline: ^uint64(0),
		PollInterval:   time.Hour,
	})

	m.pollOnce(context.Background())

	select {
	case call := <-r.startCalls:
		if call.height != 5 {
			t.Errorf("StartReading called with height=%d, want 5", call.height)
		}
	default:
		t.Fatalf("StartReading was not called on new block")
	}

	if m.st.height != 5 || m.st.baseTarget != 1000 {
		t.Errorf("state not updated: height=%d baseTarget=%d", m.st.height, m.st.baseTarget)
	}
	if m.st.bestDeadline != ^uint64(0) {
		t.Errorf("bestDeadline should reset to max on new block, got %d", m.st.bestDeadline)
	}
}

func TestPollOnceOnlyAdvancesOnHeightIncrease(t *testing.T) {
	r := newFakeReader(1)
	pc := &fakePoolClient{infos: make(chan poolclient.MiningInfo, 3), submitted: make(chan uint64, 1)}
	pc.infos <- poolclient.MiningInfo{Height: 100, BaseTarget: 1, GenerationSignature: "00"}
	pc.infos <- poolclient.MiningInfo{Height: 100, BaseTarget: 1, GenerationSignature: "00"}
	pc.infos <- poolclient.MiningInfo{Height: 101, BaseTarget: 1, GenerationSignature: "00"}

	m := New(r, pc, fakeEngine{}, nullDisplayer{}, make(chan worker.NonceData, 1), Options{
		TargetDeadline: ^uint64(0),
		PollInterval:   time.Hour,
	})

	m.pollOnce(context.Background())
	m.pollOnce(context.Background())
	m.pollOnce(context.Background())

	if len(r.startCalls) != 2 {
		t.Fatalf("StartReading called %d times for heights [100,100,101], want 2", len(r.startCalls))
	}
}

func TestHandleNonceDataSubmitsBetterDeadline(t *testing.T) {
	r := newFakeReader(1)
	pc := &fakePoolClient{infos: make(chan poolclient.MiningInfo, 1), submitted: make(chan uint64, 1)}

	m := New(r, pc, fakeEngine{}, nullDisplayer{}, make(chan worker.NonceData, 1), Options{
		TargetDeadline: 1000,
		PollInterval:   time.Hour,
	})
	m.st.height = 1
	m.st.baseTarget = 10

	m.handleNonceData(context.Background(), worker.NonceData{
		Height:      1,
		Nonce:       42,
		DeadlineRaw: 500, // deadline = 500/10 = 50, under target
	})

	select {
	case deadline := <-pc.submitted:
		if deadline != 50 {
			t.Errorf("submitted deadline = %d, want 50", deadline)
		}
	case <-time.After(time.Second):
		t.Fatalf("SubmitNonce was never called")
	}

	if m.st.bestDeadline != 50 {
		t.Errorf("bestDeadline = %d, want 50", m.st.bestDeadline)
	}
}

func TestHandleNonceDataIgnoresStaleRound(t *testing.T) {
	r := newFakeReader(1)
	pc := &fakePoolClient{infos: make(chan poolclient.MiningInfo, 1), submitted: make(chan uint64, 1)}

	m := New(r, pc, fakeEngine{}, nullDisplayer{}, make(chan worker.NonceData, 1), Options{
		TargetDeadline: ^uint64(0),
		PollInterval:   time.Hour,
	})
	m.st.height = 10
	m.st.baseTarget = 1

	m.handleNonceData(context.Background(), worker.NonceData{
		Height:      9, // stale, predates current round
		Nonce:       1,
		DeadlineRaw: 1,
	})

	select {
	case <-pc.submitted:
		t.Fatalf("SubmitNonce should not be called for a stale round")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHandleNonceDataFinishesRoundOnLastTask(t *testing.T) {
	r := newFakeReader(2)
	pc := &fakePoolClient{infos: make(chan poolclient.MiningInfo, 1), submitted: make(chan uint64, 1)}

	m := New(r, pc, fakeEngine{}, nullDisplayer{}, make(chan worker.NonceData, 1), Options{
		TargetDeadline: ^uint64(0),
		PollInterval:   time.Hour,
	})
	m.st.height = 1
	m.st.baseTarget = 1
	m.st.scanning = true

	m.handleNonceData(context.Background(), worker.NonceData{Height: 1, ReaderTaskProcessed: true})
	if m.st.scanning != true || m.st.processedReaderTasks != 1 {
		t.Fatalf("round finished too early: scanning=%v processed=%d", m.st.scanning, m.st.processedReaderTasks)
	}

	m.handleNonceData(context.Background(), worker.NonceData{Height: 1, ReaderTaskProcessed: true})
	if m.st.scanning {
		t.Errorf("round should be finished after all reader tasks processed")
	}
}
