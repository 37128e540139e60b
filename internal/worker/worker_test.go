package worker

import (
	"testing"
	"time"

	"github.com/emmanuelapp/scavenger/internal/bufferpool"
	"github.com/emmanuelapp/scavenger/internal/hashengine"
	"github.com/emmanuelapp/scavenger/internal/reader"
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

func TestRunHashesAndReturnsBuffer(t *testing.T) {
	pool := bufferpool.New(1)
	buf := bufferpool.NewCPUBuffer(128)
	engine := hashengine.NewReference()

	var gensig [32]byte
	nonceCount := uint64(2)
	_, deadline, err := engine.FindBestDeadline(buf.Bytes(), nonceCount, &gensig, 10)
	if err != nil {
		t.Fatalf("FindBestDeadline: %v", err)
	}

	replies := make(chan *reader.ReadReply, 1)
	replies <- &reader.ReadReply{
		Buffer:     buf,
		Len:        128,
		Height:     7,
		Gensig:     &gensig,
		StartNonce: 10,
		Finished:   true,
	}
	close(replies)

	out := make(chan NonceData, 1)

	Run(replies, pool, out, engine, nullDisplayer{})

	select {
	case nd := <-out:
		if nd.Height != 7 {
			t.Errorf("Height = %d, want 7", nd.Height)
		}
		if nd.DeadlineRaw != deadline {
			t.Errorf("DeadlineRaw = %d, want %d", nd.DeadlineRaw, deadline)
		}
		if !nd.ReaderTaskProcessed {
			t.Errorf("ReaderTaskProcessed should mirror reply.Finished")
		}
	default:
		t.Fatalf("worker did not emit NonceData")
	}

	if _, ok := pool.TryTake(); !ok {
		t.Errorf("worker did not return the buffer to the pool")
	}
}
