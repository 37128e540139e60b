// Package worker implements the CPU and GPU hashing workers: consume a
// filled buffer, run the hash engine, emit a NonceData, return the buffer
// empty.
package worker

import (
	"github.com/emmanuelapp/scavenger/internal/bufferpool"
	"github.com/emmanuelapp/scavenger/internal/display"
	"github.com/emmanuelapp/scavenger/internal/hashengine"
	"github.com/emmanuelapp/scavenger/internal/reader"
)

// NonceData is a worker's output: the best nonce and deadline found in one
// filled buffer, forwarded to the control loop.
type NonceData struct {
	Height              uint64
	Nonce               uint64
	DeadlineRaw         uint64
	ReaderTaskProcessed bool
}

// Run is one worker's long-lived loop. It is stateless across rounds: the
// height carried in each reply lets the control loop discard stale
// results, so the worker never needs to know which round is current.
func Run(replies <-chan *reader.ReadReply, pool *bufferpool.Pool, out chan<- NonceData, engine hashengine.Engine, disp display.Displayer) {
	for reply := range replies {
		processOne(reply, pool, out, engine, disp)
	}
}

func processOne(reply *reader.ReadReply, pool *bufferpool.Pool, out chan<- NonceData, engine hashengine.Engine, disp display.Displayer) {
	defer pool.Put(reply.Buffer)

	nonceCount := uint64(reply.Len) / 64 // SCOOP_SIZE, same value as plot.ScoopSize
	deadline := ^uint64(0)
	nonce := reply.StartNonce

	if nonceCount > 0 {
		bestNonce, bestDeadline, err := engine.FindBestDeadline(reply.Buffer.Bytes()[:reply.Len], nonceCount, reply.Gensig, reply.StartNonce)
		if err != nil {
			disp.Error("worker: hash error: %v", err)
		} else {
			nonce, deadline = bestNonce, bestDeadline
		}
	}

	out <- NonceData{
		Height:              reply.Height,
		Nonce:               nonce,
		DeadlineRaw:         deadline,
		ReaderTaskProcessed: reply.Finished,
	}
}
