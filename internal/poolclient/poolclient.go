// Package poolclient defines the upstream pool/node interface and a plain
// net/http implementation. The HTTP/JSON transport itself is out of scope,
// but the control loop needs a concrete collaborator to run against, so a
// minimal implementation is provided here rather than leaving the interface
// unimplemented.
package poolclient

import "context"

// MiningInfo is the upstream node's current-block response.
type MiningInfo struct {
	Height              uint64 `json:"height"`
	BaseTarget          uint64 `json:"baseTarget"`
	GenerationSignature string `json:"generationSignature"`
}

// Client is the external pool/node collaborator the control loop drives.
type Client interface {
	// GetMiningInfo fetches the current block. Errors are logged by the
	// caller and the tick is skipped - no retry here.
	GetMiningInfo(ctx context.Context) (MiningInfo, error)

	// SubmitNonce submits a deadline candidate. Fire-and-forget: the
	// caller does not gate the pipeline on the outcome.
	SubmitNonce(ctx context.Context, accountID, nonce, height, deadlineScaled uint64) error
}
