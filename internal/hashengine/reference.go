package hashengine

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"

	sha256simd "github.com/minio/sha256-simd"
)

const scoopSize = 64

// Reference is a deterministic stand-in for the real Shabal-256 PoC2 hash
// chain, built on minio/sha256-simd - an accelerated SHA-256 promoted here
// from an indirect dependency to a directly exercised one. It is not
// cryptographically
// equivalent to Burst's Shabal-256 deadline derivation - it exists so the
// pipeline and its tests have a concrete, fast Engine without depending on
// the real (out-of-scope) hash primitive.
type Reference struct{}

// NewReference returns the reference Engine implementation.
func NewReference() *Reference { return &Reference{} }

func (Reference) DecodeGensig(s string) ([32]byte, error) {
	var out [32]byte
	b, err := hex.DecodeString(s)
	if err != nil {
		return out, fmt.Errorf("decode gensig: %w", err)
	}
	if len(b) != 32 {
		return out, fmt.Errorf("decode gensig: expected 32 bytes, got %d", len(b))
	}
	copy(out[:], b)
	return out, nil
}

func (Reference) CalculateScoop(height uint64, gensig *[32]byte) uint32 {
	var heightBytes [8]byte
	binary.BigEndian.PutUint64(heightBytes[:], height)

	h := sha256simd.New()
	h.Write(gensig[:])
	h.Write(heightBytes[:])
	sum := h.Sum(nil)

	// fold the 32-byte digest down to a scoop index the way Burst derives
	// one from the last 8 bytes of its own gensig/height hash
	last8 := binary.BigEndian.Uint64(sum[24:32])
	return uint32(last8 % 4096)
}

func (Reference) FindBestDeadline(scoopBytes []byte, nonceCount uint64, gensig *[32]byte, startNonce uint64) (uint64, uint64, error) {
	if nonceCount == 0 {
		return 0, 0, nil
	}
	if uint64(len(scoopBytes)) < nonceCount*scoopSize {
		return 0, 0, fmt.Errorf("find best deadline: need %d bytes, got %d", nonceCount*scoopSize, len(scoopBytes))
	}

	bestDeadline := ^uint64(0)
	bestNonce := startNonce

	for i := uint64(0); i < nonceCount; i++ {
		chunk := scoopBytes[i*scoopSize : (i+1)*scoopSize]

		h := sha256simd.New()
		h.Write(gensig[:])
		h.Write(chunk)
		sum := h.Sum(nil)

		deadline := binary.BigEndian.Uint64(sum[:8])
		if deadline < bestDeadline {
			bestDeadline = deadline
			bestNonce = startNonce + i
		}
	}

	return bestNonce, bestDeadline, nil
}
