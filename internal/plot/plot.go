// Package plot implements PoC2 plot file parsing and scoop-aligned reads.
package plot

import (
	"fmt"
	"io"
	"math/rand"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	// ScoopsInNonce is the number of 64-byte scoops per nonce.
	ScoopsInNonce = 4096
	// ShabalHashSize is the size in bytes of a single Shabal-256 hash.
	ShabalHashSize = 32
	// ScoopSize is the size in bytes of one scoop (two Shabal hashes).
	ScoopSize = ShabalHashSize * 2
	// NonceSize is the total size in bytes of one nonce.
	NonceSize = ScoopSize * ScoopsInNonce
)

// Plot is one opened plot file. It owns its file handle exclusively for the
// lifetime of the miner; only the drive's reader goroutine touches it.
type Plot struct {
	AccountID  uint64
	StartNonce uint64
	Nonces     uint64
	Name       string

	fh          *os.File
	readOffset  uint64
	useDirectIO bool
	sectorSize  uint64
	modTime     time.Time
}

// Open parses the plot filename, validates the file size, and opens the
// file handle. Filenames must be "<account_id>_<start_nonce>_<nonces>".
func Open(path string, useDirectIO bool) (*Plot, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is not a file", path)
	}

	name := info.Name()
	parts := strings.Split(name, "_")
	if len(parts) != 3 {
		return nil, fmt.Errorf("plot %s: wrong filename format", name)
	}

	accountID, err := strconv.ParseUint(parts[0], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("plot %s: bad account id: %w", name, err)
	}
	startNonce, err := strconv.ParseUint(parts[1], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("plot %s: bad start nonce: %w", name, err)
	}
	nonces, err := strconv.ParseUint(parts[2], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("plot %s: bad nonce count: %w", name, err)
	}

	expSize := nonces * NonceSize
	if uint64(info.Size()) != expSize {
		return nil, fmt.Errorf("plot %s: expected size %d but got %d", name, expSize, info.Size())
	}

	sectorSize := getSectorSize(path)
	if useDirectIO && sectorSize == 0 {
		// could not determine the device's sector size, downgrade silently (warned by caller)
		useDirectIO = false
	}
	if useDirectIO && sectorSize/ScoopSize > nonces {
		// too few nonces to satisfy alignment, downgrade silently (warned by caller)
		useDirectIO = false
	}

	var fh *os.File
	if useDirectIO {
		fh, err = openDirectIO(path)
		if err != nil {
			return nil, fmt.Errorf("open %s (direct io): %w", name, err)
		}
	} else {
		fh, err = os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", name, err)
		}
	}

	return &Plot{
		AccountID:   accountID,
		StartNonce:  startNonce,
		Nonces:      nonces,
		Name:        name,
		fh:          fh,
		useDirectIO: useDirectIO,
		sectorSize:  sectorSize,
		modTime:     info.ModTime(),
	}, nil
}

// ModTime returns the plot file's last-modification time, used to order
// plots within a drive (newest first).
func (p *Plot) ModTime() time.Time { return p.modTime }

// UsesDirectIO reports whether direct I/O is active for this plot.
func (p *Plot) UsesDirectIO() bool { return p.useDirectIO }

// Close releases the underlying file handle.
func (p *Plot) Close() error { return p.fh.Close() }

// roundSeekAddr rounds seekAddr up to the next sector boundary and returns
// the number of bytes skipped.
func (p *Plot) roundSeekAddr(seekAddr *uint64) uint64 {
	r := *seekAddr % p.sectorSize
	if r == 0 {
		return 0
	}
	skip := p.sectorSize - r
	*seekAddr += skip
	return skip
}

// Prepare resets the read cursor and seeks the file handle to the start of
// scoop's contiguous region, rounding up for direct I/O alignment.
func (p *Plot) Prepare(scoop uint32) error {
	p.readOffset = 0
	seekAddr := uint64(scoop) * p.Nonces * ScoopSize

	if p.useDirectIO {
		p.readOffset = p.roundSeekAddr(&seekAddr)
	}

	if _, err := p.fh.Seek(int64(seekAddr), io.SeekStart); err != nil {
		return fmt.Errorf("plot %s: seek: %w", p.Name, err)
	}
	return nil
}

// Read fills buf (up to its full length) with the next chunk of scoop's
// region, advancing the read cursor. It returns the number of bytes
// actually read, the nonce of the first scoop in the chunk, and whether
// this call drained the remainder of the region.
func (p *Plot) Read(buf []byte, scoop uint32) (int, uint64, bool, error) {
	readOffset := p.readOffset
	bufCap := uint64(len(buf))
	startNonce := p.StartNonce + readOffset/ScoopSize

	regionSize := ScoopSize * p.Nonces
	var bytesToRead uint64
	var finished bool

	if readOffset+bufCap >= regionSize {
		bytesToRead = regionSize - readOffset
		if p.useDirectIO {
			r := bytesToRead % p.sectorSize
			if r != 0 {
				bytesToRead -= r
			}
		}
		finished = true
	} else {
		bytesToRead = bufCap
		finished = false
	}

	seekAddr := int64(readOffset) + int64(scoop)*int64(p.Nonces)*ScoopSize
	if _, err := p.fh.Seek(seekAddr, io.SeekStart); err != nil {
		return 0, 0, true, fmt.Errorf("plot %s: seek: %w", p.Name, err)
	}
	if _, err := io.ReadFull(p.fh, buf[:bytesToRead]); err != nil {
		return 0, 0, true, fmt.Errorf("plot %s: read: %w", p.Name, err)
	}

	p.readOffset += bytesToRead
	return int(bytesToRead), startNonce, finished, nil
}

// SeekRandom seeks to a random scoop's start offset. Used to keep an idle
// drive from spinning down; errors are not fatal to the caller.
func (p *Plot) SeekRandom() error {
	randScoop := uint64(rand.Intn(ScoopsInNonce))
	seekAddr := randScoop * p.Nonces * ScoopSize
	if p.useDirectIO {
		p.roundSeekAddr(&seekAddr)
	}
	_, err := p.fh.Seek(int64(seekAddr), io.SeekStart)
	return err
}

// OverlapsWith reports whether p and other, assumed to belong to the same
// account, share any nonce range, and if so how many nonces overlap.
func (p *Plot) OverlapsWith(other *Plot) (bool, uint64) {
	if p.StartNonce > other.StartNonce+other.Nonces-1 ||
		other.StartNonce > p.StartNonce+p.Nonces-1 {
		return false, 0
	}
	hi := min64(other.StartNonce+other.Nonces, p.StartNonce+p.Nonces)
	lo := max64(p.StartNonce, other.StartNonce)
	return true, hi - lo
}

func min64(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}

func max64(a, b uint64) uint64 {
	if a > b {
		return a
	}
	return b
}
