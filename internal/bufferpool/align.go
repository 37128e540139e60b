package bufferpool

import "os"

// newAlignedBytes returns a byte slice of exactly size bytes whose backing
// array starts on a page boundary, required for direct-I/O reads into it.
// Go's allocator gives no alignment guarantee for byte slices, so we
// over-allocate by one page and slice forward to the first aligned byte;
// the unused prefix is retained by the slice header and freed together
// with it.
func newAlignedBytes(size int) []byte {
	pageSize := os.Getpagesize()
	raw := make([]byte, size+pageSize)
	offset := 0
	if addr := sliceAddr(raw); addr%uintptr(pageSize) != 0 {
		offset = pageSize - int(addr%uintptr(pageSize))
	}
	aligned := raw[offset : offset+size]
	return aligned[:size:size]
}
