package bufferpool

import (
	"os"
	"testing"
	"time"
)

func TestPoolPutTake(t *testing.T) {
	p := New(2)
	p.Put(NewCPUBuffer(64))
	p.Put(NewGPUBuffer(64, 1))

	if p.Total() != 2 {
		t.Fatalf("Total() = %d, want 2", p.Total())
	}

	first := p.Take()
	second := p.Take()

	if first.Kind() == second.Kind() {
		t.Errorf("expected one cpu and one gpu buffer, got two %s buffers", first.Kind())
	}
}

func TestPoolTakeBlocksUntilPut(t *testing.T) {
	p := New(1)

	if _, ok := p.TryTake(); ok {
		t.Fatalf("TryTake on empty pool should fail")
	}

	done := make(chan Buffer, 1)
	go func() {
		done <- p.Take()
	}()

	select {
	case <-done:
		t.Fatalf("Take returned before any buffer was put")
	case <-time.After(20 * time.Millisecond):
	}

	p.Put(NewCPUBuffer(32))

	select {
	case b := <-done:
		if b.Kind() != CPU {
			t.Errorf("got kind %s, want cpu", b.Kind())
		}
	case <-time.After(time.Second):
		t.Fatalf("Take did not unblock after Put")
	}
}

func TestCPUBufferIsPageAligned(t *testing.T) {
	b := NewCPUBuffer(4096)
	addr := sliceAddr(b.Bytes())
	pageSize := uintptr(os.Getpagesize())
	if addr%pageSize != 0 {
		t.Errorf("buffer address %#x is not page-aligned to %d", addr, pageSize)
	}
}

func TestGPUBufferDeviceHandle(t *testing.T) {
	b := NewGPUBuffer(16, 42)
	if b.DeviceHandle() != 42 {
		t.Errorf("DeviceHandle() = %d, want 42", b.DeviceHandle())
	}
	if b.Kind() != GPU {
		t.Errorf("Kind() = %s, want gpu", b.Kind())
	}
}
