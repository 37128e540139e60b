//go:build !linux

package worker

// pinCurrentThread is a no-op on platforms without a cheap affinity API
// exposed through golang.org/x/sys; cpu_thread_pinning is then silently
// ignored (no warning, no error) rather than a hard failure, since pinning
// is a best-effort feature never worth killing the process over.
func pinCurrentThread(coreID int) error {
	return nil
}
