//go:build !linux && !darwin
// +build !linux,!darwin

package processhardening

import (
	"runtime"

	"github.com/drobin/nuts/internal/tlog"
)

// HardenProcess is a no-op on platforms without a known core-dump/ptrace
// hardening syscall; it still logs so the absence is visible rather than
// silent.
func (ph *ProcessHardening) HardenProcess() {
	if !ph.enabled {
		return
	}
	tlog.Debug.Printf("ProcessHardening: no platform-specific hardening available on this OS")
}

// KeepAlive prevents data from being garbage-collected before this call.
func (ph *ProcessHardening) KeepAlive(data []byte) {
	runtime.KeepAlive(data)
}

// SecureWipe overwrites data; on this fallback it does not attempt to
// lock the pages against swapping first (see internal/memprotect for
// that, used independently by container.PasswordStore).
func (ph *ProcessHardening) SecureWipe(data []byte) {
	for i := range data {
		data[i] = byte(i % 256)
	}
	runtime.KeepAlive(data)
}
