//go:build linux

// shm_futex_linux.go - Blocking wait/notify on a shared flag word

package main

import (
	"math"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"
)

func init() {
	compiledFeatures = append(compiledFeatures, "shm:futex")
}

// Shared (not FUTEX_PRIVATE) so a peer process mapping the same file is woken.
const (
	futexWait = 0
	futexWake = 1
)

// Wait blocks while the word equals expected, for at most timeout. Spurious
// and early returns are allowed; callers re-check the word.
func (w SharedWord) Wait(expected int32, timeout time.Duration) {
	if w.Load() != expected {
		return
	}
	ts := unix.NsecToTimespec(timeout.Nanoseconds())
	unix.Syscall6(unix.SYS_FUTEX, uintptr(unsafe.Pointer(w.p)), futexWait,
		uintptr(uint32(expected)), uintptr(unsafe.Pointer(&ts)), 0, 0)
}

// Notify wakes every waiter parked on the word.
func (w SharedWord) Notify() {
	unix.Syscall6(unix.SYS_FUTEX, uintptr(unsafe.Pointer(w.p)), futexWake,
		uintptr(math.MaxInt32), 0, 0, 0)
}
