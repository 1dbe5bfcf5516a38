//go:build !linux

package main

import "time"

const flagPollInterval = 200 * time.Microsecond

// Wait parks by short sleeps where no futex is available.
func (w SharedWord) Wait(expected int32, timeout time.Duration) {
	deadline := time.Now().Add(timeout)
	for w.Load() == expected && time.Now().Before(deadline) {
		time.Sleep(flagPollInterval)
	}
}

func (w SharedWord) Notify() {}
