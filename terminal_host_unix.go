//go:build unix

package main

import (
	"errors"

	"golang.org/x/sys/unix"
)

const (
	pollableStdin  = true
	keyPollTimeout = 50 // ms
)

// readKeys polls so a stop request is seen within keyPollTimeout even when
// no key is pressed.
func readKeys(fd int, stop <-chan struct{}, keys KeyHandler) {
	fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
	buf := make([]byte, 16)
	for {
		select {
		case <-stop:
			return
		default:
		}
		n, err := unix.Poll(fds, keyPollTimeout)
		if errors.Is(err, unix.EINTR) {
			continue
		}
		if err != nil {
			return
		}
		if n == 0 || fds[0].Revents&unix.POLLIN == 0 {
			if fds[0].Revents&(unix.POLLHUP|unix.POLLERR) != 0 {
				return
			}
			continue
		}
		r, err := unix.Read(fd, buf)
		if err != nil || r == 0 {
			return
		}
		for _, b := range buf[:r] {
			keys.HandleKey(b)
		}
	}
}
