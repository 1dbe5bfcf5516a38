// terminal_host.go - Raw-mode stdin reader feeding the keyboard piano

package main

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"golang.org/x/term"
)

var errNotTerminal = errors.New("terminal_host: stdin is not a terminal")

// TerminalHost puts stdin in raw mode and hands every byte to a KeyHandler.
type TerminalHost struct {
	keys     KeyHandler
	fd       int
	restore  *term.State
	stopCh   chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

func NewTerminalHost(keys KeyHandler) *TerminalHost {
	return &TerminalHost{
		keys:   keys,
		fd:     int(os.Stdin.Fd()),
		stopCh: make(chan struct{}),
		done:   make(chan struct{}),
	}
}

func (h *TerminalHost) Start() error {
	if !term.IsTerminal(h.fd) {
		close(h.done)
		return errNotTerminal
	}
	state, err := term.MakeRaw(h.fd)
	if err != nil {
		close(h.done)
		return fmt.Errorf("terminal_host: raw mode: %w", err)
	}
	h.restore = state

	go func() {
		defer close(h.done)
		readKeys(h.fd, h.stopCh, h.keys)
	}()
	return nil
}

// Stop restores the terminal. On platforms without readiness polling the
// reader may stay parked until the next key, so Stop does not wait for it.
func (h *TerminalHost) Stop() {
	h.stopOnce.Do(func() { close(h.stopCh) })
	if pollableStdin {
		<-h.done
	}
	if h.restore != nil {
		_ = term.Restore(h.fd, h.restore)
		h.restore = nil
	}
}
