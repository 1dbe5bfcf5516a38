//go:build !linux || headless

package main

import (
	"errors"
	"log/slog"
)

// ALSAPlayer is only built on Linux with a device backend.
type ALSAPlayer struct {
	HeadlessPlayer
}

func NewALSAPlayer(sampleRate int, log *slog.Logger) (*ALSAPlayer, error) {
	return nil, errors.New("alsa output unavailable in this build")
}

func (ap *ALSAPlayer) Err() error { return nil }
