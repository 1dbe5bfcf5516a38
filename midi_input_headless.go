//go:build headless

package main

import (
	"errors"
	"log/slog"
)

type MIDIInput struct{}

func OpenMIDIInput(name string, sink MIDISink, log *slog.Logger) (*MIDIInput, error) {
	return nil, errors.New("live midi input unavailable in headless build")
}

func (in *MIDIInput) Close() error { return nil }
