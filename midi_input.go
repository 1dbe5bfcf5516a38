//go:build !headless

// midi_input.go - Live MIDI input through the rtmidi driver

package main

import (
	"fmt"
	"log/slog"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register MIDI driver
)

func init() {
	compiledFeatures = append(compiledFeatures, "midi:rtmidi")
}

type MIDIInput struct {
	port drivers.In
	stop func()
}

// OpenMIDIInput listens on the first input port whose name contains name.
func OpenMIDIInput(name string, sink MIDISink, log *slog.Logger) (*MIDIInput, error) {
	port, err := midi.FindInPort(name)
	if err != nil {
		return nil, fmt.Errorf("midi input %q: %w (available: %v)", name, err, midi.GetInPorts())
	}
	stop, err := midi.ListenTo(port, func(msg midi.Message, timestampms int32) {
		if _, err := applyMIDI(sink, msg); err != nil {
			log.Warn("midi event dropped", "msg", msg.String(), "err", err)
		}
	}, midi.HandleError(func(err error) {
		log.Warn("midi input error", "port", port.String(), "err", err)
	}))
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	log.Info("midi input open", "port", port.String())
	return &MIDIInput{port: port, stop: stop}, nil
}

func (in *MIDIInput) Close() error {
	if in.stop != nil {
		in.stop()
		in.stop = nil
	}
	midi.CloseDriver()
	return nil
}
