// midi_host.go - MIDI message translation and Standard MIDI File playback

package main

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// MIDISink is everything a MIDI source can drive.
type MIDISink interface {
	NoteSink
	Panic() error
}

const (
	ccAllSoundOff = 120
	ccAllNotesOff = 123
)

// applyMIDI posts the synth event for one channel message. Channels are merged.
// It reports whether the message was used.
func applyMIDI(sink MIDISink, msg midi.Message) (bool, error) {
	var ch, key, vel, cc, val uint8
	switch {
	case msg.GetNoteStart(&ch, &key, &vel):
		return true, sink.PlayNote(key, vel)
	case msg.GetNoteEnd(&ch, &key):
		return true, sink.StopNote(key)
	case msg.GetControlChange(&ch, &cc, &val):
		switch cc {
		case ccAllNotesOff:
			return true, sink.AllNotesOff()
		case ccAllSoundOff:
			return true, sink.Panic()
		}
	}
	return false, nil
}

type timedMessage struct {
	at  time.Duration
	msg midi.Message
}

// loadMIDIFile flattens every track into one time-ordered list.
func loadMIDIFile(path string) ([]timedMessage, error) {
	var events []timedMessage
	err := smf.ReadTracks(path).Do(func(ev smf.TrackEvent) {
		if ev.Message.IsMeta() {
			return
		}
		msg := midi.Message(ev.Message)
		if !msg.IsPlayable() {
			return
		}
		events = append(events, timedMessage{
			at:  time.Duration(ev.AbsMicroSeconds) * time.Microsecond,
			msg: msg,
		})
	}).Error()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	sort.SliceStable(events, func(i, j int) bool { return events[i].at < events[j].at })
	return events, nil
}

// MIDIFilePlayer schedules a file's note traffic against the wall clock.
type MIDIFilePlayer struct {
	sink   MIDISink
	events []timedMessage
	log    *slog.Logger
}

func NewMIDIFilePlayer(path string, sink MIDISink, log *slog.Logger) (*MIDIFilePlayer, error) {
	events, err := loadMIDIFile(path)
	if err != nil {
		return nil, err
	}
	log.Info("midi file loaded", "path", path, "events", len(events))
	return &MIDIFilePlayer{sink: sink, events: events, log: log}, nil
}

func (p *MIDIFilePlayer) Duration() time.Duration {
	if len(p.events) == 0 {
		return 0
	}
	return p.events[len(p.events)-1].at
}

// Play blocks until the last event is posted or ctx is done. Every voice is
// released on return.
func (p *MIDIFilePlayer) Play(ctx context.Context) error {
	defer p.sink.AllNotesOff()

	start := time.Now()
	timer := time.NewTimer(0)
	defer timer.Stop()
	<-timer.C

	for _, ev := range p.events {
		if wait := ev.at - time.Since(start); wait > 0 {
			timer.Reset(wait)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-timer.C:
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := applyMIDI(p.sink, ev.msg); err != nil {
			p.log.Warn("midi event dropped", "msg", ev.msg.String(), "err", err)
		}
	}
	return nil
}
