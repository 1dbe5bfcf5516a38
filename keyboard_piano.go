// keyboard_piano.go - Maps typed characters to notes with timed release

package main

import (
	"log/slog"
	"sync"
	"time"
)

// KeyHandler receives raw bytes typed on the host terminal.
type KeyHandler interface {
	HandleKey(b byte)
}

// NoteSink is the note half of ControlPort.
type NoteSink interface {
	PlayNote(note, velocity uint8) error
	StopNote(note uint8) error
	AllNotesOff() error
}

const (
	pianoDefaultOctave   = 4
	pianoMaxOctave       = 8
	pianoDefaultVelocity = 100
	pianoHoldTime        = 350 * time.Millisecond

	keyCtrlC  = 0x03
	keyEscape = 0x1B
)

// Two tracker-style rows, each a chromatic octave plus the top C.
var pianoKeyOffsets = func() map[byte]int {
	m := make(map[byte]int)
	for i, k := range []byte("zsxdcvgbhnjm,") {
		m[k] = i
	}
	for i, k := range []byte("q2w3er5t6y7ui") {
		m[k] = 12 + i
	}
	return m
}()

// KeyboardPiano gets no key-up events from a terminal, so every note is
// released after a hold time. Auto-repeat of a held key extends the hold.
type KeyboardPiano struct {
	sink     NoteSink
	hold     time.Duration
	onQuit   func()
	log      *slog.Logger
	mu       sync.Mutex
	octave   int
	velocity uint8
	timers   map[uint8]*time.Timer
}

func NewKeyboardPiano(sink NoteSink, onQuit func(), log *slog.Logger) *KeyboardPiano {
	return &KeyboardPiano{
		sink:     sink,
		hold:     pianoHoldTime,
		onQuit:   onQuit,
		log:      log,
		octave:   pianoDefaultOctave,
		velocity: pianoDefaultVelocity,
		timers:   make(map[uint8]*time.Timer),
	}
}

// noteFor returns the note for key at the current octave.
func (p *KeyboardPiano) noteFor(key byte) (uint8, bool) {
	off, ok := pianoKeyOffsets[key]
	if !ok {
		return 0, false
	}
	n := (p.octave+1)*12 + off
	if n < 0 || n > MIDI_MAX_VALUE {
		return 0, false
	}
	return uint8(n), true
}

func (p *KeyboardPiano) HandleKey(key byte) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch key {
	case keyCtrlC, keyEscape:
		p.releaseAllLocked()
		if p.onQuit != nil {
			go p.onQuit()
		}
		return
	case ' ':
		p.releaseAllLocked()
		return
	case '[':
		p.octave = max(p.octave-1, 0)
		p.log.Info("octave", "octave", p.octave)
		return
	case ']':
		p.octave = min(p.octave+1, pianoMaxOctave)
		p.log.Info("octave", "octave", p.octave)
		return
	}

	note, ok := p.noteFor(key)
	if !ok {
		return
	}
	if t, held := p.timers[note]; held {
		t.Reset(p.hold)
		return
	}
	if err := p.sink.PlayNote(note, p.velocity); err != nil {
		p.log.Warn("note dropped", "note", note, "err", err)
		return
	}
	p.timers[note] = time.AfterFunc(p.hold, func() { p.release(note) })
}

func (p *KeyboardPiano) release(note uint8) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, held := p.timers[note]; !held {
		return
	}
	delete(p.timers, note)
	if err := p.sink.StopNote(note); err != nil {
		p.log.Warn("note-off dropped", "note", note, "err", err)
	}
}

func (p *KeyboardPiano) releaseAllLocked() {
	for note, t := range p.timers {
		t.Stop()
		delete(p.timers, note)
	}
	if err := p.sink.AllNotesOff(); err != nil {
		p.log.Warn("all-notes-off dropped", "err", err)
	}
}

// Close releases every held note.
func (p *KeyboardPiano) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.releaseAllLocked()
}
