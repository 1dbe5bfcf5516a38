package main

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

// recordingSink captures note traffic as strings.
type recordingSink struct {
	mu     sync.Mutex
	events []string
}

func (s *recordingSink) add(ev string) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	s.mu.Unlock()
}

func (s *recordingSink) PlayNote(note, velocity uint8) error {
	s.add(fmt.Sprintf("on %d %d", note, velocity))
	return nil
}

func (s *recordingSink) StopNote(note uint8) error {
	s.add(fmt.Sprintf("off %d", note))
	return nil
}

func (s *recordingSink) AllNotesOff() error {
	s.add("all off")
	return nil
}

func (s *recordingSink) Panic() error {
	s.add("panic")
	return nil
}

func (s *recordingSink) snapshot() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.events...)
}

func waitForEvents(t *testing.T, s *recordingSink, n int) []string {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		ev := s.snapshot()
		if len(ev) >= n || time.Now().After(deadline) {
			return ev
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestKeyboardPiano_NoteMapping(t *testing.T) {
	tests := []struct {
		key    byte
		octave int
		want   uint8
		ok     bool
	}{
		{'z', 4, 60, true},
		{'s', 4, 61, true},
		{',', 4, 72, true},
		{'q', 4, 72, true},
		{'i', 4, 84, true},
		{'z', 0, 12, true},
		{'i', 8, 0, false},
		{'a', 4, 0, false},
	}
	for _, tc := range tests {
		p := NewKeyboardPiano(&recordingSink{}, nil, testLogger())
		p.octave = tc.octave
		got, ok := p.noteFor(tc.key)
		if ok != tc.ok || got != tc.want {
			t.Errorf("noteFor(%q) at octave %d = (%d, %v), want (%d, %v)", tc.key, tc.octave, got, ok, tc.want, tc.ok)
		}
	}
}

func TestKeyboardPiano_HoldAndRelease(t *testing.T) {
	sink := &recordingSink{}
	p := NewKeyboardPiano(sink, nil, testLogger())
	p.hold = 30 * time.Millisecond

	p.HandleKey('z')
	p.HandleKey('z')
	events := waitForEvents(t, sink, 2)
	want := []string{"on 60 100", "off 60"}
	if fmt.Sprint(events) != fmt.Sprint(want) {
		t.Errorf("events = %v, want %v", events, want)
	}
}

func TestKeyboardPiano_OctaveAndPanicKeys(t *testing.T) {
	sink := &recordingSink{}
	quit := make(chan struct{})
	p := NewKeyboardPiano(sink, func() { close(quit) }, testLogger())
	p.hold = time.Hour

	p.HandleKey('[')
	p.HandleKey('z')
	p.HandleKey(' ')
	for i := 0; i < 20; i++ {
		p.HandleKey(']')
	}
	if p.octave != pianoMaxOctave {
		t.Errorf("octave = %d, want %d", p.octave, pianoMaxOctave)
	}
	p.HandleKey('i')
	p.HandleKey(keyCtrlC)

	select {
	case <-quit:
	case <-time.After(time.Second):
		t.Fatal("quit callback not called")
	}
	want := []string{"on 48 100", "all off", "all off"}
	if got := sink.snapshot(); fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("events = %v, want %v", got, want)
	}
	if len(p.timers) != 0 {
		t.Errorf("%d timers still held", len(p.timers))
	}
}
