// runtime_status.go - Render-thread telemetry shared with monitoring code

package main

import (
	"sync"
	"sync/atomic"
)

type runtimeStatusSnapshot struct {
	Passes         uint64  `json:"passes"`
	SamplesWritten uint64  `json:"samples_written"`
	NoteEvents     uint64  `json:"note_events"`
	OscEvents      uint64  `json:"osc_events"`
	FxEvents       uint64  `json:"fx_events"`
	SkippedPasses  uint64  `json:"skipped_passes"`
	Underruns      uint64  `json:"underruns"`
	ActiveVoices   int     `json:"active_voices"`
	Oscillators    int     `json:"oscillators"`
	Effects        int     `json:"effects"`
	PeakLevel      float32 `json:"peak_level"`
}

// runtimeStatusStore is written once per pass by the render thread and read by
// anything else. Counters are atomics so the render thread never blocks on a
// reader; the small gauge set sits behind the mutex.
type runtimeStatusStore struct {
	passes         atomic.Uint64
	samplesWritten atomic.Uint64
	noteEvents     atomic.Uint64
	oscEvents      atomic.Uint64
	fxEvents       atomic.Uint64
	skippedPasses  atomic.Uint64
	underruns      atomic.Uint64

	mu           sync.RWMutex
	activeVoices int
	oscillators  int
	effects      int
	peak         float32
}

func (s *runtimeStatusStore) recordDrain(notes, oscs, fx int) {
	s.noteEvents.Add(uint64(notes))
	s.oscEvents.Add(uint64(oscs))
	s.fxEvents.Add(uint64(fx))
}

func (s *runtimeStatusStore) recordPass(samples int, voices, oscs, fx int, peak float32) {
	s.passes.Add(1)
	if samples == 0 {
		s.skippedPasses.Add(1)
	}
	s.samplesWritten.Add(uint64(samples))
	if !s.mu.TryLock() {
		return
	}
	s.activeVoices = voices
	s.oscillators = oscs
	s.effects = fx
	s.peak = peak
	s.mu.Unlock()
}

func (s *runtimeStatusStore) recordUnderrun() {
	s.underruns.Add(1)
}

func (s *runtimeStatusStore) snapshot() runtimeStatusSnapshot {
	snap := runtimeStatusSnapshot{
		Passes:         s.passes.Load(),
		SamplesWritten: s.samplesWritten.Load(),
		NoteEvents:     s.noteEvents.Load(),
		OscEvents:      s.oscEvents.Load(),
		FxEvents:       s.fxEvents.Load(),
		SkippedPasses:  s.skippedPasses.Load(),
		Underruns:      s.underruns.Load(),
	}
	s.mu.RLock()
	snap.ActiveVoices = s.activeVoices
	snap.Oscillators = s.oscillators
	snap.Effects = s.effects
	snap.PeakLevel = s.peak
	s.mu.RUnlock()
	return snap
}
