// osc_bank.go - Oscillator definitions and their control protocol

package main

import (
	"log/slog"
	"math"
)

type WaveType uint8

const (
	WaveSine WaveType = iota
	WaveSquare
	WaveSaw
	WaveTriangle
	waveTypeCount
)

func (w WaveType) String() string {
	switch w {
	case WaveSine:
		return "sine"
	case WaveSquare:
		return "square"
	case WaveSaw:
		return "saw"
	case WaveTriangle:
		return "triangle"
	}
	return "unknown"
}

func waveTypeFromValue(v float32) (WaveType, bool) {
	if v != v || v < 0 || v >= float32(waveTypeCount) {
		return 0, false
	}
	return WaveType(v), true
}

// Oscillator is one voice layer. All lengths are in samples.
type Oscillator struct {
	ID       uint8
	WaveType WaveType

	AttackLength  uint64
	DecayLength   uint64
	ReleaseLength uint64
	DelayLength   uint64
	SustainGain   float32

	FrequencyShift float32
	PhaseShift     float32
	Gain           float32
	GainLeft       float32
	GainRight      float32
}

func msToSamples(ms float64, sampleRate int) uint64 {
	if ms <= 0 || math.IsNaN(ms) {
		return 0
	}
	n := math.Floor(ms / 1000 * float64(sampleRate))
	if n >= MAX_ENV_LENGTH {
		return MAX_ENV_LENGTH
	}
	return uint64(n)
}

func NewOscillator(id uint8, sampleRate int) Oscillator {
	env := msToSamples(DEFAULT_ENV_MS, sampleRate)
	return Oscillator{
		ID:             id,
		WaveType:       WaveSine,
		AttackLength:   env,
		DecayLength:    env,
		ReleaseLength:  env,
		SustainGain:    DEFAULT_SUSTAIN,
		FrequencyShift: DEFAULT_FREQ_SHIFT,
		Gain:           DEFAULT_GAIN,
		GainLeft:       DEFAULT_PAN_GAIN,
		GainRight:      DEFAULT_PAN_GAIN,
	}
}

// OscillatorBank is owned by the audio thread. Add and Remove key by id;
// Update keys by array position, which the control side must track.
type OscillatorBank struct {
	oscillators []Oscillator
	sampleRate  int
	log         *slog.Logger
}

func NewOscillatorBank(sampleRate int, log *slog.Logger) *OscillatorBank {
	return &OscillatorBank{sampleRate: sampleRate, log: log}
}

func (b *OscillatorBank) Len() int                { return len(b.oscillators) }
func (b *OscillatorBank) All() []Oscillator       { return b.oscillators }
func (b *OscillatorBank) At(index int) Oscillator { return b.oscillators[index] }

// Add appends an oscillator with factory defaults and returns its position.
// Duplicate ids are accepted; Remove takes the first match.
func (b *OscillatorBank) Add(id uint8) int {
	b.oscillators = append(b.oscillators, NewOscillator(id, b.sampleRate))
	return len(b.oscillators) - 1
}

// Remove deletes the first oscillator with id and returns the position it had.
func (b *OscillatorBank) Remove(id uint8) (int, bool) {
	for i := range b.oscillators {
		if b.oscillators[i].ID == id {
			b.oscillators = append(b.oscillators[:i], b.oscillators[i+1:]...)
			return i, true
		}
	}
	b.log.Warn("remove of unknown oscillator", "id", id)
	return -1, false
}

// Update applies one keyed field change to the oscillator at index. Unknown
// keys and malformed values leave the oscillator untouched.
func (b *OscillatorBank) Update(index int, key uint8, value float32) bool {
	if index < 0 || index >= len(b.oscillators) {
		b.log.Warn("update of unknown oscillator", "index", index, "key", key)
		return false
	}
	osc := &b.oscillators[index]
	switch key {
	case OSC_KEY_ATTACK:
		osc.AttackLength = sampleCount(value)
	case OSC_KEY_RELEASE:
		osc.ReleaseLength = sampleCount(value)
	case OSC_KEY_DECAY:
		osc.DecayLength = sampleCount(value)
	case OSC_KEY_DELAY:
		osc.DelayLength = sampleCount(value)
	case OSC_KEY_SUSTAIN:
		osc.SustainGain = clamp32(value*OSC_LEVEL_SCALING, 0, 1)
	case OSC_KEY_GAIN:
		if !finite32(value) {
			return false
		}
		osc.Gain = value * OSC_LEVEL_SCALING
	case OSC_KEY_PITCH:
		if !finite32(value) {
			return false
		}
		osc.FrequencyShift = value
	case OSC_KEY_PHASE:
		if !finite32(value) {
			return false
		}
		osc.PhaseShift = wrapPhase(value)
	case OSC_KEY_WAVEFORM:
		wt, ok := waveTypeFromValue(value)
		if !ok {
			b.log.Debug("rejected waveform", "index", index, "value", value)
			return false
		}
		osc.WaveType = wt
	case OSC_KEY_PAN:
		v := clamp32(value, -1, 1)
		osc.GainLeft = (1 - v) / 2
		osc.GainRight = (1 + v) / 2
	default:
		b.log.Debug("unknown oscillator key", "index", index, "key", key)
		return false
	}
	return true
}

// sampleCount truncates a stage length, saturating at MAX_ENV_LENGTH so the
// stage sums in the envelope cannot wrap.
func sampleCount(v float32) uint64 {
	if !(v > 0) {
		return 0
	}
	if v >= MAX_ENV_LENGTH {
		return MAX_ENV_LENGTH
	}
	return uint64(v)
}

func finite32(v float32) bool {
	return !math.IsNaN(float64(v)) && !math.IsInf(float64(v), 0)
}

func clamp32(v, lo, hi float32) float32 {
	if v != v {
		return lo
	}
	return min(max(v, lo), hi)
}

func wrapPhase(p float32) float32 {
	p -= float32(math.Floor(float64(p)))
	if p >= 1 {
		return 0
	}
	return p
}
