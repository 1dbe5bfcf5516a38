// audio_lut.go - Precomputed curves for the render loop

package main

import "math"

const sinTableLen = 8192 // one cycle

var (
	// sinTable carries a guard point so sinTable[sinTableLen] == sinTable[0].
	sinTable [sinTableLen + 1]float32
	// velocityGain maps a 7-bit velocity to linear amplitude.
	velocityGain [MIDI_MAX_VALUE + 1]float32
	noteFreq     [MIDI_MAX_VALUE + 1]float32
)

func init() {
	for i := range sinTable {
		sinTable[i] = float32(math.Sin(2 * math.Pi * float64(i) / sinTableLen))
	}
	for v := range velocityGain {
		velocityGain[v] = float32(v) / MIDI_MAX_VALUE
		noteFreq[v] = float32(equalTempered(v))
	}
}

func equalTempered(v int) float64 {
	return FREQ_A4 * math.Pow(2, float64(v-MIDI_NOTE_A4)/12)
}

// fastSin returns sin(2*pi*phase), interpolated. Any phase is accepted.
//
//go:nosplit
func fastSin(phase float32) float32 {
	pos := phase - float32(math.Floor(float64(phase)))
	if pos != pos {
		// NaN or Inf phase.
		return 0
	}
	pos *= sinTableLen
	i := int(pos)
	if i >= sinTableLen {
		return 0
	}
	frac := pos - float32(i)
	return sinTable[i] + frac*(sinTable[i+1]-sinTable[i])
}

// midiToFreq is 440*2^((v-69)/12).
func midiToFreq(v uint8) float32 {
	if int(v) < len(noteFreq) {
		return noteFreq[v]
	}
	return float32(equalTempered(int(v)))
}

func velocityToGain(v uint8) float32 {
	if int(v) < len(velocityGain) {
		return velocityGain[v]
	}
	return float32(v) / MIDI_MAX_VALUE
}
