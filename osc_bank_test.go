package main

import (
	"math"
	"testing"
)

func TestNewOscillator_Defaults(t *testing.T) {
	osc := NewOscillator(3, SAMPLE_RATE)

	if osc.ID != 3 || osc.WaveType != WaveSine {
		t.Errorf("id/wave = %d/%v, want 3/sine", osc.ID, osc.WaveType)
	}
	for name, got := range map[string]uint64{
		"attack":  osc.AttackLength,
		"decay":   osc.DecayLength,
		"release": osc.ReleaseLength,
	} {
		if got != 22050 {
			t.Errorf("%s = %d, want 22050", name, got)
		}
	}
	if osc.DelayLength != 0 {
		t.Errorf("delay = %d, want 0", osc.DelayLength)
	}
	if osc.SustainGain != 0.5 || osc.Gain != 0.5 || osc.FrequencyShift != 1 || osc.PhaseShift != 0 {
		t.Errorf("levels = %+v", osc)
	}
	if osc.GainLeft != 1 || osc.GainRight != 1 {
		t.Errorf("pan gains = %v/%v, want 1/1", osc.GainLeft, osc.GainRight)
	}
}

func TestMsToSamples(t *testing.T) {
	tests := []struct {
		ms   float64
		rate int
		want uint64
	}{
		{500, 44100, 22050},
		{10, 44100, 441},
		{1, 48000, 48},
		{0.01, 44100, 0},
		{0, 44100, 0},
		{-5, 44100, 0},
		{math.NaN(), 44100, 0},
		{1e300, 44100, MAX_ENV_LENGTH},
		{math.Inf(1), 44100, MAX_ENV_LENGTH},
	}
	for _, tc := range tests {
		if got := msToSamples(tc.ms, tc.rate); got != tc.want {
			t.Errorf("msToSamples(%v, %d) = %d, want %d", tc.ms, tc.rate, got, tc.want)
		}
	}
}

func TestOscillatorBank_Update(t *testing.T) {
	tests := []struct {
		name   string
		key    uint8
		value  float32
		wantOK bool
		check  func(Oscillator) bool
	}{
		{"attack", OSC_KEY_ATTACK, 882, true, func(o Oscillator) bool { return o.AttackLength == 882 }},
		{"release", OSC_KEY_RELEASE, 100.9, true, func(o Oscillator) bool { return o.ReleaseLength == 100 }},
		{"decay", OSC_KEY_DECAY, 0, true, func(o Oscillator) bool { return o.DecayLength == 0 }},
		{"delay negative", OSC_KEY_DELAY, -4, true, func(o Oscillator) bool { return o.DelayLength == 0 }},
		{"attack saturates", OSC_KEY_ATTACK, 1e30, true, func(o Oscillator) bool { return o.AttackLength == MAX_ENV_LENGTH }},
		{"release infinite", OSC_KEY_RELEASE, float32(math.Inf(1)), true, func(o Oscillator) bool { return o.ReleaseLength == MAX_ENV_LENGTH }},
		{"decay NaN", OSC_KEY_DECAY, float32(math.NaN()), true, func(o Oscillator) bool { return o.DecayLength == 0 }},
		{"sustain", OSC_KEY_SUSTAIN, 7, true, func(o Oscillator) bool { return approxEqual(o.SustainGain, 0.7, 1e-6) }},
		{"sustain clamped", OSC_KEY_SUSTAIN, 20, true, func(o Oscillator) bool { return o.SustainGain == 1 }},
		{"gain", OSC_KEY_GAIN, 8, true, func(o Oscillator) bool { return approxEqual(o.Gain, 0.8, 1e-6) }},
		{"gain NaN", OSC_KEY_GAIN, float32(math.NaN()), false, func(o Oscillator) bool { return o.Gain == DEFAULT_GAIN }},
		{"pitch", OSC_KEY_PITCH, 2, true, func(o Oscillator) bool { return o.FrequencyShift == 2 }},
		{"phase wraps", OSC_KEY_PHASE, 1.25, true, func(o Oscillator) bool { return approxEqual(o.PhaseShift, 0.25, 1e-6) }},
		{"phase negative", OSC_KEY_PHASE, -0.25, true, func(o Oscillator) bool { return approxEqual(o.PhaseShift, 0.75, 1e-6) }},
		{"waveform", OSC_KEY_WAVEFORM, 2, true, func(o Oscillator) bool { return o.WaveType == WaveSaw }},
		{"waveform invalid", OSC_KEY_WAVEFORM, 9, false, func(o Oscillator) bool { return o.WaveType == WaveSine }},
		{"pan left", OSC_KEY_PAN, -1, true, func(o Oscillator) bool { return o.GainLeft == 1 && o.GainRight == 0 }},
		{"pan centre", OSC_KEY_PAN, 0, true, func(o Oscillator) bool { return o.GainLeft == 0.5 && o.GainRight == 0.5 }},
		{"pan clamped", OSC_KEY_PAN, 4, true, func(o Oscillator) bool { return o.GainLeft == 0 && o.GainRight == 1 }},
		{"unknown key", 42, 1, false, func(o Oscillator) bool { return o == NewOscillator(0, SAMPLE_RATE) }},
		{"none key", OSC_KEY_NONE, 1, false, func(o Oscillator) bool { return o == NewOscillator(0, SAMPLE_RATE) }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			bank := NewOscillatorBank(SAMPLE_RATE, testLogger())
			bank.Add(0)
			if ok := bank.Update(0, tc.key, tc.value); ok != tc.wantOK {
				t.Errorf("Update ok = %v, want %v", ok, tc.wantOK)
			}
			if got := bank.At(0); !tc.check(got) {
				t.Errorf("oscillator after update = %+v", got)
			}
		})
	}
}

func TestOscillatorBank_UpdateOutOfRange(t *testing.T) {
	bank := NewOscillatorBank(SAMPLE_RATE, testLogger())
	bank.Add(0)
	if bank.Update(1, OSC_KEY_GAIN, 5) {
		t.Error("Update beyond bank succeeded")
	}
	if bank.Update(-1, OSC_KEY_GAIN, 5) {
		t.Error("Update at negative index succeeded")
	}
}

func TestOscillatorBank_UpdateAddressesPosition(t *testing.T) {
	bank := NewOscillatorBank(SAMPLE_RATE, testLogger())
	bank.Add(10)
	bank.Add(20)
	bank.Add(30)
	if _, ok := bank.Remove(10); !ok {
		t.Fatal("Remove(10) failed")
	}

	// Position 0 now holds id 20.
	bank.Update(0, OSC_KEY_WAVEFORM, float32(WaveSquare))
	if got := bank.At(0); got.ID != 20 || got.WaveType != WaveSquare {
		t.Errorf("position 0 = id %d wave %v, want id 20 square", got.ID, got.WaveType)
	}
	if got := bank.At(1); got.WaveType != WaveSine {
		t.Errorf("position 1 wave = %v, want sine", got.WaveType)
	}
}

func TestOscillatorBank_RemoveFirstDuplicate(t *testing.T) {
	bank := NewOscillatorBank(SAMPLE_RATE, testLogger())
	bank.Add(5)
	bank.Add(7)
	bank.Add(5)
	bank.Update(2, OSC_KEY_PITCH, 3)

	idx, ok := bank.Remove(5)
	if !ok || idx != 0 {
		t.Fatalf("Remove(5) = (%d, %v), want (0, true)", idx, ok)
	}
	if bank.Len() != 2 || bank.At(1).ID != 5 || bank.At(1).FrequencyShift != 3 {
		t.Errorf("remaining = %+v", bank.All())
	}
	if _, ok := bank.Remove(99); ok {
		t.Error("Remove of unknown id succeeded")
	}

	bank.Reset()
	if bank.Len() != 0 {
		t.Errorf("Len after Reset = %d, want 0", bank.Len())
	}
}
