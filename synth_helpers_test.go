package main

import (
	"io"
	"log/slog"
	"math"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestContext binds heap regions with the default layout.
func newTestContext(t testing.TB) *SynthContext {
	t.Helper()
	return newTestContextWith(t, defaultConfig())
}

func newTestContextWith(t testing.TB, cfg SynthConfig) *SynthContext {
	t.Helper()
	regions, err := AllocateRegions(cfg)
	if err != nil {
		t.Fatalf("AllocateRegions: %v", err)
	}
	sc, err := InitAudioThread(regions, cfg.SampleRate, testLogger())
	if err != nil {
		t.Fatalf("InitAudioThread: %v", err)
	}
	t.Cleanup(func() { sc.Close() })
	return sc
}

// newTestOscillator builds a sine oscillator with explicit envelope lengths.
func newTestOscillator(attack, decay, release, delay uint64, sustain float32) Oscillator {
	osc := NewOscillator(0, SAMPLE_RATE)
	osc.AttackLength = attack
	osc.DecayLength = decay
	osc.ReleaseLength = release
	osc.DelayLength = delay
	osc.SustainGain = sustain
	return osc
}

func approxEqual(a, b, tol float32) bool {
	return math.Abs(float64(a-b)) <= float64(tol)
}

func isFinite32(v float32) bool {
	return !math.IsNaN(float64(v)) && !math.IsInf(float64(v), 0)
}
