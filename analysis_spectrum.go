// analysis_spectrum.go - Dominant-frequency analysis of the playback stream

package main

import (
	"fmt"
	"math"
	"math/cmplx"
	"sync"

	"github.com/ktye/fft"
)

const spectrumWindow = 4096

// SpectrumAnalyzer keeps the last window of mono output and reports the
// strongest partial. Feed runs on the playback goroutine; the rest may be
// called from anywhere.
type SpectrumAnalyzer struct {
	mu         sync.Mutex
	fft        fft.FFT
	sampleRate int
	hann       []float64
	history    []float64
	pos        int
	filled     bool
	work       []complex128
}

func NewSpectrumAnalyzer(sampleRate int) (*SpectrumAnalyzer, error) {
	f, err := fft.New(spectrumWindow)
	if err != nil {
		return nil, fmt.Errorf("spectrum fft: %w", err)
	}
	hann := make([]float64, spectrumWindow)
	for i := range hann {
		hann[i] = (1 - math.Cos(2*math.Pi*float64(i)/spectrumWindow)) / 2
	}
	return &SpectrumAnalyzer{
		fft:        f,
		sampleRate: sampleRate,
		hann:       hann,
		history:    make([]float64, spectrumWindow),
		work:       make([]complex128, spectrumWindow),
	}, nil
}

// Feed takes interleaved stereo and folds it to mono.
func (a *SpectrumAnalyzer) Feed(block []float32) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for i := 0; i+1 < len(block); i += 2 {
		a.history[a.pos] = float64(block[i]+block[i+1]) / 2
		a.pos++
		if a.pos == spectrumWindow {
			a.pos = 0
			a.filled = true
		}
	}
}

// DominantFrequency returns the peak frequency in Hz and its magnitude. ok is
// false until a full window has been seen.
func (a *SpectrumAnalyzer) DominantFrequency() (hz, magnitude float64, ok bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.filled {
		return 0, 0, false
	}
	for i := range a.work {
		s := a.history[(a.pos+i)%spectrumWindow]
		a.work[i] = complex(s*a.hann[i], 0)
	}

	bins := a.fft.Transform(a.work)
	half := spectrumWindow / 2
	peak := 1
	for k := 2; k < half; k++ {
		if cmplx.Abs(bins[k]) > cmplx.Abs(bins[peak]) {
			peak = k
		}
	}

	// Parabolic interpolation on log magnitude around the peak bin.
	bin := float64(peak)
	m0 := math.Log(cmplx.Abs(bins[peak-1]) + 1e-12)
	m1 := math.Log(cmplx.Abs(bins[peak]) + 1e-12)
	m2 := math.Log(cmplx.Abs(bins[peak+1]) + 1e-12)
	if d := m0 - 2*m1 + m2; d != 0 {
		bin += 0.5 * (m0 - m2) / d
	}
	return bin * float64(a.sampleRate) / spectrumWindow, cmplx.Abs(bins[peak]), true
}
