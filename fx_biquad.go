// fx_biquad.go - RBJ resonant low-pass, transposed direct form II per channel

package main

import "math"

type BiquadCoeffs struct {
	B0, B1, B2 float32
	A1, A2     float32
}

// lowPassCoeffs derives normalized RBJ coefficients. Cutoff is kept below
// Nyquist and Q above MIN_FILTER_Q so the filter stays stable.
func lowPassCoeffs(freq, q float32, sampleRate int) BiquadCoeffs {
	nyquist := float32(sampleRate) / 2
	freq = clamp32(freq, 1, nyquist*0.99)
	q = clamp32(q, MIN_FILTER_Q, math.MaxFloat32)

	w0 := 2 * math.Pi * float64(freq) / float64(sampleRate)
	cosW, sinW := math.Cos(w0), math.Sin(w0)
	alpha := sinW / (2 * float64(q))
	a0 := 1 + alpha

	return BiquadCoeffs{
		B0: float32((1 - cosW) / 2 / a0),
		B1: float32((1 - cosW) / a0),
		B2: float32((1 - cosW) / 2 / a0),
		A1: float32(-2 * cosW / a0),
		A2: float32((1 - alpha) / a0),
	}
}

type BiquadFilter struct {
	Frequency float32
	Q         float32
	coeffs    BiquadCoeffs
	z1l, z2l  float32
	z1r, z2r  float32
	rate      int
}

func NewBiquadFilter(freq, q float32, sampleRate int) *BiquadFilter {
	f := &BiquadFilter{rate: sampleRate}
	f.Set(freq, q)
	return f
}

// Set recomputes coefficients. Filter state is kept so sweeps stay click-free.
func (f *BiquadFilter) Set(freq, q float32) {
	f.Frequency, f.Q = freq, q
	f.coeffs = lowPassCoeffs(freq, q, f.rate)
}

func (f *BiquadFilter) setParam(param int32, v float32) bool {
	if !finite32(v) {
		return false
	}
	switch param {
	case FILTER_PARAM_CUTOFF:
		f.Set(v, f.Q)
	case FILTER_PARAM_Q:
		f.Set(f.Frequency, v)
	default:
		return false
	}
	return true
}

func (f *BiquadFilter) Process(inL, inR float32) (float32, float32) {
	c := &f.coeffs

	outL := c.B0*inL + f.z1l
	f.z1l = c.B1*inL - c.A1*outL + f.z2l
	f.z2l = c.B2*inL - c.A2*outL

	outR := c.B0*inR + f.z1r
	f.z1r = c.B1*inR - c.A1*outR + f.z2r
	f.z2r = c.B2*inR - c.A2*outR

	return outL, outR
}
