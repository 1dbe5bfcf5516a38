// component_reset.go - State reset for synth components

package main

// BiquadFilter.Reset zeroes the delay line. Coefficients are kept.
func (f *BiquadFilter) Reset() {
	f.z1l, f.z2l = 0, 0
	f.z1r, f.z2r = 0, 0
}

// Echo.Reset silences the feedback memory in-place. Parameters are kept.
func (e *Echo) Reset() {
	clear(e.memL)
	clear(e.memR)
	e.pos = 0
}

func (e *Effect) Reset() {
	switch e.Kind {
	case EffectFilter:
		e.filter.Reset()
	case EffectEcho:
		e.echo.Reset()
	}
}

// Mixer.Reset clears every effect's running state. The chain is kept.
func (m *Mixer) Reset() {
	for i := range m.effects {
		m.effects[i].Reset()
	}
}

// VoiceEngine.Reset purges every voice without a release.
func (e *VoiceEngine) Reset() {
	clear(e.notes)
	e.notes = e.notes[:0]
}

// OscillatorBank.Reset drops every oscillator.
func (b *OscillatorBank) Reset() {
	b.oscillators = b.oscillators[:0]
}

// AudioProcessor.Reset is the panic path: voices purged, effect tails cut.
// Oscillators and the effect chain survive.
func (p *AudioProcessor) Reset() {
	p.voices.Reset()
	p.mixer.Reset()
}
