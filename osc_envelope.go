// osc_envelope.go - Waveform generation and counter-driven ADSR envelope

/*
 ██▓ ███▄    █ ▄▄▄█████▓ █    ██  ██▓▄▄▄█████▓ ██▓ ▒█████   ███▄    █    ▓█████  ███▄    █   ▄████  ██▓ ███▄    █ ▓█████
▓██▒ ██ ▀█   █ ▓  ██▒ ▓▒ ██  ▓██▒▓██▒▓  ██▒ ▓▒▓██▒▒██▒  ██▒ ██ ▀█   █    ▓█   ▀  ██ ▀█   █  ██▒ ▀█▒▓██▒ ██ ▀█   █ ▓█   ▀
▒██▒▓██  ▀█ ██▒▒ ▓██░ ▒░▓██  ▒██░▒██▒▒ ▓██░ ▒░▒██▒▒██░  ██▒▓██  ▀█ ██▒   ▒███   ▓██  ▀█ ██▒▒██░▄▄▄░▒██▒▓██  ▀█ ██▒▒███
░██░▓██▒  ▐▌██▒░ ▓██▓ ░ ▓▓█  ░██░░██░░ ▓██▓ ░ ░██░▒██   ██░▓██▒  ▐▌██▒   ▒▓█  ▄ ▓██▒  ▐▌██▒░▓█  ██▓░██░▓██▒  ▐▌██▒▒▓█  ▄
░██░▒██░   ▓██░  ▒██▒ ░ ▒▒█████▓ ░██░  ▒██▒ ░ ░██░░ ████▓▒░▒██░   ▓██░   ░▒████▒▒██░   ▓██░░▒▓███▀▒░██░▒██░   ▓██░░▒████▒
░▓  ░ ▒░   ▒ ▒   ▒ ░░   ░▒▓▒ ▒ ▒ ░▓    ▒ ░░   ░▓  ░ ▒░▒░▒░ ░ ▒░   ▒ ▒    ░░ ▒░ ░░ ▒░   ▒ ▒  ░▒   ▒ ░▓  ░ ▒░   ▒ ▒ ░░ ▒░ ░
 ▒ ░░ ░░   ░ ▒░    ░    ░░▒░ ░ ░  ▒ ░    ░     ▒ ░  ░ ▒ ▒░ ░ ░░   ░ ▒░    ░ ░  ░░ ░░   ░ ▒░  ░   ░  ▒ ░░ ░░   ░ ▒░ ░ ░  ░
 ▒ ░   ░   ░ ░   ░       ░░░ ░ ░  ▒ ░  ░       ▒ ░░ ░ ░ ▒     ░   ░ ░       ░      ░   ░ ░ ░ ░   ░  ▒ ░   ░   ░ ░    ░
 ░           ░             ░      ░            ░      ░ ░           ░       ░  ░         ░       ░  ░           ░    ░  ░

(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/IntuitionSynth
License: GPLv3 or later
*/

package main

// NoteOscState is the per-voice, per-oscillator running state. Once Finished is
// set the pair stays silent.
type NoteOscState struct {
	CurrentPhase     float32
	StartSampleIndex uint64
	EndSampleIndex   uint64
	Finished         bool
}

func newNoteOscState(phaseShift float32) NoteOscState {
	return NoteOscState{CurrentPhase: wrapPhase(phaseShift)}
}

func (s *NoteOscState) reset(phaseShift float32) {
	*s = newNoteOscState(phaseShift)
}

func generateWave(phase float32, wt WaveType) float32 {
	switch wt {
	case WaveSine:
		return fastSin(phase)
	case WaveSquare:
		if phase < 0.5 {
			return 1
		}
		return -1
	case WaveSaw:
		return 2 * (phase - 0.5)
	case WaveTriangle:
		if phase < 0.5 {
			return 4*phase - 1
		}
		return 3 - 4*phase
	}
	return 0
}

// stageLevel is the delay/attack/decay/sustain amplitude at a start index.
// Zero-length stages are clamped to one sample.
func (o *Oscillator) stageLevel(start uint64) float32 {
	attack := max(o.AttackLength, MIN_ENV_LENGTH)
	decay := max(o.DecayLength, MIN_ENV_LENGTH)

	switch {
	case start <= o.DelayLength:
		return 0
	case start <= o.DelayLength+o.AttackLength:
		return float32(start-o.DelayLength) / float32(attack)
	case start <= o.DelayLength+o.AttackLength+o.DecayLength:
		elapsed := float32(start - o.DelayLength - o.AttackLength)
		return 1 + elapsed*(o.SustainGain-1)/float32(decay)
	default:
		return o.SustainGain
	}
}

// releaseLevel is the release multiplier at an end index. done reports that
// the release has run out.
func (o *Oscillator) releaseLevel(end uint64) (level float32, done bool) {
	if end >= o.ReleaseLength {
		return 0, true
	}
	release := max(o.ReleaseLength, MIN_ENV_LENGTH)
	return float32(o.ReleaseLength-end) / float32(release), false
}

// envelope combines both and latches Finished.
func (o *Oscillator) envelope(st *NoteOscState, ended bool) float32 {
	level := o.stageLevel(st.StartSampleIndex)
	if !ended {
		return level
	}
	rel, done := o.releaseLevel(st.EndSampleIndex)
	if done {
		st.Finished = true
		return 0
	}
	return level * rel
}

// phaseIncrement is the per-sample phase advance for a note value.
func (o *Oscillator) phaseIncrement(note uint8, sampleRate float32) float32 {
	return midiToFreq(note) * o.FrequencyShift / sampleRate
}

// generateSample renders one frame of one (voice, oscillator) pair and advances
// its counters.
func (o *Oscillator) generateSample(note, velocity uint8, st *NoteOscState, ended bool, sampleRate float32) (float32, float32) {
	if st.Finished {
		return 0, 0
	}

	value := generateWave(st.CurrentPhase, o.WaveType) * velocityToGain(velocity) * o.Gain
	value *= o.envelope(st, ended)

	st.CurrentPhase = wrapPhase(st.CurrentPhase + o.phaseIncrement(note, sampleRate))
	st.StartSampleIndex++
	if ended {
		st.EndSampleIndex++
	}

	return value * o.GainLeft, value * o.GainRight
}
