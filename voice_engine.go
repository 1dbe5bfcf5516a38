// voice_engine.go - Voices keyed by note value, one envelope state per oscillator

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

import "log/slog"

// Note is one voice. states is kept index-aligned with the oscillator bank.
type Note struct {
	Value    uint8
	Velocity uint8
	HasEnded bool
	states   []NoteOscState
}

func newNote(value, velocity uint8, oscs []Oscillator) *Note {
	n := &Note{Value: value, Velocity: velocity}
	n.rebuild(oscs)
	return n
}

func (n *Note) rebuild(oscs []Oscillator) {
	n.states = n.states[:0]
	for i := range oscs {
		n.states = append(n.states, newNoteOscState(oscs[i].PhaseShift))
	}
}

func (n *Note) restart(velocity uint8, oscs []Oscillator) {
	n.Velocity = velocity
	n.HasEnded = false
	if len(n.states) != len(oscs) {
		n.rebuild(oscs)
		return
	}
	for i := range n.states {
		n.states[i].reset(oscs[i].PhaseShift)
	}
}

// Finished reports that every oscillator state has run out its release.
func (n *Note) Finished() bool {
	for i := range n.states {
		if !n.states[i].Finished {
			return false
		}
	}
	return true
}

func (n *Note) States() []NoteOscState { return n.states }

func (n *Note) generateSample(oscs []Oscillator, sampleRate float32) (float32, float32) {
	var sumL, sumR float32
	for i := range oscs {
		if i >= len(n.states) {
			break
		}
		l, r := oscs[i].generateSample(n.Value, n.Velocity, &n.states[i], n.HasEnded, sampleRate)
		sumL += l
		sumR += r
	}
	return sumL, sumR
}

// VoiceEngine holds at most one voice per note value.
type VoiceEngine struct {
	notes      []*Note
	bank       *OscillatorBank
	sampleRate float32
	log        *slog.Logger
}

func NewVoiceEngine(bank *OscillatorBank, sampleRate int, log *slog.Logger) *VoiceEngine {
	return &VoiceEngine{bank: bank, sampleRate: float32(sampleRate), log: log}
}

func (e *VoiceEngine) find(value uint8) *Note {
	for _, n := range e.notes {
		if n.Value == value {
			return n
		}
	}
	return nil
}

// AddNote starts a voice. An ended voice for the same value restarts in place;
// a voice still sounding is left alone.
func (e *VoiceEngine) AddNote(value, velocity uint8) {
	if n := e.find(value); n != nil {
		if n.HasEnded {
			n.restart(velocity, e.bank.All())
		} else {
			e.log.Debug("note already sounding", "note", value)
		}
		return
	}
	e.notes = append(e.notes, newNote(value, velocity, e.bank.All()))
}

// EndNote releases the first sounding voice for value. Repeated calls are no-ops.
func (e *VoiceEngine) EndNote(value uint8) {
	for _, n := range e.notes {
		if n.Value == value && !n.HasEnded {
			n.HasEnded = true
			return
		}
	}
}

// EndAll releases every voice.
func (e *VoiceEngine) EndAll() {
	for _, n := range e.notes {
		n.HasEnded = true
	}
}

// OscillatorAdded gives every voice a state for the oscillator at index. A
// released voice gets a finished state so it cannot sound again.
func (e *VoiceEngine) OscillatorAdded(index int) {
	osc := e.bank.At(index)
	for _, n := range e.notes {
		if index > len(n.states) {
			n.rebuild(e.bank.All())
			if n.HasEnded {
				for i := range n.states {
					n.states[i].Finished = true
				}
			}
			continue
		}
		st := newNoteOscState(osc.PhaseShift)
		st.Finished = n.HasEnded
		n.states = append(n.states, NoteOscState{})
		copy(n.states[index+1:], n.states[index:])
		n.states[index] = st
	}
}

// OscillatorRemoved drops the state that belonged to the oscillator at index.
func (e *VoiceEngine) OscillatorRemoved(index int) {
	for _, n := range e.notes {
		if index < len(n.states) {
			n.states = append(n.states[:index], n.states[index+1:]...)
		}
	}
}

// GenerateRaw renders len(out)/2 interleaved frames before effects. The frame
// sum is divided by the oscillator count. Finished voices are purged after the
// block.
func (e *VoiceEngine) GenerateRaw(out []float32) {
	oscs := e.bank.All()
	var norm float32 = 1
	if len(oscs) > 0 {
		norm = 1 / float32(len(oscs))
	}
	for i := 0; i+1 < len(out); i += 2 {
		var l, r float32
		for _, n := range e.notes {
			nl, nr := n.generateSample(oscs, e.sampleRate)
			l += nl
			r += nr
		}
		out[i] = l * norm
		out[i+1] = r * norm
	}
	e.cleanup()
}

func (e *VoiceEngine) cleanup() {
	kept := e.notes[:0]
	for _, n := range e.notes {
		if !n.Finished() {
			kept = append(kept, n)
		}
	}
	clear(e.notes[len(kept):])
	e.notes = kept
}

func (e *VoiceEngine) Notes() []*Note { return e.notes }
func (e *VoiceEngine) Active() int    { return len(e.notes) }
