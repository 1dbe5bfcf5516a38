// audio_processor.go - One render pass: drain queues, synthesize, mix, publish

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

import (
	"log/slog"
	"math"
)

// AudioProcessor owns every piece of audio-thread state. Nothing here is
// touched from another goroutine.
type AudioProcessor struct {
	notes *NoteQueue
	oscs  *OscQueue
	fx    *FxQueue

	bank   *OscillatorBank
	voices *VoiceEngine
	mixer  *Mixer
	ring   *RingBufferManager

	scratch       []float32
	sampleCounter uint64

	status *runtimeStatusStore
	log    *slog.Logger
}

func NewAudioProcessor(audio *AudioBlock, notes *NoteQueue, oscs *OscQueue, fx *FxQueue, sampleRate int, status *runtimeStatusStore, log *slog.Logger) *AudioProcessor {
	bank := NewOscillatorBank(sampleRate, log)
	return &AudioProcessor{
		notes:   notes,
		oscs:    oscs,
		fx:      fx,
		bank:    bank,
		voices:  NewVoiceEngine(bank, sampleRate, log),
		mixer:   NewMixer(sampleRate, log),
		ring:    NewRingBufferManager(audio),
		scratch: make([]float32, len(audio.Ring)),
		status:  status,
		log:     log,
	}
}

func (p *AudioProcessor) Bank() *OscillatorBank    { return p.bank }
func (p *AudioProcessor) Voices() *VoiceEngine     { return p.voices }
func (p *AudioProcessor) Mixer() *Mixer            { return p.mixer }
func (p *AudioProcessor) Ring() *RingBufferManager { return p.ring }
func (p *AudioProcessor) SampleCounter() uint64    { return p.sampleCounter }

func (p *AudioProcessor) handleNote(ev NoteEvent) {
	switch ev.Type {
	case NOTE_EVENT_ON:
		if ev.Velocity == 0 {
			p.voices.EndNote(ev.Value)
			return
		}
		p.voices.AddNote(ev.Value, min(ev.Velocity, MIDI_MAX_VALUE))
	case NOTE_EVENT_OFF:
		p.voices.EndNote(ev.Value)
	case NOTE_EVENT_ALL_OFF:
		p.voices.EndAll()
	case NOTE_EVENT_PANIC:
		p.Reset()
	default:
		p.log.Debug("unknown note event", "type", ev.Type, "note", ev.Value)
	}
}

func (p *AudioProcessor) handleOsc(ev OscEvent) {
	switch ev.Type {
	case OSC_EVENT_ADD:
		p.voices.OscillatorAdded(p.bank.Add(ev.Index))
	case OSC_EVENT_REMOVE:
		if idx, ok := p.bank.Remove(ev.Index); ok {
			p.voices.OscillatorRemoved(idx)
		}
	case OSC_EVENT_UPDATE:
		p.bank.Update(int(ev.Index), ev.Key, ev.Value)
	default:
		p.log.Debug("unknown oscillator event", "type", ev.Type, "index", ev.Index)
	}
}

// drain applies every pending control record: notes, then oscillators, then
// effects.
func (p *AudioProcessor) drain() error {
	nn, err := p.notes.ProcessAll(p.handleNote)
	if err != nil {
		return err
	}
	no, err := p.oscs.ProcessAll(p.handleOsc)
	if err != nil {
		return err
	}
	nf, err := p.fx.ProcessAll(p.mixer.Handle)
	if err != nil {
		return err
	}
	p.status.recordDrain(nn, no, nf)
	return nil
}

// Process runs one full pass for space interleaved samples, never more than
// the ring can take. An odd space is rounded down to whole frames. Events are
// always drained, even when there is no room to render. An out-of-range ring
// cursor is a *ProtocolError.
func (p *AudioProcessor) Process(space int) error {
	if err := p.drain(); err != nil {
		return err
	}
	if err := p.ring.Check(); err != nil {
		return err
	}

	space = min(space, len(p.scratch), p.ring.Space()) &^ 1
	var peak float32
	if space > 0 {
		buf := p.scratch[:space]
		p.voices.GenerateRaw(buf)
		p.mixer.ProcessBlock(buf)
		for i := range buf {
			buf[i] *= OUTPUT_ATTENUATION
			peak = max(peak, float32(math.Abs(float64(buf[i]))))
		}
		space = p.ring.WriteSamples(buf)
		p.sampleCounter += uint64(space)
	}

	p.status.recordPass(space, p.voices.Active(), p.bank.Len(), p.mixer.Len(), peak)
	return nil
}
