// fx_mixer.go - Ordered insert-effect chain and its control protocol

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
	"fmt"
	"log/slog"
)

type EffectKind uint8

const (
	EffectFilter EffectKind = FX_KIND_FILTER
	EffectEcho   EffectKind = FX_KIND_ECHO
)

func (k EffectKind) String() string {
	switch k {
	case EffectFilter:
		return "filter"
	case EffectEcho:
		return "echo"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Effect is a closed variant: exactly one of filter or echo is set, matching Kind.
type Effect struct {
	ID     int32
	Kind   EffectKind
	filter *BiquadFilter
	echo   *Echo
}

func newEffect(id int32, kind EffectKind, sampleRate int) (Effect, bool) {
	switch kind {
	case EffectFilter:
		return Effect{ID: id, Kind: kind, filter: NewBiquadFilter(DEFAULT_FILTER_FREQ, DEFAULT_FILTER_Q, sampleRate)}, true
	case EffectEcho:
		return Effect{ID: id, Kind: kind, echo: NewEcho(sampleRate)}, true
	}
	return Effect{}, false
}

func (e *Effect) process(l, r float32) (float32, float32) {
	switch e.Kind {
	case EffectFilter:
		return e.filter.Process(l, r)
	case EffectEcho:
		return e.echo.Process(l, r)
	}
	return l, r
}

func (e *Effect) setParam(param int32, v float32) bool {
	switch e.Kind {
	case EffectFilter:
		return e.filter.setParam(param, v)
	case EffectEcho:
		return e.echo.setParam(param, v)
	}
	return false
}

func (e *Effect) Filter() *BiquadFilter { return e.filter }
func (e *Effect) Echo() *Echo           { return e.echo }

// Mixer applies effects strictly in list order. It is owned by the audio thread.
type Mixer struct {
	effects    []Effect
	sampleRate int
	log        *slog.Logger
}

func NewMixer(sampleRate int, log *slog.Logger) *Mixer {
	return &Mixer{sampleRate: sampleRate, log: log}
}

func (m *Mixer) Len() int          { return len(m.effects) }
func (m *Mixer) Effects() []Effect { return m.effects }

func (m *Mixer) indexOf(id int32) int {
	for i := range m.effects {
		if m.effects[i].ID == id {
			return i
		}
	}
	return -1
}

// Add creates an effect from its default preset. An existing id is replaced in
// place, keeping its chain position.
func (m *Mixer) Add(id int32, kind EffectKind) bool {
	fx, ok := newEffect(id, kind, m.sampleRate)
	if !ok {
		m.log.Warn("unknown effect kind", "id", id, "kind", kind)
		return false
	}
	if i := m.indexOf(id); i >= 0 {
		m.effects[i] = fx
		return true
	}
	m.effects = append(m.effects, fx)
	return true
}

func (m *Mixer) Remove(id int32) bool {
	i := m.indexOf(id)
	if i < 0 {
		m.log.Warn("remove of unknown effect", "id", id)
		return false
	}
	m.effects = append(m.effects[:i], m.effects[i+1:]...)
	return true
}

// Update changes a single parameter; the rest keep their values.
func (m *Mixer) Update(id, param int32, value float32) bool {
	i := m.indexOf(id)
	if i < 0 {
		m.log.Warn("update of unknown effect", "id", id, "param", param)
		return false
	}
	if !m.effects[i].setParam(param, value) {
		m.log.Debug("rejected effect parameter", "id", id, "param", param, "value", value)
		return false
	}
	return true
}

// Move places the effect at position, clamped to the chain.
func (m *Mixer) Move(id int32, position int) bool {
	i := m.indexOf(id)
	if i < 0 {
		m.log.Warn("move of unknown effect", "id", id)
		return false
	}
	position = min(max(position, 0), len(m.effects)-1)
	fx := m.effects[i]
	m.effects = append(m.effects[:i], m.effects[i+1:]...)
	m.effects = append(m.effects, Effect{})
	copy(m.effects[position+1:], m.effects[position:])
	m.effects[position] = fx
	return true
}

// ResetEffect clears the running state of one effect, keeping its parameters.
func (m *Mixer) ResetEffect(id int32) bool {
	i := m.indexOf(id)
	if i < 0 {
		m.log.Warn("reset of unknown effect", "id", id)
		return false
	}
	m.effects[i].Reset()
	return true
}

// Handle applies one decoded effect-control record.
func (m *Mixer) Handle(ev FxEvent) {
	switch ev.Type {
	case FX_EVENT_ADD:
		m.Add(ev.ID, EffectKind(ev.Param))
	case FX_EVENT_REMOVE:
		m.Remove(ev.ID)
	case FX_EVENT_UPDATE:
		m.Update(ev.ID, ev.Param, ev.Value)
	case FX_EVENT_MOVE:
		m.Move(ev.ID, int(ev.Value))
	case FX_EVENT_RESET:
		m.ResetEffect(ev.ID)
	default:
		m.log.Debug("unknown effect event", "id", ev.ID, "type", ev.Type)
	}
}

func (m *Mixer) Process(l, r float32) (float32, float32) {
	for i := range m.effects {
		l, r = m.effects[i].process(l, r)
	}
	return l, r
}

// ProcessBlock runs every interleaved frame of buf through the chain in place.
func (m *Mixer) ProcessBlock(buf []float32) {
	if len(m.effects) == 0 {
		return
	}
	for i := 0; i+1 < len(buf); i += 2 {
		buf[i], buf[i+1] = m.Process(buf[i], buf[i+1])
	}
}
