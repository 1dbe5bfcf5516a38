// host_producer.go - In-process control side: posts note, oscillator and effect events

package main

import (
	"fmt"
	"math"
	"sync"
)

// OscParam names the user-facing oscillator parameters. Units are those a
// person edits: milliseconds, 0-10 levels, semitones, 0-1 phase, -1..1 pan.
type OscParam uint8

const (
	OscAttackMs  OscParam = OSC_KEY_ATTACK
	OscReleaseMs OscParam = OSC_KEY_RELEASE
	OscDecayMs   OscParam = OSC_KEY_DECAY
	OscSustain   OscParam = OSC_KEY_SUSTAIN
	OscGain      OscParam = OSC_KEY_GAIN
	OscDelayMs   OscParam = OSC_KEY_DELAY
	OscPitch     OscParam = OSC_KEY_PITCH
	OscPhase     OscParam = OSC_KEY_PHASE
	OscWaveform  OscParam = OSC_KEY_WAVEFORM
	OscPan       OscParam = OSC_KEY_PAN
)

var oscParamNames = map[string]OscParam{
	"attack":   OscAttackMs,
	"release":  OscReleaseMs,
	"decay":    OscDecayMs,
	"sustain":  OscSustain,
	"gain":     OscGain,
	"delay":    OscDelayMs,
	"pitch":    OscPitch,
	"phase":    OscPhase,
	"waveform": OscWaveform,
	"pan":      OscPan,
}

// ControlPort is the producer side of all three queues. Several host sources
// (keyboard, MIDI, script) share one port; the mutex keeps each queue
// single-producer.
type ControlPort struct {
	mu         sync.Mutex
	notes      *NoteQueue
	oscs       *OscQueue
	fx         *FxQueue
	sampleRate int

	// Mirror of the render thread's oscillator order, since updates address
	// oscillators by position.
	oscOrder []uint8
	nextOsc  uint8
	nextFx   int32
}

func NewControlPort(sc *SynthContext) *ControlPort {
	return &ControlPort{
		notes:      sc.Notes,
		oscs:       sc.Oscs,
		fx:         sc.Fx,
		sampleRate: sc.SampleRate(),
	}
}

func (c *ControlPort) PlayNote(note, velocity uint8) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.notes.Enqueue(NoteEvent{Type: NOTE_EVENT_ON, Value: note & MIDI_MAX_VALUE, Velocity: velocity & MIDI_MAX_VALUE})
}

func (c *ControlPort) StopNote(note uint8) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.notes.Enqueue(NoteEvent{Type: NOTE_EVENT_OFF, Value: note & MIDI_MAX_VALUE})
}

func (c *ControlPort) AllNotesOff() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.notes.Enqueue(NoteEvent{Type: NOTE_EVENT_ALL_OFF})
}

func (c *ControlPort) Panic() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.notes.Enqueue(NoteEvent{Type: NOTE_EVENT_PANIC})
}

// CreateOscillator allocates the next id and posts an add.
func (c *ControlPort) CreateOscillator() (uint8, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextOsc
	if err := c.oscs.Enqueue(OscEvent{Type: OSC_EVENT_ADD, Index: id}); err != nil {
		return 0, err
	}
	c.nextOsc++
	c.oscOrder = append(c.oscOrder, id)
	return id, nil
}

func (c *ControlPort) RemoveOscillator(id uint8) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	pos := c.oscPosition(id)
	if pos < 0 {
		return fmt.Errorf("oscillator %d: not created by this port", id)
	}
	if err := c.oscs.Enqueue(OscEvent{Type: OSC_EVENT_REMOVE, Index: id}); err != nil {
		return err
	}
	c.oscOrder = append(c.oscOrder[:pos], c.oscOrder[pos+1:]...)
	return nil
}

// UpdateOscillator converts value from user units and posts an update for the
// oscillator's current position.
func (c *ControlPort) UpdateOscillator(id uint8, param OscParam, value float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	pos := c.oscPosition(id)
	if pos < 0 {
		return fmt.Errorf("oscillator %d: not created by this port", id)
	}
	if pos > math.MaxUint8 {
		return fmt.Errorf("oscillator %d: position %d not addressable", id, pos)
	}
	wire, err := c.oscWireValue(param, value)
	if err != nil {
		return err
	}
	return c.oscs.Enqueue(OscEvent{Type: OSC_EVENT_UPDATE, Index: uint8(pos), Key: uint8(param), Value: wire})
}

func (c *ControlPort) oscPosition(id uint8) int {
	for i, v := range c.oscOrder {
		if v == id {
			return i
		}
	}
	return -1
}

func (c *ControlPort) oscWireValue(param OscParam, value float64) (float32, error) {
	switch param {
	case OscAttackMs, OscReleaseMs, OscDecayMs, OscDelayMs:
		return float32(msToSamples(value, c.sampleRate)), nil
	case OscPitch:
		return float32(math.Pow(2, value/12)), nil
	case OscSustain, OscGain, OscPhase, OscWaveform, OscPan:
		return float32(value), nil
	}
	return 0, fmt.Errorf("unknown oscillator parameter %d", param)
}

func (c *ControlPort) Oscillators() []uint8 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]uint8(nil), c.oscOrder...)
}

// AddEffect allocates an id and appends an effect with its default preset.
func (c *ControlPort) AddEffect(kind EffectKind) (int32, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextFx
	if err := c.fx.Enqueue(FxEvent{ID: id, Type: FX_EVENT_ADD, Param: int32(kind)}); err != nil {
		return 0, err
	}
	c.nextFx++
	return id, nil
}

func (c *ControlPort) postFx(ev FxEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fx.Enqueue(ev)
}

func (c *ControlPort) RemoveEffect(id int32) error {
	return c.postFx(FxEvent{ID: id, Type: FX_EVENT_REMOVE})
}

func (c *ControlPort) UpdateEffect(id, param int32, value float32) error {
	return c.postFx(FxEvent{ID: id, Type: FX_EVENT_UPDATE, Param: param, Value: value})
}

func (c *ControlPort) MoveEffect(id int32, position int) error {
	return c.postFx(FxEvent{ID: id, Type: FX_EVENT_MOVE, Value: float32(position)})
}

func (c *ControlPort) ResetEffect(id int32) error {
	return c.postFx(FxEvent{ID: id, Type: FX_EVENT_RESET})
}

// InstallPreset creates one sine oscillator, a low-pass and an echo.
func (c *ControlPort) InstallPreset() error {
	if _, err := c.CreateOscillator(); err != nil {
		return fmt.Errorf("preset oscillator: %w", err)
	}
	if _, err := c.AddEffect(EffectFilter); err != nil {
		return fmt.Errorf("preset filter: %w", err)
	}
	if _, err := c.AddEffect(EffectEcho); err != nil {
		return fmt.Errorf("preset echo: %w", err)
	}
	return nil
}
