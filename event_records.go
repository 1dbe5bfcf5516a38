// event_records.go - Wire records for the note, oscillator and effect queues

package main

import (
	"encoding/binary"
	"fmt"
	"math"
)

// NoteEvent is [event_type, note_value, velocity, reserved].
type NoteEvent struct {
	Type     uint8
	Value    uint8
	Velocity uint8
}

// OscEvent is [event_type, osc_index, key, value f32 LE]. For add and remove
// Index carries the oscillator id; for update it is the array position.
type OscEvent struct {
	Type  uint8
	Index uint8
	Key   uint8
	Value float32
}

// FxEvent is stored as int32 {fx_id, event_type, param_index} plus float32 value.
type FxEvent struct {
	ID    int32
	Type  int32
	Param int32
	Value float32
}

type (
	NoteQueue = EventQueue[NoteEvent]
	OscQueue  = EventQueue[OscEvent]
	FxQueue   = EventQueue[FxEvent]
)

// byteCodec serves the two byte-array record formats.
type byteCodec struct {
	payload  []byte
	size     int
	capacity int32
}

func newByteCodec(r *Region, recordSize int) (byteCodec, error) {
	n := (r.Len() - QUEUE_HEADER_BYTES) / recordSize
	if n < MIN_QUEUE_CAPACITY {
		return byteCodec{}, fmt.Errorf("%s queue (%d bytes): %w", r.Name(), r.Len(), ErrRegionTooSmall)
	}
	return byteCodec{
		payload:  r.Bytes()[QUEUE_HEADER_BYTES : QUEUE_HEADER_BYTES+n*recordSize],
		size:     recordSize,
		capacity: int32(n),
	}, nil
}

func (c byteCodec) slot(i int32) []byte {
	off := int(i) * c.size
	return c.payload[off : off+c.size]
}

type noteCodec struct{ byteCodec }

func (c noteCodec) Capacity() int32 { return c.capacity }

func (c noteCodec) Decode(i int32) NoteEvent {
	b := c.slot(i)
	return NoteEvent{Type: b[0], Value: b[1], Velocity: b[2]}
}

func (c noteCodec) Encode(i int32, e NoteEvent) {
	b := c.slot(i)
	b[0], b[1], b[2], b[3] = e.Type, e.Value, e.Velocity, 0
}

type oscCodec struct{ byteCodec }

func (c oscCodec) Capacity() int32 { return c.capacity }

func (c oscCodec) Decode(i int32) OscEvent {
	b := c.slot(i)
	return OscEvent{
		Type:  b[0],
		Index: b[1],
		Key:   b[2],
		Value: math.Float32frombits(binary.LittleEndian.Uint32(b[3:7])),
	}
}

func (c oscCodec) Encode(i int32, e OscEvent) {
	b := c.slot(i)
	b[0], b[1], b[2] = e.Type, e.Index, e.Key
	binary.LittleEndian.PutUint32(b[3:7], math.Float32bits(e.Value))
	b[7] = 0
}

type fxCodec struct {
	ints     []int32
	values   []float32
	capacity int32
}

func (c fxCodec) Capacity() int32 { return c.capacity }

func (c fxCodec) Decode(i int32) FxEvent {
	base := int(i) * FX_INT_FIELDS
	return FxEvent{
		ID:    c.ints[base],
		Type:  c.ints[base+1],
		Param: c.ints[base+2],
		Value: c.values[int(i)*FX_FLOAT_FIELDS],
	}
}

func (c fxCodec) Encode(i int32, e FxEvent) {
	base := int(i) * FX_INT_FIELDS
	c.ints[base], c.ints[base+1], c.ints[base+2] = e.ID, e.Type, e.Param
	c.values[int(i)*FX_FLOAT_FIELDS] = e.Value
}

func NoteQueueSize(capacity int) int { return QUEUE_HEADER_BYTES + capacity*NOTE_EVENT_SIZE }
func OscQueueSize(capacity int) int  { return QUEUE_HEADER_BYTES + capacity*OSC_EVENT_SIZE }
func FxQueueSize(capacity int) int   { return QUEUE_HEADER_BYTES + capacity*FX_EVENT_SIZE }

// Capacities are derived from the region length the host handed over.

func NewNoteQueue(r *Region) (*NoteQueue, error) {
	bc, err := newByteCodec(r, NOTE_EVENT_SIZE)
	if err != nil {
		return nil, err
	}
	return NewEventQueue[NoteEvent](r, noteCodec{bc})
}

func NewOscQueue(r *Region) (*OscQueue, error) {
	bc, err := newByteCodec(r, OSC_EVENT_SIZE)
	if err != nil {
		return nil, err
	}
	return NewEventQueue[OscEvent](r, oscCodec{bc})
}

func NewFxQueue(r *Region) (*FxQueue, error) {
	n := (r.Len() - QUEUE_HEADER_BYTES) / FX_EVENT_SIZE
	if n < MIN_QUEUE_CAPACITY {
		return nil, fmt.Errorf("%s queue (%d bytes): %w", r.Name(), r.Len(), ErrRegionTooSmall)
	}
	ints, err := int32View(r, QUEUE_HEADER_BYTES, n*FX_INT_FIELDS)
	if err != nil {
		return nil, err
	}
	values, err := float32View(r, QUEUE_HEADER_BYTES+n*FX_INT_FIELDS*4, n*FX_FLOAT_FIELDS)
	if err != nil {
		return nil, err
	}
	return NewEventQueue[FxEvent](r, fxCodec{ints: ints, values: values, capacity: int32(n)})
}
