package main

import (
	"encoding/binary"
	"errors"
	"math"
	"sync"
	"testing"
)

func newTestNoteQueue(t *testing.T, capacity int) *NoteQueue {
	t.Helper()
	q, err := NewNoteQueue(NewHeapRegion("notes", NoteQueueSize(capacity)))
	if err != nil {
		t.Fatalf("NewNoteQueue: %v", err)
	}
	return q
}

func TestEventQueue_FIFO(t *testing.T) {
	q := newTestNoteQueue(t, 16)
	for i := 0; i < 10; i++ {
		if err := q.Enqueue(NoteEvent{Type: NOTE_EVENT_ON, Value: uint8(60 + i), Velocity: 100}); err != nil {
			t.Fatalf("Enqueue(%d): %v", i, err)
		}
	}

	var got []uint8
	n, err := q.ProcessAll(func(ev NoteEvent) { got = append(got, ev.Value) })
	if err != nil {
		t.Fatalf("ProcessAll: %v", err)
	}
	if n != 10 {
		t.Fatalf("ProcessAll count = %d, want 10", n)
	}
	for i, v := range got {
		if v != uint8(60+i) {
			t.Errorf("record %d = %d, want %d", i, v, 60+i)
		}
	}

	if _, ok, _ := q.Dequeue(); ok {
		t.Error("Dequeue on drained queue returned a record")
	}
}

func TestEventQueue_ReservedSlot(t *testing.T) {
	q := newTestNoteQueue(t, 4)

	for i := 0; i < 3; i++ {
		if err := q.Enqueue(NoteEvent{Value: uint8(i)}); err != nil {
			t.Fatalf("Enqueue(%d): %v", i, err)
		}
	}
	if err := q.Enqueue(NoteEvent{Value: 3}); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("Enqueue into full queue = %v, want ErrQueueFull", err)
	}
	if q.Len() != 3 {
		t.Errorf("Len = %d, want 3", q.Len())
	}

	if _, ok, err := q.Dequeue(); !ok || err != nil {
		t.Fatalf("Dequeue = ok %v err %v", ok, err)
	}
	if err := q.Enqueue(NoteEvent{Value: 3}); err != nil {
		t.Errorf("Enqueue after dequeue: %v", err)
	}
}

func TestEventQueue_InterleavedWraparound(t *testing.T) {
	q := newTestNoteQueue(t, 5)
	var next, want uint8
	for round := 0; round < 200; round++ {
		burst := round%4 + 1
		for i := 0; i < burst; i++ {
			if err := q.Enqueue(NoteEvent{Value: next}); err != nil {
				t.Fatalf("round %d: Enqueue: %v", round, err)
			}
			next++
		}
		// Drain all but one on odd rounds so cursors wrap at varying offsets.
		keep := round % 2
		for q.Len() > keep {
			ev, ok, err := q.Dequeue()
			if err != nil || !ok {
				t.Fatalf("round %d: Dequeue = ok %v err %v", round, ok, err)
			}
			if ev.Value != want {
				t.Fatalf("round %d: got %d, want %d", round, ev.Value, want)
			}
			want++
		}
	}
}

func TestEventQueue_ProcessAllStopsAtSnapshot(t *testing.T) {
	q := newTestNoteQueue(t, 16)
	for i := 0; i < 3; i++ {
		mustEnqueue(t, q.Enqueue(NoteEvent{Type: NOTE_EVENT_ON, Value: uint8(60 + i)}))
	}

	// Each handled record posts another, as a busy producer would.
	n, err := q.ProcessAll(func(ev NoteEvent) {
		mustEnqueue(t, q.Enqueue(NoteEvent{Type: NOTE_EVENT_OFF, Value: ev.Value}))
	})
	if err != nil {
		t.Fatalf("ProcessAll: %v", err)
	}
	if n != 3 {
		t.Errorf("ProcessAll count = %d, want 3", n)
	}
	if q.Len() != 3 {
		t.Errorf("pending after drain = %d, want 3 for the next pass", q.Len())
	}
	ev, ok, _ := q.Dequeue()
	if !ok || ev != (NoteEvent{Type: NOTE_EVENT_OFF, Value: 60}) {
		t.Errorf("next record = %+v (ok %v), want off 60", ev, ok)
	}
}

func TestEventQueue_CursorOutOfRange(t *testing.T) {
	q := newTestNoteQueue(t, 4)
	q.writeIdx.Store(4)

	_, _, err := q.Dequeue()
	var perr *ProtocolError
	if !errors.As(err, &perr) {
		t.Fatalf("Dequeue = %v, want *ProtocolError", err)
	}
	if perr.Region != "notes" {
		t.Errorf("Region = %q, want notes", perr.Region)
	}
}

func TestEventQueue_Detached(t *testing.T) {
	q := newTestNoteQueue(t, 4)
	q.Region().Close()

	if _, _, err := q.Dequeue(); !errors.Is(err, ErrDetached) {
		t.Errorf("Dequeue on detached region = %v, want ErrDetached", err)
	}
	if err := q.Enqueue(NoteEvent{}); !errors.Is(err, ErrDetached) {
		t.Errorf("Enqueue on detached region = %v, want ErrDetached", err)
	}
}

func TestNoteQueue_TooSmall(t *testing.T) {
	_, err := NewNoteQueue(NewHeapRegion("notes", QUEUE_HEADER_BYTES+NOTE_EVENT_SIZE))
	if !errors.Is(err, ErrRegionTooSmall) {
		t.Errorf("NewNoteQueue = %v, want ErrRegionTooSmall", err)
	}
}

func TestNoteQueue_WireFormat(t *testing.T) {
	r := NewHeapRegion("notes", NoteQueueSize(8))
	q, err := NewNoteQueue(r)
	if err != nil {
		t.Fatal(err)
	}

	// Host writes slot 0 directly: [type, value, velocity, reserved]
	copy(r.Bytes()[QUEUE_HEADER_BYTES:], []byte{NOTE_EVENT_ON, 69, 127, 0})
	binary.LittleEndian.PutUint32(r.Bytes()[QUEUE_WRITE_INDEX*4:], 1)

	ev, ok, err := q.Dequeue()
	if err != nil || !ok {
		t.Fatalf("Dequeue = ok %v err %v", ok, err)
	}
	if ev != (NoteEvent{Type: NOTE_EVENT_ON, Value: 69, Velocity: 127}) {
		t.Errorf("event = %+v", ev)
	}
	if got := binary.LittleEndian.Uint32(r.Bytes()[QUEUE_READ_INDEX*4:]); got != 1 {
		t.Errorf("read_idx = %d, want 1", got)
	}
}

func TestOscQueue_WireFormat(t *testing.T) {
	r := NewHeapRegion("oscillators", OscQueueSize(8))
	q, err := NewOscQueue(r)
	if err != nil {
		t.Fatal(err)
	}

	slot := r.Bytes()[QUEUE_HEADER_BYTES+2*OSC_EVENT_SIZE:]
	slot[0], slot[1], slot[2] = OSC_EVENT_UPDATE, 1, OSC_KEY_SUSTAIN
	binary.LittleEndian.PutUint32(slot[3:], math.Float32bits(7.5))
	q.readIdx.Store(2)
	q.writeIdx.Store(3)

	ev, ok, err := q.Dequeue()
	if err != nil || !ok {
		t.Fatalf("Dequeue = ok %v err %v", ok, err)
	}
	want := OscEvent{Type: OSC_EVENT_UPDATE, Index: 1, Key: OSC_KEY_SUSTAIN, Value: 7.5}
	if ev != want {
		t.Errorf("event = %+v, want %+v", ev, want)
	}
}

func TestFxQueue_ParallelArrays(t *testing.T) {
	const capacity = 6
	r := NewHeapRegion("effects", FxQueueSize(capacity))
	q, err := NewFxQueue(r)
	if err != nil {
		t.Fatal(err)
	}
	if q.Capacity() != capacity {
		t.Fatalf("Capacity = %d, want %d", q.Capacity(), capacity)
	}

	q.readIdx.Store(3)
	q.writeIdx.Store(3)
	if err := q.Enqueue(FxEvent{ID: 7, Type: FX_EVENT_UPDATE, Param: ECHO_PARAM_WET, Value: 0.25}); err != nil {
		t.Fatal(err)
	}

	b := r.Bytes()
	ints := QUEUE_HEADER_BYTES + 3*FX_INT_FIELDS*4
	for i, want := range []int32{7, FX_EVENT_UPDATE, ECHO_PARAM_WET} {
		if got := int32(binary.LittleEndian.Uint32(b[ints+i*4:])); got != want {
			t.Errorf("int field %d = %d, want %d", i, got, want)
		}
	}
	vals := QUEUE_HEADER_BYTES + capacity*FX_INT_FIELDS*4 + 3*4
	if got := math.Float32frombits(binary.LittleEndian.Uint32(b[vals:])); got != 0.25 {
		t.Errorf("value = %v, want 0.25", got)
	}
}

func TestEventQueue_ConcurrentSPSC(t *testing.T) {
	const total = 20000
	q := newTestNoteQueue(t, 8)

	var wg sync.WaitGroup
	wg.Go(func() {
		for i := 0; i < total; {
			if err := q.Enqueue(NoteEvent{Value: uint8(i), Velocity: uint8(i >> 8)}); err == nil {
				i++
			}
		}
	})

	received := 0
	for received < total {
		ev, ok, err := q.Dequeue()
		if err != nil {
			t.Fatalf("Dequeue: %v", err)
		}
		if !ok {
			continue
		}
		want := NoteEvent{Value: uint8(received), Velocity: uint8(received >> 8)}
		if ev != want {
			t.Fatalf("record %d = %+v, want %+v", received, ev, want)
		}
		received++
	}
	wg.Wait()
}
