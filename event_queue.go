// event_queue.go - Wait-free SPSC ring of fixed-size records over a shared region

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
)

// RecordCodec maps queue slots to records. Slot storage layout is codec-private:
// byte records live in one payload, fx records in parallel int32/float32 arrays.
type RecordCodec[T any] interface {
	Capacity() int32
	Decode(slot int32) T
	Encode(slot int32, rec T)
}

// EventQueue is single-producer/single-consumer. The control side owns
// write_idx and the payload; the audio thread owns read_idx. Concurrent use by
// more than one producer, or more than one consumer, is undefined.
//
// One slot is reserved so write_idx never catches up with read_idx: equal
// cursors always mean empty.
type EventQueue[T any] struct {
	region   *Region
	writeIdx SharedWord
	readIdx  SharedWord
	codec    RecordCodec[T]
	capacity int32
}

// NewEventQueue binds the two header words of r to codec.
func NewEventQueue[T any](r *Region, codec RecordCodec[T]) (*EventQueue[T], error) {
	if codec.Capacity() < MIN_QUEUE_CAPACITY {
		return nil, fmt.Errorf("%s queue capacity %d: %w", r.Name(), codec.Capacity(), ErrRegionTooSmall)
	}
	w, err := wordAt(r, QUEUE_WRITE_INDEX)
	if err != nil {
		return nil, err
	}
	rd, err := wordAt(r, QUEUE_READ_INDEX)
	if err != nil {
		return nil, err
	}
	return &EventQueue[T]{
		region:   r,
		writeIdx: w,
		readIdx:  rd,
		codec:    codec,
		capacity: codec.Capacity(),
	}, nil
}

func (q *EventQueue[T]) Capacity() int32 { return q.capacity }
func (q *EventQueue[T]) Region() *Region { return q.region }

// cursors loads both indices and rejects values a well-behaved peer can never
// publish.
func (q *EventQueue[T]) cursors(op string) (int32, int32, error) {
	if q.region.Detached() {
		return 0, 0, &ProtocolError{Region: q.region.Name(), Op: op, Err: ErrDetached}
	}
	r := q.readIdx.Load()
	w := q.writeIdx.Load()
	if r < 0 || r >= q.capacity || w < 0 || w >= q.capacity {
		return 0, 0, &ProtocolError{
			Region: q.region.Name(),
			Op:     op,
			Err:    fmt.Errorf("cursor out of range: read=%d write=%d capacity=%d", r, w, q.capacity),
		}
	}
	return r, w, nil
}

// Dequeue pops the oldest record. ok is false when the queue is empty.
func (q *EventQueue[T]) Dequeue() (rec T, ok bool, err error) {
	r, w, err := q.cursors("dequeue")
	if err != nil || r == w {
		return rec, false, err
	}
	rec = q.codec.Decode(r)
	q.readIdx.Store((r + 1) % q.capacity)
	return rec, true, nil
}

// ProcessAll drains the records pending when it is called, in FIFO order, and
// returns the count. Records posted meanwhile wait for the next call.
func (q *EventQueue[T]) ProcessAll(handler func(T)) (int, error) {
	r, w, err := q.cursors("process")
	if err != nil {
		return 0, err
	}
	n := 0
	for r != w {
		rec := q.codec.Decode(r)
		r = (r + 1) % q.capacity
		q.readIdx.Store(r)
		handler(rec)
		n++
	}
	return n, nil
}

// Enqueue is the producer half. It is used by in-process control ports and
// tests; an external host writes the same layout itself.
func (q *EventQueue[T]) Enqueue(rec T) error {
	r, w, err := q.cursors("enqueue")
	if err != nil {
		return err
	}
	next := (w + 1) % q.capacity
	if next == r {
		return ErrQueueFull
	}
	q.codec.Encode(w, rec)
	q.writeIdx.Store(next)
	return nil
}

// Len reports pending records. It is a snapshot and may be stale immediately.
func (q *EventQueue[T]) Len() int {
	r := q.readIdx.Load()
	w := q.writeIdx.Load()
	return int((w - r + q.capacity) % q.capacity)
}
