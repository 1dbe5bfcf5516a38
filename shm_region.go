// shm_region.go - Host-owned shared memory regions and atomic word views

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
	"errors"
	"fmt"
	"sync/atomic"
	"unsafe"
)

var (
	ErrRegionTooSmall = errors.New("shared region too small")
	ErrMisaligned     = errors.New("shared region not 4-byte aligned")
	ErrDetached       = errors.New("shared region detached")
	ErrQueueFull      = errors.New("event queue full")
)

// ProtocolError is fatal for the audio thread: continuing would corrupt state the
// consumer depends on.
type ProtocolError struct {
	Region string
	Op     string
	Err    error
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("protocol violation on %s region (%s): %v", e.Region, e.Op, e.Err)
}

func (e *ProtocolError) Unwrap() error { return e.Err }

// Region is one independently allocated byte range shared with the host.
// It is either heap memory owned by this process or a MAP_SHARED file mapping.
type Region struct {
	name     string
	data     []byte
	unmap    func([]byte) error
	detached atomic.Bool
}

// NewHeapRegion allocates an 8-byte aligned region in process memory.
func NewHeapRegion(name string, size int) *Region {
	if size <= 0 {
		return &Region{name: name}
	}
	backing := make([]uint64, (size+7)/8)
	data := unsafe.Slice((*byte)(unsafe.Pointer(&backing[0])), size)
	return &Region{name: name, data: data}
}

func (r *Region) Name() string  { return r.name }
func (r *Region) Bytes() []byte { return r.data }
func (r *Region) Len() int      { return len(r.data) }

// Detached reports whether the region was closed or never had a backing.
func (r *Region) Detached() bool {
	return r == nil || r.detached.Load() || len(r.data) == 0
}

// Close detaches the region. Views built on it must not be used afterwards; the
// producer loop checks Detached before every pass.
func (r *Region) Close() error {
	if r == nil || r.detached.Swap(true) {
		return nil
	}
	if r.unmap != nil {
		return r.unmap(r.data)
	}
	return nil
}

// SharedWord is an int32 in shared memory. Go atomics are sequentially
// consistent, which satisfies the acquire-on-load / release-on-store contract
// the host side relies on.
type SharedWord struct {
	p *int32
}

func wordAt(r *Region, index int) (SharedWord, error) {
	off := index * 4
	if off+4 > r.Len() {
		return SharedWord{}, fmt.Errorf("%s word %d: %w", r.name, index, ErrRegionTooSmall)
	}
	ptr := unsafe.Pointer(&r.data[off])
	if uintptr(ptr)%4 != 0 {
		return SharedWord{}, fmt.Errorf("%s word %d: %w", r.name, index, ErrMisaligned)
	}
	return SharedWord{p: (*int32)(ptr)}, nil
}

func (w SharedWord) Load() int32   { return atomic.LoadInt32(w.p) }
func (w SharedWord) Store(v int32) { atomic.StoreInt32(w.p, v) }

// int32View and float32View reinterpret part of a region. Offsets are in bytes.
func int32View(r *Region, off, n int) ([]int32, error) {
	if n == 0 {
		return nil, nil
	}
	if off+n*4 > r.Len() {
		return nil, fmt.Errorf("%s int32[%d] at %d: %w", r.name, n, off, ErrRegionTooSmall)
	}
	ptr := unsafe.Pointer(&r.data[off])
	if uintptr(ptr)%4 != 0 {
		return nil, fmt.Errorf("%s int32 view at %d: %w", r.name, off, ErrMisaligned)
	}
	return unsafe.Slice((*int32)(ptr), n), nil
}

func float32View(r *Region, off, n int) ([]float32, error) {
	if n == 0 {
		return nil, nil
	}
	if off+n*4 > r.Len() {
		return nil, fmt.Errorf("%s float32[%d] at %d: %w", r.name, n, off, ErrRegionTooSmall)
	}
	ptr := unsafe.Pointer(&r.data[off])
	if uintptr(ptr)%4 != 0 {
		return nil, fmt.Errorf("%s float32 view at %d: %w", r.name, off, ErrMisaligned)
	}
	return unsafe.Slice((*float32)(ptr), n), nil
}

// AudioBlock is the audio control block: flag, read_idx, write_idx, then the
// float32 ring buffer.
type AudioBlock struct {
	region   *Region
	Flag     SharedWord
	ReadIdx  SharedWord
	WriteIdx SharedWord
	Ring     []float32
}

func AudioBlockSize(ringLen int) int { return HEADERS_SIZE_BYTES + ringLen*4 }

func NewAudioBlock(r *Region, ringLen int) (*AudioBlock, error) {
	if ringLen < 2 {
		return nil, fmt.Errorf("ring buffer of %d samples: %w", ringLen, ErrRegionTooSmall)
	}
	b := &AudioBlock{region: r}
	var err error
	if b.Flag, err = wordAt(r, FLAG_INDEX); err != nil {
		return nil, err
	}
	if b.ReadIdx, err = wordAt(r, READ_INDEX); err != nil {
		return nil, err
	}
	if b.WriteIdx, err = wordAt(r, WRITE_INDEX); err != nil {
		return nil, err
	}
	if b.Ring, err = float32View(r, HEADERS_SIZE_BYTES, ringLen); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *AudioBlock) Region() *Region { return b.region }
