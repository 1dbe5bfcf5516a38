// ring_buffer.go - Interleaved stereo sample ring shared with the playback side

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

import "fmt"

// RingBufferManager is the producer half of the audio ring. The render thread
// owns write_idx; the playback side owns read_idx.
type RingBufferManager struct {
	ring     []float32
	writeIdx SharedWord
	readIdx  SharedWord
	size     int32
}

func NewRingBufferManager(block *AudioBlock) *RingBufferManager {
	return &RingBufferManager{
		ring:     block.Ring,
		writeIdx: block.WriteIdx,
		readIdx:  block.ReadIdx,
		size:     int32(len(block.Ring)),
	}
}

func (rb *RingBufferManager) Size() int { return int(rb.size) }

// Check rejects cursors a well-behaved peer can never publish. read_idx is
// written by the playback side, so it is validated before every use.
func (rb *RingBufferManager) Check() error {
	r := rb.readIdx.Load()
	w := rb.writeIdx.Load()
	if r < 0 || r >= rb.size || w < 0 || w >= rb.size {
		return &ProtocolError{
			Region: "audio",
			Op:     "ring",
			Err:    fmt.Errorf("cursor out of range: read=%d write=%d size=%d", r, w, rb.size),
		}
	}
	return nil
}

// Space is the number of samples that can be written without overrunning the
// reader. One slot stays reserved. Corrupt cursors report no space.
func (rb *RingBufferManager) Space() int {
	r := rb.readIdx.Load()
	w := rb.writeIdx.Load()
	if r < 0 || r >= rb.size || w < 0 || w >= rb.size {
		return 0
	}
	return int((r - w - 1 + rb.size) % rb.size)
}

// WriteSamples copies samples at the write cursor, wrapping at the end of the
// ring, and publishes the cursor after the data. Input beyond Space is dropped;
// the return value is the count written.
func (rb *RingBufferManager) WriteSamples(samples []float32) int {
	if space := rb.Space(); len(samples) > space {
		samples = samples[:space]
	}
	if len(samples) == 0 {
		return 0
	}
	w := int(rb.writeIdx.Load())
	first := copy(rb.ring[w:], samples)
	if first < len(samples) {
		copy(rb.ring, samples[first:])
	}
	rb.writeIdx.Store(int32((w + len(samples)) % int(rb.size)))
	return len(samples)
}
