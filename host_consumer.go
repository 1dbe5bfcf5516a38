// host_consumer.go - Playback side of the audio ring and flag handshake

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

// RingConsumer drains interleaved samples and raises the request flag when
// the ring runs low. It owns read_idx.
type RingConsumer struct {
	block    *AudioBlock
	size     int32
	lowWater int
	status   *runtimeStatusStore
	tap      func([]float32)
}

func NewRingConsumer(sc *SynthContext) *RingConsumer {
	size := int32(len(sc.Audio.Ring))
	return &RingConsumer{
		block:    sc.Audio,
		size:     size,
		lowWater: int(size) / 2,
		status:   sc.Status,
	}
}

// SetTap registers a function that sees every block read. It runs on the
// playback goroutine; set it before playback starts.
func (c *RingConsumer) SetTap(fn func([]float32)) { c.tap = fn }

func (c *RingConsumer) inRange(idx int32) bool { return idx >= 0 && idx < c.size }

// Available is the number of samples ready to read. Out-of-range cursors
// report nothing ready, so playback pads with silence.
func (c *RingConsumer) Available() int {
	w := c.block.WriteIdx.Load()
	r := c.block.ReadIdx.Load()
	if !c.inRange(w) || !c.inRange(r) {
		return 0
	}
	return int((w - r + c.size) % c.size)
}

// Request asks the render thread for more samples if it is idle.
func (c *RingConsumer) Request() {
	if c.block.Flag.Load() == FLAG_IDLE {
		c.block.Flag.Store(FLAG_REQUEST)
		c.block.Flag.Notify()
	}
}

// Read fills dst with whole stereo frames. A short ring is padded with silence
// and counted as an underrun. It always returns len(dst) rounded down to frames.
func (c *RingConsumer) Read(dst []float32) int {
	want := len(dst) &^ 1
	n := min(c.Available(), want) &^ 1

	if n > 0 {
		r := int(c.block.ReadIdx.Load())
		first := copy(dst[:n], c.block.Ring[r:])
		if first < n {
			copy(dst[first:n], c.block.Ring)
		}
		c.block.ReadIdx.Store(int32((r + n) % int(c.size)))
	}

	if n < want {
		clear(dst[n:want])
		if c.status != nil {
			c.status.recordUnderrun()
		}
	}
	if c.Available() < c.lowWater {
		c.Request()
	}
	if c.tap != nil {
		c.tap(dst[:want])
	}
	return want
}
