//go:build !headless

// audio_backend_oto.go - Audio output via oto, pulling from the sample ring

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
	"sync"
	"sync/atomic"
	"time"
	"unsafe"

	"github.com/ebitengine/oto/v3"
)

func init() {
	compiledFeatures = append(compiledFeatures, "audio:oto")
}

// otoBufferFrames keeps device latency near 12 ms at 44.1 kHz.
const otoBufferFrames = 512

func otoBufferDuration(sampleRate int) time.Duration {
	return time.Duration(otoBufferFrames) * time.Second / time.Duration(sampleRate)
}

const bytesPerFrame = CHANNELS * 4

// OtoPlayer is an io.Reader handed to oto. Read runs on oto's thread and only
// touches the consumer through an atomic pointer.
type OtoPlayer struct {
	ctx     *oto.Context
	player  *oto.Player
	source  atomic.Pointer[RingConsumer]
	frames  []float32
	started bool
	mu      sync.Mutex
}

func NewOtoPlayer(sampleRate int) (*OtoPlayer, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: CHANNELS,
		Format:       oto.FormatFloat32LE,
		BufferSize:   otoBufferDuration(sampleRate),
	})
	if err != nil {
		return nil, err
	}
	<-ready
	return &OtoPlayer{ctx: ctx, frames: make([]float32, otoBufferFrames*CHANNELS)}, nil
}

func (op *OtoPlayer) SetupPlayer(source *RingConsumer) {
	op.mu.Lock()
	defer op.mu.Unlock()
	op.source.Store(source)
	if op.player == nil {
		op.player = op.ctx.NewPlayer(op)
	}
}

// Read fills p with whole stereo frames from the ring. Any trailing partial
// frame is left for the next call.
func (op *OtoPlayer) Read(p []byte) (int, error) {
	n := len(p) / bytesPerFrame * CHANNELS
	source := op.source.Load()
	if source == nil || n == 0 {
		clear(p)
		return len(p), nil
	}
	if cap(op.frames) < n {
		op.frames = make([]float32, n)
	}
	samples := op.frames[:n]
	source.Read(samples)
	return copy(p, unsafe.Slice((*byte)(unsafe.Pointer(&samples[0])), n*4)), nil
}

func (op *OtoPlayer) Start() {
	op.mu.Lock()
	defer op.mu.Unlock()
	if op.started || op.player == nil {
		return
	}
	if src := op.source.Load(); src != nil {
		src.Request()
	}
	op.player.Play()
	op.started = true
}

func (op *OtoPlayer) Stop() {
	op.mu.Lock()
	defer op.mu.Unlock()
	if op.started {
		op.player.Pause()
		op.started = false
	}
}

func (op *OtoPlayer) Close() {
	op.Stop()
	op.mu.Lock()
	defer op.mu.Unlock()
	if op.player != nil {
		op.player.Close()
		op.player = nil
	}
}

func (op *OtoPlayer) IsStarted() bool {
	op.mu.Lock()
	defer op.mu.Unlock()
	return op.started
}
