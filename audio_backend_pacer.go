// audio_backend_pacer.go - Device-free playback that drains the ring in real time

package main

import (
	"sync"
	"time"
)

// AudioOutput is what main drives: a device backend or the pacer.
type AudioOutput interface {
	SetupPlayer(source *RingConsumer)
	Start()
	Stop()
	Close()
	IsStarted() bool
}

const pacerBlockFrames = 256

// HeadlessPlayer consumes the ring at the nominal sample rate and throws the
// audio away. Taps on the consumer still see every block.
type HeadlessPlayer struct {
	sampleRate int
	source     *RingConsumer
	buf        []float32
	started    bool
	stopCh     chan struct{}
	done       chan struct{}
	mutex      sync.Mutex
}

func NewHeadlessPlayer(sampleRate int) *HeadlessPlayer {
	return &HeadlessPlayer{
		sampleRate: sampleRate,
		buf:        make([]float32, pacerBlockFrames*CHANNELS),
	}
}

func (hp *HeadlessPlayer) SetupPlayer(source *RingConsumer) {
	hp.mutex.Lock()
	defer hp.mutex.Unlock()
	hp.source = source
}

func (hp *HeadlessPlayer) Start() {
	hp.mutex.Lock()
	defer hp.mutex.Unlock()
	if hp.started || hp.source == nil {
		return
	}
	hp.started = true
	hp.stopCh = make(chan struct{})
	hp.done = make(chan struct{})
	hp.source.Request()
	go hp.run(hp.source, hp.stopCh, hp.done)
}

func (hp *HeadlessPlayer) run(source *RingConsumer, stopCh, done chan struct{}) {
	defer close(done)
	period := time.Duration(pacerBlockFrames) * time.Second / time.Duration(hp.sampleRate)
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			source.Read(hp.buf)
		}
	}
}

func (hp *HeadlessPlayer) Stop() {
	hp.mutex.Lock()
	if !hp.started {
		hp.mutex.Unlock()
		return
	}
	hp.started = false
	close(hp.stopCh)
	done := hp.done
	hp.mutex.Unlock()
	<-done
}

func (hp *HeadlessPlayer) Close() {
	hp.Stop()
}

func (hp *HeadlessPlayer) IsStarted() bool {
	hp.mutex.Lock()
	defer hp.mutex.Unlock()
	return hp.started
}
