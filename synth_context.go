// synth_context.go - Explicit synth context built once from the host's regions

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
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
)

// SharedRegions are the four handles the host supplies at init, plus the ring
// length in interleaved samples.
type SharedRegions struct {
	Audio   *Region
	Notes   *Region
	Oscs    *Region
	Fx      *Region
	RingLen int
}

func (s SharedRegions) all() []*Region {
	return []*Region{s.Audio, s.Notes, s.Oscs, s.Fx}
}

func (s SharedRegions) Close() error {
	var errs []error
	for _, r := range s.all() {
		if err := r.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// AllocateRegions creates the four regions in process memory, or as shared
// files under cfg.ShmDir so another process can act as the host.
func AllocateRegions(cfg SynthConfig) (SharedRegions, error) {
	sizes := []struct {
		name string
		size int
	}{
		{"audio", AudioBlockSize(cfg.RingSize)},
		{"notes", NoteQueueSize(cfg.NoteCap)},
		{"oscillators", OscQueueSize(cfg.OscCap)},
		{"effects", FxQueueSize(cfg.FxCap)},
	}

	regions := make([]*Region, 0, len(sizes))
	for _, s := range sizes {
		if cfg.ShmDir == "" {
			regions = append(regions, NewHeapRegion(s.name, s.size))
			continue
		}
		r, err := MapRegion(s.name, filepath.Join(cfg.ShmDir, "synth-"+s.name+".shm"), s.size)
		if err != nil {
			for _, prev := range regions {
				prev.Close()
			}
			return SharedRegions{}, err
		}
		regions = append(regions, r)
	}
	return SharedRegions{
		Audio:   regions[0],
		Notes:   regions[1],
		Oscs:    regions[2],
		Fx:      regions[3],
		RingLen: cfg.RingSize,
	}, nil
}

// SynthContext replaces process-wide state: everything the render thread and
// its host-side peers share hangs off one value.
type SynthContext struct {
	regions    SharedRegions
	sampleRate int

	Audio     *AudioBlock
	Notes     *NoteQueue
	Oscs      *OscQueue
	Fx        *FxQueue
	Processor *AudioProcessor
	Loop      *ProducerLoop
	Status    *runtimeStatusStore

	log *slog.Logger
}

// InitAudioThread validates and binds the regions. It does not start the loop.
func InitAudioThread(regions SharedRegions, sampleRate int, log *slog.Logger) (*SynthContext, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate %d", sampleRate)
	}
	if regions.RingLen%CHANNELS != 0 {
		return nil, fmt.Errorf("ring length %d is not a whole number of stereo frames", regions.RingLen)
	}
	for _, r := range regions.all() {
		if r.Detached() {
			return nil, fmt.Errorf("init: %w", &ProtocolError{Region: r.Name(), Op: "init", Err: ErrDetached})
		}
	}

	audio, err := NewAudioBlock(regions.Audio, regions.RingLen)
	if err != nil {
		return nil, fmt.Errorf("audio block: %w", err)
	}
	notes, err := NewNoteQueue(regions.Notes)
	if err != nil {
		return nil, fmt.Errorf("note queue: %w", err)
	}
	oscs, err := NewOscQueue(regions.Oscs)
	if err != nil {
		return nil, fmt.Errorf("oscillator queue: %w", err)
	}
	fx, err := NewFxQueue(regions.Fx)
	if err != nil {
		return nil, fmt.Errorf("effect queue: %w", err)
	}

	status := &runtimeStatusStore{}
	proc := NewAudioProcessor(audio, notes, oscs, fx, sampleRate, status, log)
	sc := &SynthContext{
		regions:    regions,
		sampleRate: sampleRate,
		Audio:      audio,
		Notes:      notes,
		Oscs:       oscs,
		Fx:         fx,
		Processor:  proc,
		Loop:       NewProducerLoop(audio, proc, regions.all(), log),
		Status:     status,
		log:        log,
	}
	log.Debug("audio thread initialised",
		"rate", sampleRate,
		"ring", regions.RingLen,
		"note_cap", notes.Capacity(),
		"osc_cap", oscs.Capacity(),
		"fx_cap", fx.Capacity())
	return sc, nil
}

func (sc *SynthContext) SampleRate() int { return sc.sampleRate }

// Run is the render thread. See ProducerLoop.Run.
func (sc *SynthContext) Run(ctx context.Context) error {
	return sc.Loop.Run(ctx)
}

// Close detaches the shared regions. The render loop must have returned.
func (sc *SynthContext) Close() error {
	return sc.regions.Close()
}
