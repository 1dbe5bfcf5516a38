// audio_producer_loop.go - Render thread body driven by the audio flag word

package main

import (
	"context"
	"log/slog"
	"runtime"
	"time"
)

// waitSlice bounds each blocking wait so cancellation is observed between
// passes. It never interrupts a pass.
const waitSlice = 50 * time.Millisecond

type ProducerLoop struct {
	block   *AudioBlock
	proc    *AudioProcessor
	regions []*Region
	log     *slog.Logger
}

func NewProducerLoop(block *AudioBlock, proc *AudioProcessor, regions []*Region, log *slog.Logger) *ProducerLoop {
	return &ProducerLoop{block: block, proc: proc, regions: regions, log: log}
}

func (l *ProducerLoop) checkRegions(op string) error {
	for _, r := range l.regions {
		if r.Detached() {
			return &ProtocolError{Region: r.Name(), Op: op, Err: ErrDetached}
		}
	}
	return nil
}

// Run blocks on the flag until the consumer asks for samples, renders one full
// pass, then stores FLAG_IDLE and notifies. It returns ctx.Err() on
// cancellation and a *ProtocolError if shared state becomes unusable.
func (l *ProducerLoop) Run(ctx context.Context) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	l.log.Info("render thread started", "ring", len(l.block.Ring))
	defer l.log.Info("render thread stopped", "samples", l.proc.SampleCounter())

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := l.checkRegions("wait"); err != nil {
			l.log.Error("render thread aborted", "err", err)
			return err
		}

		flag := l.block.Flag.Load()
		if flag != FLAG_REQUEST {
			l.block.Flag.Wait(flag, waitSlice)
			continue
		}

		if err := l.proc.Process(l.proc.Ring().Space()); err != nil {
			l.log.Error("render thread aborted", "err", err)
			return err
		}

		l.block.Flag.Store(FLAG_IDLE)
		l.block.Flag.Notify()
	}
}
