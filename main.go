// main.go - Intuition Synth entry point

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
)

// releaseTail lets echoes and release stages ring out after a finite source.
const releaseTail = 2 * time.Second

func boilerPlate() {
	fmt.Println("\n\033[38;2;255;20;147m ██▓ ███▄    █ ▄▄▄█████▓ █    ██  ██▓▄▄▄█████▓ ██▓ ▒█████   ███▄    █    ▓█████  ███▄    █   ▄████  ██▓ ███▄    █ ▓█████\033[0m\n\033[38;2;255;50;147m▓██▒ ██ ▀█   █ ▓  ██▒ ▓▒ ██  ▓██▒▓██▒▓  ██▒ ▓▒▓██▒▒██▒  ██▒ ██ ▀█   █    ▓█   ▀  ██ ▀█   █  ██▒ ▀█▒▓██▒ ██ ▀█   █ ▓█   ▀\033[0m\n\033[38;2;255;80;147m▒██▒▓██  ▀█ ██▒▒ ▓██░ ▒░▓██  ▒██░▒██▒▒ ▓██░ ▒░▒██▒▒██░  ██▒▓██  ▀█ ██▒   ▒███   ▓██  ▀█ ██▒▒██░▄▄▄░▒██▒▓██  ▀█ ██▒▒███\033[0m\n\033[38;2;255;110;147m░██░▓██▒  ▐▌██▒░ ▓██▓ ░ ▓▓█  ░██░░██░░ ▓██▓ ░ ░██░▒██   ██░▓██▒  ▐▌██▒   ▒▓█  ▄ ▓██▒  ▐▌██▒░▓█  ██▓░██░▓██▒  ▐▌██▒▒▓█  ▄\033[0m\n\033[38;2;255;140;147m░██░▒██░   ▓██░  ▒██▒ ░ ▒▒█████▓ ░██░  ▒██▒ ░ ░██░░ ████▓▒░▒██░   ▓██░   ░▒████▒▒██░   ▓██░░▒▓███▀▒░██░▒██░   ▓██░░▒████▒\033[0m\n\033[38;2;255;170;147m░▓  ░ ▒░   ▒ ▒   ▒ ░░   ░▒▓▒ ▒ ▒ ░▓    ▒ ░░   ░▓  ░ ▒░▒░▒░ ░ ▒░   ▒ ▒    ░░ ▒░ ░░ ▒░   ▒ ▒  ░▒   ▒ ░▓  ░ ▒░   ▒ ▒ ░░ ▒░ ░\033[0m\n\033[38;2;255;200;147m ▒ ░░ ░░   ░ ▒░    ░    ░░▒░ ░ ░  ▒ ░    ░     ▒ ░  ░ ▒ ▒░ ░ ░░   ░ ▒░    ░ ░  ░░ ░░   ░ ▒░  ░   ░  ▒ ░░ ░░   ░ ▒░ ░ ░  ░\033[0m\n\033[38;2;255;230;147m ▒ ░   ░   ░ ░   ░       ░░░ ░ ░  ▒ ░  ░       ▒ ░░ ░ ░ ▒     ░   ░ ░       ░      ░   ░ ░ ░ ░   ░  ▒ ░   ░   ░ ░    ░\033[0m\n\033[38;2;255;255;147m ░           ░             ░      ░            ░      ░ ░           ░       ░  ░         ░       ░  ░           ░    ░  ░\033[0m")
	fmt.Println("\nA real-time software synthesizer on a lock-free shared-memory event protocol.")
	fmt.Println("(c) 2024 - 2026 Zayn Otley")
	fmt.Println("https://github.com/IntuitionAmiga/IntuitionSynth")
	fmt.Println("License: GPLv3 or later")
}

func main() {
	cfg, err := parseConfig(os.Args[1:], os.Stdout)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	if cfg.Version {
		printFeatures(os.Stdout)
		return
	}
	if cfg.Send != "" || cfg.Eval != "" || cfg.Status {
		if err := sendControl(cfg, os.Stdout); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	boilerPlate()
	log := newLogger(cfg.LogLevel)
	if err := run(cfg, log); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg SynthConfig, log *slog.Logger) error {
	regions, err := AllocateRegions(cfg)
	if err != nil {
		return fmt.Errorf("failed to allocate shared regions: %w", err)
	}
	sc, err := InitAudioThread(regions, cfg.SampleRate, log)
	if err != nil {
		regions.Close()
		return fmt.Errorf("failed to initialize audio thread: %w", err)
	}
	defer sc.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	port := NewControlPort(sc)
	if cfg.Preset {
		if err := port.InstallPreset(); err != nil {
			return err
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return ignoreCancel(sc.Run(gctx))
	})

	// With -shm the external process owns playback.
	if cfg.ShmDir == "" {
		output, err := openOutput(ctx, cfg, sc, log)
		if err != nil {
			cancel()
			g.Wait()
			return err
		}
		defer output.Close()
		output.Start()
	} else {
		log.Info("shared regions mapped", "dir", cfg.ShmDir)
	}

	interactive := cfg.Keys || cfg.MIDIIn != "" || cfg.ShmDir != "" || cfg.Listen

	if cfg.Listen {
		srv, err := NewIPCServer(controlHandler(gctx, port, sc.Status, log))
		if err != nil {
			cancel()
			g.Wait()
			return err
		}
		srv.Start()
		defer srv.Stop()
		log.Info("control socket listening", "path", srv.Path())
	}

	if cfg.Keys {
		piano := NewKeyboardPiano(port, cancel, log)
		host := NewTerminalHost(piano)
		if err := host.Start(); err != nil {
			cancel()
			g.Wait()
			return err
		}
		defer host.Stop()
		defer piano.Close()
		fmt.Print("Keys: zsxdcvgbhnjm, / q2w3er5t6y7ui play, [ ] octave, space releases, Esc quits\r\n")
	}

	if cfg.MIDIIn != "" {
		in, err := OpenMIDIInput(cfg.MIDIIn, port, log)
		if err != nil {
			cancel()
			g.Wait()
			return err
		}
		defer in.Close()
	}

	if cfg.MIDIFile != "" || cfg.Script != "" {
		g.Go(func() error {
			if err := runFiniteSources(gctx, cfg, port, log); err != nil {
				return ignoreCancel(err)
			}
			if !interactive {
				select {
				case <-gctx.Done():
				case <-time.After(releaseTail):
				}
				cancel()
			}
			return nil
		})
	}

	if !interactive && cfg.MIDIFile == "" && cfg.Script == "" {
		log.Info("no control source configured, press Ctrl-C to exit")
	}

	return g.Wait()
}

func runFiniteSources(ctx context.Context, cfg SynthConfig, port *ControlPort, log *slog.Logger) error {
	if cfg.Script != "" {
		if err := NewScriptHost(port, log).RunFile(ctx, cfg.Script); err != nil {
			return err
		}
	}
	if cfg.MIDIFile != "" {
		player, err := NewMIDIFilePlayer(cfg.MIDIFile, port, log)
		if err != nil {
			return err
		}
		log.Info("playing midi file", "path", cfg.MIDIFile, "duration", player.Duration().Round(time.Millisecond))
		if err := player.Play(ctx); err != nil {
			return err
		}
	}
	return nil
}

func openOutput(ctx context.Context, cfg SynthConfig, sc *SynthContext, log *slog.Logger) (AudioOutput, error) {
	consumer := NewRingConsumer(sc)
	if cfg.Analyze {
		analyzer, err := NewSpectrumAnalyzer(sc.SampleRate())
		if err != nil {
			return nil, err
		}
		consumer.SetTap(analyzer.Feed)
		go reportStatus(ctx, sc.Status, analyzer, log)
	}

	var output AudioOutput
	if cfg.ALSA {
		alsa, err := NewALSAPlayer(sc.SampleRate(), log)
		if err != nil {
			return nil, err
		}
		output = alsa
	} else if !cfg.Headless {
		oto, err := NewOtoPlayer(sc.SampleRate())
		if err == nil {
			output = oto
		} else {
			log.Warn("audio device unavailable, pacing headless", "err", err)
		}
	}
	if output == nil {
		output = NewHeadlessPlayer(sc.SampleRate())
	}
	output.SetupPlayer(consumer)
	return output, nil
}

func reportStatus(ctx context.Context, status *runtimeStatusStore, analyzer *SpectrumAnalyzer, log *slog.Logger) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		snap := status.snapshot()
		hz, mag, ok := analyzer.DominantFrequency()
		if !ok || snap.ActiveVoices == 0 {
			continue
		}
		log.Info("output",
			"voices", snap.ActiveVoices,
			"peak", snap.PeakLevel,
			"dominant_hz", fmt.Sprintf("%.1f", hz),
			"magnitude", fmt.Sprintf("%.3f", mag),
			"underruns", snap.Underruns)
	}
}

// controlHandler runs eval requests inline and script files in the
// background, so a long script does not hold the session open.
func controlHandler(ctx context.Context, port *ControlPort, status *runtimeStatusStore, log *slog.Logger) IPCHandler {
	scripts := NewScriptHost(port, log)
	return func(req ipcRequest) (any, error) {
		switch req.Cmd {
		case "eval":
			return nil, scripts.RunString(ctx, req.Source)
		case "script":
			go func() {
				if err := scripts.RunFile(ctx, req.Path); ignoreCancel(err) != nil {
					log.Warn("remote script failed", "path", req.Path, "err", err)
				}
			}()
			return nil, nil
		case "status":
			return status.snapshot(), nil
		}
		return nil, fmt.Errorf("unknown command %q", req.Cmd)
	}
}

func sendControl(cfg SynthConfig, stdout io.Writer) error {
	client, err := DialIPC()
	if err != nil {
		return err
	}
	defer client.Close()

	if cfg.Send != "" {
		path, err := filepath.Abs(cfg.Send)
		if err != nil {
			return err
		}
		if err := client.Do(ipcRequest{Cmd: "script", Path: path}, nil); err != nil {
			return err
		}
	}
	if cfg.Eval != "" {
		if err := client.Do(ipcRequest{Cmd: "eval", Source: cfg.Eval}, nil); err != nil {
			return err
		}
	}
	if cfg.Status {
		var snap runtimeStatusSnapshot
		if err := client.Do(ipcRequest{Cmd: "status"}, &snap); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "passes=%d samples=%d voices=%d oscillators=%d effects=%d underruns=%d peak=%.3f\n",
			snap.Passes, snap.SamplesWritten, snap.ActiveVoices, snap.Oscillators, snap.Effects, snap.Underruns, snap.PeakLevel)
	}
	return nil
}

func ignoreCancel(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
