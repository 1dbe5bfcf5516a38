// synth_config.go - Command line configuration

package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

type SynthConfig struct {
	SampleRate int
	RingSize   int
	NoteCap    int
	OscCap     int
	FxCap      int

	ShmDir   string
	Headless bool
	ALSA     bool
	Keys     bool
	MIDIFile string
	MIDIIn   string
	Script   string
	Preset   bool
	Analyze  bool
	Listen   bool
	Send     string
	Eval     string
	Status   bool
	LogLevel slog.Level
	Version  bool
}

func defaultConfig() SynthConfig {
	return SynthConfig{
		SampleRate: SAMPLE_RATE,
		RingSize:   RING_BUFFER_SIZE,
		NoteCap:    NOTE_QUEUE_CAPACITY,
		OscCap:     OSC_QUEUE_CAPACITY,
		FxCap:      FX_QUEUE_CAPACITY,
		LogLevel:   slog.LevelInfo,
	}
}

func parseLogLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return 0, fmt.Errorf("invalid -log-level %q", s)
	}
	return lvl, nil
}

// parseConfig returns flag.ErrHelp when usage was requested.
func parseConfig(args []string, stdout io.Writer) (SynthConfig, error) {
	cfg := defaultConfig()
	var logLevel string

	flagSet := flag.NewFlagSet("intuition_synth", flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	flagSet.IntVar(&cfg.SampleRate, "rate", cfg.SampleRate, "Sample rate in Hz")
	flagSet.IntVar(&cfg.RingSize, "ring", cfg.RingSize, "Ring buffer length in interleaved samples")
	flagSet.IntVar(&cfg.NoteCap, "note-cap", cfg.NoteCap, "Note queue capacity (records)")
	flagSet.IntVar(&cfg.OscCap, "osc-cap", cfg.OscCap, "Oscillator queue capacity (records)")
	flagSet.IntVar(&cfg.FxCap, "fx-cap", cfg.FxCap, "Effect queue capacity (records)")
	flagSet.StringVar(&cfg.ShmDir, "shm", "", "Directory for file-backed shared regions (default: process memory)")
	flagSet.BoolVar(&cfg.Headless, "headless", false, "Pace playback in real time without an audio device")
	flagSet.BoolVar(&cfg.ALSA, "alsa", false, "Write directly to the ALSA default device instead of oto")
	flagSet.BoolVar(&cfg.Keys, "keys", false, "Play from the terminal keyboard")
	flagSet.StringVar(&cfg.MIDIFile, "midi", "", "Play a Standard MIDI File")
	flagSet.StringVar(&cfg.MIDIIn, "midi-in", "", "Listen on a MIDI input port (name substring)")
	flagSet.StringVar(&cfg.Script, "script", "", "Run a Lua control script")
	flagSet.BoolVar(&cfg.Preset, "preset", false, "Install the default oscillator and effect preset")
	flagSet.BoolVar(&cfg.Analyze, "analyze", false, "Log the dominant output frequency periodically")
	flagSet.BoolVar(&cfg.Listen, "listen", false, "Accept Lua control requests on a Unix socket")
	flagSet.StringVar(&cfg.Send, "send", "", "Run a Lua script file on an already running synth and exit")
	flagSet.StringVar(&cfg.Eval, "eval", "", "Run inline Lua on an already running synth and exit")
	flagSet.BoolVar(&cfg.Status, "status", false, "Print the render counters of an already running synth and exit")
	flagSet.StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	flagSet.BoolVar(&cfg.Version, "version", false, "Print version and compiled features")

	flagSet.Usage = func() {
		flagSet.SetOutput(stdout)
		fmt.Fprintln(stdout, "Usage: ./intuition_synth [-keys] [-midi file.mid] [-midi-in port] [-script file.lua] [-listen] [-shm dir] [-headless]")
		fmt.Fprintln(stdout, "       ./intuition_synth [-send file.lua] [-eval 'synth.note_on(60)'] [-status]")
		flagSet.PrintDefaults()
	}

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			flagSet.Usage()
		}
		return cfg, err
	}

	lvl, err := parseLogLevel(logLevel)
	if err != nil {
		return cfg, err
	}
	cfg.LogLevel = lvl
	return cfg, cfg.validate()
}

func (c SynthConfig) validate() error {
	switch {
	case c.SampleRate < 8000 || c.SampleRate > 192000:
		return fmt.Errorf("invalid -rate %d: must be between 8000 and 192000", c.SampleRate)
	case c.RingSize < 4 || c.RingSize%CHANNELS != 0:
		return fmt.Errorf("invalid -ring %d: must be an even count of at least 4", c.RingSize)
	case c.ALSA && c.Headless:
		return errors.New("-alsa and -headless are mutually exclusive")
	case c.NoteCap < MIN_QUEUE_CAPACITY, c.OscCap < MIN_QUEUE_CAPACITY, c.FxCap < MIN_QUEUE_CAPACITY:
		return fmt.Errorf("queue capacities must be at least %d", MIN_QUEUE_CAPACITY)
	}
	return nil
}

func newLogger(level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
