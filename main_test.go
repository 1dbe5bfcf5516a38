package main

import (
	"bytes"
	"errors"
	"flag"
	"log/slog"
	"strings"
	"testing"
)

func TestParseConfig_Defaults(t *testing.T) {
	cfg, err := parseConfig(nil, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.SampleRate != SAMPLE_RATE || cfg.RingSize != RING_BUFFER_SIZE {
		t.Fatalf("expected (%d,%d), got (%d,%d)", SAMPLE_RATE, RING_BUFFER_SIZE, cfg.SampleRate, cfg.RingSize)
	}
	if cfg.NoteCap != NOTE_QUEUE_CAPACITY || cfg.OscCap != OSC_QUEUE_CAPACITY || cfg.FxCap != FX_QUEUE_CAPACITY {
		t.Fatalf("unexpected queue capacities %d/%d/%d", cfg.NoteCap, cfg.OscCap, cfg.FxCap)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Fatalf("expected info level, got %v", cfg.LogLevel)
	}
}

func TestParseConfig_Flags(t *testing.T) {
	cfg, err := parseConfig([]string{"-rate", "48000", "-ring", "8192", "-keys", "-preset", "-log-level", "debug", "-midi", "song.mid"}, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.SampleRate != 48000 || cfg.RingSize != 8192 {
		t.Fatalf("expected (48000,8192), got (%d,%d)", cfg.SampleRate, cfg.RingSize)
	}
	if !cfg.Keys || !cfg.Preset || cfg.MIDIFile != "song.mid" {
		t.Fatalf("flags not applied: %+v", cfg)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Fatalf("expected debug level, got %v", cfg.LogLevel)
	}
}

func TestParseConfig_Rejects(t *testing.T) {
	for _, args := range [][]string{
		{"-rate", "1000"},
		{"-ring", "7"},
		{"-ring", "2"},
		{"-note-cap", "1"},
		{"-log-level", "loud"},
		{"-alsa", "-headless"},
		{"-nonsense"},
	} {
		if _, err := parseConfig(args, &bytes.Buffer{}); err == nil {
			t.Fatalf("expected %v to be rejected", args)
		}
	}
}

func TestParseConfig_Help(t *testing.T) {
	var out bytes.Buffer
	_, err := parseConfig([]string{"-h"}, &out)
	if !errors.Is(err, flag.ErrHelp) {
		t.Fatalf("expected flag.ErrHelp, got %v", err)
	}
	if !strings.Contains(out.String(), "-midi-in") {
		t.Fatalf("expected usage to list -midi-in, got %q", out.String())
	}
}

func TestIgnoreCancel(t *testing.T) {
	if err := ignoreCancel(nil); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
	boom := errors.New("boom")
	if err := ignoreCancel(boom); err != boom {
		t.Fatalf("expected boom, got %v", err)
	}
}

func TestPrintFeatures(t *testing.T) {
	var out bytes.Buffer
	printFeatures(&out)
	if !strings.HasPrefix(out.String(), "Intuition Synth "+Version) {
		t.Fatalf("unexpected banner %q", out.String())
	}
	for _, f := range compiledFeatures {
		if !strings.Contains(out.String(), f) {
			t.Errorf("feature %q missing from output", f)
		}
	}
}
