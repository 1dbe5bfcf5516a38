//go:build unix

package main

import (
	"path/filepath"
	"testing"
)

func TestMapRegion_SharedBetweenMappings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "synth-notes.shm")
	size := NoteQueueSize(8)

	host, err := MapRegion("notes", path, size)
	if err != nil {
		t.Fatal(err)
	}
	defer host.Close()
	synth, err := MapRegion("notes", path, size)
	if err != nil {
		t.Fatal(err)
	}
	defer synth.Close()

	producer, err := NewNoteQueue(host)
	if err != nil {
		t.Fatal(err)
	}
	consumer, err := NewNoteQueue(synth)
	if err != nil {
		t.Fatal(err)
	}

	mustEnqueue(t, producer.Enqueue(NoteEvent{Type: NOTE_EVENT_ON, Value: 64, Velocity: 99}))
	ev, ok, err := consumer.Dequeue()
	if err != nil || !ok {
		t.Fatalf("Dequeue = ok %v err %v", ok, err)
	}
	if ev.Value != 64 || ev.Velocity != 99 {
		t.Errorf("event = %+v", ev)
	}
	if producer.Len() != 0 {
		t.Errorf("producer sees %d pending, want 0", producer.Len())
	}
}

func TestAllocateRegions_ShmDir(t *testing.T) {
	cfg := defaultConfig()
	cfg.ShmDir = t.TempDir()
	cfg.RingSize = 64

	regions, err := AllocateRegions(cfg)
	if err != nil {
		t.Fatal(err)
	}
	sc, err := InitAudioThread(regions, cfg.SampleRate, testLogger())
	if err != nil {
		regions.Close()
		t.Fatal(err)
	}
	if len(sc.Audio.Ring) != 64 {
		t.Errorf("ring length = %d, want 64", len(sc.Audio.Ring))
	}
	if err := sc.Close(); err != nil {
		t.Errorf("Close = %v", err)
	}
	if !regions.Audio.Detached() {
		t.Error("audio region still attached after Close")
	}
}
