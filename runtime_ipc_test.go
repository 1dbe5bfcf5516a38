package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestIPCServer(t *testing.T, handler IPCHandler) *IPCServer {
	t.Helper()
	srv, err := newIPCServerAt(filepath.Join(t.TempDir(), "synth.sock"), handler)
	if err != nil {
		t.Fatalf("newIPCServerAt: %v", err)
	}
	srv.Start()
	t.Cleanup(srv.Stop)
	return srv
}

func dialTestIPC(t *testing.T, srv *IPCServer) *IPCClient {
	t.Helper()
	c, err := dialIPCAt(srv.Path())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestIPC_SessionReachesControlPort(t *testing.T) {
	sc := newTestContext(t)
	port := NewControlPort(sc)
	srv := newTestIPCServer(t, controlHandler(context.Background(), port, sc.Status, testLogger()))
	c := dialTestIPC(t, srv)

	if err := c.Do(ipcRequest{Cmd: "eval", Source: "synth.note_on(64, 80)"}, nil); err != nil {
		t.Fatalf("eval: %v", err)
	}
	ev, ok, err := sc.Notes.Dequeue()
	if err != nil || !ok {
		t.Fatalf("Dequeue = ok %v err %v", ok, err)
	}
	if ev != (NoteEvent{Type: NOTE_EVENT_ON, Value: 64, Velocity: 80}) {
		t.Errorf("event = %+v", ev)
	}

	// The session survives a failing request.
	err = c.Do(ipcRequest{Cmd: "eval", Source: "synth.fx_add('flanger')"}, nil)
	if err == nil || !strings.Contains(err.Error(), "flanger") {
		t.Errorf("failing eval = %v, want remote error naming flanger", err)
	}

	if err := sc.Processor.Process(64); err != nil {
		t.Fatal(err)
	}
	var snap runtimeStatusSnapshot
	if err := c.Do(ipcRequest{Cmd: "status"}, &snap); err != nil {
		t.Fatalf("status: %v", err)
	}
	if snap.Passes != 1 || snap.SamplesWritten != 64 {
		t.Errorf("status = %+v, want 1 pass of 64 samples", snap)
	}
}

func TestIPC_RejectsBadRequests(t *testing.T) {
	called := false
	srv := newTestIPCServer(t, func(ipcRequest) (any, error) {
		called = true
		return nil, nil
	})
	c := dialTestIPC(t, srv)

	notLua := filepath.Join(t.TempDir(), "song.mid")
	if err := os.WriteFile(notLua, []byte("MThd"), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		req  ipcRequest
		want string
	}{
		{"unknown command", ipcRequest{Cmd: "open"}, "unknown command"},
		{"relative path", ipcRequest{Cmd: "script", Path: "demo.lua"}, "absolute path"},
		{"wrong extension", ipcRequest{Cmd: "script", Path: notLua}, "unsupported extension"},
		{"missing file", ipcRequest{Cmd: "script", Path: filepath.Join(t.TempDir(), "gone.lua")}, "not found"},
		{"empty eval", ipcRequest{Cmd: "eval", Source: "  "}, "empty source"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := c.Do(tc.req, nil)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Errorf("Do = %v, want error containing %q", err, tc.want)
			}
		})
	}
	if called {
		t.Error("handler ran for a rejected request")
	}
}

func TestIPC_SecondServerRefused(t *testing.T) {
	noop := func(ipcRequest) (any, error) { return nil, nil }
	srv := newTestIPCServer(t, noop)
	if _, err := newIPCServerAt(srv.Path(), noop); err == nil {
		t.Error("second server bound to a live socket")
	}
}

func TestIPC_StaleSocketReplaced(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stale.sock")
	if err := os.WriteFile(path, nil, 0o600); err != nil {
		t.Fatal(err)
	}
	srv, err := newIPCServerAt(path, func(ipcRequest) (any, error) { return "pong", nil })
	if err != nil {
		t.Fatalf("bind over stale file: %v", err)
	}
	srv.Start()
	defer srv.Stop()

	c := dialTestIPC(t, srv)
	var got string
	if err := c.Do(ipcRequest{Cmd: "status"}, &got); err != nil || got != "pong" {
		t.Errorf("Do = %q, %v", got, err)
	}
}
