// script_host.go - Lua control scripts driving the control port

package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	lua "github.com/yuin/gopher-lua"
)

var fxParamNames = map[string]int32{
	"cutoff":   FILTER_PARAM_CUTOFF,
	"q":        FILTER_PARAM_Q,
	"delay":    ECHO_PARAM_DELAY,
	"feedback": ECHO_PARAM_FEEDBACK,
	"dry":      ECHO_PARAM_DRY,
	"wet":      ECHO_PARAM_WET,
	"left":     ECHO_PARAM_LEFT_OFFSET,
	"right":    ECHO_PARAM_RIGHT_OFFSET,
}

var fxKindNames = map[string]EffectKind{
	"filter": EffectFilter,
	"echo":   EffectEcho,
}

// ScriptHost exposes the control port to Lua as the global table "synth".
type ScriptHost struct {
	port *ControlPort
	log  *slog.Logger
}

func NewScriptHost(port *ControlPort, log *slog.Logger) *ScriptHost {
	return &ScriptHost{port: port, log: log}
}

func (h *ScriptHost) newState(ctx context.Context) *lua.LState {
	L := lua.NewState()
	L.SetContext(ctx)

	mod := L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"note_on":    h.noteOn,
		"note_off":   h.noteOff,
		"all_off":    h.allOff,
		"panic":      h.panicAll,
		"osc_add":    h.oscAdd,
		"osc_remove": h.oscRemove,
		"osc_set":    h.oscSet,
		"fx_add":     h.fxAdd,
		"fx_remove":  h.fxRemove,
		"fx_set":     h.fxSet,
		"fx_move":    h.fxMove,
		"fx_reset":   h.fxReset,
		"sleep":      h.sleep,
		"log":        h.print,
	})
	for name, wt := range map[string]WaveType{
		"SINE":     WaveSine,
		"SQUARE":   WaveSquare,
		"SAW":      WaveSaw,
		"TRIANGLE": WaveTriangle,
	} {
		L.SetField(mod, name, lua.LNumber(wt))
	}
	L.SetGlobal("synth", mod)
	return L
}

// RunFile executes a script to completion or until ctx is cancelled.
func (h *ScriptHost) RunFile(ctx context.Context, path string) error {
	L := h.newState(ctx)
	defer L.Close()
	h.log.Info("script started", "path", path)
	if err := L.DoFile(path); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("script %s: %w", path, err)
	}
	return nil
}

func (h *ScriptHost) RunString(ctx context.Context, src string) error {
	L := h.newState(ctx)
	defer L.Close()
	if err := L.DoString(src); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("script: %w", err)
	}
	return nil
}

func checkErr(L *lua.LState, err error) {
	if err != nil {
		L.RaiseError("%v", err)
	}
}

func checkUint8(L *lua.LState, n int) uint8 {
	v := L.CheckInt(n)
	if v < 0 || v > 255 {
		L.ArgError(n, "value out of range 0-255")
	}
	return uint8(v)
}

func (h *ScriptHost) noteOn(L *lua.LState) int {
	note := checkUint8(L, 1)
	vel := L.OptInt(2, pianoDefaultVelocity)
	checkErr(L, h.port.PlayNote(note, uint8(min(max(vel, 0), MIDI_MAX_VALUE))))
	return 0
}

func (h *ScriptHost) noteOff(L *lua.LState) int {
	checkErr(L, h.port.StopNote(checkUint8(L, 1)))
	return 0
}

func (h *ScriptHost) allOff(L *lua.LState) int {
	checkErr(L, h.port.AllNotesOff())
	return 0
}

func (h *ScriptHost) panicAll(L *lua.LState) int {
	checkErr(L, h.port.Panic())
	return 0
}

func (h *ScriptHost) oscAdd(L *lua.LState) int {
	id, err := h.port.CreateOscillator()
	checkErr(L, err)
	L.Push(lua.LNumber(id))
	return 1
}

func (h *ScriptHost) oscRemove(L *lua.LState) int {
	checkErr(L, h.port.RemoveOscillator(checkUint8(L, 1)))
	return 0
}

// osc_set(id, name, value), e.g. synth.osc_set(0, "attack", 20)
func (h *ScriptHost) oscSet(L *lua.LState) int {
	id := checkUint8(L, 1)
	name := L.CheckString(2)
	value := float64(L.CheckNumber(3))
	param, ok := oscParamNames[name]
	if !ok {
		L.ArgError(2, "unknown oscillator parameter "+name)
	}
	checkErr(L, h.port.UpdateOscillator(id, param, value))
	return 0
}

func (h *ScriptHost) fxAdd(L *lua.LState) int {
	name := L.CheckString(1)
	kind, ok := fxKindNames[name]
	if !ok {
		L.ArgError(1, "unknown effect kind "+name)
	}
	id, err := h.port.AddEffect(kind)
	checkErr(L, err)
	L.Push(lua.LNumber(id))
	return 1
}

func (h *ScriptHost) fxRemove(L *lua.LState) int {
	checkErr(L, h.port.RemoveEffect(int32(L.CheckInt(1))))
	return 0
}

// fx_set(id, name, value), e.g. synth.fx_set(fx, "cutoff", 1200)
func (h *ScriptHost) fxSet(L *lua.LState) int {
	id := int32(L.CheckInt(1))
	name := L.CheckString(2)
	value := float32(L.CheckNumber(3))
	param, ok := fxParamNames[name]
	if !ok {
		L.ArgError(2, "unknown effect parameter "+name)
	}
	checkErr(L, h.port.UpdateEffect(id, param, value))
	return 0
}

func (h *ScriptHost) fxMove(L *lua.LState) int {
	checkErr(L, h.port.MoveEffect(int32(L.CheckInt(1)), L.CheckInt(2)))
	return 0
}

func (h *ScriptHost) fxReset(L *lua.LState) int {
	checkErr(L, h.port.ResetEffect(int32(L.CheckInt(1))))
	return 0
}

// sleep(ms) yields to the wall clock; cancellation aborts the script.
func (h *ScriptHost) sleep(L *lua.LState) int {
	d := time.Duration(float64(L.CheckNumber(1)) * float64(time.Millisecond))
	ctx := L.Context()
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		L.RaiseError("script cancelled")
	case <-t.C:
	}
	return 0
}

func (h *ScriptHost) print(L *lua.LState) int {
	h.log.Info("script", "msg", L.CheckString(1))
	return 0
}
