package main

import (
	"math"
	"testing"
)

// squareBurst is frames of a 100 Hz full-scale square wave followed by silence.
func squareBurst(frames, silence int) []float32 {
	buf := make([]float32, (frames+silence)*2)
	period := SAMPLE_RATE / 100
	for i := 0; i < frames; i++ {
		v := float32(1)
		if i%period >= period/2 {
			v = -1
		}
		buf[2*i], buf[2*i+1] = v, v
	}
	return buf
}

func newChain(t *testing.T, kinds ...EffectKind) *Mixer {
	t.Helper()
	m := NewMixer(SAMPLE_RATE, testLogger())
	for i, k := range kinds {
		if !m.Add(int32(i), k) {
			t.Fatalf("Add(%d, %v) failed", i, k)
		}
	}
	return m
}

func configureEcho(t *testing.T, m *Mixer, id int32, feedback float32) {
	t.Helper()
	m.Update(id, ECHO_PARAM_DELAY, 10)
	m.Update(id, ECHO_PARAM_FEEDBACK, feedback)
}

func TestMixer_OrderMatters(t *testing.T) {
	in := squareBurst(2205, 2205)

	filterFirst := newChain(t, EffectFilter, EffectEcho)
	configureEcho(t, filterFirst, 1, 0.5)
	echoFirst := newChain(t, EffectEcho, EffectFilter)
	configureEcho(t, echoFirst, 0, 0.5)

	a := append([]float32(nil), in...)
	b := append([]float32(nil), in...)
	filterFirst.ProcessBlock(a)
	echoFirst.ProcessBlock(b)

	var diff float64
	for i := range a {
		diff += math.Abs(float64(a[i] - b[i]))
	}
	if diff < 1e-2 {
		t.Errorf("filter->echo and echo->filter differ by %v, want a clear difference", diff)
	}
}

func TestMixer_ZeroFeedbackEchoCommutes(t *testing.T) {
	in := squareBurst(2205, 441)

	filterFirst := newChain(t, EffectFilter, EffectEcho)
	configureEcho(t, filterFirst, 1, 0)
	echoFirst := newChain(t, EffectEcho, EffectFilter)
	configureEcho(t, echoFirst, 0, 0)

	a := append([]float32(nil), in...)
	b := append([]float32(nil), in...)
	filterFirst.ProcessBlock(a)
	echoFirst.ProcessBlock(b)

	for i := range a {
		if !approxEqual(a[i], b[i], 1e-6) {
			t.Fatalf("sample %d: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestMixer_AddReplacesInPlace(t *testing.T) {
	m := newChain(t, EffectFilter, EffectEcho)
	if !m.Add(0, EffectEcho) {
		t.Fatal("replace Add failed")
	}
	if m.Len() != 2 {
		t.Fatalf("Len = %d, want 2", m.Len())
	}
	if fx := m.Effects()[0]; fx.ID != 0 || fx.Kind != EffectEcho || fx.Echo() == nil || fx.Filter() != nil {
		t.Errorf("position 0 = %+v, want echo with id 0", fx)
	}
	if m.Add(5, EffectKind(9)) {
		t.Error("Add with unknown kind succeeded")
	}
	if m.Len() != 2 {
		t.Errorf("Len after rejected Add = %d, want 2", m.Len())
	}
}

func TestMixer_Move(t *testing.T) {
	order := func(m *Mixer) []int32 {
		var ids []int32
		for _, fx := range m.Effects() {
			ids = append(ids, fx.ID)
		}
		return ids
	}
	tests := []struct {
		name     string
		id       int32
		position int
		want     []int32
	}{
		{"to front", 2, 0, []int32{2, 0, 1}},
		{"to back", 0, 2, []int32{1, 2, 0}},
		{"clamped high", 0, 99, []int32{1, 2, 0}},
		{"clamped low", 2, -3, []int32{2, 0, 1}},
		{"in place", 1, 1, []int32{0, 1, 2}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := newChain(t, EffectFilter, EffectEcho, EffectFilter)
			if !m.Move(tc.id, tc.position) {
				t.Fatal("Move failed")
			}
			got := order(m)
			for i := range tc.want {
				if got[i] != tc.want[i] {
					t.Fatalf("order = %v, want %v", got, tc.want)
				}
			}
		})
	}
}

func TestMixer_UnknownID(t *testing.T) {
	m := newChain(t, EffectFilter)
	if m.Remove(7) || m.Update(7, FILTER_PARAM_Q, 1) || m.Move(7, 0) || m.ResetEffect(7) {
		t.Error("operation on unknown id succeeded")
	}
	if m.Len() != 1 {
		t.Errorf("Len = %d, want 1", m.Len())
	}
}

func TestMixer_PartialUpdate(t *testing.T) {
	m := newChain(t, EffectFilter, EffectEcho)

	if !m.Update(0, FILTER_PARAM_CUTOFF, 1200) {
		t.Fatal("cutoff update rejected")
	}
	f := m.Effects()[0].Filter()
	if f.Frequency != 1200 || f.Q != DEFAULT_FILTER_Q {
		t.Errorf("filter = %v Hz Q %v, want 1200 Hz Q %v", f.Frequency, f.Q, DEFAULT_FILTER_Q)
	}

	m.Update(1, ECHO_PARAM_WET, 0.3)
	e := m.Effects()[1].Echo()
	if e.Wet != 0.3 || e.Dry != DEFAULT_ECHO_DRY || e.Feedback != DEFAULT_ECHO_FB || e.DelayMs != DEFAULT_ECHO_DELAY {
		t.Errorf("echo = %+v", e)
	}

	if m.Update(1, ECHO_PARAM_FEEDBACK, float32(math.Inf(1))) {
		t.Error("non-finite feedback accepted")
	}
	if m.Update(0, 17, 1) {
		t.Error("unknown filter parameter accepted")
	}
}

func TestMixer_Handle(t *testing.T) {
	m := NewMixer(SAMPLE_RATE, testLogger())
	m.Handle(FxEvent{ID: 4, Type: FX_EVENT_ADD, Param: FX_KIND_FILTER})
	m.Handle(FxEvent{ID: 9, Type: FX_EVENT_ADD, Param: FX_KIND_ECHO})
	m.Handle(FxEvent{ID: 9, Type: FX_EVENT_MOVE, Value: 0})
	m.Handle(FxEvent{ID: 4, Type: FX_EVENT_UPDATE, Param: FILTER_PARAM_Q, Value: 2})
	m.Handle(FxEvent{ID: 4, Type: 99})

	if m.Len() != 2 || m.Effects()[0].ID != 9 {
		t.Fatalf("chain = %+v", m.Effects())
	}
	if q := m.Effects()[1].Filter().Q; q != 2 {
		t.Errorf("Q = %v, want 2", q)
	}

	m.Handle(FxEvent{ID: 9, Type: FX_EVENT_REMOVE})
	if m.Len() != 1 {
		t.Errorf("Len after remove = %d, want 1", m.Len())
	}
}

func TestMixer_ResetClearsTail(t *testing.T) {
	m := newChain(t, EffectEcho)
	configureEcho(t, m, 0, 0.9)
	m.ProcessBlock(squareBurst(441, 0))

	m.ResetEffect(0)
	buf := make([]float32, 2000)
	m.ProcessBlock(buf)
	for i, v := range buf {
		if math.Abs(float64(v)) > 1e-6 {
			t.Fatalf("sample %d = %v after reset, want silence", i, v)
		}
	}
	if e := m.Effects()[0].Echo(); e.Feedback != 0.9 {
		t.Errorf("feedback after reset = %v, want 0.9", e.Feedback)
	}
}

func TestBiquad_Response(t *testing.T) {
	f := NewBiquadFilter(DEFAULT_FILTER_FREQ, DEFAULT_FILTER_Q, SAMPLE_RATE)

	var l, r float32
	for i := 0; i < 5000; i++ {
		l, r = f.Process(1, 1)
	}
	if !approxEqual(l, 1, 1e-3) || !approxEqual(r, 1, 1e-3) {
		t.Errorf("DC gain = %v/%v, want 1", l, r)
	}

	f.Reset()
	var peak float32
	for i := 0; i < 5000; i++ {
		x := float32(1 - 2*(i%2))
		l, _ = f.Process(x, x)
		if i > 1000 {
			peak = max(peak, float32(math.Abs(float64(l))))
		}
	}
	if peak > 0.01 {
		t.Errorf("Nyquist peak = %v, want strong attenuation", peak)
	}
}

func TestBiquad_ClampsUnstableSettings(t *testing.T) {
	f := NewBiquadFilter(100000, 0, SAMPLE_RATE)
	for i := 0; i < 10000; i++ {
		x := float32(1 - 2*(i%2))
		l, r := f.Process(x, x)
		if !isFinite32(l) || !isFinite32(r) || math.Abs(float64(l)) > 1e3 {
			t.Fatalf("sample %d = %v/%v, filter unstable", i, l, r)
		}
	}
}

func TestEcho_Impulse(t *testing.T) {
	e := NewEcho(SAMPLE_RATE)
	e.setParam(ECHO_PARAM_DELAY, 10)
	d := 441

	// Unit impulse: the memory holds the post-mix signal, so the n-th repeat
	// is (Wet*Feedback)^n with no saturation.
	gain := e.Wet * e.Feedback
	for i := 0; i <= 2*d; i++ {
		in := float32(0)
		if i == 0 {
			in = 1
		}
		l, _ := e.Process(in, 0)
		switch i {
		case 0:
			if l != 1 {
				t.Errorf("dry impulse = %v, want 1", l)
			}
		case d:
			if l != gain {
				t.Errorf("first echo = %v, want %v", l, gain)
			}
		case 2 * d:
			if !approxEqual(l, gain*gain, 1e-7) {
				t.Errorf("second echo = %v, want %v", l, gain*gain)
			}
		default:
			if l != 0 {
				t.Fatalf("sample %d = %v between repeats", i, l)
			}
		}
	}
}

func TestEcho_UnitFeedbackDoesNotSaturate(t *testing.T) {
	e := NewEcho(SAMPLE_RATE)
	e.setParam(ECHO_PARAM_DELAY, 10)
	e.setParam(ECHO_PARAM_FEEDBACK, 1)
	e.setParam(ECHO_PARAM_DRY, 1)
	e.setParam(ECHO_PARAM_WET, 1)

	var echo float32
	for i := 0; i <= 441; i++ {
		in := float32(0)
		if i == 0 {
			in = 1
		}
		echo, _ = e.Process(in, 0)
	}
	if echo != 1 {
		t.Errorf("first echo at unit feedback = %v, want 1", echo)
	}
}

func TestEcho_ChannelOffsets(t *testing.T) {
	e := NewEcho(SAMPLE_RATE)
	e.setParam(ECHO_PARAM_DELAY, 10)
	if e.delayL != 441 || e.delayR != 882 {
		t.Errorf("delays = %d/%d, want 441/882", e.delayL, e.delayR)
	}

	e.setParam(ECHO_PARAM_DELAY, 0)
	e.setParam(ECHO_PARAM_RIGHT_OFFSET, 0)
	if e.delayL != 1 || e.delayR != 1 {
		t.Errorf("zero delays = %d/%d, want clamped to 1", e.delayL, e.delayR)
	}

	e.setParam(ECHO_PARAM_DELAY, 60000)
	if last := len(e.memL) - 1; e.delayL != last {
		t.Errorf("long delay = %d, want clamped to %d", e.delayL, last)
	}
}
