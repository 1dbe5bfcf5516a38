// fx_echo.go - Stereo feedback delay with per-channel offsets

package main

// Echo keeps ECHO_MEMORY_SECONDS of its own post-mix output and feeds it back.
type Echo struct {
	DelayMs       float32
	Feedback      float32
	Dry           float32
	Wet           float32
	LeftOffsetMs  float32
	RightOffsetMs float32

	memL, memR     []float32
	pos            int
	delayL, delayR int
	rate           int
}

func NewEcho(sampleRate int) *Echo {
	n := ECHO_MEMORY_SECONDS * sampleRate
	e := &Echo{
		DelayMs:       DEFAULT_ECHO_DELAY,
		Feedback:      DEFAULT_ECHO_FB,
		Dry:           DEFAULT_ECHO_DRY,
		Wet:           DEFAULT_ECHO_WET,
		LeftOffsetMs:  DEFAULT_ECHO_LEFT_MS,
		RightOffsetMs: DEFAULT_ECHO_RIGHT,
		memL:          make([]float32, n),
		memR:          make([]float32, n),
		rate:          sampleRate,
	}
	e.retime()
	return e
}

// retime converts the millisecond settings into read distances, clamped to
// [1, memory-1] samples.
func (e *Echo) retime() {
	n := len(e.memL)
	conv := func(ms float32) int {
		d := int(float64(ms) / 1000 * float64(e.rate))
		return min(max(d, 1), n-1)
	}
	e.delayL = conv(e.DelayMs + e.LeftOffsetMs)
	e.delayR = conv(e.DelayMs + e.RightOffsetMs)
}

func (e *Echo) setParam(param int32, v float32) bool {
	if !finite32(v) {
		return false
	}
	switch param {
	case ECHO_PARAM_DELAY:
		e.DelayMs = max(v, 0)
	case ECHO_PARAM_FEEDBACK:
		e.Feedback = clamp32(v, 0, 1)
		return true
	case ECHO_PARAM_DRY:
		e.Dry = v
		return true
	case ECHO_PARAM_WET:
		e.Wet = v
		return true
	case ECHO_PARAM_LEFT_OFFSET:
		e.LeftOffsetMs = v
	case ECHO_PARAM_RIGHT_OFFSET:
		e.RightOffsetMs = v
	default:
		return false
	}
	e.retime()
	return true
}

func (e *Echo) Process(inL, inR float32) (float32, float32) {
	n := len(e.memL)
	dl := e.memL[(e.pos-e.delayL+n)%n]
	dr := e.memR[(e.pos-e.delayR+n)%n]

	outL := e.Dry*inL + e.Wet*e.Feedback*dl
	outR := e.Dry*inR + e.Wet*e.Feedback*dr

	// The post-mix signal feeds back, so repeats compound.
	e.memL[e.pos] = outL
	e.memR[e.pos] = outR
	e.pos++
	if e.pos == n {
		e.pos = 0
	}
	return outL, outR
}
