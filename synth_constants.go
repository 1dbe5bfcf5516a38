// synth_constants.go - Shared memory layout and control protocol constants

package main

// Audio control block: 3 int32 words then the float32 ring buffer
const (
	FLAG_INDEX         = 0
	READ_INDEX         = 1
	WRITE_INDEX        = 2
	HEADERS_SIZE_BYTES = 3 * 4
)

// Flag word values
const (
	FLAG_IDLE    = 0 // audio thread idle / result consumed
	FLAG_REQUEST = 1 // consumer wants more samples
)

// Queue blocks: write_idx word then read_idx word
const (
	QUEUE_WRITE_INDEX  = 0
	QUEUE_READ_INDEX   = 1
	QUEUE_HEADER_BYTES = 2 * 4
)

const (
	NOTE_EVENT_SIZE     = 4
	NOTE_QUEUE_CAPACITY = 64

	OSC_EVENT_SIZE     = 8
	OSC_QUEUE_CAPACITY = 100

	FX_INT_FIELDS      = 3 // fx_id, event_type, param_index
	FX_FLOAT_FIELDS    = 1 // value
	FX_EVENT_SIZE      = (FX_INT_FIELDS + FX_FLOAT_FIELDS) * 4
	FX_QUEUE_CAPACITY  = 64
	MIN_QUEUE_CAPACITY = 2
)

// Note event types
const (
	NOTE_EVENT_OFF     = 0
	NOTE_EVENT_ON      = 1
	NOTE_EVENT_ALL_OFF = 2 // release every voice
	NOTE_EVENT_PANIC   = 3 // purge voices and clear effect memory
)

// Oscillator event types
const (
	OSC_EVENT_ADD    = 0
	OSC_EVENT_REMOVE = 1
	OSC_EVENT_UPDATE = 2
)

// Oscillator update keys. Numbering is fixed by the control side.
const (
	OSC_KEY_NONE      = 0
	OSC_KEY_ATTACK    = 1
	OSC_KEY_RELEASE   = 2
	OSC_KEY_DECAY     = 3
	OSC_KEY_SUSTAIN   = 4
	OSC_KEY_GAIN      = 5
	OSC_KEY_DELAY     = 6
	OSC_KEY_PITCH     = 7
	OSC_KEY_PHASE     = 8
	OSC_KEY_WAVEFORM  = 9
	OSC_KEY_PAN       = 10
	OSC_LEVEL_SCALING = 0.1 // sustain and gain arrive as 0-10
)

// Effect event types
const (
	FX_EVENT_ADD    = 0
	FX_EVENT_REMOVE = 1
	FX_EVENT_UPDATE = 2
	FX_EVENT_MOVE   = 3
	FX_EVENT_RESET  = 4
)

// Effect kinds, carried in param_index of FX_EVENT_ADD
const (
	FX_KIND_FILTER = 0
	FX_KIND_ECHO   = 1
)

// Effect parameters
const (
	FILTER_PARAM_CUTOFF = 0
	FILTER_PARAM_Q      = 1

	ECHO_PARAM_DELAY        = 0
	ECHO_PARAM_FEEDBACK     = 1
	ECHO_PARAM_DRY          = 2
	ECHO_PARAM_WET          = 3
	ECHO_PARAM_LEFT_OFFSET  = 4
	ECHO_PARAM_RIGHT_OFFSET = 5
)

const (
	SAMPLE_RATE        = 44100
	FREQ_A4            = 440.0
	MIDI_NOTE_A4       = 69
	MIDI_MAX_VALUE     = 127
	OUTPUT_ATTENUATION = 0.1
	RING_BUFFER_SIZE   = 2048 * 2
	CHANNELS           = 2
)

// Oscillator factory defaults
const (
	DEFAULT_ENV_MS       = 500
	DEFAULT_SUSTAIN      = 0.5
	DEFAULT_GAIN         = 0.5
	DEFAULT_PAN_GAIN     = 1.0
	DEFAULT_FREQ_SHIFT   = 1.0
	MIN_ENV_LENGTH       = 1         // denominator clamp, samples
	MAX_ENV_LENGTH       = 1<<32 - 1 // stage ceiling, samples
	ECHO_MEMORY_SECONDS  = 10
	MIN_FILTER_Q         = 0.01
	DEFAULT_FILTER_FREQ  = 800.0
	DEFAULT_FILTER_Q     = 0.7
	DEFAULT_ECHO_DELAY   = 300.0 // ms
	DEFAULT_ECHO_FB      = 0.5
	DEFAULT_ECHO_DRY     = 1.0
	DEFAULT_ECHO_WET     = 1.0
	DEFAULT_ECHO_LEFT_MS = 0.0
	DEFAULT_ECHO_RIGHT   = 10.0 // ms
)
