//go:build linux && !headless

// audio_backend_alsa.go - ALSA audio output, pulled from the sample ring

/*
 ██▓ ███▄    █ ▄▄▄█████▓ █    ██  ██▓▄▄▄█████▓ ██▓ ▒█████   ███▄    █    ▓█████  ███▄    █   ▄████  ██▓ ███▄    █ ▓█████
▓██▒ ██ ▀█   █ ▓  ██▒ ▓▒ ██  ▓██▒▓██▒▓  ██▒ ▓▒▓██▒▒██▒  ██▒ ██ ▀█   █    ▓█   ▀  ██ ▀█   █  ██▒ ▀█▒▓██▒ ██ ▀█   █ ▓█   ▀
▒██▒▓██  ▀█ ██▒▒ ▓██░ ▒░▓██  ▒██░▒██▒▒ ▓██░ ▒░▒██▒▒██░  ██▒▓██  ▀█ ██▒   ▒███   ▓██  ▀█ ██▒▒██░▄▄▄░▒██▒▓██  ▀█ ██▒▒███
░██░▓██▒  ▐▌██▒░ ▓██▓ ░ ▓▓█  ░██░░██░░ ▓██▓ ░ ░██░▒██   ██░▓██▒  ▐▌██▒   ▒▓█  ▄ ▓██▒  ▐▌██▒░▓█  ██▓░██░▓██▒  ▐▌██▒▒▓█  ▄
░██░▒██░   ▓██░  ▒██▒ ░ ▒▒█████▓ ░██░  ▒██▒ ░ ░██░░ ████▓▒░▒██░   ▓██░   ░▒████▒▒██░   ▓██░░▒▓███▀▒░██░▒██░   ▓██░░▒████▒
░▓  ░ ▒░   ▒ ▒   ▒ ░░   ░▒▓▒ ▒ ▒ ░▓    ▒ ░░   ░▓  ░ ▒░▒░▒░ ░ ▒░   ▒ ▒    ░░ ▒░ ░░ ▒░   ▒ ▒  ░▒   ▒ ░▓  ░ ▒░   ▒ ▒ ░░ ▒░ ░
 ▒ ░░ ░░   ░ ▒░    ░    ░░▒░ ░ ░  ▒ ░    ░     ▒ ░  ░ ▒ ▒░ ░ ░░   ░ ▒░    ░ ░  ░░ ░░   ░ ▒░  ░   ░  ▒ ░░ ░░   ░ ▒░ ░ ░  ░
 ▒ ░   ░   ░ ░   ░       ░░░ ░ ░  ▒ ░  ░       ▒ ░░ ░ ░ ▒     ░   ░ ░       ░      ░   ░ ░ ░ ░   ░  ▒ ░   ░   ░ ░    ░
 ░           ░             ░      ░            ░      ░ ░           ░       ░  ░         ░       ░  ░           ░    ░  ░

(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/IntuitionSynth
License: GPLv3 or later
*/

package main

/*
#cgo LDFLAGS: -lasound
#cgo CFLAGS: -O2
#include <alsa/asoundlib.h>
#include <stdlib.h>

static snd_pcm_t* openPCM(const char* device, int* err) {
    snd_pcm_t* handle;
    *err = snd_pcm_open(&handle, device, SND_PCM_STREAM_PLAYBACK, 0);
    return handle;
}

static int setupPCM(snd_pcm_t* handle, unsigned int rate, unsigned int channels) {
    snd_pcm_hw_params_t* params;
    int err;

    snd_pcm_hw_params_alloca(&params);
    err = snd_pcm_hw_params_any(handle, params);
    if (err < 0) return err;

    err = snd_pcm_hw_params_set_access(handle, params, SND_PCM_ACCESS_RW_INTERLEAVED);
    if (err < 0) return err;

    err = snd_pcm_hw_params_set_format(handle, params, SND_PCM_FORMAT_FLOAT_LE);
    if (err < 0) return err;

    err = snd_pcm_hw_params_set_channels(handle, params, channels);
    if (err < 0) return err;

    err = snd_pcm_hw_params_set_rate(handle, params, rate, 0);
    if (err < 0) return err;

    err = snd_pcm_hw_params(handle, params);
    if (err < 0) return err;

    return snd_pcm_prepare(handle);
}

static int writePCM(snd_pcm_t* handle, float* buffer, int frames) {
    return snd_pcm_writei(handle, buffer, frames);
}

static void closePCM(snd_pcm_t* handle) {
    if (handle != NULL) {
        snd_pcm_drain(handle);
        snd_pcm_close(handle);
    }
}
*/
import "C"
import (
	"fmt"
	"log/slog"
	"sync"
	"unsafe"
)

func init() {
	compiledFeatures = append(compiledFeatures, "audio:alsa")
}

const alsaBlockFrames = 512

// ALSAPlayer writes blocking interleaved float frames; snd_pcm_writei paces
// the pull loop.
type ALSAPlayer struct {
	handle  *C.snd_pcm_t
	source  *RingConsumer
	samples []float32
	started bool
	err     error
	stopCh  chan struct{}
	done    chan struct{}
	log     *slog.Logger
	mutex   sync.Mutex
}

func NewALSAPlayer(sampleRate int, log *slog.Logger) (*ALSAPlayer, error) {
	device := C.CString("default")
	defer C.free(unsafe.Pointer(device))

	var err C.int
	handle := C.openPCM(device, &err)
	if err < 0 {
		return nil, fmt.Errorf("failed to open PCM device: %s", C.GoString(C.snd_strerror(err)))
	}

	if err = C.setupPCM(handle, C.uint(sampleRate), C.uint(CHANNELS)); err < 0 {
		C.closePCM(handle)
		return nil, fmt.Errorf("failed to setup PCM: %s", C.GoString(C.snd_strerror(err)))
	}

	return &ALSAPlayer{
		handle:  handle,
		samples: make([]float32, alsaBlockFrames*CHANNELS),
		log:     log,
	}, nil
}

func (ap *ALSAPlayer) SetupPlayer(source *RingConsumer) {
	ap.mutex.Lock()
	defer ap.mutex.Unlock()
	ap.source = source
}

func (ap *ALSAPlayer) IsStarted() bool {
	ap.mutex.Lock()
	defer ap.mutex.Unlock()
	return ap.started
}

// Err is the write error that stopped playback, if any.
func (ap *ALSAPlayer) Err() error {
	ap.mutex.Lock()
	defer ap.mutex.Unlock()
	return ap.err
}

// write sends one block, recovering once from an underrun.
func (ap *ALSAPlayer) write(samples []float32) error {
	frames := C.int(len(samples) / CHANNELS)
	n := C.writePCM(ap.handle, (*C.float)(unsafe.Pointer(&samples[0])), frames)
	if n == -C.EPIPE {
		C.snd_pcm_prepare(ap.handle)
		n = C.writePCM(ap.handle, (*C.float)(unsafe.Pointer(&samples[0])), frames)
	}
	if n < 0 {
		return fmt.Errorf("write failed: %s", C.GoString(C.snd_strerror(C.int(n))))
	}
	return nil
}

func (ap *ALSAPlayer) run(source *RingConsumer, stopCh, done chan struct{}) {
	defer close(done)
	for {
		select {
		case <-stopCh:
			return
		default:
		}
		source.Read(ap.samples)
		if err := ap.write(ap.samples); err != nil {
			ap.log.Error("alsa playback stopped", "err", err)
			ap.mutex.Lock()
			ap.err = err
			ap.started = false
			ap.mutex.Unlock()
			return
		}
	}
}

func (ap *ALSAPlayer) Start() {
	ap.mutex.Lock()
	defer ap.mutex.Unlock()

	if ap.started || ap.source == nil || ap.handle == nil {
		return
	}
	ap.started = true
	ap.err = nil
	ap.stopCh = make(chan struct{})
	ap.done = make(chan struct{})
	ap.source.Request()
	go ap.run(ap.source, ap.stopCh, ap.done)
}

func (ap *ALSAPlayer) Stop() {
	ap.mutex.Lock()
	if !ap.started {
		ap.mutex.Unlock()
		return
	}
	ap.started = false
	close(ap.stopCh)
	done := ap.done
	ap.mutex.Unlock()
	<-done
}

func (ap *ALSAPlayer) Close() {
	ap.Stop()
	ap.mutex.Lock()
	defer ap.mutex.Unlock()

	if ap.handle != nil {
		C.closePCM(ap.handle)
		ap.handle = nil
	}
}
