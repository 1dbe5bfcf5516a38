//go:build headless

package main

import "errors"

func init() {
	compiledFeatures = append(compiledFeatures, "audio:headless")
}

var errNoAudioDevice = errors.New("audio device unavailable in headless build")

// OtoPlayer is absent from headless builds; callers fall back to HeadlessPlayer.
type OtoPlayer struct {
	HeadlessPlayer
}

func NewOtoPlayer(sampleRate int) (*OtoPlayer, error) {
	return nil, errNoAudioDevice
}
