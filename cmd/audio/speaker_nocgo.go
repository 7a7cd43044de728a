//go:build !cgo && !windows && !darwin

package audio

import (
	"github.com/gopxl/beep/v2"
)

// AudioAvailable indicates whether audio playback is supported in this build.
// Audio requires CGO for native sound libraries on this platform.
const AudioAvailable = false

func initSpeaker(beep.Format) error {
	return nil
}

// play reports the song as finished straight away; there is no device.
func play(_ beep.Streamer, onDone func()) {
	onDone()
}

func closeSpeaker() {}
