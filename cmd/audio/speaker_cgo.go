//go:build cgo || windows || darwin

package audio

import (
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"
)

// AudioAvailable indicates whether audio playback is supported in this build.
const AudioAvailable = true

func initSpeaker(format beep.Format) error {
	return speaker.Init(format.SampleRate, format.SampleRate.N(time.Second/10))
}

func play(s beep.Streamer, onDone func()) {
	speaker.Play(beep.Seq(s, beep.Callback(onDone)))
}

func closeSpeaker() {
	speaker.Clear()
	speaker.Close()
}
