// Package audio plays the pre-loaded song once, at a fixed volume.
package audio

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/mp3"
)

// DefaultVolume is the playback volume of the game's credits.
const DefaultVolume = 0.2

var ErrEmptySong = errors.New("empty song data")

// Player holds one decoded song. It is started at most once.
type Player struct {
	streamer beep.StreamSeekCloser
	format   beep.Format
	volume   *effects.Volume

	once sync.Once
}

// Load decodes an MP3 held in memory and prepares the audio device. volume is
// linear in 0..1.
func Load(data []byte, volume float64) (*Player, error) {
	if len(data) == 0 {
		return nil, ErrEmptySong
	}
	streamer, format, err := mp3.Decode(nopCloser{bytes.NewReader(data)})
	if err != nil {
		return nil, fmt.Errorf("decoding song: %w", err)
	}
	if err := initSpeaker(format); err != nil {
		_ = streamer.Close()
		return nil, fmt.Errorf("opening audio device: %w", err)
	}
	return &Player{
		streamer: streamer,
		format:   format,
		volume:   &effects.Volume{Streamer: streamer, Base: 2, Volume: gain(volume), Silent: volume <= 0},
	}, nil
}

// Probe decodes the song header and returns its length without touching the
// audio device.
func Probe(data []byte) (time.Duration, error) {
	if len(data) == 0 {
		return 0, ErrEmptySong
	}
	streamer, format, err := mp3.Decode(nopCloser{bytes.NewReader(data)})
	if err != nil {
		return 0, fmt.Errorf("decoding song: %w", err)
	}
	defer streamer.Close()
	return format.SampleRate.D(streamer.Len()), nil
}

// gain converts a linear volume to the base 2 exponent used by effects.Volume.
func gain(volume float64) float64 {
	if volume <= 0 {
		return 0
	}
	return math.Log2(min(volume, 1))
}

// Duration is the length of the song.
func (p *Player) Duration() time.Duration {
	return p.format.SampleRate.D(p.streamer.Len())
}

// Start begins playback in the background and returns immediately. Calls
// after the first do nothing.
func (p *Player) Start() {
	p.once.Do(func() {
		go func() {
			slog.Debug("song started", "duration", p.Duration())
			play(p.volume, func() { slog.Debug("song finished") })
		}()
	})
}

func (p *Player) Close() error {
	closeSpeaker()
	return p.streamer.Close()
}

// Silent is used when audio is disabled.
type Silent struct{}

func (Silent) Start() {}

// nopCloser wraps a bytes.Reader to implement io.ReadCloser.
type nopCloser struct {
	*bytes.Reader
}

func (nopCloser) Close() error { return nil }
