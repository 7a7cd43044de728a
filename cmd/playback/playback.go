// Package playback replays a compiled timeline against the wall clock.
package playback

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/gigurra/stillalive/cmd/credits"
)

// Renderer applies one event to the render state.
type Renderer interface {
	Apply(event credits.Event) error
}

// Display makes applied events visible and reports when it went away.
type Display interface {
	Flush() error
	Closed() bool
}

// Stats describes a finished playback.
type Stats struct {
	Dispatched int
	// MaxLag is the largest delay between an event's scheduled time and its
	// dispatch.
	MaxLag time.Duration
	// Interrupted is set when the display closed before the timeline ended.
	Interrupted bool
}

// Scheduler dispatches events at their offset from the start of playback.
// It busy-waits between events, yielding the processor on every spin.
type Scheduler struct {
	Renderer Renderer
	Display  Display

	// Now and Yield default to time.Now and runtime.Gosched.
	Now   func() time.Time
	Yield func()
}

// Run plays timeline from its start. It returns early, without error, when the
// display is closed, cannot be flushed, or ctx is done. Closing is checked once
// per event, after its wait and before it is applied.
func (s *Scheduler) Run(ctx context.Context, timeline credits.Timeline) (Stats, error) {
	now := s.Now
	if now == nil {
		now = time.Now
	}
	yield := s.Yield
	if yield == nil {
		yield = runtime.Gosched
	}

	var stats Stats
	start := now()
	for _, event := range timeline.All() {
		due := time.Duration(event.Time()) * time.Millisecond
		elapsed := now().Sub(start)
		for elapsed < due {
			yield()
			elapsed = now().Sub(start)
		}

		if s.Display.Closed() || ctx.Err() != nil {
			stats.Interrupted = true
			return stats, nil
		}

		if err := s.Renderer.Apply(event); err != nil {
			return stats, fmt.Errorf("applying %v event at %dms: %w", event.Kind(), event.Time(), err)
		}
		if err := s.Display.Flush(); err != nil {
			stats.Interrupted = true
			return stats, nil
		}
		stats.Dispatched++
		stats.MaxLag = max(stats.MaxLag, elapsed-due)
	}
	return stats, nil
}
