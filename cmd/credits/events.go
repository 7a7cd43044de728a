package credits

import (
	"iter"
	"strconv"
)

// Kind identifies the variant of an Event.
type Kind int

const (
	KindCharacter Kind = iota
	KindSimple
	KindCursor
	KindAsciiArt
)

func (k Kind) String() string {
	switch k {
	case KindCharacter:
		return "character"
	case KindSimple:
		return "simple"
	case KindCursor:
		return "cursor"
	case KindAsciiArt:
		return "ascii-art"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Event is one timestamped step of the credits sequence. The set of variants
// is closed: CharacterEvent, SimpleEvent, CursorEvent and AsciiArtEvent.
type Event interface {
	// Time is the offset from playback start in milliseconds.
	Time() int64
	Kind() Kind
	sealed()
}

// CharacterEvent reveals one character in the song panel or the credits panel.
type CharacterEvent struct {
	At         int64
	Char       rune
	ForCredits bool
}

// Action is the payload-free control performed by a SimpleEvent.
type Action int

const (
	ClearScreen Action = iota
	StartSong
)

func (a Action) String() string {
	switch a {
	case ClearScreen:
		return "clear-screen"
	case StartSong:
		return "start-song"
	default:
		return "action(" + strconv.Itoa(int(a)) + ")"
	}
}

type SimpleEvent struct {
	At     int64
	Action Action
}

// CursorEvent moves the blinking cursor between the song and credits panels.
type CursorEvent struct {
	At        int64
	ToCredits bool
}

// AsciiArtEvent replaces the ascii art panel with Art.
type AsciiArtEvent struct {
	At  int64
	Art string
}

func (e CharacterEvent) Time() int64 { return e.At }
func (e SimpleEvent) Time() int64    { return e.At }
func (e CursorEvent) Time() int64    { return e.At }
func (e AsciiArtEvent) Time() int64  { return e.At }

func (CharacterEvent) Kind() Kind { return KindCharacter }
func (SimpleEvent) Kind() Kind    { return KindSimple }
func (CursorEvent) Kind() Kind    { return KindCursor }
func (AsciiArtEvent) Kind() Kind  { return KindAsciiArt }

func (CharacterEvent) sealed() {}
func (SimpleEvent) sealed()    {}
func (CursorEvent) sealed()    {}
func (AsciiArtEvent) sealed()  {}

// Timeline is the compiled, time ordered event sequence. It cannot be modified
// after Compile returns it.
type Timeline struct {
	events []Event
}

// Len returns the number of events.
func (t Timeline) Len() int {
	return len(t.events)
}

// At returns the i-th event.
func (t Timeline) At(i int) Event {
	return t.events[i]
}

// All iterates the events in playback order.
func (t Timeline) All() iter.Seq2[int, Event] {
	return func(yield func(int, Event) bool) {
		for i, e := range t.events {
			if !yield(i, e) {
				return
			}
		}
	}
}

// Events returns a copy of the event slice.
func (t Timeline) Events() []Event {
	out := make([]Event, len(t.events))
	copy(out, t.events)
	return out
}

// End returns the time of the last event, or 0 for an empty timeline.
func (t Timeline) End() int64 {
	return lastTime(t.events)
}

func lastTime(events []Event) int64 {
	if len(events) == 0 {
		return 0
	}
	return events[len(events)-1].Time()
}
