package credits

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/samber/lo"
)

// TailMillis is how long the cursor keeps blinking after the last reveal.
const TailMillis = 5000

// Compile builds the Timeline for script. It performs no I/O and is
// deterministic: equal inputs give equal timelines.
//
// Four streams are built and merged: the song start marker, the scrolling
// credits, the song lyrics and the cursor blink. A stable sort by time keeps
// that stream order for events sharing a timestamp.
func Compile(script *Script, translations Translations) (Timeline, error) {
	songStart, err := param("songstarttime", script.Params.SongStartTime)
	if err != nil {
		return Timeline{}, err
	}
	startSong := []Event{SimpleEvent{At: songStart, Action: StartSong}}

	creditsStream, err := compileCredits(script)
	if err != nil {
		return Timeline{}, err
	}
	songStream, err := compileSong(script, translations)
	if err != nil {
		return Timeline{}, err
	}

	end := max(lastTime(creditsStream), lastTime(songStream)) + TailMillis
	blinkStream, err := compileBlink(script, end)
	if err != nil {
		return Timeline{}, err
	}

	return Timeline{events: merge(startSong, creditsStream, songStream, blinkStream)}, nil
}

func param(name, value string) (int64, error) {
	ms, err := ParseMillis(value)
	if err != nil {
		return 0, fmt.Errorf("parameter %s: %w", name, err)
	}
	return ms, nil
}

func compileCredits(script *Script) ([]Event, error) {
	start, err := param("scrollcreditsstart", script.Params.ScrollCreditsStart)
	if err != nil {
		return nil, err
	}
	length, err := param("scrolltime", script.Params.ScrollTime)
	if err != nil {
		return nil, err
	}
	lines := lo.Map(script.CreditNames, func(name string, _ int) string {
		if strings.TrimSpace(name) == "" {
			return "\n"
		}
		return name + "\n"
	})
	text := strings.Join(lines, "")
	return typewrite(make([]Event, 0, utf8.RuneCountInString(text)), text, start, length, true), nil
}

func compileSong(script *Script, translations Translations) ([]Event, error) {
	art, err := BuildArtBank(script.AsciiArt)
	if err != nil {
		return nil, err
	}

	var events []Event
	var current int64
	for _, segment := range script.Lyrics {
		ts, payload, err := splitSegment(segment)
		if err != nil {
			return nil, err
		}
		duration, err := ParseMillis(ts)
		if err != nil {
			return nil, fmt.Errorf("segment %q: %w", segment, err)
		}

		idx, payload, hasArt, err := cutArtMarker(payload)
		if err != nil {
			return nil, err
		}
		if hasArt {
			events = append(events, AsciiArtEvent{At: current, Art: art.Get(idx)})
		}

		delay := payload == " "
		clearScreen := payload == "&"
		newline := !delay
		if payload != "^" && !clearScreen && !delay {
			message, suppress, err := expand(payload, translations)
			if err != nil {
				return nil, fmt.Errorf("segment %q: %w", segment, err)
			}
			if suppress {
				newline = false
			}
			events = typewrite(events, message, current, duration, false)
		}

		current += duration
		switch {
		case clearScreen:
			events = append(events, SimpleEvent{At: current, Action: ClearScreen})
		case newline:
			events = append(events, CharacterEvent{At: current, Char: '\n'})
		}
	}
	return events, nil
}

// expand interprets the segment escape language: '*' suppresses the trailing
// newline, "#token" is replaced by its translation, anything else is literal.
// A token runs up to the next space, which is kept.
func expand(payload string, translations Translations) (string, bool, error) {
	var sb strings.Builder
	suppress := false
	for i := 0; i < len(payload); {
		switch payload[i] {
		case '*':
			suppress = true
			i++
		case '#':
			end := strings.IndexByte(payload[i+1:], ' ')
			if end < 0 {
				end = len(payload)
			} else {
				end += i + 1
			}
			text, err := translations.Lookup(payload[i+1 : end])
			if err != nil {
				return "", false, err
			}
			sb.WriteString(text)
			i = end
		default:
			r, size := utf8.DecodeRuneInString(payload[i:])
			sb.WriteRune(r)
			i += size
		}
	}
	return sb.String(), suppress, nil
}

// typewrite spreads the characters of text evenly over [start, start+length]:
// character i of n is revealed at start + length*i/n.
func typewrite(dest []Event, text string, start, length int64, forCredits bool) []Event {
	runes := []rune(text)
	n := int64(len(runes))
	for i, r := range runes {
		dest = append(dest, CharacterEvent{
			At:         start + length*int64(i)/n,
			Char:       r,
			ForCredits: forCredits,
		})
	}
	return dest
}

func compileBlink(script *Script, end int64) ([]Event, error) {
	interval, err := param("cursorblinktime", script.Params.CursorBlinkTime)
	if err != nil {
		return nil, err
	}
	if interval <= 0 {
		return nil, fmt.Errorf("parameter cursorblinktime: %w: must be positive, got %q", ErrMalformedTime, script.Params.CursorBlinkTime)
	}
	var events []Event
	toCredits := true
	for t := interval; t <= end; t += interval {
		events = append(events, CursorEvent{At: t, ToCredits: toCredits})
		toCredits = !toCredits
	}
	return events, nil
}

func merge(streams ...[]Event) []Event {
	all := slices.Concat(streams...)
	slices.SortStableFunc(all, func(a, b Event) int {
		return cmp.Compare(a.Time(), b.Time())
	})
	return all
}
