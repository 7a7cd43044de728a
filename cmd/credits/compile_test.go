package credits

import (
	"errors"
	"slices"
	"testing"
)

func testScript() *Script {
	return &Script{
		Params: Params{
			SongStartTime:      "0.0",
			ScrollTime:         "1.0",
			ScrollCreditsStart: "0.0",
			CursorBlinkTime:    "0.5",
			Color:              "255 176 0",
		},
		CreditNames: []string{"Alice"},
		Lyrics:      []string{"[1.0]Hi"},
	}
}

func TestCompile_EndToEnd(t *testing.T) {
	timeline, err := Compile(testScript(), Translations{})
	if err != nil {
		t.Fatalf("Compile returned error: %v", err)
	}

	want := []Event{
		SimpleEvent{At: 0, Action: StartSong},
		CharacterEvent{At: 0, Char: 'A', ForCredits: true},
		CharacterEvent{At: 0, Char: 'H'},
		CharacterEvent{At: 166, Char: 'l', ForCredits: true},
		CharacterEvent{At: 333, Char: 'i', ForCredits: true},
		CharacterEvent{At: 500, Char: 'c', ForCredits: true},
		CharacterEvent{At: 500, Char: 'i'},
		CursorEvent{At: 500, ToCredits: true},
		CharacterEvent{At: 666, Char: 'e', ForCredits: true},
		CharacterEvent{At: 833, Char: '\n', ForCredits: true},
		CharacterEvent{At: 1000, Char: '\n'},
		CursorEvent{At: 1000, ToCredits: false},
	}
	for ts, toCredits := int64(1500), true; ts <= 6000; ts, toCredits = ts+500, !toCredits {
		want = append(want, CursorEvent{At: ts, ToCredits: toCredits})
	}

	got := timeline.Events()
	if !slices.Equal(got, want) {
		t.Fatalf("timeline mismatch\n got: %v\nwant: %v", got, want)
	}
	if timeline.End() != 6000 {
		t.Errorf("End() = %d, want 6000", timeline.End())
	}
}

func TestCompile_Deterministic(t *testing.T) {
	script := testScript()
	script.CreditNames = []string{"Alice", "", "Bob", "  "}
	script.Lyrics = []string{"[0.7]<<<1>>>Forms #form*", "[0.3] ", "[1.25]^", "[2.0]&", "[0.01]Done"}
	script.AsciiArt = []string{"[1.0]/\\", "[1.5]\\/"}
	tr := Translations{"form": "FORM-29827281-12"}

	first, err := Compile(script, tr)
	if err != nil {
		t.Fatalf("Compile returned error: %v", err)
	}
	second, err := Compile(script, tr)
	if err != nil {
		t.Fatalf("Compile returned error: %v", err)
	}
	if !slices.Equal(first.Events(), second.Events()) {
		t.Error("compiling the same inputs twice gave different timelines")
	}

	for i := 1; i < first.Len(); i++ {
		if first.At(i-1).Time() > first.At(i).Time() {
			t.Fatalf("events %d and %d out of order: %d > %d", i-1, i, first.At(i-1).Time(), first.At(i).Time())
		}
	}
}

func TestTypewrite_ProportionalDistribution(t *testing.T) {
	texts := []string{"a", "ab", "abcdefg"}
	durations := []int64{0, 1000, 3333}
	const start = 250

	for _, text := range texts {
		for _, d := range durations {
			events := typewrite(nil, text, start, d, false)
			n := int64(len(text))
			if int64(len(events)) != n {
				t.Fatalf("typewrite(%q, %d) produced %d events, want %d", text, d, len(events), n)
			}
			for i, e := range events {
				want := start + d*int64(i)/n
				if e.Time() != want {
					t.Errorf("typewrite(%q, %d)[%d] at %d, want %d", text, d, i, e.Time(), want)
				}
				if ce := e.(CharacterEvent); ce.Char != rune(text[i]) || ce.ForCredits {
					t.Errorf("typewrite(%q, %d)[%d] = %+v", text, d, i, ce)
				}
			}
		}
	}
}

func TestCompileSong_EscapeLanguage(t *testing.T) {
	script := testScript()
	script.Lyrics = []string{"[2.5]#greet there*"}

	events, err := compileSong(script, Translations{"greet": "Hi"})
	if err != nil {
		t.Fatalf("compileSong returned error: %v", err)
	}

	var message []rune
	for _, e := range events {
		ce, ok := e.(CharacterEvent)
		if !ok {
			t.Fatalf("unexpected event %+v", e)
		}
		message = append(message, ce.Char)
	}
	if string(message) != "Hi there" {
		t.Errorf("message = %q, want %q", string(message), "Hi there")
	}
	// 8 characters over 2500ms, no trailing newline
	if last := events[len(events)-1].Time(); last != 2500*7/8 {
		t.Errorf("last character at %d, want %d", last, 2500*7/8)
	}
}

func TestCompileSong_SpecialPayloads(t *testing.T) {
	tests := []struct {
		name  string
		lyric string
		want  []Event
	}{
		{"clear screen", "[1.0]&", []Event{SimpleEvent{At: 1000, Action: ClearScreen}}},
		{"pure delay", "[1.0] ", nil},
		{"newline only", "[1.0]^", []Event{CharacterEvent{At: 1000, Char: '\n'}}},
		{"suppressed empty", "[1.0]*", nil},
		{"empty payload", "[0.5]", []Event{CharacterEvent{At: 500, Char: '\n'}}},
		{"text", "[0.2]ab", []Event{
			CharacterEvent{At: 0, Char: 'a'},
			CharacterEvent{At: 100, Char: 'b'},
			CharacterEvent{At: 200, Char: '\n'},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			script := testScript()
			script.Lyrics = []string{tt.lyric}
			got, err := compileSong(script, Translations{})
			if err != nil {
				t.Fatalf("compileSong(%q) returned error: %v", tt.lyric, err)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("compileSong(%q) = %v, want %v", tt.lyric, got, tt.want)
			}
		})
	}
}

func TestCompileSong_AccumulatesTime(t *testing.T) {
	script := testScript()
	script.Lyrics = []string{"[1.5] ", "[0.25]&", "[0.1]x*"}
	got, err := compileSong(script, Translations{})
	if err != nil {
		t.Fatalf("compileSong returned error: %v", err)
	}
	want := []Event{
		SimpleEvent{At: 1750, Action: ClearScreen},
		CharacterEvent{At: 1750, Char: 'x'},
	}
	if !slices.Equal(got, want) {
		t.Errorf("compileSong = %v, want %v", got, want)
	}
}

func TestCompileSong_AsciiArt(t *testing.T) {
	script := testScript()
	script.AsciiArt = []string{"[2.0]top", "[2.9]bottom", "[0.4]zero"}
	script.Lyrics = []string{"[1.0] ", "[0.5]<<<2>>> ", "[0.5]<<<7>>>^", "[0.5]<<<0>>> "}

	got, err := compileSong(script, Translations{})
	if err != nil {
		t.Fatalf("compileSong returned error: %v", err)
	}
	want := []Event{
		AsciiArtEvent{At: 1000, Art: "top\nbottom"},
		AsciiArtEvent{At: 1500, Art: ""},
		CharacterEvent{At: 2000, Char: '\n'},
		AsciiArtEvent{At: 2000, Art: "\nzero"},
	}
	if !slices.Equal(got, want) {
		t.Errorf("compileSong = %v, want %v", got, want)
	}
}

func TestCompileBlink(t *testing.T) {
	script := testScript()
	got, err := compileBlink(script, 2000)
	if err != nil {
		t.Fatalf("compileBlink returned error: %v", err)
	}
	want := []Event{
		CursorEvent{At: 500, ToCredits: true},
		CursorEvent{At: 1000, ToCredits: false},
		CursorEvent{At: 1500, ToCredits: true},
		CursorEvent{At: 2000, ToCredits: false},
	}
	if !slices.Equal(got, want) {
		t.Errorf("compileBlink = %v, want %v", got, want)
	}

	script.Params.CursorBlinkTime = "0"
	if _, err := compileBlink(script, 2000); !errors.Is(err, ErrMalformedTime) {
		t.Errorf("zero blink interval error = %v, want %v", err, ErrMalformedTime)
	}
}

func TestCompile_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Script)
		wantErr error
	}{
		{"bad song start", func(s *Script) { s.Params.SongStartTime = "soon" }, ErrMalformedTime},
		{"bad scroll time", func(s *Script) { s.Params.ScrollTime = "1,5" }, ErrMalformedTime},
		{"segment without bracket", func(s *Script) { s.Lyrics = []string{"1.0]x"} }, ErrMalformedScript},
		{"segment bad duration", func(s *Script) { s.Lyrics = []string{"[x]x"} }, ErrMalformedTime},
		{"unknown token", func(s *Script) { s.Lyrics = []string{"[1]#nope"} }, ErrUnknownToken},
		{"bad art index", func(s *Script) { s.Lyrics = []string{"[1]<<<x>>>"} }, ErrMalformedScript},
		{"unterminated art", func(s *Script) { s.Lyrics = []string{"[1]<<<1"} }, ErrMalformedScript},
		{"bad art time", func(s *Script) { s.AsciiArt = []string{"[?]x"} }, ErrMalformedTime},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			script := testScript()
			tt.mutate(script)
			_, err := Compile(script, Translations{})
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Compile error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
