package credits

import (
	"errors"
	"slices"
	"testing"

	"golang.org/x/text/encoding/unicode"
)

const sampleCredits = `"credits.txt"
{
	"CreditsParams"
	{
		"songstarttime"       "0.5"
		"scrolltime"          "160"
		"scrollcreditsstart"  "0.0"
		"cursorblinktime"     "0.25"
		"color"               "255 176 0 255"
	}
	"OutroCreditsNames"
	{
		"Aperture Science"  "1"
		" "                 "1"
		"GLaDOS"            "1"
	}
	"OutroSongLyrics"
	{
		"[1.0]Forms FORM-29827281-12:"  ""
		"[0.5]<<<1>>>#still_alive"      ""
	}
	"OutroAsciiArt"
	{
		"ascii"   "[1.0]\\o/"
		"ascii"   "[1.2] | "
	}
}
`

func TestParseScript(t *testing.T) {
	script, err := ParseScript(sampleCredits)
	if err != nil {
		t.Fatalf("ParseScript returned error: %v", err)
	}
	wantParams := Params{
		SongStartTime:      "0.5",
		ScrollTime:         "160",
		ScrollCreditsStart: "0.0",
		CursorBlinkTime:    "0.25",
		Color:              "255 176 0 255",
	}
	if script.Params != wantParams {
		t.Errorf("Params = %+v, want %+v", script.Params, wantParams)
	}
	if want := []string{"Aperture Science", " ", "GLaDOS"}; !slices.Equal(script.CreditNames, want) {
		t.Errorf("CreditNames = %q, want %q", script.CreditNames, want)
	}
	if want := []string{"[1.0]Forms FORM-29827281-12:", "[0.5]<<<1>>>#still_alive"}; !slices.Equal(script.Lyrics, want) {
		t.Errorf("Lyrics = %q, want %q", script.Lyrics, want)
	}
	if want := []string{"[1.0]\\o/", "[1.2] | "}; !slices.Equal(script.AsciiArt, want) {
		t.Errorf("AsciiArt = %q, want %q", script.AsciiArt, want)
	}

	timeline, err := Compile(script, Translations{"still_alive": "Still Alive"})
	if err != nil {
		t.Fatalf("Compile returned error: %v", err)
	}
	if first := timeline.At(0); first != (CharacterEvent{At: 0, Char: 'A', ForCredits: true}) {
		t.Errorf("first event = %+v, want the first credits character", first)
	}
	var art []string
	for _, e := range timeline.All() {
		if a, ok := e.(AsciiArtEvent); ok {
			art = append(art, a.Art)
		}
	}
	if want := []string{"\\o/\n | "}; !slices.Equal(art, want) {
		t.Errorf("art events = %q, want %q", art, want)
	}
}

func TestScriptFromKeyValues_Missing(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"no params", `"credits.txt" { "OutroCreditsNames" {} "OutroSongLyrics" {} }`},
		{"missing parameter", `"credits.txt" { "CreditsParams" { "songstarttime" "0" } "OutroCreditsNames" {} "OutroSongLyrics" {} }`},
		{"unbalanced", `"credits.txt" {`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScript(tt.text)
			if !errors.Is(err, ErrMalformedScript) {
				t.Errorf("ParseScript error = %v, want %v", err, ErrMalformedScript)
			}
		})
	}
}

func TestParams_TextColor(t *testing.T) {
	tests := []struct {
		color   string
		want    RGB
		wantErr bool
	}{
		{"255 176 0", RGB{255, 176, 0}, false},
		{"1 2 3 255", RGB{1, 2, 3}, false},
		{"1 2", RGB{}, true},
		{"1 2 300", RGB{}, true},
		{"a b c", RGB{}, true},
	}
	for _, tt := range tests {
		got, err := Params{Color: tt.color}.TextColor()
		if (err != nil) != tt.wantErr {
			t.Errorf("TextColor(%q) error = %v, wantErr %v", tt.color, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("TextColor(%q) = %+v, want %+v", tt.color, got, tt.want)
		}
	}
}

func TestParseMillis(t *testing.T) {
	tests := []struct {
		input   string
		want    int64
		wantErr bool
	}{
		{"0", 0, false},
		{"0.0", 0, false},
		{"12.345", 12345, false},
		{"1.0005", 1000, false},
		{"0.0019", 1, false},
		{"160", 160000, false},
		{"2.675", 2675, false},
		{"1e1", 10000, false},
		{"", 0, true},
		{"1/2", 0, true},
		{" 1", 0, true},
		{"-1", 0, true},
		{"abc", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseMillis(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseMillis(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if err != nil && !errors.Is(err, ErrMalformedTime) {
			t.Errorf("ParseMillis(%q) error = %v, want %v", tt.input, err, ErrMalformedTime)
		}
		if got != tt.want {
			t.Errorf("ParseMillis(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

func TestLoadTranslations(t *testing.T) {
	text := "\"lang\"\n{\n\"Language\" \"English\"\n\"Tokens\"\n{\n\"greet\" \"Hi\"\n\"[english]greet\" \"Hi\"\n\"greet\" \"Hello\"\n}\n}\n"

	utf16, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().Bytes([]byte(text))
	if err != nil {
		t.Fatalf("encoding fixture: %v", err)
	}
	utf16NoBOM, err := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder().Bytes([]byte(text))
	if err != nil {
		t.Fatalf("encoding fixture: %v", err)
	}

	for name, data := range map[string][]byte{
		"utf8":           []byte(text),
		"utf8-bom":       append([]byte{0xEF, 0xBB, 0xBF}, text...),
		"utf16le":        utf16,
		"utf16le-no-bom": utf16NoBOM,
	} {
		t.Run(name, func(t *testing.T) {
			tr, err := LoadTranslations(data)
			if err != nil {
				t.Fatalf("LoadTranslations returned error: %v", err)
			}
			if got, _ := tr.Lookup("greet"); got != "Hello" {
				t.Errorf("Lookup(greet) = %q, want Hello", got)
			}
			if _, err := tr.Lookup("missing"); !errors.Is(err, ErrUnknownToken) {
				t.Errorf("Lookup(missing) error = %v, want %v", err, ErrUnknownToken)
			}
		})
	}

	if _, err := LoadTranslations([]byte(`"lang" { }`)); err == nil {
		t.Error("LoadTranslations without Tokens block returned no error")
	}
}
