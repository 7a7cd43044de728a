// Package credits turns the game's credits script into a Timeline: every character
// reveal, screen clear, ascii art swap and cursor blink of the ending sequence,
// stamped with its offset from playback start.
package credits

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gigurra/stillalive/cmd/keyvalues"
)

var ErrMalformedScript = errors.New("malformed credits script")

// Params holds the global parameters of the credits script. Times are kept as
// the decimal strings found in the file and parsed during compilation.
type Params struct {
	SongStartTime      string
	ScrollTime         string
	ScrollCreditsStart string
	CursorBlinkTime    string
	Color              string
}

// Script is the in-memory form of credits.txt.
type Script struct {
	Params      Params
	CreditNames []string
	Lyrics      []string
	AsciiArt    []string
}

// RGB is a 24 bit color.
type RGB struct {
	R, G, B uint8
}

// TextColor parses the "r g b" color parameter. Extra components (alpha) are ignored.
func (p Params) TextColor() (RGB, error) {
	fields := strings.Fields(p.Color)
	if len(fields) < 3 {
		return RGB{}, fmt.Errorf("%w: color %q needs three components", ErrMalformedScript, p.Color)
	}
	var c [3]uint8
	for i := range c {
		v, err := strconv.ParseUint(fields[i], 10, 8)
		if err != nil {
			return RGB{}, fmt.Errorf("%w: color %q: %v", ErrMalformedScript, p.Color, err)
		}
		c[i] = uint8(v)
	}
	return RGB{R: c[0], G: c[1], B: c[2]}, nil
}

// ParseScript parses credits.txt text.
func ParseScript(text string) (*Script, error) {
	root, err := keyvalues.Parse(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedScript, err)
	}
	return ScriptFromKeyValues(root)
}

// ScriptFromKeyValues extracts the Script from a parsed credits file. Both the
// document root and its "credits.txt" block are accepted.
func ScriptFromKeyValues(root *keyvalues.Node) (*Script, error) {
	node := root
	if inner, ok := root.Sub("credits.txt"); ok {
		node = inner
	}

	params, ok := node.Sub("CreditsParams")
	if !ok {
		return nil, fmt.Errorf("%w: missing CreditsParams", ErrMalformedScript)
	}
	var script Script
	fields := []struct {
		key  string
		dest *string
	}{
		{"songstarttime", &script.Params.SongStartTime},
		{"scrolltime", &script.Params.ScrollTime},
		{"scrollcreditsstart", &script.Params.ScrollCreditsStart},
		{"cursorblinktime", &script.Params.CursorBlinkTime},
		{"color", &script.Params.Color},
	}
	for _, f := range fields {
		v, ok := params.String(f.key)
		if !ok {
			return nil, fmt.Errorf("%w: missing parameter %s", ErrMalformedScript, f.key)
		}
		*f.dest = v
	}

	names, ok := node.Sub("OutroCreditsNames")
	if !ok {
		return nil, fmt.Errorf("%w: missing OutroCreditsNames", ErrMalformedScript)
	}
	for _, e := range names.Entries {
		script.CreditNames = append(script.CreditNames, e.Key)
	}

	lyrics, ok := node.Sub("OutroSongLyrics")
	if !ok {
		return nil, fmt.Errorf("%w: missing OutroSongLyrics", ErrMalformedScript)
	}
	for _, e := range lyrics.Entries {
		script.Lyrics = append(script.Lyrics, e.Key)
	}

	// Art is optional; an absent block leaves only the empty default bucket.
	if art, ok := node.Sub("OutroAsciiArt"); ok {
		for _, e := range art.Entries {
			script.AsciiArt = append(script.AsciiArt, e.Value)
		}
	}
	return &script, nil
}
