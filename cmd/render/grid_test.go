package render

import (
	"bytes"
	"testing"

	"github.com/muesli/termenv"
)

func TestGrid_DrawLine(t *testing.T) {
	g := NewGrid(5, 4)
	g.DrawLine(3, 0, 1, 0, '-')
	g.DrawLine(4, 3, 4, 1, '|')
	g.DrawLine(0, 0, 2, 2, 'x') // diagonal lines are not drawn

	want := []string{
		" --- ",
		"    |",
		"    |",
		"    |",
	}
	for row, w := range want {
		if got := g.Text(0, row, 5); got != w {
			t.Errorf("row %d = %q, want %q", row, got, w)
		}
	}
}

func TestGrid_ScrollUp(t *testing.T) {
	g := NewGrid(4, 4)
	for row, s := range []string{"aaaa", "bbbb", "cccc", "dddd"} {
		for col, r := range s {
			g.SetCell(col, row, r)
		}
	}
	g.ScrollUp(1, 1, 2, 3)

	want := []string{"aaaa", "bccb", "cddc", "d  d"}
	for row, w := range want {
		if got := g.Text(0, row, 4); got != w {
			t.Errorf("row %d = %q, want %q", row, got, w)
		}
	}
}

func TestGrid_OutOfRange(t *testing.T) {
	g := NewGrid(2, 2)
	g.SetCell(-1, 0, 'x')
	g.SetCell(2, 1, 'x')
	g.Fill(1, 1, 5, 5, 'y')
	if got := g.Text(0, 0, 2) + g.Text(0, 1, 2); got != "   y" {
		t.Errorf("grid = %q, want %q", got, "   y")
	}
	if got := g.At(9, 9); got != (Cell{}) {
		t.Errorf("At(9,9) = %+v, want zero cell", got)
	}
}

func TestGrid_Colors(t *testing.T) {
	g := NewGrid(2, 1)
	fg := Color{1, 2, 3}
	g.SetColors(fg, Black)
	g.SetCell(1, 0, 'z')
	if got := g.At(1, 0); got != (Cell{Ch: 'z', FG: fg, BG: Black}) {
		t.Errorf("At(1,0) = %+v", got)
	}
	if got := g.At(0, 0).FG; got == fg {
		t.Error("SetColors changed cells that were not drawn")
	}
}

func TestQuitKey(t *testing.T) {
	tests := []struct {
		input []byte
		want  bool
	}{
		{[]byte("q"), true},
		{[]byte("Q"), true},
		{[]byte{keyCtrlC}, true},
		{[]byte{keyEscape}, true},
		{[]byte("\x1b[A"), false},
		{[]byte("x"), false},
		{nil, false},
	}
	for _, tt := range tests {
		if got := quitKey(tt.input); got != tt.want {
			t.Errorf("quitKey(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestTerminal_WriteRow(t *testing.T) {
	var buf bytes.Buffer
	term := &Terminal{out: termenv.NewOutput(&buf, termenv.WithProfile(termenv.Ascii))}

	line := []Cell{{Ch: 'a'}, {Ch: '世'}, {}, {Ch: 'b', FG: amber}}
	term.writeRow(&buf, line)
	if got := buf.String(); got != "a世b" {
		t.Errorf("writeRow = %q, want %q", got, "a世b")
	}
}
