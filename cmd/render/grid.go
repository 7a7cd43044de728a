package render

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// Grid is an in-memory Surface. The terminal surface draws into one and
// flushes it; tests use it directly.
type Grid struct {
	cols, rows int
	cells      []Cell
	fg, bg     Color
	cursorCol  int
	cursorRow  int
	frames     int
}

// NewGrid returns a blank grid of the given size.
func NewGrid(cols, rows int) *Grid {
	g := &Grid{cols: cols, rows: rows, cells: make([]Cell, cols*rows), fg: Color{255, 255, 255}}
	for i := range g.cells {
		g.cells[i] = Cell{Ch: ' ', FG: g.fg, BG: g.bg}
	}
	return g
}

func (g *Grid) Size() (int, int) {
	return g.cols, g.rows
}

func (g *Grid) SetColors(fg, bg Color) {
	g.fg, g.bg = fg, bg
}

func (g *Grid) inside(col, row int) bool {
	return col >= 0 && row >= 0 && col < g.cols && row < g.rows
}

func (g *Grid) SetCell(col, row int, ch rune) {
	if !g.inside(col, row) {
		return
	}
	g.cells[row*g.cols+col] = Cell{Ch: ch, FG: g.fg, BG: g.bg}
	// A wide glyph covers the next cell too; Ch 0 marks the covered half.
	if runewidth.RuneWidth(ch) == 2 && g.inside(col+1, row) {
		g.cells[row*g.cols+col+1] = Cell{FG: g.fg, BG: g.bg}
	}
}

func (g *Grid) Fill(col, row, width, height int, ch rune) {
	for r := row; r < row+height; r++ {
		for c := col; c < col+width; c++ {
			g.SetCell(c, r, ch)
		}
	}
}

func (g *Grid) DrawLine(fromCol, fromRow, toCol, toRow int, ch rune) {
	switch {
	case fromRow == toRow:
		for c := min(fromCol, toCol); c <= max(fromCol, toCol); c++ {
			g.SetCell(c, fromRow, ch)
		}
	case fromCol == toCol:
		for r := min(fromRow, toRow); r <= max(fromRow, toRow); r++ {
			g.SetCell(fromCol, r, ch)
		}
	}
}

func (g *Grid) ScrollUp(col, row, width, height int) {
	for r := row; r < row+height-1; r++ {
		for c := col; c < col+width; c++ {
			if g.inside(c, r) && g.inside(c, r+1) {
				g.cells[r*g.cols+c] = g.cells[(r+1)*g.cols+c]
			}
		}
	}
	g.Fill(col, row+height-1, width, 1, ' ')
}

func (g *Grid) SetCursor(col, row int) {
	g.cursorCol, g.cursorRow = col, row
}

// Cursor returns the last cursor position set.
func (g *Grid) Cursor() (col, row int) {
	return g.cursorCol, g.cursorRow
}

// Flush counts frames; an in-memory grid is always visible.
func (g *Grid) Flush() error {
	g.frames++
	return nil
}

// Frames returns how many times Flush was called.
func (g *Grid) Frames() int {
	return g.frames
}

func (g *Grid) Closed() bool {
	return false
}

// At returns the cell at col, row. Out of range coordinates return a zero Cell.
func (g *Grid) At(col, row int) Cell {
	if !g.inside(col, row) {
		return Cell{}
	}
	return g.cells[row*g.cols+col]
}

// Row returns the characters of one row.
func (g *Grid) Row(row int) []Cell {
	if row < 0 || row >= g.rows {
		return nil
	}
	return g.cells[row*g.cols : (row+1)*g.cols]
}

// Text returns the characters in [col, col+width) of row as a string.
func (g *Grid) Text(col, row, width int) string {
	var sb strings.Builder
	for c := col; c < col+width; c++ {
		if cell := g.At(c, row); cell.Ch != 0 {
			sb.WriteRune(cell.Ch)
		}
	}
	return sb.String()
}
