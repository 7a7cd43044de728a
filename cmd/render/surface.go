// Package render draws the two-pane credits screen: the song panel on the left,
// the scrolling credits and ascii art panels on the right.
package render

// Color is a 24 bit terminal color.
type Color struct {
	R, G, B uint8
}

var Black = Color{}

// Cell is one character cell of a Surface.
type Cell struct {
	Ch rune
	FG Color
	BG Color
}

// Surface is a fixed size character grid. Drawing calls use the current pen
// colors; coordinates outside the grid are ignored.
type Surface interface {
	Size() (cols, rows int)
	SetColors(fg, bg Color)
	SetCell(col, row int, ch rune)
	Fill(col, row, width, height int, ch rune)
	// DrawLine draws a horizontal or vertical line, endpoints inclusive.
	DrawLine(fromCol, fromRow, toCol, toRow int, ch rune)
	// ScrollUp moves the rectangle's content up one row and blanks its last row.
	ScrollUp(col, row, width, height int)
	SetCursor(col, row int)
	// Flush makes everything drawn so far visible as one frame.
	Flush() error
	// Closed reports whether the user closed the host surface.
	Closed() bool
}
