package render

import (
	"fmt"

	"github.com/gigurra/stillalive/cmd/credits"
	"github.com/mattn/go-runewidth"
)

// Screen layout, in cells.
const (
	ScreenHeight = 32
	HalfHeight   = ScreenHeight / 2
	HalfWidth    = 55
	CreditsCol   = HalfWidth + 2

	// Cols and Rows are the full surface size needed by the layout.
	Cols = HalfWidth*2 + 2
	Rows = ScreenHeight + 4

	songHomeCol   = 2
	songHomeRow   = 1
	creditsHeight = HalfHeight - 2
	creditsWidth  = HalfWidth - 2
	creditsBottom = HalfHeight - 2
	artCol        = HalfWidth + 8
)

// SongStarter begins audio playback. Start must return without waiting for
// the song to play.
type SongStarter interface {
	Start()
}

// State is a snapshot of the render state.
type State struct {
	SongCol, SongRow int
	CreditsCol       int
	CreditLines      []string
	Art              string
	CursorInCredits  bool
}

// Machine applies timeline events to the screen, one at a time. It is owned
// by the playback loop and must not be used from other goroutines.
type Machine struct {
	surface Surface
	song    SongStarter

	songCol, songRow int
	creditsCol       int
	credits          *lineRing
	art              string
	cursorInCredits  bool
}

// NewMachine returns a machine drawing on surface with text in fg on black.
func NewMachine(surface Surface, fg Color, song SongStarter) *Machine {
	surface.SetColors(fg, Black)
	return &Machine{
		surface: surface,
		song:    song,
		songCol: songHomeCol,
		songRow: songHomeRow,
		credits: newLineRing(creditsHeight),
	}
}

// Begin draws the empty frame.
func (m *Machine) Begin() {
	m.drawBoxes()
	m.surface.SetCursor(1, 1)
}

// Apply performs one event. The caller flushes the surface afterwards.
func (m *Machine) Apply(event credits.Event) error {
	m.drawBoxes()
	switch e := event.(type) {
	case credits.CharacterEvent:
		if e.ForCredits {
			m.creditsChar(e.Char)
		} else {
			m.songChar(e.Char)
		}
	case credits.SimpleEvent:
		switch e.Action {
		case credits.ClearScreen:
			m.surface.Fill(1, 1, HalfWidth-2, ScreenHeight-2, ' ')
			m.songCol, m.songRow = songHomeCol, songHomeRow
		case credits.StartSong:
			m.song.Start()
		default:
			return fmt.Errorf("unknown action %v", e.Action)
		}
	case credits.CursorEvent:
		m.cursorInCredits = e.ToCredits
	case credits.AsciiArtEvent:
		m.drawArt(e.Art)
	default:
		return fmt.Errorf("unknown event %T", event)
	}
	m.placeCursor()
	return nil
}

func (m *Machine) songChar(ch rune) {
	if ch == '\n' {
		m.songRow++
		m.songCol = songHomeCol
		return
	}
	m.surface.SetCell(m.songCol, m.songRow, ch)
	m.songCol += cellWidth(ch)
}

func (m *Machine) creditsChar(ch rune) {
	if ch == '\n' {
		m.surface.ScrollUp(CreditsCol, 1, creditsWidth, creditsHeight)
		m.credits.scroll()
		m.creditsCol = 0
		return
	}
	m.surface.SetCell(CreditsCol+m.creditsCol, creditsBottom, ch)
	m.credits.put(ch)
	m.creditsCol += cellWidth(ch)
}

func (m *Machine) drawArt(art string) {
	m.art = art
	m.surface.Fill(HalfWidth, HalfHeight, HalfWidth+1, HalfHeight+4, ' ')
	col, row := artCol, HalfHeight
	for _, ch := range art {
		if ch == '\n' {
			row++
			col = artCol
			continue
		}
		m.surface.SetCell(col, row, ch)
		col += cellWidth(ch)
	}
}

func (m *Machine) placeCursor() {
	if m.cursorInCredits {
		m.surface.SetCursor(CreditsCol+m.creditsCol, creditsBottom)
	} else {
		m.surface.SetCursor(m.songCol, m.songRow)
	}
}

func (m *Machine) drawBoxes() {
	s := m.surface
	s.DrawLine(0, 0, HalfWidth-1, 0, '-')
	s.DrawLine(HalfWidth+1, 0, HalfWidth*2, 0, '-')
	s.DrawLine(0, 1, 0, ScreenHeight-1, '|')
	s.DrawLine(HalfWidth-1, 1, HalfWidth-1, ScreenHeight-1, '|')
	s.DrawLine(HalfWidth, 1, HalfWidth, HalfHeight-1, '|')
	s.DrawLine(HalfWidth*2+1, 1, HalfWidth*2+1, HalfHeight-1, '|')
	s.DrawLine(0, ScreenHeight, HalfWidth-1, ScreenHeight, '-')
	s.DrawLine(HalfWidth+1, HalfHeight-1, HalfWidth*2, HalfHeight-1, '_')
}

// State returns a snapshot of the current render state.
func (m *Machine) State() State {
	return State{
		SongCol:         m.songCol,
		SongRow:         m.songRow,
		CreditsCol:      m.creditsCol,
		CreditLines:     m.credits.lines(),
		Art:             m.art,
		CursorInCredits: m.cursorInCredits,
	}
}

func cellWidth(ch rune) int {
	return max(1, runewidth.RuneWidth(ch))
}

// lineRing keeps the last n credit lines; the newest line is being written.
type lineRing struct {
	buf  [][]rune
	head int
}

func newLineRing(n int) *lineRing {
	return &lineRing{buf: make([][]rune, n)}
}

func (r *lineRing) newest() int {
	return (r.head + len(r.buf) - 1) % len(r.buf)
}

func (r *lineRing) put(ch rune) {
	i := r.newest()
	r.buf[i] = append(r.buf[i], ch)
}

// scroll drops the oldest line and starts a new empty one.
func (r *lineRing) scroll() {
	r.buf[r.head] = r.buf[r.head][:0]
	r.head = (r.head + 1) % len(r.buf)
}

// lines returns the buffered lines, oldest first.
func (r *lineRing) lines() []string {
	out := make([]string, len(r.buf))
	for i := range r.buf {
		out[i] = string(r.buf[(r.head+i)%len(r.buf)])
	}
	return out
}
