package render

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"slices"
	"strings"
	"sync/atomic"
	"syscall"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

var ErrNotTerminal = errors.New("stdin is not a terminal")

const (
	keyCtrlC  = 0x03
	keyEscape = 0x1b

	// DECSCUSR steady underline, then blink off.
	steadyCursor = "\x1b[4 q\x1b[?12l"
)

// Terminal is a Surface drawing into the alternate screen of the controlling
// terminal. Drawing happens on an in-memory Grid; Flush sends the rows that
// changed since the previous frame.
type Terminal struct {
	*Grid

	in      *os.File
	out     *termenv.Output
	w       *bufio.Writer
	rawMode *term.State
	signals chan os.Signal

	shown      []Cell
	cols, rows int
	closed     atomic.Bool
}

// OpenTerminal switches the terminal to raw mode and the alternate screen.
// The cursor is colored fg. Close restores the terminal.
func OpenTerminal(fg Color) (*Terminal, error) {
	in := os.Stdin
	fd := int(in.Fd())
	if !term.IsTerminal(fd) {
		return nil, ErrNotTerminal
	}
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("entering raw mode: %w", err)
	}

	w := bufio.NewWriterSize(os.Stdout, 64*1024)
	t := &Terminal{
		Grid:    NewGrid(Cols, Rows),
		in:      in,
		out:     termenv.NewOutput(w, termenv.WithProfile(termenv.TrueColor)),
		w:       w,
		rawMode: oldState,
		signals: make(chan os.Signal, 1),
	}

	t.out.AltScreen()
	t.out.ClearScreen()
	t.out.SetCursorColor(termColor(fg))
	_, _ = w.WriteString(steadyCursor)
	if err := w.Flush(); err != nil {
		_ = term.Restore(fd, oldState)
		return nil, err
	}

	signal.Notify(t.signals, syscall.SIGHUP, syscall.SIGTERM, os.Interrupt)
	go t.watchSignals()
	go t.watchInput()
	return t, nil
}

func (t *Terminal) watchSignals() {
	if _, ok := <-t.signals; ok {
		t.closed.Store(true)
	}
}

func (t *Terminal) watchInput() {
	buf := make([]byte, 16)
	for {
		n, err := t.in.Read(buf)
		if err != nil || quitKey(buf[:n]) {
			t.closed.Store(true)
			return
		}
	}
}

// quitKey reports whether one read from a raw-mode terminal is a request to
// quit. A lone Escape quits; escape sequences such as arrow keys do not.
func quitKey(b []byte) bool {
	switch {
	case len(b) == 0:
		return false
	case len(b) == 1 && b[0] == keyEscape:
		return true
	case b[0] == keyCtrlC, b[0] == 'q', b[0] == 'Q':
		return true
	}
	return false
}

// Closed reports whether the user asked to quit.
func (t *Terminal) Closed() bool {
	return t.closed.Load()
}

// Flush writes the changed rows and places the cursor. A resize of the host
// terminal redraws everything.
func (t *Terminal) Flush() error {
	if cols, rows, err := term.GetSize(int(os.Stdout.Fd())); err == nil && (cols != t.cols || rows != t.rows) {
		t.cols, t.rows = cols, rows
		t.shown = nil
		t.out.ClearScreen()
	}
	if err := t.writeFrame(t.w); err != nil {
		t.closed.Store(true)
		return err
	}
	return nil
}

func (t *Terminal) writeFrame(w *bufio.Writer) error {
	cols, rows := t.Grid.Size()
	for row := range rows {
		line := t.Grid.Row(row)
		if t.shown != nil && slices.Equal(line, t.shown[row*cols:(row+1)*cols]) {
			continue
		}
		t.out.MoveCursor(row+1, 1)
		t.writeRow(w, line)
	}
	if t.shown == nil {
		t.shown = make([]Cell, cols*rows)
	}
	copy(t.shown, t.Grid.cells)

	col, row := t.Grid.Cursor()
	t.out.MoveCursor(row+1, col+1)
	return w.Flush()
}

// writeRow emits a row as runs of equal colors. The covered half of a wide
// glyph is skipped; the terminal advances past it.
func (t *Terminal) writeRow(w io.StringWriter, line []Cell) {
	var run strings.Builder
	var fg, bg Color
	emit := func() {
		if run.Len() == 0 {
			return
		}
		style := t.out.String(run.String()).Foreground(termColor(fg)).Background(termColor(bg))
		_, _ = w.WriteString(style.String())
		run.Reset()
	}
	for i, cell := range line {
		if i == 0 || cell.FG != fg || cell.BG != bg {
			emit()
			fg, bg = cell.FG, cell.BG
		}
		if cell.Ch != 0 {
			run.WriteRune(cell.Ch)
		}
	}
	emit()
}

// Close leaves the alternate screen and restores the terminal mode.
func (t *Terminal) Close() error {
	signal.Stop(t.signals)
	close(t.signals)
	t.closed.Store(true)

	t.out.Reset()
	t.out.ShowCursor()
	t.out.ExitAltScreen()
	flushErr := t.w.Flush()
	if err := term.Restore(int(t.in.Fd()), t.rawMode); err != nil {
		return err
	}
	return flushErr
}

func termColor(c Color) termenv.Color {
	return termenv.TrueColor.Color(fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B))
}
