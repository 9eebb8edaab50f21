// Package tty implements the text terminal that sits on top of the VGA text
// buffer: it tracks the cursor and the active color attribute and turns a
// stream of bytes into cell updates, wrapping and scrolling as needed.
package tty

import "github.com/mathiasmagnusson/methix/kernel/driver/video/console"

const (
	lineFeed  = byte('\n')
	backspace = byte(0x08)
)

// Writer renders a byte stream to a console.TextBuffer. It interprets the
// following special characters:
//   - \n (line-feed; also returns the cursor to the first column)
//   - \b (backspace; only reachable through Backspace)
//
// Bytes outside the printable ASCII range are rendered as
// console.UndefinedGlyph.
//
// A Writer is not safe for concurrent use; the kernel serializes access to
// the active terminal through the hal package.
type Writer struct {
	buf *console.TextBuffer

	curX    uint16
	curY    uint16
	curAttr console.Attr

	// cursorFn, if set, is invoked with the cursor position by SyncCursor
	// so the hardware cursor can track the terminal cursor.
	cursorFn func(x, y uint16)
}

// NewWriter returns a Writer attached to buf.
func NewWriter(buf *console.TextBuffer) *Writer {
	w := &Writer{}
	w.Init(buf)
	return w
}

// Init attaches the Writer to buf, moves the cursor to the top-left corner
// and resets the color attribute to console.DefaultAttr. The buffer contents
// are left untouched.
func (w *Writer) Init(buf *console.TextBuffer) {
	w.buf = buf
	w.curX, w.curY = 0, 0
	w.curAttr = console.DefaultAttr
}

// SetCursorFunc registers a function that gets invoked with the current
// cursor position whenever SyncCursor is called.
func (w *Writer) SetCursorFunc(fn func(x, y uint16)) {
	w.cursorFn = fn
}

// Attr returns the attribute that is applied to newly written cells.
func (w *Writer) Attr() console.Attr {
	return w.curAttr
}

// SetAttr sets the attribute for cells written after this call. Cells that
// have already been rendered keep their attribute.
func (w *Writer) SetAttr(attr console.Attr) {
	w.curAttr = attr
}

// Position returns the current cursor position (x, y).
func (w *Writer) Position() (uint16, uint16) {
	return w.curX, w.curY
}

// Clear blanks the text buffer using the current attribute and moves the
// cursor to the top-left corner.
func (w *Writer) Clear() {
	w.buf.Clear(0, 0, console.Width, console.Height, w.curAttr)
	w.curX, w.curY = 0, 0
}

// Write implements io.Writer. Each byte is either a line-feed, a printable
// ASCII character or gets replaced by console.UndefinedGlyph. Write never
// fails.
func (w *Writer) Write(data []byte) (int, error) {
	for _, b := range data {
		w.writeByte(sanitize(b))
	}

	return len(data), nil
}

// WriteByte implements io.ByteWriter using the same substitution rules as
// Write.
func (w *Writer) WriteByte(b byte) error {
	w.writeByte(sanitize(b))
	return nil
}

// Backspace moves the cursor one cell back, wrapping to the last column of
// the previous row, and blanks the cell under it. Backspace at the top-left
// corner is a no-op.
func (w *Writer) Backspace() {
	w.writeByte(backspace)
}

// sanitize maps b to itself if it can be rendered and to
// console.UndefinedGlyph otherwise.
func sanitize(b byte) byte {
	if (b >= 0x20 && b <= 0x7e) || b == lineFeed {
		return b
	}

	return console.UndefinedGlyph
}

func (w *Writer) writeByte(b byte) {
	switch b {
	case lineFeed:
		w.lf()
	case backspace:
		w.bs()
	default:
		w.buf.Write(b, w.curAttr, w.curX, w.curY)
		w.curX++
		if w.curX == console.Width {
			w.lf()
		}
	}
}

// lf moves the cursor to the first column of the next line, scrolling the
// buffer contents up if the cursor is already on the last line.
func (w *Writer) lf() {
	w.curX = 0
	if w.curY+1 < console.Height {
		w.curY++
		return
	}

	w.buf.ScrollUp(1)
	w.buf.Clear(0, console.Height-1, console.Width, 1, w.curAttr)
}

// bs erases the cell before the cursor.
func (w *Writer) bs() {
	switch {
	case w.curX > 0:
		w.curX--
	case w.curY > 0:
		w.curY--
		w.curX = console.Width - 1
	default:
		return
	}

	w.buf.Write(console.BlankGlyph, w.curAttr, w.curX, w.curY)
}

// SyncCursor reports the current cursor position to the function registered
// with SetCursorFunc. Moving the hardware cursor takes several port writes so
// callers sync once per message rather than after every byte.
func (w *Writer) SyncCursor() {
	if w.cursorFn != nil {
		w.cursorFn(w.curX, w.curY)
	}
}
