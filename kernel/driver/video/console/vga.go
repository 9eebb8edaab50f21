package console

import (
	"unsafe"

	"github.com/mathiasmagnusson/methix/kernel/mmio"
)

const (
	// Width is the number of character columns in the text buffer.
	Width = 80

	// Height is the number of character rows in the text buffer.
	Height = 25

	// PhysAddr is the physical address where the display adapter maps the
	// color text buffer.
	PhysAddr = uintptr(0xB8000)

	// BlankGlyph is written to cells that are cleared.
	BlankGlyph = byte(' ')

	// UndefinedGlyph is the code page 437 glyph (a filled square) rendered
	// in place of bytes that have no printable ASCII representation.
	UndefinedGlyph = byte(0xFE)
)

// ScreenCell is the two-byte unit the display adapter reads for each
// character position. The glyph is stored first and the attribute second so
// the in-memory layout matches the hardware format on little-endian CPUs.
type ScreenCell struct {
	Glyph byte
	Attr  Attr
}

// pack returns the cell as the 16-bit word stored in video memory.
func (c ScreenCell) pack() uint16 {
	return uint16(c.Attr)<<8 | uint16(c.Glyph)
}

func unpackCell(v uint16) ScreenCell {
	return ScreenCell{Glyph: byte(v), Attr: Attr(v >> 8)}
}

// TextBuffer is the 80x25 grid of cells scanned out by the display adapter.
// A TextBuffer is never allocated by the kernel; MapTextBuffer overlays it on
// video memory. All cell accesses are volatile.
type TextBuffer struct {
	cells [Height][Width]ScreenCell
}

// MapTextBuffer returns a TextBuffer overlaid on the video memory at
// physAddr. It is the only place where the text buffer address is turned into
// a typed pointer. The caller becomes the exclusive owner of the returned
// buffer for the lifetime of the kernel and must not call MapTextBuffer again
// for the same address.
func MapTextBuffer(physAddr uintptr) *TextBuffer {
	return (*TextBuffer)(unsafe.Pointer(physAddr))
}

// Cell returns the contents of the cell at column x and row y. Reading a cell
// outside the buffer returns a zero ScreenCell.
func (b *TextBuffer) Cell(x, y uint16) ScreenCell {
	if x >= Width || y >= Height {
		return ScreenCell{}
	}

	return unpackCell(mmio.Load16(b.word(x, y)))
}

// Write a char to the specified location. Writes outside the buffer are
// ignored.
func (b *TextBuffer) Write(ch byte, attr Attr, x, y uint16) {
	if x >= Width || y >= Height {
		return
	}

	mmio.Store16(b.word(x, y), ScreenCell{Glyph: ch, Attr: attr}.pack())
}

// Clear fills the specified rectangular region with blank cells using the
// supplied attribute. The region is clipped to the buffer dimensions.
func (b *TextBuffer) Clear(x, y, width, height uint16, attr Attr) {
	var (
		clr  = ScreenCell{Glyph: BlankGlyph, Attr: attr}.pack()
		col  uint16
		endX uint16
	)

	// clip rectangle
	if x >= Width {
		x = Width
	}
	if y >= Height {
		y = Height
	}

	if width > Width-x {
		width = Width - x
	}
	if height > Height-y {
		height = Height - y
	}

	endX = x + width
	for ; height > 0; height, y = height-1, y+1 {
		for col = x; col < endX; col++ {
			mmio.Store16(b.word(col, y), clr)
		}
	}
}

// ScrollUp moves the buffer contents up by the requested number of lines,
// discarding the top rows. The caller is responsible for clearing the rows
// that were exposed by the scroll.
func (b *TextBuffer) ScrollUp(lines uint16) {
	if lines == 0 || lines > Height {
		return
	}

	var x, y uint16
	for y = lines; y < Height; y++ {
		for x = 0; x < Width; x++ {
			mmio.Store16(b.word(x, y-lines), mmio.Load16(b.word(x, y)))
		}
	}
}

// word returns a pointer to the 16-bit video memory word backing the cell at
// (x, y).
func (b *TextBuffer) word(x, y uint16) *uint16 {
	return (*uint16)(unsafe.Pointer(&b.cells[y][x]))
}
