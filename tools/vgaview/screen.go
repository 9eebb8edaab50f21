package main

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/text/encoding/charmap"

	"github.com/mathiasmagnusson/methix/kernel/driver/tty"
	"github.com/mathiasmagnusson/methix/kernel/driver/video/console"
)

// dumpSize is the size of a raw text buffer capture.
const dumpSize = console.Width * console.Height * 2

var errDumpSize = errors.New("unexpected screen dump size")

// cp437Controls contains the glyphs that code page 437 displays for bytes
// 0x00 to 0x1f. The charmap decoder maps these bytes to control characters.
var cp437Controls = [32]rune{
	' ', '☺', '☻', '♥', '♦', '♣', '♠', '•', '◘', '○', '◙', '♂', '♀', '♪', '♫', '☼',
	'►', '◄', '↕', '‼', '¶', '§', '▬', '↨', '↑', '↓', '→', '←', '∟', '↔', '▲', '▼',
}

// glyphRune returns the Unicode character that the display adapter renders
// for glyph.
func glyphRune(glyph byte) rune {
	switch {
	case glyph < 0x20:
		return cp437Controls[glyph]
	case glyph == 0x7f:
		return '⌂'
	default:
		return charmap.CodePage437.DecodeByte(glyph)
	}
}

// loadDump decodes a raw capture of the text buffer. Each cell is stored as
// a glyph byte followed by an attribute byte, row by row.
func loadDump(data []byte) (*console.TextBuffer, error) {
	if len(data) != dumpSize {
		return nil, fmt.Errorf("%w: expected %d bytes; got %d", errDumpSize, dumpSize, len(data))
	}

	buf := &console.TextBuffer{}
	for y := uint16(0); y < console.Height; y++ {
		for x := uint16(0); x < console.Width; x++ {
			off := (int(y)*console.Width + int(x)) * 2
			buf.Write(data[off], console.Attr(data[off+1]), x, y)
		}
	}

	return buf, nil
}

// replay writes data to a terminal attached to a blank screen and returns
// the resulting screen.
func replay(data []byte) *console.TextBuffer {
	buf := &console.TextBuffer{}
	w := tty.NewWriter(buf)
	w.Clear()
	w.Write(data)
	return buf
}

// loadScreen reads the screen stored in path.
func loadScreen(path string, replayMode bool) (*console.TextBuffer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if replayMode {
		return replay(data), nil
	}

	buf, err := loadDump(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return buf, nil
}
