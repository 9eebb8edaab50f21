package main

import (
	"bufio"
	"io"
	"strings"

	"github.com/mathiasmagnusson/methix/kernel/driver/video/console"
)

// renderText writes one line per screen row to w. Trailing blanks are
// omitted.
func renderText(w io.Writer, buf *console.TextBuffer) error {
	var (
		bw  = bufio.NewWriter(w)
		row strings.Builder
	)

	for y := uint16(0); y < console.Height; y++ {
		row.Reset()
		for x := uint16(0); x < console.Width; x++ {
			row.WriteRune(glyphRune(buf.Cell(x, y).Glyph))
		}

		bw.WriteString(strings.TrimRight(row.String(), " "))
		bw.WriteByte('\n')
	}

	return bw.Flush()
}
