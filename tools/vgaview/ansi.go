package main

import (
	"bufio"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/mathiasmagnusson/methix/kernel/driver/video/console"
)

// ANSI attributes approximating each VGA color.
var (
	ansiFg = [16]color.Attribute{
		color.FgBlack, color.FgBlue, color.FgGreen, color.FgCyan,
		color.FgRed, color.FgMagenta, color.FgYellow, color.FgWhite,
		color.FgHiBlack, color.FgHiBlue, color.FgHiGreen, color.FgHiCyan,
		color.FgHiRed, color.FgHiMagenta, color.FgHiYellow, color.FgHiWhite,
	}
	ansiBg = [16]color.Attribute{
		color.BgBlack, color.BgBlue, color.BgGreen, color.BgCyan,
		color.BgRed, color.BgMagenta, color.BgYellow, color.BgWhite,
		color.BgHiBlack, color.BgHiBlue, color.BgHiGreen, color.BgHiCyan,
		color.BgHiRed, color.BgHiMagenta, color.BgHiYellow, color.BgHiWhite,
	}
)

func ansiColor(attr console.Attr) *color.Color {
	return color.New(ansiFg[attr.Foreground()], ansiBg[attr.Background()])
}

// renderANSI writes one line per screen row to w, coloring runs of cells
// that share an attribute with ANSI escape sequences. Colors are omitted if
// color.NoColor is set.
func renderANSI(w io.Writer, buf *console.TextBuffer) error {
	var (
		bw  = bufio.NewWriter(w)
		run strings.Builder
	)

	for y := uint16(0); y < console.Height; y++ {
		runAttr := buf.Cell(0, y).Attr
		for x := uint16(0); x < console.Width; x++ {
			cell := buf.Cell(x, y)
			if cell.Attr != runAttr {
				ansiColor(runAttr).Fprint(bw, run.String())
				run.Reset()
				runAttr = cell.Attr
			}
			run.WriteRune(glyphRune(cell.Glyph))
		}

		ansiColor(runAttr).Fprint(bw, run.String())
		run.Reset()
		bw.WriteByte('\n')
	}

	return bw.Flush()
}
