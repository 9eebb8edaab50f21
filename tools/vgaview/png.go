package main

import (
	"image"
	"image/draw"
	"image/png"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/mathiasmagnusson/methix/kernel/driver/video/console"
)

var glyphFace = basicfont.Face7x13

// Cell dimensions in pixels.
const (
	cellWidth  = 7
	cellHeight = 13
)

// renderImage draws buf using the default VGA palette.
func renderImage(buf *console.TextBuffer) *image.Paletted {
	img := image.NewPaletted(image.Rect(0, 0, console.Width*cellWidth, console.Height*cellHeight), console.Palette)
	d := &font.Drawer{Dst: img, Face: glyphFace}

	for y := 0; y < console.Height; y++ {
		for x := 0; x < console.Width; x++ {
			var (
				cell = buf.Cell(uint16(x), uint16(y))
				r    = image.Rect(x*cellWidth, y*cellHeight, (x+1)*cellWidth, (y+1)*cellHeight)
				fg   = image.NewUniform(console.Palette[cell.Attr.Foreground()])
				bg   = image.NewUniform(console.Palette[cell.Attr.Background()])
			)

			draw.Draw(img, r, bg, image.Point{}, draw.Src)

			// basicfont has no glyph for the filled square.
			if cell.Glyph == console.UndefinedGlyph {
				draw.Draw(img, image.Rect(r.Min.X+1, r.Min.Y+4, r.Max.X-1, r.Max.Y-3), fg, image.Point{}, draw.Src)
				continue
			}

			if ch := glyphRune(cell.Glyph); ch != ' ' {
				d.Src = fg
				d.Dot = fixed.P(r.Min.X, r.Min.Y+glyphFace.Ascent)
				d.DrawString(string(ch))
			}
		}
	}

	return img
}

// writePNG renders buf to a PNG image stored at path.
func writePNG(path string, buf *console.TextBuffer) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err = png.Encode(f, renderImage(buf)); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}
