// Package console implements the VGA text-mode framebuffer: the 16-color
// attribute model, the two-byte hardware cell and the 80x25 cell grid that
// the display adapter scans out of memory.
package console

import "image/color"

// Color is one of the 16 colors supported by the VGA text mode. The
// underlying value is the 4-bit code used by the attribute byte.
type Color uint8

// The list of colors supported by the VGA text mode.
const (
	Black Color = iota
	Blue
	Green
	Cyan
	Red
	Magenta
	Brown
	LightGray
	DarkGray
	LightBlue
	LightGreen
	LightCyan
	LightRed
	Pink
	Yellow
	White
)

// Palette contains the RGB values that the VGA DAC uses by default for each
// Color. It is indexed by Color.
var Palette = color.Palette{
	color.RGBA{R: 0, G: 0, B: 0, A: 255},       /* black */
	color.RGBA{R: 0, G: 0, B: 170, A: 255},     /* blue */
	color.RGBA{R: 0, G: 170, B: 0, A: 255},     /* green */
	color.RGBA{R: 0, G: 170, B: 170, A: 255},   /* cyan */
	color.RGBA{R: 170, G: 0, B: 0, A: 255},     /* red */
	color.RGBA{R: 170, G: 0, B: 170, A: 255},   /* magenta */
	color.RGBA{R: 170, G: 85, B: 0, A: 255},    /* brown */
	color.RGBA{R: 170, G: 170, B: 170, A: 255}, /* light gray */
	color.RGBA{R: 85, G: 85, B: 85, A: 255},    /* dark gray */
	color.RGBA{R: 85, G: 85, B: 255, A: 255},   /* light blue */
	color.RGBA{R: 85, G: 255, B: 85, A: 255},   /* light green */
	color.RGBA{R: 85, G: 255, B: 255, A: 255},  /* light cyan */
	color.RGBA{R: 255, G: 85, B: 85, A: 255},   /* light red */
	color.RGBA{R: 255, G: 85, B: 255, A: 255},  /* pink */
	color.RGBA{R: 255, G: 255, B: 85, A: 255},  /* yellow */
	color.RGBA{R: 255, G: 255, B: 255, A: 255}, /* white */
}

// Attr is a packed color attribute byte: the background color is stored in
// the high nibble and the foreground color in the low nibble.
type Attr uint8

// DefaultAttr is used by consoles that have not been assigned a color yet.
const DefaultAttr = Attr(Black<<4) | Attr(White)

// MakeAttr packs a foreground and background color into an attribute byte.
func MakeAttr(fg, bg Color) Attr {
	return Attr((bg&0xf)<<4) | Attr(fg&0xf)
}

// Foreground returns the foreground color encoded in the attribute.
func (a Attr) Foreground() Color {
	return Color(a & 0xf)
}

// Background returns the background color encoded in the attribute.
func (a Attr) Background() Color {
	return Color(a >> 4)
}
