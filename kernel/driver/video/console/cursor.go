package console

import "github.com/mathiasmagnusson/methix/kernel/cpu"

const (
	crtcIndexPort = uint16(0x3D4)
	crtcDataPort  = uint16(0x3D5)

	crtcCursorLocationHigh = uint8(0x0E)
	crtcCursorLocationLow  = uint8(0x0F)
)

var (
	// portWriteByteFn is mocked by tests and is automatically inlined by
	// the compiler.
	portWriteByteFn = cpu.PortWriteByte
)

// MoveCursor programs the CRT controller so that the blinking hardware
// cursor is displayed at column x and row y. Coordinates outside the text
// buffer are clipped to the last column/row.
func MoveCursor(x, y uint16) {
	if x >= Width {
		x = Width - 1
	}
	if y >= Height {
		y = Height - 1
	}

	pos := y*Width + x

	portWriteByteFn(crtcIndexPort, crtcCursorLocationLow)
	portWriteByteFn(crtcDataPort, uint8(pos&0xff))
	portWriteByteFn(crtcIndexPort, crtcCursorLocationHigh)
	portWriteByteFn(crtcDataPort, uint8(pos>>8))
}
