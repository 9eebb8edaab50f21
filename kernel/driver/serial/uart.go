// Package serial implements a polled driver for 16550-compatible UARTs.
package serial

import "github.com/mathiasmagnusson/methix/kernel/cpu"

// COM1 is the I/O port base of the first serial port.
const COM1 = uint16(0x3F8)

// Register offsets relative to the port base.
const (
	regData        = 0 // DLAB=0: rx/tx buffer; DLAB=1: divisor latch low
	regIntEnable   = 1 // DLAB=0: interrupt enable; DLAB=1: divisor latch high
	regFifoControl = 2
	regLineControl = 3
	regModemCtrl   = 4
	regLineStatus  = 5
)

const (
	lineControlDLAB = 0x80
	lineControl8N1  = 0x03

	// enable + clear rx/tx FIFOs, 14-byte threshold
	fifoControlEnable = 0xC7

	// DTR + RTS + OUT2
	modemControlReady = 0x0B

	lineStatusTxEmpty = 0x20

	// 115200 / 38400
	baudDivisor = 3
)

var (
	// portWriteByteFn and portReadByteFn are mocked by tests and are
	// automatically inlined by the compiler.
	portWriteByteFn = cpu.PortWriteByte
	portReadByteFn  = cpu.PortReadByte
)

// Port is a 16550 UART operating in polled mode.
type Port struct {
	base uint16
}

// Init programs the UART at the supplied port base for 38400 baud, 8 data
// bits, no parity and one stop bit with interrupts disabled.
func (p *Port) Init(base uint16) {
	p.base = base

	portWriteByteFn(base+regIntEnable, 0x00)
	portWriteByteFn(base+regLineControl, lineControlDLAB)
	portWriteByteFn(base+regData, baudDivisor&0xff)
	portWriteByteFn(base+regIntEnable, baudDivisor>>8)
	portWriteByteFn(base+regLineControl, lineControl8N1)
	portWriteByteFn(base+regFifoControl, fifoControlEnable)
	portWriteByteFn(base+regModemCtrl, modemControlReady)
}

// WriteByte implements io.ByteWriter. It spins until the transmit holding
// register is empty.
func (p *Port) WriteByte(b byte) error {
	for portReadByteFn(p.base+regLineStatus)&lineStatusTxEmpty == 0 {
	}

	portWriteByteFn(p.base+regData, b)
	return nil
}

// Write implements io.Writer.
func (p *Port) Write(data []byte) (int, error) {
	for _, b := range data {
		p.WriteByte(b)
	}

	return len(data), nil
}
