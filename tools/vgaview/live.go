package main

import (
	"errors"
	"io"

	"github.com/jacobsa/go-serial/serial"

	"github.com/mathiasmagnusson/methix/kernel/driver/tty"
)

// The kernel programs COM1 with a divisor of 3.
const defaultBaudRate = 38400

// openSerial opens the host end of the kernel's COM1 line (a USB adapter or
// the pty QEMU creates for -serial pty). The kernel writes SerialPrintf
// output and panic diagnostics there; Printf output only reaches the screen.
func openSerial(device string, baudRate uint) (io.ReadWriteCloser, error) {
	return serial.Open(serial.OpenOptions{
		PortName:        device,
		BaudRate:        baudRate,
		DataBits:        8,
		StopBits:        1,
		MinimumReadSize: 1,
	})
}

// follow writes everything read from r to w while holding the view lock and
// invokes update after each chunk. Carriage returns inserted by the host
// line discipline are dropped. follow returns when r is exhausted.
func (v *screenView) follow(r io.Reader, w *tty.Writer, update func()) error {
	chunk := make([]byte, 256)
	for {
		n, err := r.Read(chunk)
		if n > 0 {
			v.mu.Lock()
			for _, b := range chunk[:n] {
				if b != '\r' {
					w.WriteByte(b)
				}
			}
			v.mu.Unlock()
			update()
		}

		switch {
		case errors.Is(err, io.EOF):
			return nil
		case err != nil:
			return err
		}
	}
}
