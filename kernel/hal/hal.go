// Package hal owns the kernel-wide output devices: the active text terminal
// and the serial port. Both are process-wide singletons that are only
// reachable through lock-protected accessors.
package hal

import (
	"io"

	"github.com/mathiasmagnusson/methix/kernel/driver/serial"
	"github.com/mathiasmagnusson/methix/kernel/driver/tty"
	"github.com/mathiasmagnusson/methix/kernel/driver/video/console"
	"github.com/mathiasmagnusson/methix/kernel/hal/multiboot"
	"github.com/mathiasmagnusson/methix/kernel/sync"
)

var (
	terminalLock  sync.Spinlock
	terminal      tty.Writer
	terminalReady bool

	serialLock sync.Spinlock
	serialPort serial.Port
	serialSink io.Writer

	// The following functions are mocked by tests and are automatically
	// inlined by the compiler.
	mapTextBufferFn      = console.MapTextBuffer
	moveCursorFn         = console.MoveCursor
	getFramebufferInfoFn = multiboot.GetFramebufferInfo
)

// LockTerminal acquires exclusive access to the active terminal and returns
// it. The first call maps the VGA text buffer and attaches the terminal to
// it. Callers must invoke UnlockTerminal once they are done writing; the
// lock should be held for the duration of a complete message so that output
// from concurrent callers is never interleaved.
func LockTerminal() *tty.Writer {
	terminalLock.Acquire()
	if !terminalReady {
		initTerminal()
	}

	return &terminal
}

// TryLockTerminal attempts to acquire exclusive access to the active terminal
// without blocking. It always returns the terminal; the returned flag reports
// whether the lock was acquired. Callers must only invoke UnlockTerminal if
// the flag is true.
//
// TryLockTerminal is meant for the panic path, where the lock may be held by
// the code that triggered the fault and will never be released.
func TryLockTerminal() (*tty.Writer, bool) {
	locked := terminalLock.TryToAcquire()
	if !terminalReady {
		initTerminal()
	}

	return &terminal, locked
}

// UnlockTerminal moves the hardware cursor to the terminal cursor and
// releases the lock acquired by LockTerminal.
func UnlockTerminal() {
	terminal.SyncCursor()
	terminalLock.Release()
}

// SetTerminalAttr sets the color attribute used for subsequent terminal
// output.
func SetTerminalAttr(attr console.Attr) {
	LockTerminal().SetAttr(attr)
	UnlockTerminal()
}

// AttachTerminal attaches the active terminal to buf, replacing the mapped
// VGA text buffer. If cursorFn is not nil, it is invoked with the cursor
// position whenever UnlockTerminal releases the terminal.
func AttachTerminal(buf *console.TextBuffer, cursorFn func(x, y uint16)) {
	terminalLock.Acquire()
	terminal.Init(buf)
	terminal.SetCursorFunc(cursorFn)
	terminalReady = true
	terminalLock.Release()
}

// initTerminal maps the text buffer reported by the bootloader (or the
// standard VGA color text buffer if none is reported) and attaches the
// terminal to it. The existing screen contents are preserved.
func initTerminal() {
	terminal.Init(mapTextBufferFn(textBufferAddr()))
	terminal.SetCursorFunc(moveCursorFn)
	terminalReady = true
}

// textBufferAddr returns the physical address of the text buffer.
func textBufferAddr() uintptr {
	fbInfo := getFramebufferInfoFn()
	if fbInfo == nil || fbInfo.Type != multiboot.FramebufferTypeEGA {
		return console.PhysAddr
	}

	if fbInfo.Width != console.Width || fbInfo.Height != console.Height {
		return console.PhysAddr
	}

	return uintptr(fbInfo.PhysAddr)
}

// InitSerial programs the COM1 UART and routes serial output to it.
func InitSerial() {
	serialPort.Init(serial.COM1)
	SetSerialSink(&serialPort)
}

// SetSerialSink routes serial output to w. Passing nil disables serial
// output.
func SetSerialSink(w io.Writer) {
	serialLock.Acquire()
	serialSink = w
	serialLock.Release()
}

// LockSerial acquires exclusive access to the serial output and returns it.
// The returned writer is nil if serial output has not been initialized but
// the lock is held either way; callers must always invoke UnlockSerial.
func LockSerial() io.Writer {
	serialLock.Acquire()
	return serialSink
}

// TryLockSerial attempts to acquire the serial output lock without blocking.
// The returned flag reports whether the lock was acquired. The writer is nil
// if serial output has not been initialized.
func TryLockSerial() (io.Writer, bool) {
	locked := serialLock.TryToAcquire()
	return serialSink, locked
}

// UnlockSerial releases the lock acquired by LockSerial.
func UnlockSerial() {
	serialLock.Release()
}
