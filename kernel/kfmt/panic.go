package kfmt

import (
	"io"

	"github.com/mathiasmagnusson/methix/kernel"
	"github.com/mathiasmagnusson/methix/kernel/cpu"
	"github.com/mathiasmagnusson/methix/kernel/hal"
)

var (
	// cpuHaltFn is mocked by tests and is automatically inlined by the compiler.
	cpuHaltFn = cpu.Halt

	errRuntimePanic = &kernel.Error{Module: "rt", Message: "unknown cause"}
	errUnknownPanic = &kernel.Error{Module: "rt", Message: "nil panic value"}
)

// Panic outputs the supplied error to the terminal (and the serial port, if
// initialized) and halts the CPU. Calls to Panic never return. Panic also
// works as a redirection target for calls to panic() (resolved via
// runtime.gopanic)
//
// Panic may be triggered while the terminal lock is held, in which case the
// holder will never get to release it. The lock is therefore only acquired
// if it is available; otherwise the diagnostic is written without it.
//
//go:redirect-from runtime.gopanic
func Panic(e interface{}) {
	var err *kernel.Error

	switch t := e.(type) {
	case *kernel.Error:
		err = t
	case string:
		panicString(t)
		return
	case error:
		errRuntimePanic.Message = t.Error()
		err = errRuntimePanic
	}

	if err == nil {
		err = errUnknownPanic
	}

	tty, locked := hal.TryLockTerminal()
	printPanic(tty, err)
	if locked {
		hal.UnlockTerminal()
	} else {
		tty.SyncCursor()
	}

	serial, locked := hal.TryLockSerial()
	printPanic(serial, err)
	if locked {
		hal.UnlockSerial()
	}

	cpuHaltFn()
}

// panicString serves as a redirect target for runtime.throw
//
//go:redirect-from runtime.throw
func panicString(msg string) {
	errRuntimePanic.Message = msg
	Panic(errRuntimePanic)
}

func printPanic(w io.Writer, err *kernel.Error) {
	Fprintf(w, "\nKernel Panic: %s\n", err.Message)
	Fprintf(w, "[%s] system halted\n", err.Module)
}
