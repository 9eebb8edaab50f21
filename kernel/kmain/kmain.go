package kmain

import (
	"github.com/mathiasmagnusson/methix/kernel"
	"github.com/mathiasmagnusson/methix/kernel/cpu"
	"github.com/mathiasmagnusson/methix/kernel/driver/video/console"
	"github.com/mathiasmagnusson/methix/kernel/hal"
	"github.com/mathiasmagnusson/methix/kernel/hal/multiboot"
	"github.com/mathiasmagnusson/methix/kernel/kfmt"
)

var (
	errKmainReturned = &kernel.Error{Module: "kmain", Message: "Kmain returned"}

	// The following functions are mocked by tests and are automatically
	// inlined by the compiler.
	initSerialFn = hal.InitSerial
	cpuHaltFn    = cpu.Halt
	panicFn      = kfmt.Panic
)

// Kmain is the only Go symbol that is visible (exported) from the rt0 initialization
// code. This function is invoked by the rt0 assembly code after setting up the GDT
// and setting up a a minimal g0 struct that allows Go code using the 4K stack
// allocated by the assembly code.
//
// The rt0 code passes the address of the multiboot info payload provided by the
// bootloader.
//
// Kmain is not expected to return. If it does, the rt0 code will halt the CPU.
//
//go:noinline
func Kmain(multibootInfoPtr uintptr) {
	multiboot.SetInfoPtr(multibootInfoPtr)

	initSerialFn()
	kfmt.SerialPrintf("[kmain] serial output on COM1\n")

	hal.SetTerminalAttr(console.MakeAttr(console.Yellow, console.Black))
	kfmt.Printf("Hello%[2]s World%[1]s\n", "!", ",")

	cpuHaltFn()

	// Use kfmt.Panic instead of panic to prevent the compiler from
	// treating kfmt.Panic as dead-code and eliminating it.
	panicFn(errKmainReturned)
}
