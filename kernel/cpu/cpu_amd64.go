// Package cpu exposes the handful of privileged x86_64 instructions needed
// by the console and the panic path. All functions are implemented in
// assembly.
package cpu

// Halt disables interrupts and stops instruction execution. Halt never
// returns; if the CPU is woken up by an NMI it halts again.
func Halt()

// PortWriteByte writes a uint8 value to the requested port.
func PortWriteByte(port uint16, val uint8)

// PortReadByte reads a uint8 value from the requested port.
func PortReadByte(port uint16) uint8
