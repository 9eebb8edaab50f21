// Package mmio provides volatile accessors for memory-mapped device
// registers and framebuffers.
//
// The accessors are implemented in assembly so the compiler treats each call
// as an opaque operation: loads and stores are issued exactly once, in
// program order, and are never merged or eliminated even if the target
// memory is not read back by Go code.
package mmio

// Load16 performs a volatile 16-bit read from addr.
func Load16(addr *uint16) uint16

// Store16 performs a volatile 16-bit write of val to addr.
func Store16(addr *uint16, val uint16)
