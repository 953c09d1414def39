package emu

// Bus is the address space the CPU and PPU read and write through.
// Memory is the only production implementation.
type Bus interface {
	Read(addr uint16) uint8
	Write(addr uint16, val uint8)
}

// Compile-time interface check.
var _ Bus = (*Memory)(nil)
