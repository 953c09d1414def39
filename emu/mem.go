package emu

import "hash/crc32"

// Region sizes for the DMG memory map.
const (
	romSize  = 0x8000 // 32KB cartridge ROM, no banking
	vramSize = 0x2000
	eramSize = 0x2000
	wramSize = 0x2000
	oamSize  = 0xA0 // 40 entries x 4 bytes
	ioSize   = 0x80
	hramSize = 0x7F
)

// Memory implements the DMG memory map. Every 16-bit address resolves to
// exactly one region or special register.
type Memory struct {
	rom    [romSize]uint8
	vram   [vramSize]uint8
	eram   [eramSize]uint8
	wram   [wramSize]uint8
	oam    [oamSize]uint8
	hram   [hramSize]uint8
	ie     uint8
	romCRC uint32

	io *DMGIO
}

// NewMemory copies rom into the ROM region and wires the I/O register
// block. The caller is responsible for checking the ROM size.
func NewMemory(rom []byte, apu *APU) *Memory {
	m := &Memory{}
	copy(m.rom[:], rom)
	m.romCRC = crc32.ChecksumIEEE(m.rom[:])
	m.io = NewDMGIO(m, apu)
	return m
}

// Read returns the byte at addr, applying I/O register read side effects.
func (m *Memory) Read(addr uint16) uint8 {
	switch {
	case addr < 0x8000:
		return m.rom[addr]
	case addr < 0xA000:
		return m.vram[addr-0x8000]
	case addr < 0xC000:
		return m.eram[addr-0xA000]
	case addr < 0xE000:
		return m.wram[addr-0xC000]
	case addr < 0xFE00:
		// Echo RAM mirrors $C000-$DDFF
		return m.wram[addr-0xE000]
	case addr < 0xFEA0:
		return m.oam[addr-0xFE00]
	case addr < 0xFF00:
		return 0xFF // unusable
	case addr < 0xFF80:
		return m.io.Read(uint8(addr - 0xFF00))
	case addr < 0xFFFF:
		return m.hram[addr-0xFF80]
	}
	return m.ie
}

// Write stores val at addr. ROM and the unusable range ignore writes.
func (m *Memory) Write(addr uint16, val uint8) {
	switch {
	case addr < 0x8000:
		// ROM only cartridge, no mapper registers
	case addr < 0xA000:
		m.vram[addr-0x8000] = val
	case addr < 0xC000:
		m.eram[addr-0xA000] = val
	case addr < 0xE000:
		m.wram[addr-0xC000] = val
	case addr < 0xFE00:
		m.wram[addr-0xE000] = val
	case addr < 0xFEA0:
		m.oam[addr-0xFE00] = val
	case addr < 0xFF00:
	case addr < 0xFF80:
		m.io.Write(uint8(addr-0xFF00), val)
	case addr < 0xFFFF:
		m.hram[addr-0xFF80] = val
	default:
		m.ie = val
	}
}

// Peek reads addr without triggering I/O side effects. Used by the memory
// inspector.
func (m *Memory) Peek(addr uint16) uint8 {
	if addr >= 0xFF00 && addr < 0xFF80 {
		return m.io.regs[addr-0xFF00]
	}
	return m.Read(addr)
}

// Press marks the buttons in mask as held.
func (m *Memory) Press(mask uint8) {
	m.io.Input.Press(mask)
}

// Release marks the buttons in mask as released.
func (m *Memory) Release(mask uint8) {
	m.io.Input.Release(mask)
}

// GetROMCRC32 returns the CRC32 of the loaded ROM image.
func (m *Memory) GetROMCRC32() uint32 {
	return m.romCRC
}
