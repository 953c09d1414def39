package emu

import (
	"errors"
	"fmt"
	"log"
)

// Button bits for PressInput and ReleaseInput.
const (
	ButtonRight  uint8 = 1 << 0
	ButtonLeft   uint8 = 1 << 1
	ButtonUp     uint8 = 1 << 2
	ButtonDown   uint8 = 1 << 3
	ButtonA      uint8 = 1 << 4
	ButtonB      uint8 = 1 << 5
	ButtonSelect uint8 = 1 << 6
	ButtonStart  uint8 = 1 << 7

	AllButtons uint8 = 0xFF
)

// ErrUnsupportedROMSize is returned when the ROM is not a 32KB ROM-only image.
var ErrUnsupportedROMSize = errors.New("unsupported rom size")

// Machine wires the CPU, memory and PPU to a shared clock.
type Machine struct {
	cpu    *CPU
	mem    *Memory
	ppu    *PPU
	apu    *APU
	header Header
}

// NewMachine builds a machine around rom, which must be exactly 32KB.
// chip receives sound register writes; nil selects a SilentSoundChip.
func NewMachine(rom []byte, chip SoundChip) (*Machine, error) {
	if len(rom) != romSize {
		return nil, fmt.Errorf("%w: %d bytes, expected %d", ErrUnsupportedROMSize, len(rom), romSize)
	}

	header, err := ParseHeader(rom)
	if err != nil {
		return nil, err
	}
	if header.CartType != CartROMOnly && header.CartType != CartROMRAMBattery {
		log.Printf("cartridge type 0x%02X has a mapper; running as ROM only", header.CartType)
	}
	if !header.ChecksumValid() {
		log.Printf("cartridge header checksum mismatch (stored 0x%02X)", header.HeaderChecksum)
	}

	apu := NewAPU(chip)
	return &Machine{
		cpu:    NewCPU(),
		mem:    NewMemory(rom, apu),
		ppu:    NewPPU(),
		apu:    apu,
		header: header,
	}, nil
}

// Step runs one CPU instruction and advances video and audio clocks by its
// cost. It returns true when the instruction completed a frame.
func (m *Machine) Step(fb []byte, stride int) (bool, error) {
	cycles, err := m.cpu.Step(m.mem)
	if err != nil {
		return false, err
	}

	m.apu.AdvanceClocks(uint32(cycles))
	m.ppu.Step(m.mem, cycles, fb, stride)

	if m.ppu.IsFrameReady() {
		m.apu.EndFrame(m.apu.Clock())
		return true, nil
	}
	return false, nil
}

// RunFrame steps until a frame completes.
func (m *Machine) RunFrame(fb []byte, stride int) error {
	for {
		done, err := m.Step(fb, stride)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
}

// PressInput marks the buttons in mask as held.
func (m *Machine) PressInput(mask uint8) {
	m.mem.Press(mask)
}

// ReleaseInput marks the buttons in mask as released.
func (m *Machine) ReleaseInput(mask uint8) {
	m.mem.Release(mask)
}

// TogglePalette swaps between GreenPalette and ColorPalette.
func (m *Machine) TogglePalette() {
	if m.ppu.Palette() == GreenPalette {
		m.ppu.SetPalette(ColorPalette)
	} else {
		m.ppu.SetPalette(GreenPalette)
	}
}

// SetPalette sets the output palette.
func (m *Machine) SetPalette(p Palette) {
	m.ppu.SetPalette(p)
}

// Palette returns the output palette.
func (m *Machine) Palette() Palette {
	return m.ppu.Palette()
}

// Header returns the parsed cartridge header.
func (m *Machine) Header() Header {
	return m.header
}

// ReadSamples drains audio produced by the sound chip.
func (m *Machine) ReadSamples(out []int16) int {
	return m.apu.ReadSamples(out)
}
