package emu

import (
	"encoding/binary"
	"errors"
	"hash/crc32"
	"log"

	emucore "github.com/user-none/eblitui/api"
)

// Compile-time interface checks.
var _ emucore.Emulator = (*Emulator)(nil)
var _ emucore.SaveStater = (*Emulator)(nil)
var _ emucore.BatterySaver = (*Emulator)(nil)
var _ emucore.MemoryInspector = (*Emulator)(nil)
var _ emucore.MemoryMapper = (*Emulator)(nil)

const (
	Name    = "edmg"
	Version = "0.1.0"

	sampleRate = 48000
)

// Save state format constants
const (
	stateVersion    = 1
	stateMagic      = "edmgDMGState"
	stateHeaderSize = 22 // magic(12) + version(2) + romCRC(4) + dataCRC(4)
)

// Emulator adapts a Machine to the eblitui emulator interfaces.
type Emulator struct {
	machine *Machine

	rgb  []byte // RGB24 frame the PPU renders into
	rgba []byte // RGBA copy handed to the frontend

	prevButtons uint8

	audioScratch []int16
	audioBuffer  []int16
}

// NewEmulator creates an emulator for rom. The region is ignored; the DMG
// has a single timing.
func NewEmulator(rom []byte, region Region) (Emulator, error) {
	m, err := NewMachine(rom, nil)
	if err != nil {
		return Emulator{}, err
	}
	return Emulator{
		machine:      m,
		rgb:          make([]byte, RGBStride*ScreenHeight),
		rgba:         make([]byte, ScreenWidth*4*ScreenHeight),
		audioScratch: make([]int16, 4096),
	}, nil
}

// Machine returns the underlying machine.
func (e *Emulator) Machine() *Machine {
	return e.machine
}

// RunFrame executes one frame of emulation. An unsupported opcode is fatal.
func (e *Emulator) RunFrame() {
	if err := e.machine.RunFrame(e.rgb, RGBStride); err != nil {
		log.Fatalf("emulation stopped: %v", err)
	}

	for src, dst := 0, 0; src < len(e.rgb); src, dst = src+3, dst+4 {
		e.rgba[dst] = e.rgb[src]
		e.rgba[dst+1] = e.rgb[src+1]
		e.rgba[dst+2] = e.rgb[src+2]
		e.rgba[dst+3] = 0xFF
	}

	n := e.machine.ReadSamples(e.audioScratch)
	e.audioBuffer = e.audioScratch[:n]
}

// GetAudioSamples returns the frame's samples as 16-bit stereo PCM.
func (e *Emulator) GetAudioSamples() []int16 {
	return e.audioBuffer
}

// SetInput translates the frontend button bitmask for player 0. Other
// players are ignored.
func (e *Emulator) SetInput(player int, buttons uint32) {
	if player != 0 {
		return
	}

	var cur uint8
	if buttons&(1<<emucore.ButtonUp) != 0 {
		cur |= ButtonUp
	}
	if buttons&(1<<emucore.ButtonDown) != 0 {
		cur |= ButtonDown
	}
	if buttons&(1<<emucore.ButtonLeft) != 0 {
		cur |= ButtonLeft
	}
	if buttons&(1<<emucore.ButtonRight) != 0 {
		cur |= ButtonRight
	}
	if buttons&(1<<4) != 0 {
		cur |= ButtonA
	}
	if buttons&(1<<5) != 0 {
		cur |= ButtonB
	}
	if buttons&(1<<6) != 0 {
		cur |= ButtonSelect
	}
	if buttons&(1<<7) != 0 {
		cur |= ButtonStart
	}

	if released := e.prevButtons &^ cur; released != 0 {
		e.machine.ReleaseInput(released)
	}
	if pressed := cur &^ e.prevButtons; pressed != 0 {
		e.machine.PressInput(pressed)
	}
	e.prevButtons = cur
}

// GetFramebuffer returns RGBA pixel data for the current frame.
func (e *Emulator) GetFramebuffer() []byte {
	return e.rgba
}

// GetFramebufferStride returns the stride (bytes per row) of the framebuffer.
func (e *Emulator) GetFramebufferStride() int {
	return ScreenWidth * 4
}

// GetActiveHeight returns the display height.
func (e *Emulator) GetActiveHeight() int {
	return ScreenHeight
}

// GetRegion always reports NTSC.
func (e *Emulator) GetRegion() Region {
	return RegionNTSC
}

// SetRegion is a no-op.
func (e *Emulator) SetRegion(region Region) {}

// GetTiming returns FPS and scanline count.
func (e *Emulator) GetTiming() emucore.Timing {
	return emucore.Timing{
		FPS:       FrameRate,
		Scanlines: LinesPerFrame,
	}
}

// SetOption applies a core option change identified by key.
func (e *Emulator) SetOption(key string, value string) {
	switch key {
	case "green_palette":
		if value == "true" {
			e.machine.SetPalette(GreenPalette)
		} else {
			e.machine.SetPalette(ColorPalette)
		}
	}
}

// ROMCRC32 returns the CRC32 of the loaded ROM. Save files are keyed by it.
func (e *Emulator) ROMCRC32() uint32 {
	return e.machine.mem.GetROMCRC32()
}

// Close releases any resources held by the emulator.
func (e *Emulator) Close() {}

// HasSRAM reports whether the cartridge has battery backed RAM.
func (e *Emulator) HasSRAM() bool {
	return e.machine.header.HasBattery()
}

// GetSRAM returns a copy of external RAM.
func (e *Emulator) GetSRAM() []byte {
	sram := make([]byte, len(e.machine.mem.eram))
	copy(sram, e.machine.mem.eram[:])
	return sram
}

// SetSRAM loads external RAM.
func (e *Emulator) SetSRAM(data []byte) {
	copy(e.machine.mem.eram[:], data)
}

// =============================================================================
// Save State Serialization
// =============================================================================

const (
	cpuStateSize = 8 + 2 + 2 + 2 // registers, sp, pc, ime/eiPending
	memStateSize = vramSize + eramSize + wramSize + oamSize + ioSize + hramSize + 1 + 1
	ppuStateSize = 1 + 2 + 1 + 1 + 12 // line, dot, mode, frameReady, palette
	apuStateSize = 4
)

// SerializeSize returns the total size in bytes needed for a save state.
func SerializeSize() int {
	return stateHeaderSize + cpuStateSize + memStateSize + ppuStateSize + apuStateSize
}

// Serialize creates a save state and returns it as a byte slice.
func (e *Emulator) Serialize() ([]byte, error) {
	data := make([]byte, SerializeSize())

	copy(data[0:12], stateMagic)
	binary.LittleEndian.PutUint16(data[12:14], stateVersion)
	binary.LittleEndian.PutUint32(data[14:18], e.machine.mem.GetROMCRC32())

	offset := stateHeaderSize
	offset = e.serializeCPU(data, offset)
	offset = e.serializeMemory(data, offset)
	offset = e.serializePPU(data, offset)
	binary.LittleEndian.PutUint32(data[offset:], e.machine.apu.clockAcc)

	dataCRC := crc32.ChecksumIEEE(data[stateHeaderSize:])
	binary.LittleEndian.PutUint32(data[18:22], dataCRC)

	return data, nil
}

// Deserialize restores emulator state from a save state byte slice.
func (e *Emulator) Deserialize(data []byte) error {
	if err := e.VerifyState(data); err != nil {
		return err
	}

	offset := stateHeaderSize
	offset = e.deserializeCPU(data, offset)
	offset = e.deserializeMemory(data, offset)
	offset = e.deserializePPU(data, offset)
	e.machine.apu.clockAcc = binary.LittleEndian.Uint32(data[offset:])

	// SetInput sends only changes, so it must start from the restored buttons
	e.prevButtons = e.machine.mem.io.Input.buttons

	return nil
}

// VerifyState checks if a save state is valid without loading it.
func (e *Emulator) VerifyState(data []byte) error {
	if len(data) < SerializeSize() {
		return errors.New("save state too short")
	}
	if string(data[0:12]) != stateMagic {
		return errors.New("invalid save state magic")
	}
	if binary.LittleEndian.Uint16(data[12:14]) > stateVersion {
		return errors.New("unsupported save state version")
	}
	if binary.LittleEndian.Uint32(data[14:18]) != e.machine.mem.GetROMCRC32() {
		return errors.New("save state is for a different ROM")
	}
	if binary.LittleEndian.Uint32(data[18:22]) != crc32.ChecksumIEEE(data[stateHeaderSize:]) {
		return errors.New("save state data is corrupted")
	}
	return nil
}

func (e *Emulator) serializeCPU(data []byte, offset int) int {
	c := e.machine.cpu
	copy(data[offset:], []byte{c.a, c.f, c.b, c.c, c.d, c.e, c.h, c.l})
	offset += 8
	binary.LittleEndian.PutUint16(data[offset:], c.sp)
	binary.LittleEndian.PutUint16(data[offset+2:], c.pc)
	offset += 4
	data[offset] = boolByte(c.ime)
	data[offset+1] = boolByte(c.eiPending)
	return offset + 2
}

func (e *Emulator) deserializeCPU(data []byte, offset int) int {
	c := e.machine.cpu
	c.a, c.f = data[offset], data[offset+1]&0xF0
	c.b, c.c = data[offset+2], data[offset+3]
	c.d, c.e = data[offset+4], data[offset+5]
	c.h, c.l = data[offset+6], data[offset+7]
	offset += 8
	c.sp = binary.LittleEndian.Uint16(data[offset:])
	c.pc = binary.LittleEndian.Uint16(data[offset+2:])
	offset += 4
	c.ime = data[offset] != 0
	c.eiPending = data[offset+1] != 0
	return offset + 2
}

func (e *Emulator) serializeMemory(data []byte, offset int) int {
	m := e.machine.mem
	for _, region := range [][]byte{m.vram[:], m.eram[:], m.wram[:], m.oam[:], m.io.regs[:], m.hram[:]} {
		offset += copy(data[offset:], region)
	}
	data[offset] = m.ie
	data[offset+1] = m.io.Input.buttons
	return offset + 2
}

func (e *Emulator) deserializeMemory(data []byte, offset int) int {
	m := e.machine.mem
	for _, region := range [][]byte{m.vram[:], m.eram[:], m.wram[:], m.oam[:], m.io.regs[:], m.hram[:]} {
		offset += copy(region, data[offset:offset+len(region)])
	}
	m.ie = data[offset]
	m.io.Input.buttons = data[offset+1]
	return offset + 2
}

func (e *Emulator) serializePPU(data []byte, offset int) int {
	p := e.machine.ppu
	data[offset] = p.line
	binary.LittleEndian.PutUint16(data[offset+1:], p.dot)
	data[offset+3] = uint8(p.mode)
	data[offset+4] = boolByte(p.frameReady)
	offset += 5
	for _, c := range p.palette {
		offset += copy(data[offset:], c[:])
	}
	return offset
}

func (e *Emulator) deserializePPU(data []byte, offset int) int {
	p := e.machine.ppu
	p.line = data[offset]
	p.dot = binary.LittleEndian.Uint16(data[offset+1:])
	p.mode = Mode(data[offset+3] & 0x03)
	p.frameReady = data[offset+4] != 0
	offset += 5
	for i := range p.palette {
		offset += copy(p.palette[i][:], data[offset:offset+3])
	}
	return offset
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

// =============================================================================
// MemoryInspector interface
// =============================================================================

// Flat address boundaries for ReadMemory.
const (
	systemRAMStart = 0x0000
	systemRAMEnd   = 0x1FFF
	saveRAMStart   = 0x2000
	saveRAMEnd     = 0x3FFF
	hramStart      = 0x4000
	hramEnd        = 0x407E
	ioStart        = 0x4080
	ioEnd          = 0x40FF
)

// ReadMemory reads from a flat address into buf and returns the number
// of bytes read. Reads have no side effects. Flat address mapping:
// 0x0000-0x1FFF -> Work RAM (8KB)
// 0x2000-0x3FFF -> External RAM (8KB)
// 0x4000-0x407E -> High RAM (127 bytes)
// 0x4080-0x40FF -> I/O registers (128 bytes, stored values)
func (e *Emulator) ReadMemory(addr uint32, buf []byte) uint32 {
	m := e.machine.mem
	var count uint32
	for i := range buf {
		cur := addr + uint32(i)
		var busAddr uint16
		switch {
		case cur <= systemRAMEnd:
			busAddr = 0xC000 + uint16(cur-systemRAMStart)
		case cur >= saveRAMStart && cur <= saveRAMEnd:
			busAddr = 0xA000 + uint16(cur-saveRAMStart)
		case cur >= hramStart && cur <= hramEnd:
			busAddr = 0xFF80 + uint16(cur-hramStart)
		case cur >= ioStart && cur <= ioEnd:
			busAddr = 0xFF00 + uint16(cur-ioStart)
		default:
			return count
		}
		buf[i] = m.Peek(busAddr)
		count++
	}
	return count
}

// =============================================================================
// MemoryMapper interface
// =============================================================================

// MemoryMap returns a list of available memory regions with sizes.
func (e *Emulator) MemoryMap() []emucore.MemoryRegion {
	return []emucore.MemoryRegion{
		{Type: emucore.MemorySystemRAM, Size: wramSize},
		{Type: emucore.MemorySaveRAM, Size: eramSize},
	}
}

// ReadRegion returns a copy of the specified memory region.
func (e *Emulator) ReadRegion(regionType int) []byte {
	switch regionType {
	case emucore.MemorySystemRAM:
		out := make([]byte, wramSize)
		copy(out, e.machine.mem.wram[:])
		return out
	case emucore.MemorySaveRAM:
		return e.GetSRAM()
	default:
		return nil
	}
}

// WriteRegion writes data to the specified memory region.
func (e *Emulator) WriteRegion(regionType int, data []byte) {
	switch regionType {
	case emucore.MemorySystemRAM:
		copy(e.machine.mem.wram[:], data)
	case emucore.MemorySaveRAM:
		e.SetSRAM(data)
	}
}
