package emu

import "math/rand/v2"

// I/O register offsets relative to $FF00.
const (
	regP1   = 0x00
	regDIV  = 0x04
	regIF   = 0x0F
	regNR10 = 0x10
	regNR52 = 0x26
	regWave = 0x3F // last byte of wave RAM
	regLCDC = 0x40
	regSTAT = 0x41
	regSCY  = 0x42
	regSCX  = 0x43
	regLY   = 0x44
	regLYC  = 0x45
	regDMA  = 0x46
	regBGP  = 0x47
	regOBP0 = 0x48
	regOBP1 = 0x49
)

// Full bus addresses of the registers the PPU and CPU touch.
const (
	addrIF   = 0xFF00 + regIF
	addrLCDC = 0xFF00 + regLCDC
	addrSTAT = 0xFF00 + regSTAT
	addrSCY  = 0xFF00 + regSCY
	addrSCX  = 0xFF00 + regSCX
	addrLY   = 0xFF00 + regLY
	addrLYC  = 0xFF00 + regLYC
	addrBGP  = 0xFF00 + regBGP
	addrOBP0 = 0xFF00 + regOBP0
	addrOBP1 = 0xFF00 + regOBP1
	addrIE   = 0xFFFF
)

const directionMask = ButtonRight | ButtonLeft | ButtonUp | ButtonDown

// Input holds the pressed button state. A set bit means held.
type Input struct {
	buttons uint8
}

// Press sets the bits in mask. Each direction being pressed releases its
// opposite so the pad never reports left and right (or up and down) at once.
// Within one mask Right wins over Left and Up over Down.
func (in *Input) Press(mask uint8) {
	if mask&ButtonRight != 0 {
		mask &^= ButtonLeft
	}
	if mask&ButtonUp != 0 {
		mask &^= ButtonDown
	}

	held := in.buttons
	if mask&ButtonRight != 0 {
		held &^= ButtonLeft
	}
	if mask&ButtonLeft != 0 {
		held &^= ButtonRight
	}
	if mask&ButtonUp != 0 {
		held &^= ButtonDown
	}
	if mask&ButtonDown != 0 {
		held &^= ButtonUp
	}
	in.buttons = held | mask
}

// Release clears the bits in mask.
func (in *Input) Release(mask uint8) {
	in.buttons &^= mask
}

// Buttons returns the raw held-button bitmask.
func (in *Input) Buttons() uint8 {
	return in.buttons
}

// lines returns the active-low low nibble of P1 for the given select bits.
// Selecting both groups or neither reports nothing pressed.
func (in *Input) lines(p1 uint8) uint8 {
	selButtons := p1&0x20 == 0 // P15
	selDpad := p1&0x10 == 0    // P14

	var pressed uint8
	switch {
	case selButtons && !selDpad:
		pressed = in.buttons >> 4
	case selDpad && !selButtons:
		pressed = in.buttons & directionMask
	}
	return ^pressed & 0x0F
}

// ioHandler holds the side effects for one register. A nil hook falls back
// to plain storage.
type ioHandler struct {
	read  func(io *DMGIO) uint8
	write func(io *DMGIO, addr uint8, val uint8)
}

// DMGIO is the $FF00-$FF7F register file with its dispatch table.
type DMGIO struct {
	regs     [ioSize]uint8
	handlers [ioSize]ioHandler
	mem      *Memory
	apu      *APU
	Input    *Input
}

// NewDMGIO creates the register block with post-boot values.
func NewDMGIO(mem *Memory, apu *APU) *DMGIO {
	io := &DMGIO{
		mem:   mem,
		apu:   apu,
		Input: &Input{},
	}

	io.handlers[regP1] = ioHandler{read: (*DMGIO).readP1, write: (*DMGIO).writeP1}
	io.handlers[regDIV] = ioHandler{read: (*DMGIO).readDIV, write: (*DMGIO).writeDIV}
	io.handlers[regDMA] = ioHandler{write: (*DMGIO).writeDMA}
	for r := regNR10; r <= regWave; r++ {
		io.handlers[r] = ioHandler{write: (*DMGIO).writeSound}
	}
	io.handlers[regNR52] = ioHandler{write: (*DMGIO).writeNR52}

	io.regs[regP1] = 0xCF
	io.regs[regIF] = 0xE1
	io.regs[regNR52] = 0xF1
	io.regs[regLCDC] = 0x91
	io.regs[regSTAT] = 0x85
	io.regs[regBGP] = 0xFC
	io.regs[regOBP0] = 0xFF
	io.regs[regOBP1] = 0xFF

	return io
}

// Read returns the register at offset addr.
func (io *DMGIO) Read(addr uint8) uint8 {
	if h := io.handlers[addr].read; h != nil {
		return h(io)
	}
	return io.regs[addr]
}

// Write stores val at offset addr, running the register's side effects.
func (io *DMGIO) Write(addr uint8, val uint8) {
	if h := io.handlers[addr].write; h != nil {
		h(io, addr, val)
		return
	}
	io.regs[addr] = val
}

func (io *DMGIO) readP1() uint8 {
	p1 := io.regs[regP1]
	return p1&0x30 | 0xC0 | io.Input.lines(p1)
}

func (io *DMGIO) writeP1(_ uint8, val uint8) {
	io.regs[regP1] = io.regs[regP1]&0xCF | val&0x30 | 0xC0
}

// readDIV returns a random byte. The divider counter is not emulated.
func (io *DMGIO) readDIV() uint8 {
	return uint8(rand.IntN(256))
}

func (io *DMGIO) writeDIV(_ uint8, _ uint8) {
	io.regs[regDIV] = 0
}

// writeDMA copies 160 bytes from val<<8 into OAM before returning.
func (io *DMGIO) writeDMA(_ uint8, val uint8) {
	io.regs[regDMA] = val
	src := uint16(val) << 8
	for i := uint16(0); i < oamSize; i++ {
		io.mem.oam[i] = io.mem.Read(src + i)
	}
}

func (io *DMGIO) writeNR52(addr uint8, val uint8) {
	io.regs[addr] = val
	if io.apu != nil {
		io.apu.MasterEnable(val&0x80 != 0)
		io.apu.Write(0xFF00+uint16(addr), val)
	}
}

func (io *DMGIO) writeSound(addr uint8, val uint8) {
	io.regs[addr] = val
	if io.apu != nil {
		io.apu.Write(0xFF00+uint16(addr), val)
	}
}
