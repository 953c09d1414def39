package emu

import "fmt"

const (
	vblankVector      = 0x0040
	interruptCycles   = 20
	vblankInterruptIF = 0x01
)

// UnsupportedOpcodeError is returned by CPU.Step when it decodes an opcode
// outside the implemented set. Execution cannot continue past it.
type UnsupportedOpcodeError struct {
	Opcode   uint8
	Prefixed bool   // opcode follows a $CB prefix
	PC       uint16 // address of the first opcode byte
}

func (e *UnsupportedOpcodeError) Error() string {
	if e.Prefixed {
		return fmt.Sprintf("unsupported opcode 0xCB 0x%02X at 0x%04X", e.Opcode, e.PC)
	}
	return fmt.Sprintf("unsupported opcode 0x%02X at 0x%04X", e.Opcode, e.PC)
}

// CPU is the DMG instruction interpreter.
type CPU struct {
	a, f uint8
	b, c uint8
	d, e uint8
	h, l uint8
	sp   uint16
	pc   uint16

	ime       bool
	eiPending bool // EI executed; IME turns on after the next instruction
}

// NewCPU returns a CPU in the state the boot ROM leaves it in.
func NewCPU() *CPU {
	return &CPU{
		a: 0x01, f: 0xB0,
		b: 0x00, c: 0x13,
		d: 0x00, e: 0xD8,
		h: 0x01, l: 0x4D,
		sp: 0xFFFE,
		pc: 0x0100,
	}
}

// Step executes one instruction, or services a pending VBlank interrupt,
// and returns the T-cycles it took.
func (c *CPU) Step(bus Bus) (int, error) {
	if c.ime && bus.Read(addrIE)&bus.Read(addrIF)&vblankInterruptIF != 0 {
		return c.serviceVBlank(bus), nil
	}

	// EI applies after the instruction that follows it. A DI in between
	// clears eiPending and cancels it.
	armed := c.eiPending

	start := c.pc
	op := c.fetch8(bus)

	var cycles int
	if op == 0xCB {
		cb := c.fetch8(bus)
		h := cbTable[cb]
		if h == nil {
			return 0, &UnsupportedOpcodeError{Opcode: cb, Prefixed: true, PC: start}
		}
		cycles = h(c, bus)
	} else {
		h := opTable[op]
		if h == nil {
			return 0, &UnsupportedOpcodeError{Opcode: op, PC: start}
		}
		cycles = h(c, bus)
	}

	if armed && c.eiPending {
		c.ime = true
		c.eiPending = false
	}
	return cycles, nil
}

func (c *CPU) serviceVBlank(bus Bus) int {
	bus.Write(addrIF, bus.Read(addrIF)&^vblankInterruptIF)
	c.ime = false
	c.push(bus, c.pc)
	c.pc = vblankVector
	return interruptCycles
}

func (c *CPU) fetch8(bus Bus) uint8 {
	v := bus.Read(c.pc)
	c.pc++
	return v
}

func (c *CPU) fetch16(bus Bus) uint16 {
	lo := c.fetch8(bus)
	hi := c.fetch8(bus)
	return uint16(hi)<<8 | uint16(lo)
}

func (c *CPU) push(bus Bus, v uint16) {
	c.sp -= 2
	bus.Write(c.sp, uint8(v))
	bus.Write(c.sp+1, uint8(v>>8))
}

func (c *CPU) pop(bus Bus) uint16 {
	lo := bus.Read(c.sp)
	hi := bus.Read(c.sp + 1)
	c.sp += 2
	return uint16(hi)<<8 | uint16(lo)
}

func (c *CPU) af() uint16 { return uint16(c.a)<<8 | uint16(c.f) }
func (c *CPU) bc() uint16 { return uint16(c.b)<<8 | uint16(c.c) }
func (c *CPU) de() uint16 { return uint16(c.d)<<8 | uint16(c.e) }
func (c *CPU) hl() uint16 { return uint16(c.h)<<8 | uint16(c.l) }

func (c *CPU) setAF(v uint16) { c.a, c.f = uint8(v>>8), uint8(v)&0xF0 }
func (c *CPU) setBC(v uint16) { c.b, c.c = uint8(v>>8), uint8(v) }
func (c *CPU) setDE(v uint16) { c.d, c.e = uint8(v>>8), uint8(v) }
func (c *CPU) setHL(v uint16) { c.h, c.l = uint8(v>>8), uint8(v) }

func (c *CPU) flag(mask uint8) bool { return c.f&mask != 0 }

// reg returns the 8-bit register for the standard 3-bit operand encoding
// (B C D E H L - A). Index 6 is (HL) and must be handled by the caller.
func (c *CPU) reg(i uint8) *uint8 {
	switch i {
	case 0:
		return &c.b
	case 1:
		return &c.c
	case 2:
		return &c.d
	case 3:
		return &c.e
	case 4:
		return &c.h
	case 5:
		return &c.l
	case 7:
		return &c.a
	}
	panic(fmt.Sprintf("emu: register index %d has no register", i))
}

// PC returns the program counter.
func (c *CPU) PC() uint16 { return c.pc }
