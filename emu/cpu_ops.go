package emu

// opHandler executes one decoded instruction and returns its T-cycle cost.
type opHandler func(c *CPU, bus Bus) int

// Dispatch tables. A nil entry is an unsupported opcode.
var (
	opTable = buildOpTable()
	cbTable = buildCBTable()
)

// Operand indices in the standard 3-bit register encoding.
const (
	rB  uint8 = 0
	rC  uint8 = 1
	rD  uint8 = 2
	rE  uint8 = 3
	rH  uint8 = 4
	rL  uint8 = 5
	rHL uint8 = 6
	rA  uint8 = 7
)

func buildOpTable() [256]opHandler {
	var t [256]opHandler

	t[0x00] = func(c *CPU, bus Bus) int { return 4 } // NOP

	// 16-bit loads and arithmetic
	t[0x01] = ld16Imm((*CPU).setBC)
	t[0x11] = ld16Imm((*CPU).setDE)
	t[0x21] = ld16Imm((*CPU).setHL)
	t[0x31] = ld16Imm(func(c *CPU, v uint16) { c.sp = v })
	t[0x03] = inc16((*CPU).bc, (*CPU).setBC)
	t[0x13] = inc16((*CPU).de, (*CPU).setDE)
	t[0x23] = inc16((*CPU).hl, (*CPU).setHL)
	t[0x0B] = dec16((*CPU).bc, (*CPU).setBC)
	t[0x1B] = dec16((*CPU).de, (*CPU).setDE)
	t[0x2B] = dec16((*CPU).hl, (*CPU).setHL)
	t[0x09] = addHL((*CPU).bc)
	t[0x19] = addHL((*CPU).de)

	// Indirect accumulator loads
	t[0x02] = func(c *CPU, bus Bus) int { bus.Write(c.bc(), c.a); return 8 }
	t[0x12] = func(c *CPU, bus Bus) int { bus.Write(c.de(), c.a); return 8 }
	t[0x0A] = func(c *CPU, bus Bus) int { c.a = bus.Read(c.bc()); return 8 }
	t[0x1A] = func(c *CPU, bus Bus) int { c.a = bus.Read(c.de()); return 8 }
	t[0x22] = func(c *CPU, bus Bus) int { hl := c.hl(); bus.Write(hl, c.a); c.setHL(hl + 1); return 8 }
	t[0x2A] = func(c *CPU, bus Bus) int { hl := c.hl(); c.a = bus.Read(hl); c.setHL(hl + 1); return 8 }
	t[0x32] = func(c *CPU, bus Bus) int { hl := c.hl(); bus.Write(hl, c.a); c.setHL(hl - 1); return 8 }
	t[0x3A] = func(c *CPU, bus Bus) int { hl := c.hl(); c.a = bus.Read(hl); c.setHL(hl - 1); return 8 }

	// 8-bit increment and decrement
	for _, r := range []uint8{rB, rC, rE, rL, rA} {
		t[0x04|r<<3] = incR(r)
	}
	for _, r := range []uint8{rB, rC, rE, rH, rL, rA} {
		t[0x05|r<<3] = decR(r)
	}
	t[0x34] = func(c *CPU, bus Bus) int {
		hl := c.hl()
		v, f := inc8(bus.Read(hl), c.f)
		bus.Write(hl, v)
		c.f = f
		return 12
	}
	t[0x35] = func(c *CPU, bus Bus) int {
		hl := c.hl()
		v, f := dec8(bus.Read(hl), c.f)
		bus.Write(hl, v)
		c.f = f
		return 12
	}

	// LD r,d8
	for _, r := range []uint8{rB, rC, rD, rE, rH, rL, rA} {
		t[0x06|r<<3] = ldRImm(r)
	}
	t[0x36] = func(c *CPU, bus Bus) int { bus.Write(c.hl(), c.fetch8(bus)); return 12 }

	// Accumulator rotates and adjusts
	t[0x07] = func(c *CPU, bus Bus) int { // RLCA
		carry := c.a&0x80 != 0
		c.a = c.a<<1 | c.a>>7
		c.f = flags(false, false, false, carry)
		return 4
	}
	t[0x27] = func(c *CPU, bus Bus) int { c.a, c.f = daa(c.a, c.f); return 4 }
	t[0x2F] = func(c *CPU, bus Bus) int { // CPL
		c.a = ^c.a
		c.f |= flagN | flagH
		return 4
	}

	// Relative jumps
	t[0x18] = jr(nil)
	t[0x20] = jr(condNZ)
	t[0x28] = jr(condZ)
	t[0x30] = jr(condNC)
	t[0x38] = jr(condC)

	// LD r,r'
	for _, op := range []uint8{
		0x40, 0x47, 0x4F, 0x54, 0x57, 0x5D, 0x5F, 0x60, 0x61, 0x62, 0x67,
		0x69, 0x6B, 0x6F, 0x78, 0x79, 0x7A, 0x7B, 0x7C, 0x7D,
	} {
		t[op] = ldRR(op>>3&7, op&7)
	}
	for _, r := range []uint8{rB, rC, rD, rE, rA} {
		t[0x46|r<<3] = ldRHL(r)
	}
	for _, r := range []uint8{rB, rC, rD, rE, rA} {
		t[0x70|r] = ldHLR(r)
	}

	// 8-bit ALU
	for _, r := range []uint8{rB, rD, rE, rL, rA} {
		t[0x80|r] = aluR((*CPU).add, r)
	}
	t[0x86] = aluHL((*CPU).add)
	t[0x89] = aluR((*CPU).adc, rC)
	t[0x8E] = aluHL((*CPU).adc)
	t[0x90] = aluR((*CPU).sub, rB)
	t[0x96] = aluHL((*CPU).sub)
	for _, r := range []uint8{rB, rC, rA} {
		t[0xA0|r] = aluR((*CPU).and, r)
		t[0xA8|r] = aluR((*CPU).xor, r)
	}
	for _, r := range []uint8{rB, rC, rD, rA} {
		t[0xB0|r] = aluR((*CPU).or, r)
	}
	t[0xB8] = aluR((*CPU).cp, rB)
	t[0xB9] = aluR((*CPU).cp, rC)
	t[0xBE] = aluHL((*CPU).cp)
	t[0xC6] = aluImm((*CPU).add)
	t[0xD6] = aluImm((*CPU).sub)
	t[0xE6] = aluImm((*CPU).and)
	t[0xEE] = aluImm((*CPU).xor)
	t[0xF6] = aluImm((*CPU).or)
	t[0xFE] = aluImm((*CPU).cp)

	// Calls, returns and jumps
	t[0xC0] = retCond(condNZ)
	t[0xC8] = retCond(condZ)
	t[0xD0] = retCond(condNC)
	t[0xD8] = retCond(condC)
	t[0xC9] = func(c *CPU, bus Bus) int { c.pc = c.pop(bus); return 16 }
	t[0xD9] = func(c *CPU, bus Bus) int { // RETI
		c.pc = c.pop(bus)
		c.ime = true
		return 16
	}
	t[0xC2] = jp(condNZ)
	t[0xCA] = jp(condZ)
	t[0xC3] = jp(nil)
	t[0xE9] = func(c *CPU, bus Bus) int { c.pc = c.hl(); return 4 }
	t[0xCD] = func(c *CPU, bus Bus) int {
		addr := c.fetch16(bus)
		c.push(bus, c.pc)
		c.pc = addr
		return 24
	}
	t[0xEF] = func(c *CPU, bus Bus) int { c.push(bus, c.pc); c.pc = 0x0028; return 16 }

	// Stack
	t[0xC1] = popRR((*CPU).setBC)
	t[0xD1] = popRR((*CPU).setDE)
	t[0xE1] = popRR((*CPU).setHL)
	t[0xF1] = popRR((*CPU).setAF)
	t[0xC5] = pushRR((*CPU).bc)
	t[0xD5] = pushRR((*CPU).de)
	t[0xE5] = pushRR((*CPU).hl)
	t[0xF5] = pushRR((*CPU).af)

	// High page and absolute loads
	t[0xE0] = func(c *CPU, bus Bus) int { bus.Write(0xFF00+uint16(c.fetch8(bus)), c.a); return 12 }
	t[0xF0] = func(c *CPU, bus Bus) int { c.a = bus.Read(0xFF00 + uint16(c.fetch8(bus))); return 12 }
	t[0xE2] = func(c *CPU, bus Bus) int { bus.Write(0xFF00+uint16(c.c), c.a); return 8 }
	t[0xEA] = func(c *CPU, bus Bus) int { bus.Write(c.fetch16(bus), c.a); return 16 }
	t[0xFA] = func(c *CPU, bus Bus) int { c.a = bus.Read(c.fetch16(bus)); return 16 }

	// Interrupt control
	t[0xF3] = func(c *CPU, bus Bus) int { // DI
		c.ime = false
		c.eiPending = false
		return 4
	}
	t[0xFB] = func(c *CPU, bus Bus) int { c.eiPending = true; return 4 } // EI

	return t
}

func buildCBTable() [256]opHandler {
	var t [256]opHandler

	t[0x27] = func(c *CPU, bus Bus) int { // SLA A
		carry := c.a&0x80 != 0
		c.a <<= 1
		c.f = flags(c.a == 0, false, false, carry)
		return 8
	}
	t[0x37] = func(c *CPU, bus Bus) int { // SWAP A
		c.a = c.a>>4 | c.a<<4
		c.f = flags(c.a == 0, false, false, false)
		return 8
	}
	t[0x3F] = func(c *CPU, bus Bus) int { // SRL A
		carry := c.a&0x01 != 0
		c.a >>= 1
		c.f = flags(c.a == 0, false, false, carry)
		return 8
	}

	for _, op := range []uint8{
		0x40, 0x41, 0x47, 0x48, 0x50, 0x57, 0x58, 0x5F, 0x60, 0x61,
		0x68, 0x69, 0x6F, 0x70, 0x71, 0x77, 0x78, 0x79, 0x7F,
	} {
		t[op] = bitR(op>>3&7, op&7)
	}
	t[0x7E] = bitHL(7)

	t[0x87] = func(c *CPU, bus Bus) int { c.a &^= 0x01; return 8 } // RES 0,A
	t[0x86] = resHLBit(0)
	t[0x9E] = resHLBit(3)
	t[0xBE] = resHLBit(7)
	t[0xDE] = setHLBit(3)
	t[0xFE] = setHLBit(7)

	return t
}

func condNZ(c *CPU) bool { return !c.flag(flagZ) }
func condZ(c *CPU) bool  { return c.flag(flagZ) }
func condNC(c *CPU) bool { return !c.flag(flagC) }
func condC(c *CPU) bool  { return c.flag(flagC) }

func (c *CPU) add(v uint8) { c.a, c.f = add8(c.a, v, false) }
func (c *CPU) adc(v uint8) { c.a, c.f = add8(c.a, v, c.flag(flagC)) }
func (c *CPU) sub(v uint8) { c.a, c.f = sub8(c.a, v, false) }
func (c *CPU) and(v uint8) { c.a, c.f = and8(c.a, v) }
func (c *CPU) or(v uint8)  { c.a, c.f = or8(c.a, v) }
func (c *CPU) xor(v uint8) { c.a, c.f = xor8(c.a, v) }
func (c *CPU) cp(v uint8)  { _, c.f = sub8(c.a, v, false) }

func ldRR(dst, src uint8) opHandler {
	return func(c *CPU, bus Bus) int {
		*c.reg(dst) = *c.reg(src)
		return 4
	}
}

func ldRHL(dst uint8) opHandler {
	return func(c *CPU, bus Bus) int {
		*c.reg(dst) = bus.Read(c.hl())
		return 8
	}
}

func ldHLR(src uint8) opHandler {
	return func(c *CPU, bus Bus) int {
		bus.Write(c.hl(), *c.reg(src))
		return 8
	}
}

func ldRImm(dst uint8) opHandler {
	return func(c *CPU, bus Bus) int {
		*c.reg(dst) = c.fetch8(bus)
		return 8
	}
}

func incR(r uint8) opHandler {
	return func(c *CPU, bus Bus) int {
		p := c.reg(r)
		*p, c.f = inc8(*p, c.f)
		return 4
	}
}

func decR(r uint8) opHandler {
	return func(c *CPU, bus Bus) int {
		p := c.reg(r)
		*p, c.f = dec8(*p, c.f)
		return 4
	}
}

func aluR(op func(*CPU, uint8), src uint8) opHandler {
	return func(c *CPU, bus Bus) int {
		op(c, *c.reg(src))
		return 4
	}
}

func aluHL(op func(*CPU, uint8)) opHandler {
	return func(c *CPU, bus Bus) int {
		op(c, bus.Read(c.hl()))
		return 8
	}
}

func aluImm(op func(*CPU, uint8)) opHandler {
	return func(c *CPU, bus Bus) int {
		op(c, c.fetch8(bus))
		return 8
	}
}

func ld16Imm(set func(*CPU, uint16)) opHandler {
	return func(c *CPU, bus Bus) int {
		set(c, c.fetch16(bus))
		return 12
	}
}

func inc16(get func(*CPU) uint16, set func(*CPU, uint16)) opHandler {
	return func(c *CPU, bus Bus) int {
		set(c, get(c)+1)
		return 8
	}
}

func dec16(get func(*CPU) uint16, set func(*CPU, uint16)) opHandler {
	return func(c *CPU, bus Bus) int {
		set(c, get(c)-1)
		return 8
	}
}

func addHL(get func(*CPU) uint16) opHandler {
	return func(c *CPU, bus Bus) int {
		var v uint16
		v, c.f = add16(c.hl(), get(c), c.f)
		c.setHL(v)
		return 8
	}
}

func pushRR(get func(*CPU) uint16) opHandler {
	return func(c *CPU, bus Bus) int {
		c.push(bus, get(c))
		return 16
	}
}

func popRR(set func(*CPU, uint16)) opHandler {
	return func(c *CPU, bus Bus) int {
		set(c, c.pop(bus))
		return 12
	}
}

// jr is JR r8, or JR cc,r8 when cond is non-nil.
func jr(cond func(*CPU) bool) opHandler {
	return func(c *CPU, bus Bus) int {
		off := int8(c.fetch8(bus))
		if cond != nil && !cond(c) {
			return 8
		}
		c.pc += uint16(off)
		return 12
	}
}

// jp is JP a16, or JP cc,a16 when cond is non-nil.
func jp(cond func(*CPU) bool) opHandler {
	return func(c *CPU, bus Bus) int {
		addr := c.fetch16(bus)
		if cond != nil && !cond(c) {
			return 12
		}
		c.pc = addr
		return 16
	}
}

func retCond(cond func(*CPU) bool) opHandler {
	return func(c *CPU, bus Bus) int {
		if !cond(c) {
			return 8
		}
		c.pc = c.pop(bus)
		return 20
	}
}

func bitR(bit, r uint8) opHandler {
	return func(c *CPU, bus Bus) int {
		c.testBit(bit, *c.reg(r))
		return 8
	}
}

func bitHL(bit uint8) opHandler {
	return func(c *CPU, bus Bus) int {
		c.testBit(bit, bus.Read(c.hl()))
		return 12
	}
}

func (c *CPU) testBit(bit, v uint8) {
	c.f = c.f&flagC | flags(v&(1<<bit) == 0, false, true, false)
}

func resHLBit(bit uint8) opHandler {
	return func(c *CPU, bus Bus) int {
		hl := c.hl()
		bus.Write(hl, bus.Read(hl)&^(1<<bit))
		return 16
	}
}

func setHLBit(bit uint8) opHandler {
	return func(c *CPU, bus Bus) int {
		hl := c.hl()
		bus.Write(hl, bus.Read(hl)|1<<bit)
		return 16
	}
}
