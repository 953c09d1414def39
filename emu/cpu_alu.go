package emu

// Flag bits in F. The low nibble is always zero.
const (
	flagZ uint8 = 0x80
	flagN uint8 = 0x40
	flagH uint8 = 0x20
	flagC uint8 = 0x10
)

func flags(z, n, h, c bool) uint8 {
	var f uint8
	if z {
		f |= flagZ
	}
	if n {
		f |= flagN
	}
	if h {
		f |= flagH
	}
	if c {
		f |= flagC
	}
	return f
}

// add8 returns a+b+carry and the resulting flags.
func add8(a, b uint8, carry bool) (uint8, uint8) {
	var cin uint16
	if carry {
		cin = 1
	}
	sum := uint16(a) + uint16(b) + cin
	r := uint8(sum)
	h := uint16(a&0x0F)+uint16(b&0x0F)+cin > 0x0F
	return r, flags(r == 0, false, h, sum > 0xFF)
}

// sub8 returns a-b-carry and the resulting flags.
func sub8(a, b uint8, carry bool) (uint8, uint8) {
	var cin int
	if carry {
		cin = 1
	}
	diff := int(a) - int(b) - cin
	r := uint8(diff)
	h := int(a&0x0F)-int(b&0x0F)-cin < 0
	return r, flags(r == 0, true, h, diff < 0)
}

// add16 returns hl+v. Z is carried over from f.
func add16(hl, v uint16, f uint8) (uint16, uint8) {
	sum := uint32(hl) + uint32(v)
	h := hl&0x0FFF+v&0x0FFF > 0x0FFF
	return uint16(sum), f&flagZ | flags(false, false, h, sum > 0xFFFF)
}

// inc8 returns v+1. C is carried over from f.
func inc8(v uint8, f uint8) (uint8, uint8) {
	r := v + 1
	return r, f&flagC | flags(r == 0, false, v&0x0F == 0x0F, false)
}

// dec8 returns v-1. C is carried over from f.
func dec8(v uint8, f uint8) (uint8, uint8) {
	r := v - 1
	return r, f&flagC | flags(r == 0, true, v&0x0F == 0, false)
}

func and8(a, b uint8) (uint8, uint8) {
	r := a & b
	return r, flags(r == 0, false, true, false)
}

func or8(a, b uint8) (uint8, uint8) {
	r := a | b
	return r, flags(r == 0, false, false, false)
}

func xor8(a, b uint8) (uint8, uint8) {
	r := a ^ b
	return r, flags(r == 0, false, false, false)
}

// daa adjusts a after a BCD add or subtract. N is carried over from f.
func daa(a uint8, f uint8) (uint8, uint8) {
	carry := f&flagC != 0
	var adjust uint8
	if f&flagN == 0 {
		if f&flagH != 0 || a&0x0F > 0x09 {
			adjust |= 0x06
		}
		if carry || a > 0x99 {
			adjust |= 0x60
			carry = true
		}
		a += adjust
	} else {
		if f&flagH != 0 {
			adjust |= 0x06
		}
		if carry {
			adjust |= 0x60
		}
		a -= adjust
	}
	return a, f&flagN | flags(a == 0, false, false, carry)
}
