package emu

const (
	ScreenWidth  = 160
	ScreenHeight = 144

	// RGBStride is the row stride of a tightly packed RGB framebuffer.
	RGBStride = ScreenWidth * 3

	oamSearchEnd      = 80  // first dot of pixel transfer
	pixelTransferEnd  = 252 // first dot of HBlank; the line renders here
	maxSpritesPerLine = 10
)

// Mode is the LCD mode reported in STAT bits 0-1.
type Mode uint8

const (
	ModeHBlank   Mode = 0
	ModeVBlank   Mode = 1
	ModeOAM      Mode = 2
	ModeTransfer Mode = 3
)

// RGB is one output color.
type RGB [3]uint8

// Palette maps the four DMG shades, light to dark, to output colors.
type Palette [4]RGB

var (
	GreenPalette = Palette{
		{224, 248, 208},
		{136, 192, 112},
		{52, 104, 86},
		{8, 24, 32},
	}
	ColorPalette = Palette{
		{255, 255, 255},
		{255, 255, 0},
		{255, 0, 0},
		{0, 0, 0},
	}
)

// PPU is the scanline video controller. It renders one full line of
// background and sprites into a caller supplied RGB framebuffer when the
// line enters HBlank.
type PPU struct {
	line       uint8  // LY, 0-153
	dot        uint16 // 0-455 within the line
	mode       Mode
	frameReady bool
	palette    Palette
}

// NewPPU returns a PPU at line 0 in OAM search using ColorPalette.
func NewPPU() *PPU {
	return &PPU{
		mode:    ModeOAM,
		palette: ColorPalette,
	}
}

// Step advances the PPU one dot at a time for ticks dots. fb must hold at
// least ScreenHeight rows of stride bytes.
func (p *PPU) Step(bus Bus, ticks int, fb []byte, stride int) {
	for i := 0; i < ticks; i++ {
		p.dot++
		if p.dot == DotsPerLine {
			p.nextLine(bus)
		}

		mode := p.modeFor(p.line, p.dot)
		if mode != p.mode {
			p.mode = mode
			p.updateSTAT(bus)
		}

		if p.dot == pixelTransferEnd && p.line < VisibleLines {
			p.renderBackground(bus, fb, stride)
			p.renderSprites(bus, fb, stride)
		}
	}
}

func (p *PPU) modeFor(line uint8, dot uint16) Mode {
	switch {
	case line >= VisibleLines:
		return ModeVBlank
	case dot < oamSearchEnd:
		return ModeOAM
	case dot < pixelTransferEnd:
		return ModeTransfer
	}
	return ModeHBlank
}

func (p *PPU) nextLine(bus Bus) {
	p.dot = 0
	p.line++
	if p.line >= LinesPerFrame {
		p.line = 0
	}
	bus.Write(addrLY, p.line)

	if p.line == VisibleLines {
		bus.Write(addrIF, bus.Read(addrIF)|0x01)
		p.frameReady = true
	}
	p.mode = p.modeFor(p.line, p.dot)
	p.updateSTAT(bus)
}

// updateSTAT refreshes the mode bits and the LY=LYC flag. STAT interrupts
// are not raised.
func (p *PPU) updateSTAT(bus Bus) {
	stat := bus.Read(addrSTAT)
	next := stat&^0x07 | uint8(p.mode)&0x03
	if bus.Read(addrLYC) == p.line {
		next |= 0x04
	}
	if next != stat {
		bus.Write(addrSTAT, next)
	}
}

func (p *PPU) renderBackground(bus Bus, fb []byte, stride int) {
	lcdc := bus.Read(addrLCDC)
	if lcdc&0x80 == 0 || lcdc&0x01 == 0 {
		return
	}

	scy := bus.Read(addrSCY)
	scx := bus.Read(addrSCX)
	bgp := bus.Read(addrBGP)

	srcY := p.line + scy
	rowInTile := uint16(srcY%8) * 2

	mapBase := uint16(0x9800)
	if lcdc&0x08 != 0 {
		mapBase = 0x9C00
	}
	mapRow := mapBase + uint16(srcY/8)*32

	for x := 0; x < ScreenWidth; x++ {
		srcX := uint8(x) + scx
		tile := bus.Read(mapRow + uint16(srcX/8))

		var tileAddr uint16
		if lcdc&0x10 != 0 {
			tileAddr = 0x8000 + uint16(tile)*16
		} else {
			tileAddr = uint16(0x9000 + int(int8(tile))*16)
		}

		bit := 7 - srcX%8
		lo := bus.Read(tileAddr + rowInTile)
		hi := bus.Read(tileAddr + rowInTile + 1)
		colorID := (hi>>bit&1)<<1 | lo>>bit&1
		shade := bgp >> (colorID * 2) & 0x03

		p.putPixel(fb, stride, x, int(p.line), shade)
	}
}

// renderSprites draws 8x8 sprites over the current line in OAM order.
// Sprites always draw over the background.
func (p *PPU) renderSprites(bus Bus, fb []byte, stride int) {
	lcdc := bus.Read(addrLCDC)
	if lcdc&0x80 == 0 || lcdc&0x02 == 0 {
		return
	}

	y := int(p.line)
	obp0 := bus.Read(addrOBP0)
	obp1 := bus.Read(addrOBP1)

	drawn := 0
	for i := uint16(0); i < 40 && drawn < maxSpritesPerLine; i++ {
		entry := 0xFE00 + i*4
		sy := int(bus.Read(entry)) - 16
		sx := int(bus.Read(entry+1)) - 8
		tile := bus.Read(entry + 2)
		attr := bus.Read(entry + 3)

		if y < sy || y >= sy+8 {
			continue
		}

		pal := obp0
		if attr&0x10 != 0 {
			pal = obp1
		}

		row := uint16(y - sy)
		if attr&0x40 != 0 {
			row = 7 - row
		}
		tileAddr := 0x8000 + uint16(tile)*16 + row*2
		lo := bus.Read(tileAddr)
		hi := bus.Read(tileAddr + 1)

		for px := 0; px < 8; px++ {
			bit := uint8(7 - px)
			if attr&0x20 != 0 {
				bit = uint8(px)
			}
			colorID := (hi>>bit&1)<<1 | lo>>bit&1
			if colorID == 0 {
				continue
			}
			x := sx + px
			if x < 0 || x >= ScreenWidth {
				continue
			}
			p.putPixel(fb, stride, x, y, pal>>(colorID*2)&0x03)
		}
		drawn++
	}
}

func (p *PPU) putPixel(fb []byte, stride, x, y int, shade uint8) {
	i := y*stride + x*3
	c := p.palette[shade]
	fb[i] = c[0]
	fb[i+1] = c[1]
	fb[i+2] = c[2]
}

// IsFrameReady reports whether a frame completed since the last call and
// clears the flag.
func (p *PPU) IsFrameReady() bool {
	r := p.frameReady
	p.frameReady = false
	return r
}

// Palette returns the active output palette.
func (p *PPU) Palette() Palette {
	return p.palette
}

// SetPalette replaces the active output palette.
func (p *PPU) SetPalette(pal Palette) {
	p.palette = pal
}

// Line returns the current scanline (LY).
func (p *PPU) Line() uint8 {
	return p.line
}

// Dot returns the position within the current line.
func (p *PPU) Dot() uint16 {
	return p.dot
}

// Mode returns the current LCD mode.
func (p *PPU) Mode() Mode {
	return p.mode
}
