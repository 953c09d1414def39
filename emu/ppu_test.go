package emu

import (
	"bytes"
	"testing"
)

func newTestFramebuffer() []byte {
	return make([]byte, RGBStride*ScreenHeight)
}

func pixelAt(fb []byte, stride, x, y int) RGB {
	i := y*stride + x*3
	return RGB{fb[i], fb[i+1], fb[i+2]}
}

// TestPPU_FrameTiming tests VBlank entry and the frame wrap
func TestPPU_FrameTiming(t *testing.T) {
	p := NewPPU()
	mem := newTestMemory()
	mem.Write(0xFF0F, 0x00)
	fb := newTestFramebuffer()

	p.Step(mem, DotsPerLine*VisibleLines, fb, RGBStride)

	if p.Line() != 144 {
		t.Errorf("line: expected 144, got %d", p.Line())
	}
	if p.Mode() != ModeVBlank {
		t.Errorf("mode: expected VBlank, got %d", p.Mode())
	}
	if mem.Read(0xFF0F)&0x01 == 0 {
		t.Error("VBlank interrupt not requested")
	}
	if mem.Read(0xFF44) != 144 {
		t.Errorf("LY register: expected 144, got %d", mem.Read(0xFF44))
	}
	if !p.IsFrameReady() {
		t.Error("frame should be ready")
	}
	if p.IsFrameReady() {
		t.Error("frame ready flag should clear after read")
	}

	p.Step(mem, DotsPerLine*(LinesPerFrame-VisibleLines), fb, RGBStride)
	if p.Line() != 0 || p.Mode() != ModeOAM {
		t.Errorf("after full frame: expected line 0 OAM, got line %d mode %d", p.Line(), p.Mode())
	}
}

// TestPPU_ChunkedStepping tests that step granularity does not change state
func TestPPU_ChunkedStepping(t *testing.T) {
	bulk, chunked := NewPPU(), NewPPU()
	memA, memB := newTestMemory(), newTestMemory()
	fbA, fbB := newTestFramebuffer(), newTestFramebuffer()

	total := DotsPerLine*150 + 123
	bulk.Step(memA, total, fbA, RGBStride)
	for done := 0; done < total; {
		n := 20
		if total-done < n {
			n = total - done
		}
		chunked.Step(memB, n, fbB, RGBStride)
		done += n
	}

	if bulk.Line() != chunked.Line() || bulk.Dot() != chunked.Dot() || bulk.Mode() != chunked.Mode() {
		t.Errorf("bulk line %d dot %d, chunked line %d dot %d",
			bulk.Line(), bulk.Dot(), chunked.Line(), chunked.Dot())
	}
	if !bytes.Equal(fbA, fbB) {
		t.Error("framebuffers differ between bulk and chunked stepping")
	}
}

// TestPPU_LineModes tests mode boundaries within a visible line
func TestPPU_LineModes(t *testing.T) {
	p := NewPPU()
	mem := newTestMemory()
	fb := newTestFramebuffer()

	testCases := []struct {
		ticks int
		dot   uint16
		mode  Mode
	}{
		{80, 80, ModeTransfer},
		{171, 251, ModeTransfer},
		{1, 252, ModeHBlank},
		{203, 455, ModeHBlank},
		{1, 0, ModeOAM},
	}

	for _, tc := range testCases {
		p.Step(mem, tc.ticks, fb, RGBStride)
		if p.Dot() != tc.dot || p.Mode() != tc.mode {
			t.Errorf("expected dot %d mode %d, got dot %d mode %d", tc.dot, tc.mode, p.Dot(), p.Mode())
		}
		if got := Mode(mem.Read(0xFF41) & 0x03); got != tc.mode {
			t.Errorf("STAT mode at dot %d: expected %d, got %d", tc.dot, tc.mode, got)
		}
	}
}

// TestPPU_LYCCoincidence tests STAT bit 2 tracks LY == LYC
func TestPPU_LYCCoincidence(t *testing.T) {
	p := NewPPU()
	mem := newTestMemory()
	fb := newTestFramebuffer()
	mem.Write(0xFF45, 2)

	p.Step(mem, DotsPerLine, fb, RGBStride)
	if mem.Read(0xFF41)&0x04 != 0 {
		t.Error("coincidence set on line 1")
	}
	p.Step(mem, DotsPerLine, fb, RGBStride)
	if mem.Read(0xFF41)&0x04 == 0 {
		t.Error("coincidence not set on line 2")
	}
}

// TestPPU_BackgroundUnsigned tests $8000 tile data and BGP mapping
func TestPPU_BackgroundUnsigned(t *testing.T) {
	p := NewPPU()
	mem := newTestMemory() // LCDC 0x91, BGP 0xFC
	fb := newTestFramebuffer()

	for row := uint16(0); row < 8; row++ {
		mem.Write(0x8010+row*2, 0xFF) // tile 1, color 1
	}
	mem.Write(0x9800, 0x01)

	p.Step(mem, pixelTransferEnd, fb, RGBStride)

	if got := pixelAt(fb, RGBStride, 0, 0); got != ColorPalette[3] {
		t.Errorf("pixel (0,0): expected %v, got %v", ColorPalette[3], got)
	}
	if got := pixelAt(fb, RGBStride, 8, 0); got != ColorPalette[0] {
		t.Errorf("pixel (8,0): expected %v, got %v", ColorPalette[0], got)
	}
}

// TestPPU_BackgroundSigned tests $9000 signed tile addressing and scroll
func TestPPU_BackgroundSigned(t *testing.T) {
	p := NewPPU()
	mem := newTestMemory()
	fb := newTestFramebuffer()

	mem.Write(0xFF40, 0x81)
	mem.Write(0xFF43, 8) // SCX
	for row := uint16(0); row < 8; row++ {
		mem.Write(0x8800+row*2, 0xFF) // tile 0x80 -> $8800
		mem.Write(0x8800+row*2+1, 0xFF)
	}
	mem.Write(0x9801, 0x80)

	p.Step(mem, pixelTransferEnd, fb, RGBStride)

	if got := pixelAt(fb, RGBStride, 0, 0); got != ColorPalette[3] {
		t.Errorf("pixel (0,0): expected %v, got %v", ColorPalette[3], got)
	}
	if got := pixelAt(fb, RGBStride, 8, 0); got != ColorPalette[0] {
		t.Errorf("pixel (8,0): expected %v, got %v", ColorPalette[0], got)
	}
}

// TestPPU_LCDOff tests nothing is drawn when the LCD is disabled
func TestPPU_LCDOff(t *testing.T) {
	p := NewPPU()
	mem := newTestMemory()
	mem.Write(0xFF40, 0x00)
	fb := bytes.Repeat([]byte{0xAA}, RGBStride*ScreenHeight)

	p.Step(mem, DotsPerLine*LinesPerFrame, fb, RGBStride)

	for i, b := range fb {
		if b != 0xAA {
			t.Fatalf("fb[%d] written with LCD off", i)
		}
	}
}

// TestPPU_Stride tests rows land at stride offsets
func TestPPU_Stride(t *testing.T) {
	p := NewPPU()
	mem := newTestMemory()
	stride := RGBStride + 32
	fb := make([]byte, stride*ScreenHeight)

	p.SetPalette(GreenPalette)
	p.Step(mem, DotsPerLine+pixelTransferEnd, fb, stride)

	if got := pixelAt(fb, stride, 0, 1); got != GreenPalette[0] {
		t.Errorf("pixel (0,1): expected %v, got %v", GreenPalette[0], got)
	}
	for i := RGBStride; i < stride; i++ {
		if fb[i] != 0 {
			t.Fatalf("padding byte %d written", i)
		}
	}
}

// setSprite writes OAM entry i.
func setSprite(mem *Memory, i uint16, y, x, tile, attr uint8) {
	base := 0xFE00 + i*4
	mem.Write(base, y)
	mem.Write(base+1, x)
	mem.Write(base+2, tile)
	mem.Write(base+3, attr)
}

// TestPPU_Sprites tests transparency, flips and palette select
func TestPPU_Sprites(t *testing.T) {
	black, white := ColorPalette[3], ColorPalette[0]

	testCases := []struct {
		name  string
		attr  uint8
		black int // x of the only opaque pixel
	}{
		{"normal", 0x00, 0},
		{"x-flip", 0x20, 7},
		{"y-flip", 0x40, 2},
		{"x+y flip", 0x60, 5},
	}

	for _, tc := range testCases {
		p := NewPPU()
		mem := newTestMemory()
		fb := newTestFramebuffer()
		mem.Write(0xFF40, 0x93)

		mem.Write(0x8020, 0x80) // tile 2 row 0: leftmost pixel
		mem.Write(0x802E, 0x20) // tile 2 row 7: third pixel
		setSprite(mem, 0, 16, 8, 2, tc.attr)

		p.Step(mem, pixelTransferEnd, fb, RGBStride)

		for x := 0; x < 8; x++ {
			expected := white
			if x == tc.black {
				expected = black
			}
			if got := pixelAt(fb, RGBStride, x, 0); got != expected {
				t.Errorf("%s: pixel (%d,0) expected %v, got %v", tc.name, x, expected, got)
			}
		}
	}
}

// TestPPU_SpritePalette tests attribute bit 4 selects OBP1
func TestPPU_SpritePalette(t *testing.T) {
	p := NewPPU()
	mem := newTestMemory()
	fb := newTestFramebuffer()
	mem.Write(0xFF40, 0x93)
	mem.Write(0xFF49, 0xE4) // OBP1: color 1 -> shade 1

	mem.Write(0x8020, 0xFF)
	setSprite(mem, 0, 16, 8, 2, 0x10)

	p.Step(mem, pixelTransferEnd, fb, RGBStride)

	if got := pixelAt(fb, RGBStride, 0, 0); got != ColorPalette[1] {
		t.Errorf("OBP1 pixel: expected %v, got %v", ColorPalette[1], got)
	}
}

// TestPPU_SpriteLimit tests at most 10 sprites draw per line
func TestPPU_SpriteLimit(t *testing.T) {
	p := NewPPU()
	mem := newTestMemory()
	fb := newTestFramebuffer()
	mem.Write(0xFF40, 0x93)

	mem.Write(0x8020, 0x80)
	for i := uint16(0); i < 11; i++ {
		setSprite(mem, i, 16, uint8(8+i*8), 2, 0)
	}

	p.Step(mem, pixelTransferEnd, fb, RGBStride)

	if got := pixelAt(fb, RGBStride, 72, 0); got != ColorPalette[3] {
		t.Errorf("10th sprite: expected %v, got %v", ColorPalette[3], got)
	}
	if got := pixelAt(fb, RGBStride, 80, 0); got != ColorPalette[0] {
		t.Errorf("11th sprite should not draw: got %v", got)
	}
}

// TestPPU_SpriteClipping tests partially offscreen sprites
func TestPPU_SpriteClipping(t *testing.T) {
	p := NewPPU()
	mem := newTestMemory()
	fb := newTestFramebuffer()
	mem.Write(0xFF40, 0x93)

	mem.Write(0x8020, 0xFF)
	setSprite(mem, 0, 16, 4, 2, 0)   // x = -4
	setSprite(mem, 1, 16, 164, 2, 0) // x = 156

	p.Step(mem, pixelTransferEnd, fb, RGBStride)

	if got := pixelAt(fb, RGBStride, 0, 0); got != ColorPalette[3] {
		t.Errorf("left clip: expected %v, got %v", ColorPalette[3], got)
	}
	if got := pixelAt(fb, RGBStride, 159, 0); got != ColorPalette[3] {
		t.Errorf("right clip: expected %v, got %v", ColorPalette[3], got)
	}
}
