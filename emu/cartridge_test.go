package emu

import "testing"

// TestParseHeader tests field decoding
func TestParseHeader(t *testing.T) {
	rom := make([]byte, romSize)
	copy(rom[headerTitle:], "TETRIS")
	rom[headerCartType] = CartROMOnly
	rom[headerROMSize] = 0x00
	rom[headerRAMSize] = 0x00
	rom[headerGlobalChecksum] = 0x16
	rom[headerGlobalChecksum+1] = 0xBF
	rom[headerChecksum] = headerChecksumOf(rom)

	h, err := ParseHeader(rom)
	if err != nil {
		t.Fatalf("ParseHeader failed: %v", err)
	}
	if h.Title != "TETRIS" {
		t.Errorf("title: expected TETRIS, got %q", h.Title)
	}
	if h.GlobalChecksum != 0x16BF {
		t.Errorf("global checksum: expected 0x16BF, got 0x%04X", h.GlobalChecksum)
	}
	if !h.ChecksumValid() {
		t.Error("checksum should be valid")
	}
	if h.HasBattery() {
		t.Error("ROM only cartridge has no battery")
	}
}

// TestHeaderChecksum tests the checksum against a hand computed value
func TestHeaderChecksum(t *testing.T) {
	rom := make([]byte, 0x150)
	// 25 bytes of zero: x = -25
	if got := headerChecksumOf(rom); got != 0xE7 {
		t.Errorf("zero header: expected 0xE7, got 0x%02X", got)
	}

	rom[headerTitle] = 0x01
	if got := headerChecksumOf(rom); got != 0xE6 {
		t.Errorf("one byte set: expected 0xE6, got 0x%02X", got)
	}

	rom[headerChecksum] = 0x00
	h, _ := ParseHeader(rom)
	if h.ChecksumValid() {
		t.Error("mismatched checksum should be invalid")
	}
}

// TestParseHeader_TooShort tests truncated images are rejected
func TestParseHeader_TooShort(t *testing.T) {
	if _, err := ParseHeader(make([]byte, 0x14F)); err == nil {
		t.Error("expected error for truncated header")
	}
}

// TestParseHeader_Battery tests type $09 reports battery RAM
func TestParseHeader_Battery(t *testing.T) {
	rom := make([]byte, 0x150)
	rom[headerCartType] = CartROMRAMBattery

	h, err := ParseHeader(rom)
	if err != nil {
		t.Fatalf("ParseHeader failed: %v", err)
	}
	if !h.HasBattery() {
		t.Error("type 0x09 should have a battery")
	}
}

// TestParseHeader_TitlePadding tests trailing NUL and space are trimmed
func TestParseHeader_TitlePadding(t *testing.T) {
	rom := make([]byte, 0x150)
	copy(rom[headerTitle:], "ZELDA  \x00\x00")

	h, _ := ParseHeader(rom)
	if h.Title != "ZELDA" {
		t.Errorf("title: expected ZELDA, got %q", h.Title)
	}
}
