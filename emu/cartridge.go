package emu

import (
	"errors"
	"strings"
)

// Cartridge header offsets.
const (
	headerTitle          = 0x134
	headerTitleEnd       = 0x144
	headerCartType       = 0x147
	headerROMSize        = 0x148
	headerRAMSize        = 0x149
	headerChecksum       = 0x14D
	headerGlobalChecksum = 0x14E
)

// Cartridge type codes this core distinguishes.
const (
	CartROMOnly       uint8 = 0x00
	CartROMRAMBattery uint8 = 0x09
)

var errHeaderTooShort = errors.New("rom too short for cartridge header")

// Header is the decoded cartridge header at $0134-$014F.
type Header struct {
	Title          string
	CartType       uint8
	ROMSizeCode    uint8
	RAMSizeCode    uint8
	HeaderChecksum uint8
	GlobalChecksum uint16
	checksumOK     bool
}

// ParseHeader decodes the cartridge header from rom.
func ParseHeader(rom []byte) (Header, error) {
	if len(rom) < 0x150 {
		return Header{}, errHeaderTooShort
	}

	h := Header{
		Title:          strings.TrimRight(string(rom[headerTitle:headerTitleEnd]), "\x00 "),
		CartType:       rom[headerCartType],
		ROMSizeCode:    rom[headerROMSize],
		RAMSizeCode:    rom[headerRAMSize],
		HeaderChecksum: rom[headerChecksum],
		GlobalChecksum: uint16(rom[headerGlobalChecksum])<<8 | uint16(rom[headerGlobalChecksum+1]),
	}
	h.checksumOK = headerChecksumOf(rom) == h.HeaderChecksum

	return h, nil
}

// headerChecksumOf computes the boot ROM's check over $0134-$014C.
func headerChecksumOf(rom []byte) uint8 {
	var x uint8
	for i := headerTitle; i < headerChecksum; i++ {
		x = x - rom[i] - 1
	}
	return x
}

// ChecksumValid reports whether the stored header checksum matches.
func (h Header) ChecksumValid() bool {
	return h.checksumOK
}

// HasBattery reports whether the cartridge type has battery backed RAM.
func (h Header) HasBattery() bool {
	return h.CartType == CartROMRAMBattery
}
