// Package emuios provides a gomobile-compatible interface to the emulator.
package emuios

import (
	"fmt"
	"hash/crc32"
	"os"
	"path/filepath"

	"github.com/user-none/edmg/emu"
	"github.com/user-none/edmg/romloader"
)

// ExtractResult contains the result of ROM extraction
type ExtractResult struct {
	Crc32    string // Hex string, e.g., "AABBCCDD"
	Filename string // Original filename from archive, e.g., "Tetris (World).gb"
}

// currentEmu holds the emulator state (unexported)
var currentEmu *emulatorState

type emulatorState struct {
	emulator  *emu.Emulator
	audioData []byte
	stateData []byte
	sramData  []byte
}

// InitFromPath creates an emulator from a ROM file path.
// Automatically extracts from ZIP/7z/gzip/RAR if needed.
// Returns true on success, false on error.
func InitFromPath(path string) bool {
	rom, _, err := romloader.LoadROM(path)
	if err != nil {
		return false
	}

	e, err := emu.NewEmulator(rom, emu.RegionNTSC)
	if err != nil {
		return false
	}
	currentEmu = &emulatorState{emulator: &e}
	return true
}

// Close releases the emulator.
func Close() {
	currentEmu = nil
}

// RunFrame executes one frame of emulation.
func RunFrame() {
	if currentEmu == nil {
		return
	}
	currentEmu.emulator.RunFrame()

	samples := currentEmu.emulator.GetAudioSamples()
	currentEmu.audioData = currentEmu.audioData[:0]
	for _, s := range samples {
		currentEmu.audioData = append(currentEmu.audioData, byte(s), byte(s>>8))
	}
}

// FrameWidth returns the display width.
func FrameWidth() int {
	return emu.ScreenWidth
}

// FrameHeight returns the display height.
func FrameHeight() int {
	return emu.ScreenHeight
}

// GetFrameData returns the RGBA frame buffer.
func GetFrameData() []byte {
	if currentEmu == nil {
		return nil
	}
	return currentEmu.emulator.GetFramebuffer()
}

// GetAudioData returns the frame's audio as 16-bit little endian stereo.
func GetAudioData() []byte {
	if currentEmu == nil {
		return nil
	}
	return currentEmu.audioData
}

// SetInput sets the joypad state. buttons uses the frontend bit layout:
// 0-3 d-pad, 4 A, 5 B, 6 Select, 7 Start.
func SetInput(buttons int) {
	if currentEmu != nil {
		currentEmu.emulator.SetInput(0, uint32(buttons))
	}
}

// SetGreenPalette switches between the green and color palettes.
func SetGreenPalette(green bool) {
	if currentEmu == nil {
		return
	}
	if green {
		currentEmu.emulator.SetOption("green_palette", "true")
	} else {
		currentEmu.emulator.SetOption("green_palette", "false")
	}
}

// SaveState creates a save state. Returns true on success.
func SaveState() bool {
	if currentEmu == nil {
		return false
	}
	data, err := currentEmu.emulator.Serialize()
	if err != nil {
		currentEmu.stateData = nil
		return false
	}
	currentEmu.stateData = data
	return true
}

// StateLen returns the length of the last saved state.
func StateLen() int {
	if currentEmu == nil {
		return 0
	}
	return len(currentEmu.stateData)
}

// StateByte returns a single byte from the saved state at index i.
func StateByte(i int) int {
	if currentEmu == nil || i < 0 || i >= len(currentEmu.stateData) {
		return 0
	}
	return int(currentEmu.stateData[i])
}

// LoadState loads a save state. Returns true on success.
func LoadState(data []byte) bool {
	if currentEmu == nil {
		return false
	}
	return currentEmu.emulator.Deserialize(data) == nil
}

// HasSRAM reports whether the cartridge has battery backed RAM.
func HasSRAM() bool {
	return currentEmu != nil && currentEmu.emulator.HasSRAM()
}

// PrepareSRAM copies SRAM to internal buffer.
func PrepareSRAM() {
	if currentEmu == nil {
		return
	}
	currentEmu.sramData = currentEmu.emulator.GetSRAM()
}

// SRAMLen returns the SRAM length (8192).
func SRAMLen() int {
	if currentEmu == nil {
		return 0
	}
	return len(currentEmu.sramData)
}

// SRAMByte returns a single byte from SRAM at index i.
func SRAMByte(i int) int {
	if currentEmu == nil || i < 0 || i >= len(currentEmu.sramData) {
		return 0
	}
	return int(currentEmu.sramData[i])
}

// LoadSRAM loads 8KB cartridge RAM.
func LoadSRAM(data []byte) {
	if currentEmu == nil || len(data) != 0x2000 {
		return
	}
	currentEmu.emulator.SetSRAM(data)
}

// GetFPS returns the DMG refresh rate, ~59.73.
func GetFPS() float64 {
	return emu.FrameRateExact()
}

// GetCRC32FromPath calculates the CRC32 checksum of a ROM file.
// Automatically extracts from ZIP/7z/gzip/RAR if needed.
// Returns -1 on error.
func GetCRC32FromPath(path string) int64 {
	rom, _, err := romloader.LoadROM(path)
	if err != nil {
		return -1
	}

	return int64(crc32.ChecksumIEEE(rom))
}

// ExtractAndStoreROM extracts a ROM from an archive (or copies a raw ROM),
// calculates its CRC32, and stores it as {destDir}/{CRC32}.gb.
// If a file with the same CRC32 already exists, it skips writing.
func ExtractAndStoreROM(srcPath, destDir string) (*ExtractResult, error) {
	rom, filename, err := romloader.LoadROM(srcPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load ROM: %w", err)
	}

	crcHex := fmt.Sprintf("%08X", crc32.ChecksumIEEE(rom))
	destPath := filepath.Join(destDir, crcHex+".gb")

	// Same CRC means same content
	if _, err := os.Stat(destPath); err == nil {
		return &ExtractResult{Crc32: crcHex, Filename: filename}, nil
	}

	if err := os.WriteFile(destPath, rom, 0644); err != nil {
		return nil, fmt.Errorf("failed to write ROM: %w", err)
	}

	return &ExtractResult{Crc32: crcHex, Filename: filename}, nil
}
