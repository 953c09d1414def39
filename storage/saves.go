package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// MaxStateSlot is the highest save state slot number.
const MaxStateSlot = 9

// sramPath returns the battery save file for a ROM.
func sramPath(crc uint32) (string, error) {
	dir, err := GetSaveDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, fmt.Sprintf("%08x.sav", crc)), nil
}

// statePath returns the save state file for a ROM and slot.
func statePath(crc uint32, slot int) (string, error) {
	if slot < 0 || slot > MaxStateSlot {
		return "", fmt.Errorf("invalid save state slot %d", slot)
	}
	dir, err := GetSaveDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, fmt.Sprintf("%08x.state%d", crc, slot)), nil
}

// LoadSRAM returns the battery save for a ROM, or nil if there is none.
func LoadSRAM(crc uint32) ([]byte, error) {
	path, err := sramPath(crc)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	return data, err
}

// SaveSRAM writes the battery save for a ROM.
func SaveSRAM(crc uint32, data []byte) error {
	path, err := sramPath(crc)
	if err != nil {
		return err
	}
	return AtomicWriteFile(path, data)
}

// LoadState reads a save state slot.
func LoadState(crc uint32, slot int) ([]byte, error) {
	path, err := statePath(crc, slot)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(path)
}

// SaveState writes a save state slot.
func SaveState(crc uint32, slot int, data []byte) error {
	path, err := statePath(crc, slot)
	if err != nil {
		return err
	}
	return AtomicWriteFile(path, data)
}
