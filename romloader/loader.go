// Package romloader reads Game Boy ROM images from plain files and from
// ZIP, 7z, gzip (including tar.gz) and RAR archives.
package romloader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// maxROMSize bounds any single read so a hostile archive can't exhaust memory.
const maxROMSize = 8 * 1024 * 1024

var (
	// ErrNoROMInArchive is returned when an archive holds no .gb entry.
	ErrNoROMInArchive = errors.New("no .gb file found in archive")

	// ErrUnsupportedFormat is returned when neither magic bytes nor the
	// extension identify the file.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrFileTooLarge is returned when a ROM or archive entry exceeds 8MB.
	ErrFileTooLarge = errors.New("file exceeds maximum size limit")
)

type format int

const (
	formatUnknown format = iota
	formatRaw
	formatZIP
	format7z
	formatGzip
	formatRAR
)

// signatures are checked in order against the start of the file.
var signatures = []struct {
	magic  []byte
	format format
}{
	{[]byte{'P', 'K', 0x03, 0x04}, formatZIP},
	{[]byte{'P', 'K', 0x05, 0x06}, formatZIP}, // empty archive
	{[]byte{'R', 'a', 'r', '!'}, formatRAR},
	{[]byte{'7', 'z', 0xBC, 0xAF, 0x27, 0x1C}, format7z},
	{[]byte{0x1F, 0x8B}, formatGzip},
}

var extensions = map[string]format{
	".gb":  formatRaw,
	".zip": formatZIP,
	".7z":  format7z,
	".gz":  formatGzip,
	".tgz": formatGzip,
	".rar": formatRAR,
}

// LoadROM reads the ROM at path, extracting it from an archive when needed.
// It returns the image and the name of the file it came from.
func LoadROM(path string) ([]byte, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	header := make([]byte, 8)
	n, err := io.ReadFull(f, header)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, "", fmt.Errorf("failed to read file header: %w", err)
	}

	switch detectFormat(header[:n], path) {
	case formatRaw:
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return nil, "", fmt.Errorf("failed to seek file: %w", err)
		}
		data, err := limitedRead(f)
		if err != nil {
			return nil, "", fmt.Errorf("failed to read ROM: %w", err)
		}
		return data, filepath.Base(path), nil
	case formatZIP:
		return extractFromZIP(path)
	case format7z:
		return extractFrom7z(path)
	case formatGzip:
		return extractFromGzip(path)
	case formatRAR:
		return extractFromRAR(path)
	}
	return nil, "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
}

// detectFormat prefers magic bytes and falls back to the extension.
func detectFormat(header []byte, path string) format {
	for _, sig := range signatures {
		if bytes.HasPrefix(header, sig.magic) {
			return sig.format
		}
	}
	if f, ok := extensions[strings.ToLower(filepath.Ext(path))]; ok {
		return f
	}
	return formatUnknown
}

// isROMFile reports whether an archive entry name looks like a DMG ROM.
func isROMFile(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".gb")
}

// limitedRead reads all of r, failing with ErrFileTooLarge past maxROMSize.
func limitedRead(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxROMSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxROMSize {
		return nil, ErrFileTooLarge
	}
	return data, nil
}
