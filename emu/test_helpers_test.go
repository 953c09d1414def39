package emu

import (
	"bytes"
	"log"
	"testing"
)

// createTestROM returns a 32KB ROM with program placed at the $0100 entry
// point and a valid header checksum.
func createTestROM(program ...byte) []byte {
	rom := make([]byte, romSize)
	copy(rom[0x100:], program)
	copy(rom[headerTitle:], "TESTROM")
	rom[headerChecksum] = headerChecksumOf(rom)
	return rom
}

// captureLog redirects the standard logger into a buffer for the rest of
// the test.
func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev, flags := log.Writer(), log.Flags()
	log.SetOutput(&buf)
	log.SetFlags(0)
	t.Cleanup(func() {
		log.SetOutput(prev)
		log.SetFlags(flags)
	})
	return &buf
}

// newTestCPU returns a post-boot CPU and a memory holding program at $0100.
func newTestCPU(program ...byte) (*CPU, *Memory) {
	return NewCPU(), NewMemory(createTestROM(program...), NewAPU(nil))
}

// mustStep runs one instruction and fails the test on a decode error.
func mustStep(t *testing.T, c *CPU, bus Bus) int {
	t.Helper()
	cycles, err := c.Step(bus)
	if err != nil {
		t.Fatalf("Step failed: %v", err)
	}
	return cycles
}

// soundWrite is one write seen by recordingChip.
type soundWrite struct {
	clock uint32
	addr  uint16
	val   uint8
}

// recordingChip is a SoundChip that records everything it receives.
type recordingChip struct {
	writes    []soundWrite
	enabled   []bool
	endFrames []uint32
}

func (r *recordingChip) Write(clock uint32, addr uint16, val uint8) {
	r.writes = append(r.writes, soundWrite{clock, addr, val})
}

func (r *recordingChip) SetMasterEnable(enabled bool) {
	r.enabled = append(r.enabled, enabled)
}

func (r *recordingChip) EndFrame(clocks uint32) {
	r.endFrames = append(r.endFrames, clocks)
}

func (r *recordingChip) ReadSamples(out []int16) int {
	return 0
}

// flatBus is a 64KB RAM bus with no side effects.
type flatBus [0x10000]uint8

func (b *flatBus) Read(addr uint16) uint8       { return b[addr] }
func (b *flatBus) Write(addr uint16, val uint8) { b[addr] = val }
