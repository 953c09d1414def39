package emu

// SoundChip is the sound synthesizer the core forwards register writes to.
// clock is the CPU cycle count since the last EndFrame.
type SoundChip interface {
	Write(clock uint32, addr uint16, val uint8)
	SetMasterEnable(enabled bool)
	// EndFrame closes the current frame at clocks cycles and makes its
	// samples available to ReadSamples.
	EndFrame(clocks uint32)
	// ReadSamples fills out with interleaved stereo samples and returns the
	// number of int16 values written.
	ReadSamples(out []int16) int
}

// APU timestamps register writes for a SoundChip.
type APU struct {
	chip     SoundChip
	clockAcc uint32
}

// NewAPU wraps chip. A nil chip gets a SilentSoundChip.
func NewAPU(chip SoundChip) *APU {
	if chip == nil {
		chip = NewSilentSoundChip(sampleRate)
	}
	return &APU{chip: chip}
}

// Write forwards a sound register write stamped with the current clock.
func (a *APU) Write(addr uint16, val uint8) {
	a.chip.Write(a.clockAcc, addr, val)
}

// MasterEnable forwards the NR52 power bit.
func (a *APU) MasterEnable(enabled bool) {
	a.chip.SetMasterEnable(enabled)
}

// AdvanceClocks moves the frame clock forward by n CPU cycles.
func (a *APU) AdvanceClocks(n uint32) {
	a.clockAcc += n
}

// EndFrame flushes clocks cycles to the chip and removes them from the
// accumulator.
func (a *APU) EndFrame(clocks uint32) {
	a.chip.EndFrame(clocks)
	a.clockAcc -= clocks
}

// ReadSamples drains synthesized samples into out.
func (a *APU) ReadSamples(out []int16) int {
	return a.chip.ReadSamples(out)
}

// Clock returns the cycles accumulated since the last EndFrame.
func (a *APU) Clock() uint32 {
	return a.clockAcc
}

// SilentSoundChip tracks register state and produces silence at the right
// rate. It keeps the audio pipeline clocked when no synthesizer is attached.
type SilentSoundChip struct {
	sampleRate int
	regs       [0x30]uint8 // $FF10-$FF3F
	enabled    bool
	pending    int    // stereo frames ready to read
	frac       uint64 // remainder of clocks*sampleRate / CPUClockHz
}

// NewSilentSoundChip creates a chip producing rate stereo frames per second.
func NewSilentSoundChip(rate int) *SilentSoundChip {
	return &SilentSoundChip{sampleRate: rate}
}

func (s *SilentSoundChip) Write(_ uint32, addr uint16, val uint8) {
	if addr >= 0xFF10 && addr <= 0xFF3F {
		s.regs[addr-0xFF10] = val
	}
}

func (s *SilentSoundChip) SetMasterEnable(enabled bool) {
	s.enabled = enabled
}

// Register returns the last value written to a sound register.
func (s *SilentSoundChip) Register(addr uint16) uint8 {
	if addr < 0xFF10 || addr > 0xFF3F {
		return 0xFF
	}
	return s.regs[addr-0xFF10]
}

// Enabled reports the NR52 power state.
func (s *SilentSoundChip) Enabled() bool {
	return s.enabled
}

func (s *SilentSoundChip) EndFrame(clocks uint32) {
	total := s.frac + uint64(clocks)*uint64(s.sampleRate)
	s.pending += int(total / CPUClockHz)
	s.frac = total % CPUClockHz

	// Cap at one second so an unread chip doesn't grow without bound
	if s.pending > s.sampleRate {
		s.pending = s.sampleRate
	}
}

func (s *SilentSoundChip) ReadSamples(out []int16) int {
	frames := len(out) / 2
	if frames > s.pending {
		frames = s.pending
	}
	clear(out[:frames*2])
	s.pending -= frames
	return frames * 2
}
