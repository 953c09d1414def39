package emu

import (
	"time"

	emucore "github.com/user-none/eblitui/api"
)

// Region is an alias for emucore.Region. The DMG has one timing, so the
// region only exists to satisfy the frontend interfaces.
type Region = emucore.Region

const (
	RegionNTSC = emucore.RegionNTSC
	RegionPAL  = emucore.RegionPAL
)

// DMG timing constants.
const (
	CPUClockHz     = 4194304
	DotsPerLine    = 456
	LinesPerFrame  = 154
	VisibleLines   = 144
	CyclesPerFrame = DotsPerLine * LinesPerFrame // 70224

	// FrameRate is the nominal refresh reported to hosts that only accept
	// whole frame rates.
	FrameRate = 60
)

// FramePeriod is the real DMG frame length, ~59.7275 Hz.
const FramePeriod = 16742706 * time.Nanosecond

// FrameRateExact returns the DMG refresh rate in Hz.
func FrameRateExact() float64 {
	return float64(CPUClockHz) / float64(CyclesPerFrame)
}
