//go:build !libretro

package cli

import (
	"fmt"
	"time"

	"github.com/user-none/edmg/emu"
	"github.com/user-none/edmg/wavwriter"
)

// RunStats summarizes a headless run.
type RunStats struct {
	Frames      int
	AudioFrames int // stereo sample pairs produced
	Resyncs     int
	Elapsed     time.Duration
}

// FPS returns the achieved frame rate.
func (s RunStats) FPS() float64 {
	if s.Elapsed <= 0 {
		return 0
	}
	return float64(s.Frames) / s.Elapsed.Seconds()
}

// RunPaced runs frames frames of e without a window, holding each frame to
// the pacer's period. Audio goes to rec when it is not nil.
func RunPaced(e *emu.Emulator, frames int, pacer *Pacer, rec *wavwriter.Recorder) (RunStats, error) {
	var stats RunStats
	start := pacer.now()

	for stats.Frames < frames {
		e.RunFrame()
		samples := e.GetAudioSamples()
		stats.AudioFrames += len(samples) / audioChannels
		if rec != nil {
			if err := rec.Write(samples); err != nil {
				return stats, fmt.Errorf("frame %d: %w", stats.Frames, err)
			}
		}
		stats.Frames++
		pacer.Wait()
	}

	stats.Resyncs = pacer.Resyncs()
	stats.Elapsed = pacer.now().Sub(start)
	return stats, nil
}
