// Package wavwriter records emulator audio to a WAV file.
package wavwriter

import (
	"fmt"
	"log"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const (
	bitDepth  = 16
	channels  = 2
	pcmFormat = 1 // WAVE_FORMAT_PCM
)

// Recorder streams interleaved 16-bit stereo samples into a WAV file. The
// header sizes are patched when the recorder is closed.
type Recorder struct {
	filename string
	f        *os.File
	enc      *wav.Encoder
	buf      *audio.IntBuffer
	frames   int
}

// New creates filename and prepares it for samples at sampleRate.
func New(filename string, sampleRate int) (*Recorder, error) {
	f, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("wavwriter: %w", err)
	}

	return &Recorder{
		filename: filename,
		f:        f,
		enc:      wav.NewEncoder(f, sampleRate, bitDepth, channels, pcmFormat),
		buf: &audio.IntBuffer{
			Format:         &audio.Format{NumChannels: channels, SampleRate: sampleRate},
			SourceBitDepth: bitDepth,
		},
	}, nil
}

// Write appends interleaved stereo samples.
func (r *Recorder) Write(samples []int16) error {
	if len(samples) == 0 {
		return nil
	}

	r.buf.Data = r.buf.Data[:0]
	for _, s := range samples {
		r.buf.Data = append(r.buf.Data, int(s))
	}
	if err := r.enc.Write(r.buf); err != nil {
		return fmt.Errorf("wavwriter: %w", err)
	}
	r.frames += len(samples) / channels
	return nil
}

// Frames returns the number of stereo frames written so far.
func (r *Recorder) Frames() int {
	return r.frames
}

// Close finalizes the header and closes the file.
func (r *Recorder) Close() (rerr error) {
	defer func() {
		if err := r.f.Close(); err != nil && rerr == nil {
			rerr = fmt.Errorf("wavwriter: %w", err)
		}
	}()

	// An empty recording still needs the RIFF and data headers
	if r.frames == 0 {
		r.buf.Data = r.buf.Data[:0]
		if err := r.enc.Write(r.buf); err != nil {
			return fmt.Errorf("wavwriter: %w", err)
		}
	}
	if err := r.enc.Close(); err != nil {
		return fmt.Errorf("wavwriter: %w", err)
	}
	log.Printf("wavwriter: wrote %d frames to %s", r.frames, r.filename)
	return nil
}
