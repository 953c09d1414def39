//go:build !libretro

package cli

import (
	"fmt"
	"log"
	"sync"

	"github.com/ebitengine/oto/v3"
)

const (
	audioSampleRate = 48000
	audioChannels   = 2

	// ringCapacity holds 200ms of stereo samples.
	ringCapacity = audioSampleRate / 5 * audioChannels
)

// sampleRing is a fixed size FIFO of interleaved int16 samples shared
// between the emulation loop and oto's reader goroutine.
type sampleRing struct {
	mu   sync.Mutex
	buf  []int16
	head int // next sample to read
	n    int // samples buffered
}

func newSampleRing(capacity int) *sampleRing {
	return &sampleRing{buf: make([]int16, capacity)}
}

// Write appends samples, dropping the oldest ones when the ring is full.
// It returns the number of samples dropped.
func (s *sampleRing) Write(samples []int16) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	dropped := 0
	if len(samples) > len(s.buf) {
		dropped = len(samples) - len(s.buf)
		samples = samples[dropped:]
	}
	if over := s.n + len(samples) - len(s.buf); over > 0 {
		s.head = (s.head + over) % len(s.buf)
		s.n -= over
		dropped += over
	}

	tail := (s.head + s.n) % len(s.buf)
	for _, v := range samples {
		s.buf[tail] = v
		tail++
		if tail == len(s.buf) {
			tail = 0
		}
	}
	s.n += len(samples)
	return dropped
}

// Read implements io.Reader for oto. It always fills p, padding with
// silence on underrun.
func (s *sampleRing) Read(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := 0
	for ; i+1 < len(p) && s.n > 0; i += 2 {
		v := s.buf[s.head]
		p[i] = byte(v)
		p[i+1] = byte(v >> 8)
		s.head++
		if s.head == len(s.buf) {
			s.head = 0
		}
		s.n--
	}
	clear(p[i:])
	return len(p), nil
}

// Len returns the number of buffered samples.
func (s *sampleRing) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.n
}

// AudioPlayer plays emulator audio through oto.
type AudioPlayer struct {
	ctx    *oto.Context
	player *oto.Player
	ring   *sampleRing
}

// NewAudioPlayer opens the default output device at 48kHz stereo.
func NewAudioPlayer(volume float64) (*AudioPlayer, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   audioSampleRate,
		ChannelCount: audioChannels,
		Format:       oto.FormatSignedInt16LE,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open audio device: %w", err)
	}
	<-ready

	ring := newSampleRing(ringCapacity)
	player := ctx.NewPlayer(ring)
	player.SetVolume(volume)
	player.Play()

	return &AudioPlayer{
		ctx:    ctx,
		player: player,
		ring:   ring,
	}, nil
}

// QueueSamples hands a frame of interleaved stereo samples to the device.
func (a *AudioPlayer) QueueSamples(samples []int16) {
	if dropped := a.ring.Write(samples); dropped > 0 {
		log.Printf("warning: audio overrun, dropped %d samples", dropped)
	}
}

// SetVolume sets the playback volume, 0 to 1.
func (a *AudioPlayer) SetVolume(volume float64) {
	a.player.SetVolume(volume)
}

// Close stops playback.
func (a *AudioPlayer) Close() {
	if a.player != nil {
		if err := a.player.Close(); err != nil {
			log.Printf("warning: failed to close audio player: %v", err)
		}
		a.player = nil
	}
}
