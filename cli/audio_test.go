//go:build !libretro

package cli

import (
	"encoding/binary"
	"testing"
)

func readSamples(t *testing.T, r *sampleRing, n int) []int16 {
	t.Helper()
	p := make([]byte, n*2)
	if got, err := r.Read(p); err != nil || got != len(p) {
		t.Fatalf("Read: expected %d, nil; got %d, %v", len(p), got, err)
	}
	out := make([]int16, n)
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(p[i*2:]))
	}
	return out
}

func TestSampleRing_FIFO(t *testing.T) {
	r := newSampleRing(8)

	r.Write([]int16{1, -2, 3})
	r.Write([]int16{4, 5})
	if r.Len() != 5 {
		t.Fatalf("Len: expected 5, got %d", r.Len())
	}

	got := readSamples(t, r, 4)
	expected := []int16{1, -2, 3, 4}
	for i := range expected {
		if got[i] != expected[i] {
			t.Errorf("sample %d: expected %d, got %d", i, expected[i], got[i])
		}
	}
	if r.Len() != 1 {
		t.Errorf("Len after read: expected 1, got %d", r.Len())
	}
}

func TestSampleRing_UnderrunPadsSilence(t *testing.T) {
	r := newSampleRing(8)
	r.Write([]int16{0x1234})

	got := readSamples(t, r, 3)
	if got[0] != 0x1234 || got[1] != 0 || got[2] != 0 {
		t.Errorf("expected [0x1234 0 0], got %v", got)
	}
}

func TestSampleRing_OverrunDropsOldest(t *testing.T) {
	r := newSampleRing(4)

	if dropped := r.Write([]int16{1, 2, 3}); dropped != 0 {
		t.Errorf("first write dropped %d", dropped)
	}
	if dropped := r.Write([]int16{4, 5, 6}); dropped != 2 {
		t.Errorf("second write: expected 2 dropped, got %d", dropped)
	}

	got := readSamples(t, r, 4)
	expected := []int16{3, 4, 5, 6}
	for i := range expected {
		if got[i] != expected[i] {
			t.Errorf("sample %d: expected %d, got %d", i, expected[i], got[i])
		}
	}
}

func TestSampleRing_WriteLargerThanCapacity(t *testing.T) {
	r := newSampleRing(3)
	r.Write([]int16{9})

	if dropped := r.Write([]int16{1, 2, 3, 4, 5}); dropped != 3 {
		t.Errorf("expected 3 dropped, got %d", dropped)
	}

	got := readSamples(t, r, 3)
	if got[0] != 3 || got[1] != 4 || got[2] != 5 {
		t.Errorf("expected [3 4 5], got %v", got)
	}
}

func TestSampleRing_Wraparound(t *testing.T) {
	r := newSampleRing(4)

	for round := int16(0); round < 10; round++ {
		r.Write([]int16{round, round + 100, round + 200})
		got := readSamples(t, r, 3)
		if got[0] != round || got[1] != round+100 || got[2] != round+200 {
			t.Fatalf("round %d: got %v", round, got)
		}
	}
}
