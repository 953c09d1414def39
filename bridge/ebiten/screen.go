//go:build !libretro

// Package ebiten draws emulator frames onto Ebiten images.
package ebiten

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// Screen holds the native resolution image frames are uploaded into before
// being scaled onto the window.
type Screen struct {
	width, height int

	offscreen *ebiten.Image
	drawOpts  ebiten.DrawImageOptions // reused every frame
}

// NewScreen creates a Screen for frames of width x height pixels.
func NewScreen(width, height int) *Screen {
	return &Screen{width: width, height: height}
}

// Draw uploads an RGBA frame and draws it scaled to fit dst, centered, with
// nearest-neighbour filtering. Frames shorter than stride*height are
// skipped.
func (s *Screen) Draw(dst *ebiten.Image, fb []byte, stride int) {
	if s.offscreen == nil {
		s.offscreen = ebiten.NewImage(s.width, s.height)
	}

	required := stride * s.height
	if len(fb) < required {
		return
	}
	s.offscreen.WritePixels(fb[:required])

	scale, offsetX, offsetY := Fit(dst.Bounds().Dx(), dst.Bounds().Dy(), s.width, s.height)

	s.drawOpts = ebiten.DrawImageOptions{}
	s.drawOpts.GeoM.Scale(scale, scale)
	s.drawOpts.GeoM.Translate(offsetX, offsetY)
	s.drawOpts.Filter = ebiten.FilterNearest
	dst.DrawImage(s.offscreen, &s.drawOpts)
}
