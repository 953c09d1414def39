//go:build !libretro

// Package cli provides a command-line runner for the emulator.
// It handles input polling and runs the emulator in a window without the full UI.
package cli

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	emucore "github.com/user-none/eblitui/api"
	bridge "github.com/user-none/edmg/bridge/ebiten"
	"github.com/user-none/edmg/emu"
	"github.com/user-none/edmg/storage"
	"github.com/user-none/edmg/wavwriter"
)

// Joypad bits as passed to Emulator.SetInput.
const (
	maskUp     uint32 = 1 << emucore.ButtonUp
	maskDown   uint32 = 1 << emucore.ButtonDown
	maskLeft   uint32 = 1 << emucore.ButtonLeft
	maskRight  uint32 = 1 << emucore.ButtonRight
	maskA      uint32 = 1 << 4
	maskB      uint32 = 1 << 5
	maskSelect uint32 = 1 << 6
	maskStart  uint32 = 1 << 7
)

var keyBindings = []struct {
	key  ebiten.Key
	mask uint32
}{
	{ebiten.KeyArrowUp, maskUp},
	{ebiten.KeyArrowDown, maskDown},
	{ebiten.KeyArrowLeft, maskLeft},
	{ebiten.KeyArrowRight, maskRight},
	{ebiten.KeyX, maskA},
	{ebiten.KeyZ, maskB},
	{ebiten.KeySpace, maskSelect},
	{ebiten.KeyEnter, maskStart},
}

var padBindings = []struct {
	button ebiten.StandardGamepadButton
	mask   uint32
}{
	{ebiten.StandardGamepadButtonLeftTop, maskUp},
	{ebiten.StandardGamepadButtonLeftBottom, maskDown},
	{ebiten.StandardGamepadButtonLeftLeft, maskLeft},
	{ebiten.StandardGamepadButtonLeftRight, maskRight},
	{ebiten.StandardGamepadButtonRightRight, maskA},
	{ebiten.StandardGamepadButtonRightBottom, maskB},
	{ebiten.StandardGamepadButtonCenterLeft, maskSelect},
	{ebiten.StandardGamepadButtonCenterRight, maskStart},
}

// stickDeadzone is how far the left stick must move to count as a d-pad press.
const stickDeadzone = 0.5

// Runner wraps an emulator for command-line mode.
// It handles input polling (emulator doesn't poll input itself).
// This follows the libretro pattern where the frontend is responsible
// for polling input and passing it to the emulator via SetInput().
type Runner struct {
	emulator *emu.Emulator
	config   *storage.Config
	crc      uint32

	screen   *bridge.Screen
	audio    *AudioPlayer // nil when muted or no device
	recorder *wavwriter.Recorder

	focused bool
}

// NewRunner creates a new Runner wrapping the given emulator. Battery RAM is
// restored from the save directory. rec may be nil.
func NewRunner(e *emu.Emulator, config *storage.Config, rec *wavwriter.Recorder) *Runner {
	r := &Runner{
		emulator: e,
		config:   config,
		crc:      e.ROMCRC32(),
		screen:   bridge.NewScreen(emu.ScreenWidth, emu.ScreenHeight),
		recorder: rec,
		focused:  true,
	}

	r.applyPalette()

	if e.HasSRAM() {
		sram, err := storage.LoadSRAM(r.crc)
		if err != nil {
			log.Printf("warning: failed to load SRAM: %v", err)
		} else if sram != nil {
			e.SetSRAM(sram)
		}
	}

	if !config.Audio.Muted {
		player, err := NewAudioPlayer(config.Audio.Volume)
		if err != nil {
			log.Printf("warning: running without audio: %v", err)
		} else {
			r.audio = player
		}
	}

	return r
}

// Close persists battery RAM and the config, then cleans up the runner's
// resources.
func (r *Runner) Close() {
	if r.emulator.HasSRAM() {
		if err := storage.SaveSRAM(r.crc, r.emulator.GetSRAM()); err != nil {
			log.Printf("warning: failed to save SRAM: %v", err)
		}
	}

	w, h := ebiten.WindowSize()
	if w > 0 && h > 0 {
		r.config.Window.Width, r.config.Window.Height = w, h
		x, y := ebiten.WindowPosition()
		r.config.Window.X, r.config.Window.Y = &x, &y
	}
	if err := storage.SaveConfig(r.config); err != nil {
		log.Printf("warning: failed to save config: %v", err)
	}

	if r.audio != nil {
		r.audio.Close()
		r.audio = nil
	}
	if r.recorder != nil {
		if err := r.recorder.Close(); err != nil {
			log.Printf("warning: %v", err)
		}
		r.recorder = nil
	}
}

// Update implements ebiten.Game.
func (r *Runner) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	if !ebiten.IsFocused() {
		if r.focused {
			r.emulator.SetInput(0, 0)
			r.focused = false
		}
		return nil
	}
	r.focused = true

	r.handleHotkeys()

	// Poll input (runner responsibility, not emulator)
	r.emulator.SetInput(0, r.pollInput())

	r.emulator.RunFrame()

	samples := r.emulator.GetAudioSamples()
	if r.audio != nil {
		r.audio.QueueSamples(samples)
	}
	if r.recorder != nil {
		if err := r.recorder.Write(samples); err != nil {
			return err
		}
	}

	return nil
}

// Draw implements ebiten.Game.
func (r *Runner) Draw(screen *ebiten.Image) {
	r.screen.Draw(screen, r.emulator.GetFramebuffer(), r.emulator.GetFramebufferStride())
}

// Layout implements ebiten.Game.
func (r *Runner) Layout(outsideWidth, outsideHeight int) (int, int) {
	return outsideWidth, outsideHeight
}

func (r *Runner) handleHotkeys() {
	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		r.togglePalette()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF5) {
		if err := r.saveState(0); err != nil {
			log.Printf("warning: %v", err)
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF9) {
		if err := r.loadState(0); err != nil {
			log.Printf("warning: %v", err)
		}
	}
}

// togglePalette flips the palette and remembers the choice in the config.
func (r *Runner) togglePalette() {
	if r.config.Video.Palette == storage.PaletteGreen {
		r.config.Video.Palette = storage.PaletteColor
	} else {
		r.config.Video.Palette = storage.PaletteGreen
	}
	r.applyPalette()
}

func (r *Runner) applyPalette() {
	if r.config.Video.Palette == storage.PaletteGreen {
		r.emulator.SetOption("green_palette", "true")
	} else {
		r.emulator.SetOption("green_palette", "false")
	}
}

func (r *Runner) saveState(slot int) error {
	data, err := r.emulator.Serialize()
	if err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	if err := storage.SaveState(r.crc, slot, data); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	log.Printf("saved state to slot %d", slot)
	return nil
}

func (r *Runner) loadState(slot int) error {
	data, err := storage.LoadState(r.crc, slot)
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load state: slot %d is empty", slot)
	}
	if err != nil {
		return fmt.Errorf("load state: %w", err)
	}
	if err := r.emulator.Deserialize(data); err != nil {
		return fmt.Errorf("load state: %w", err)
	}
	// The applied state carries its own palette
	if r.emulator.Machine().Palette() == emu.GreenPalette {
		r.config.Video.Palette = storage.PaletteGreen
	} else {
		r.config.Video.Palette = storage.PaletteColor
	}
	log.Printf("loaded state from slot %d", slot)
	return nil
}

// pollInput reads keyboard and gamepad input into a joypad mask.
func (r *Runner) pollInput() uint32 {
	buttons := keyButtons(ebiten.IsKeyPressed)

	// Gamepad support (all connected gamepads)
	for _, id := range ebiten.AppendGamepadIDs(nil) {
		if !ebiten.IsStandardGamepadLayoutAvailable(id) {
			continue
		}
		buttons |= padButtons(
			func(b ebiten.StandardGamepadButton) bool { return ebiten.IsStandardGamepadButtonPressed(id, b) },
			ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisLeftStickHorizontal),
			ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisLeftStickVertical),
		)
	}

	return buttons
}

// keyButtons maps pressed keyboard keys to a joypad mask.
func keyButtons(pressed func(ebiten.Key) bool) uint32 {
	var buttons uint32
	for _, b := range keyBindings {
		if pressed(b.key) {
			buttons |= b.mask
		}
	}
	return buttons
}

// padButtons maps a standard layout gamepad to a joypad mask. The left
// stick doubles as the d-pad.
func padButtons(pressed func(ebiten.StandardGamepadButton) bool, axisX, axisY float64) uint32 {
	var buttons uint32
	for _, b := range padBindings {
		if pressed(b.button) {
			buttons |= b.mask
		}
	}

	if axisX < -stickDeadzone {
		buttons |= maskLeft
	}
	if axisX > stickDeadzone {
		buttons |= maskRight
	}
	if axisY < -stickDeadzone {
		buttons |= maskUp
	}
	if axisY > stickDeadzone {
		buttons |= maskDown
	}
	return buttons
}
