package adapter

import (
	emucore "github.com/user-none/eblitui/api"
	"github.com/user-none/edmg/emu"
)

// Compile-time interface check.
var _ emucore.CoreFactory = (*Factory)(nil)

// Button IDs are bit positions in the mask passed to Emulator.SetInput.
const (
	buttonA      = 4
	buttonB      = 5
	buttonSelect = 6
	buttonStart  = 7
)

// Factory implements emucore.CoreFactory for the DMG emulator.
type Factory struct{}

// SystemInfo returns system metadata for UI configuration.
func (f *Factory) SystemInfo() emucore.SystemInfo {
	return emucore.SystemInfo{
		Name:            "edmg",
		ConsoleName:     "Nintendo Game Boy",
		Extensions:      []string{".gb"},
		ScreenWidth:     emu.ScreenWidth,
		MaxScreenHeight: emu.ScreenHeight,
		AspectRatio:     float64(emu.ScreenWidth) / float64(emu.ScreenHeight),
		SampleRate:      48000,
		Buttons: []emucore.Button{
			{Name: "A", ID: buttonA, DefaultKey: "X", DefaultPad: "A"},
			{Name: "B", ID: buttonB, DefaultKey: "Z", DefaultPad: "B"},
			{Name: "Select", ID: buttonSelect, DefaultKey: "Space", DefaultPad: "Back"},
			{Name: "Start", ID: buttonStart, DefaultKey: "Enter", DefaultPad: "Start"},
		},
		Players: 1,
		CoreOptions: []emucore.CoreOption{
			{
				Key:         "green_palette",
				Label:       "Green Palette",
				Description: "Use the original green LCD shades instead of the color palette",
				Type:        emucore.CoreOptionBool,
				Default:     "false",
				Category:    emucore.CoreOptionCategoryVideo,
			},
		},
		RDBName:       "Nintendo - Game Boy",
		ThumbnailRepo: "Nintendo_-_Game_Boy",
		DataDirName:   "edmg",
		ConsoleID:     4,
		CoreName:      emu.Name,
		CoreVersion:   emu.Version,
		SerializeSize: emu.SerializeSize(),
	}
}

// CreateEmulator creates a new emulator instance with the given ROM. The DMG
// has one timing so region is ignored.
func (f *Factory) CreateEmulator(rom []byte, region emucore.Region) (emucore.Emulator, error) {
	e, err := emu.NewEmulator(rom, region)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// DetectRegion always reports NTSC. The bool is false because no database
// lookup took place.
func (f *Factory) DetectRegion(rom []byte) (emucore.Region, bool) {
	return emu.RegionNTSC, false
}
