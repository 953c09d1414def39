package adapter

import (
	"errors"
	"fmt"
	"testing"

	emucore "github.com/user-none/eblitui/api"
	"github.com/user-none/edmg/emu"
)

func TestFactory_SystemInfo(t *testing.T) {
	info := (&Factory{}).SystemInfo()

	if info.ScreenWidth != 160 || info.MaxScreenHeight != 144 {
		t.Errorf("screen: expected 160x144, got %dx%d", info.ScreenWidth, info.MaxScreenHeight)
	}
	if info.SerializeSize != emu.SerializeSize() {
		t.Errorf("SerializeSize: expected %d, got %d", emu.SerializeSize(), info.SerializeSize)
	}
	if len(info.Extensions) != 1 || info.Extensions[0] != ".gb" {
		t.Errorf("Extensions: expected [.gb], got %v", info.Extensions)
	}

	// Every button must drive a distinct joypad bit
	seen := map[string]string{}
	for _, b := range info.Buttons {
		id := fmt.Sprint(b.ID)
		if prev, ok := seen[id]; ok {
			t.Errorf("button %s reuses ID %s of %s", b.Name, id, prev)
		}
		seen[id] = b.Name
	}
	if len(seen) != 4 {
		t.Errorf("expected 4 buttons, got %d", len(seen))
	}
}

func TestFactory_CreateEmulator(t *testing.T) {
	f := &Factory{}

	rom := make([]byte, 32*1024)
	rom[0x14D] = 0xE7 // header checksum of an all-zero header
	e, err := f.CreateEmulator(rom, emucore.RegionNTSC)
	if err != nil {
		t.Fatalf("CreateEmulator failed: %v", err)
	}
	if _, ok := e.(*emu.Emulator); !ok {
		t.Errorf("expected *emu.Emulator, got %T", e)
	}

	if _, err := f.CreateEmulator(make([]byte, 64*1024), emucore.RegionNTSC); !errors.Is(err, emu.ErrUnsupportedROMSize) {
		t.Errorf("expected ErrUnsupportedROMSize, got %v", err)
	}
}

func TestFactory_DetectRegion(t *testing.T) {
	region, found := (&Factory{}).DetectRegion(nil)
	if region != emucore.RegionNTSC || found {
		t.Errorf("expected NTSC, false; got %v, %v", region, found)
	}
}
