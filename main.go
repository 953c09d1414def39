//go:build !libretro

package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/user-none/edmg/cli"
	"github.com/user-none/edmg/emu"
	"github.com/user-none/edmg/romloader"
	"github.com/user-none/edmg/storage"
	"github.com/user-none/edmg/wavwriter"

	"github.com/hajimehoshi/ebiten/v2"
)

func main() {
	romPath := flag.String("rom", "", "path to ROM file")
	scale := flag.Int("scale", 0, "window scale 1-8 (default from config)")
	palette := flag.String("palette", "", "palette: color or green (default from config)")
	wavPath := flag.String("wav", "", "record audio to a WAV file")
	configPath := flag.String("config", "", "path to config.json")
	pace := flag.Int("pace", 0, "run N frames headless at DMG speed and exit")
	flag.Parse()

	if *romPath == "" {
		fmt.Println("Usage: go run main.go -rom <romfile> [-scale 1-8] [-palette color|green] [-wav out.wav] [-config path] [-pace frames]")
		os.Exit(1)
	}

	if *configPath != "" {
		storage.SetConfigPath(*configPath)
	}
	config, err := storage.LoadConfig()
	if err != nil {
		log.Printf("warning: using default config: %v", err)
		config = storage.DefaultConfig()
	}

	switch *palette {
	case "":
	case storage.PaletteColor, storage.PaletteGreen:
		config.Video.Palette = *palette
	default:
		log.Fatalf("Invalid palette: %s (use color or green)", *palette)
	}
	if *scale != 0 {
		if *scale < 1 || *scale > 8 {
			log.Fatalf("Invalid scale: %d (use 1-8)", *scale)
		}
		config.Video.Scale = *scale
		config.Window.Width = emu.ScreenWidth * *scale
		config.Window.Height = emu.ScreenHeight * *scale
	}

	romData, name, err := romloader.LoadROM(*romPath)
	if err != nil {
		log.Fatalf("Failed to load ROM: %v", err)
	}

	e, err := emu.NewEmulator(romData, emu.RegionNTSC)
	if err != nil {
		log.Fatalf("Failed to start %s: %v", name, err)
	}
	log.Printf("loaded %s (%q, crc %08X)", name, e.Machine().Header().Title, e.ROMCRC32())

	var rec *wavwriter.Recorder
	if *wavPath != "" {
		rec, err = wavwriter.New(*wavPath, 48000)
		if err != nil {
			log.Fatal(err)
		}
	}

	if *pace > 0 {
		runHeadless(&e, *pace, rec)
		return
	}

	runner := cli.NewRunner(&e, config, rec)
	defer runner.Close()

	ebiten.SetWindowSize(config.Window.Width, config.Window.Height)
	if config.Window.X != nil && config.Window.Y != nil {
		ebiten.SetWindowPosition(*config.Window.X, *config.Window.Y)
	}
	ebiten.SetWindowTitle("edmg - " + name)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSizeLimits(emu.ScreenWidth, emu.ScreenHeight, -1, -1)
	ebiten.SetTPS(emu.FrameRate)

	if err := ebiten.RunGame(runner); err != nil {
		log.Fatal(err)
	}
}

func runHeadless(e *emu.Emulator, frames int, rec *wavwriter.Recorder) {
	stats, err := cli.RunPaced(e, frames, cli.NewPacer(emu.FramePeriod), rec)
	if rec != nil {
		if cerr := rec.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("%d frames in %v (%.2f fps, %d resyncs, %d audio frames)",
		stats.Frames, stats.Elapsed, stats.FPS(), stats.Resyncs, stats.AudioFrames)
}
