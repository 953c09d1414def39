package storage

import (
	"errors"
	"os"
)

const (
	configVersion = 2

	PaletteColor = "color"
	PaletteGreen = "green"

	defaultScale = 3
	maxScale     = 8
)

// DefaultConfig returns the configuration used when no config.json exists.
func DefaultConfig() *Config {
	return &Config{
		Version: configVersion,
		Video: VideoConfig{
			Palette: PaletteColor,
			Scale:   defaultScale,
		},
		Audio: AudioConfig{
			Volume: 1.0,
		},
		Window: WindowConfig{
			Width:  160 * defaultScale,
			Height: 144 * defaultScale,
		},
	}
}

// LoadConfig loads the configuration from config.json.
// If the file doesn't exist, it returns default configuration.
// If the file is corrupted, it returns an error.
func LoadConfig() (*Config, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}

	config := &Config{}
	if err := ReadJSON(path, config); err != nil {
		return nil, err
	}

	return migrateConfig(config), nil
}

// SaveConfig saves the configuration to config.json atomically
func SaveConfig(config *Config) error {
	path, err := GetConfigPath()
	if err != nil {
		return err
	}

	return AtomicWriteJSON(path, config)
}

// migrateConfig upgrades older config versions and fills missing fields.
func migrateConfig(config *Config) *Config {
	// Version 1 had no palette, scale or volume and defaulted to the green
	// screen at full volume
	if config.Version < 2 {
		if config.Video.Palette == "" {
			config.Video.Palette = PaletteGreen
		}
		if config.Audio.Volume == 0 {
			config.Audio.Volume = 1.0
		}
	}
	config.Version = configVersion

	if config.Video.Palette != PaletteGreen {
		config.Video.Palette = PaletteColor
	}
	if config.Video.Scale < 1 || config.Video.Scale > maxScale {
		config.Video.Scale = defaultScale
	}
	if config.Audio.Volume < 0 || config.Audio.Volume > 1 {
		config.Audio.Volume = 1.0
	}
	if config.Window.Width == 0 {
		config.Window.Width = 160 * config.Video.Scale
	}
	if config.Window.Height == 0 {
		config.Window.Height = 144 * config.Video.Scale
	}

	return config
}
