package storage

// Config represents the host configuration stored in config.json
type Config struct {
	Version int          `json:"version"`
	Video   VideoConfig  `json:"video"`
	Audio   AudioConfig  `json:"audio"`
	Window  WindowConfig `json:"window"`
}

// VideoConfig contains video-related settings
type VideoConfig struct {
	Palette string `json:"palette"` // "color" or "green"
	Scale   int    `json:"scale"`   // integer window scale, 1-8
}

// AudioConfig contains audio-related settings
type AudioConfig struct {
	Volume float64 `json:"volume"`
	Muted  bool    `json:"muted"`
}

// WindowConfig contains window position and size
type WindowConfig struct {
	Width  int  `json:"width"`
	Height int  `json:"height"`
	X      *int `json:"x,omitempty"` // nil = OS decides position
	Y      *int `json:"y,omitempty"`
}
