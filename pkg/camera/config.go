// Package camera opens capture devices and reads frames from them.
// Configuration follows the same pattern as the runtime-tunable settings
// served by histserver: a plain Config, named presets and a Manager.
package camera

import (
	"fmt"
	"time"
)

// Config holds capture device parameters.
// Zero Width, Height or Framerate leave the device default untouched.
type Config struct {
	Index     int `json:"index"`     // Device index, 0 is the first camera
	Width     int `json:"width"`     // Requested frame width in pixels
	Height    int `json:"height"`    // Requested frame height in pixels
	Framerate int `json:"framerate"` // Requested FPS, also the histserver sample rate

	// Warmup frames are read and discarded right after opening.
	// Some UVC cameras return dark frames until auto exposure settles.
	Warmup int `json:"warmup"`
}

// Limits for requested capture parameters.
const (
	MaxWidth     = 7680
	MaxHeight    = 4320
	MaxFramerate = 240
	MaxWarmup    = 120
)

// DefaultConfig returns device 0 at whatever mode the driver picks.
func DefaultConfig() Config {
	return Config{
		Index:     0,
		Width:     0,
		Height:    0,
		Framerate: 0,
		Warmup:    0,
	}
}

// Validate checks if the config values are within valid ranges.
// Returns a list of validation errors, or nil if valid.
func (c *Config) Validate() []string {
	var errors []string

	if c.Index < 0 {
		errors = append(errors, "index must be >= 0")
	}
	if c.Width < 0 || c.Width > MaxWidth {
		errors = append(errors, fmt.Sprintf("width must be 0 (device default) or up to %d", MaxWidth))
	}
	if c.Height < 0 || c.Height > MaxHeight {
		errors = append(errors, fmt.Sprintf("height must be 0 (device default) or up to %d", MaxHeight))
	}
	if (c.Width == 0) != (c.Height == 0) {
		errors = append(errors, "width and height must be set together")
	}
	if c.Framerate < 0 || c.Framerate > MaxFramerate {
		errors = append(errors, fmt.Sprintf("framerate must be 0 (device default) or up to %d", MaxFramerate))
	}
	if c.Warmup < 0 || c.Warmup > MaxWarmup {
		errors = append(errors, fmt.Sprintf("warmup must be between 0 and %d", MaxWarmup))
	}

	return errors
}

// Interval returns the sampling period implied by Framerate.
// A zero Framerate samples at 10 FPS.
func (c Config) Interval() time.Duration {
	fps := c.Framerate
	if fps <= 0 {
		fps = 10
	}
	return time.Second / time.Duration(fps)
}
