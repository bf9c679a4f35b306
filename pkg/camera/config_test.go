package camera

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPresetsValidate(t *testing.T) {
	for name, cfg := range Presets() {
		assert.Empty(t, cfg.Validate(), "preset %s", name)
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"negative index", Config{Index: -1}},
		{"width only", Config{Width: 640}},
		{"too wide", Config{Width: MaxWidth + 1, Height: 480}},
		{"negative fps", Config{Framerate: -1}},
		{"excess warmup", Config{Warmup: MaxWarmup + 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotEmpty(t, tt.cfg.Validate())
		})
	}
}

func TestInterval(t *testing.T) {
	assert.Equal(t, 100*time.Millisecond, DefaultConfig().Interval())
	assert.Equal(t, 500*time.Millisecond, LowRateConfig().Interval())
}

func TestGetPreset(t *testing.T) {
	assert.Nil(t, GetPreset("8k"))
	cfg := GetPreset(Preset720p)
	if assert.NotNil(t, cfg) {
		assert.Equal(t, 1280, cfg.Width)
	}
	assert.Equal(t, []string{"1080p", "480p", "720p", "default", "lowrate"}, PresetNames())
}
