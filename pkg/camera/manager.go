package camera

import (
	"encoding/json"
	"fmt"
	"sync"
)

// Manager holds the current camera configuration and handles updates.
type Manager struct {
	config Config
	mu     sync.RWMutex

	// Callback when config changes (for applying to the open Webcam)
	OnConfigChange func(cfg Config) error
}

// NewManager creates a new camera manager starting from cfg.
func NewManager(cfg Config) *Manager {
	return &Manager{
		config: cfg,
	}
}

// GetConfig returns the current camera configuration.
func (m *Manager) GetConfig() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

// SetConfig validates cfg, stores it and notifies OnConfigChange.
// The stored config is rolled back if the callback fails.
func (m *Manager) SetConfig(cfg Config) error {
	if errs := cfg.Validate(); len(errs) > 0 {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, errs)
	}

	m.mu.Lock()
	prev := m.config
	m.config = cfg
	callback := m.OnConfigChange
	m.mu.Unlock()

	if callback != nil {
		if err := callback(cfg); err != nil {
			m.mu.Lock()
			m.config = prev
			m.mu.Unlock()
			return fmt.Errorf("failed to apply config: %w", err)
		}
	}

	return nil
}

// UpdateConfig updates specific fields of the configuration.
// Accepts a map of field names to values, plus an optional "preset"
// applied before the individual fields.
func (m *Manager) UpdateConfig(params map[string]interface{}) error {
	cfg := m.GetConfig()

	if raw, ok := params["preset"]; ok {
		presetName, ok := raw.(string)
		if !ok {
			return fmt.Errorf("%w: preset must be a string, got %v", ErrInvalidConfig, raw)
		}
		preset := GetPreset(presetName)
		if preset == nil {
			return fmt.Errorf("%w: unknown preset %q", ErrInvalidConfig, presetName)
		}
		// Presets never move the device.
		preset.Index = cfg.Index
		cfg = *preset
	}

	for key, value := range params {
		var field *int
		switch key {
		case "preset":
			continue
		case "index":
			field = &cfg.Index
		case "width":
			field = &cfg.Width
		case "height":
			field = &cfg.Height
		case "framerate":
			field = &cfg.Framerate
		case "warmup":
			field = &cfg.Warmup
		default:
			return fmt.Errorf("%w: unknown field %q", ErrInvalidConfig, key)
		}
		v, ok := toInt(value)
		if !ok {
			return fmt.Errorf("%w: %s must be an integer, got %v", ErrInvalidConfig, key, value)
		}
		*field = v
	}

	return m.SetConfig(cfg)
}

// GetConfigJSON returns the current config as a map for JSON serialization.
func (m *Manager) GetConfigJSON() map[string]interface{} {
	data, _ := json.Marshal(m.GetConfig())
	var result map[string]interface{}
	_ = json.Unmarshal(data, &result)
	return result
}

func toInt(v interface{}) (int, bool) {
	switch val := v.(type) {
	case int:
		return val, true
	case int64:
		return int(val), true
	case float64:
		if val != float64(int(val)) {
			return 0, false
		}
		return int(val), true
	case json.Number:
		i, err := val.Int64()
		if err == nil {
			return int(i), true
		}
	}
	return 0, false
}
