package game

import (
	"fmt"

	"github.com/quasilyte/gdata/v2"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// ViewerSettings are the persisted preferences of the desktop viewer.
type ViewerSettings struct {
	// Audio
	SoundEnabled bool    `yaml:"soundEnabled"`
	SoundVolume  float64 `yaml:"soundVolume"` // 0.0 ~ 1.0

	// Presentation
	ShakeEnabled bool    `yaml:"shakeEnabled"`
	Scale        float64 `yaml:"scale"`

	// LastPet is the pet shown on the previous run.
	LastPet string `yaml:"lastPet,omitempty"`
}

// DefaultSettings returns the stock preferences.
func DefaultSettings() *ViewerSettings {
	return &ViewerSettings{
		SoundEnabled: true,
		SoundVolume:  0.8,
		ShakeEnabled: true,
		Scale:        2,
	}
}

// SettingsManager loads and saves ViewerSettings.
type SettingsManager struct {
	gdataManager *gdata.Manager // may be nil: in-memory only
	settings     *ViewerSettings
	logger       *zap.Logger
}

// Storage location inside gdata.
const (
	settingsObject   = "settings"
	settingsProperty = "viewer"
)

// NewSettingsManager creates a settings manager and loads saved settings.
//
// Parameters:
//   - gdataManager: cross-platform storage, may be nil (settings are then
//     kept in memory only)
//   - logger: may be nil
//
// A failed load is not fatal: the manager starts from DefaultSettings and
// the failure is logged.
func NewSettingsManager(gdataManager *gdata.Manager, logger *zap.Logger) *SettingsManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	sm := &SettingsManager{
		gdataManager: gdataManager,
		settings:     DefaultSettings(),
		logger:       logger.Named("settings"),
	}
	if err := sm.Load(); err != nil {
		sm.logger.Warn("failed to load settings, using defaults", zap.Error(err))
	}
	return sm
}

// Load reads the settings from gdata. Missing storage or a missing
// settings file yield the defaults without error.
func (sm *SettingsManager) Load() error {
	if sm.gdataManager == nil {
		sm.settings = DefaultSettings()
		return nil
	}

	if !sm.gdataManager.ObjectPropExists(settingsObject, settingsProperty) {
		sm.settings = DefaultSettings()
		return nil
	}

	data, err := sm.gdataManager.LoadObjectProp(settingsObject, settingsProperty)
	if err != nil {
		sm.settings = DefaultSettings()
		return fmt.Errorf("failed to load settings: %w", err)
	}

	loaded := DefaultSettings()
	if err := yaml.Unmarshal(data, loaded); err != nil {
		sm.settings = DefaultSettings()
		return fmt.Errorf("failed to unmarshal settings: %w", err)
	}
	loaded.SoundVolume = clampVolume(loaded.SoundVolume)
	if loaded.Scale <= 0 {
		loaded.Scale = DefaultSettings().Scale
	}

	sm.settings = loaded
	sm.logger.Debug("settings loaded")
	return nil
}

// Save writes the settings to gdata. Without storage it is a no-op.
func (sm *SettingsManager) Save() error {
	if sm.gdataManager == nil {
		return nil
	}

	data, err := yaml.Marshal(sm.settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	if err := sm.gdataManager.SaveObjectProp(settingsObject, settingsProperty, data); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	sm.logger.Debug("settings saved")
	return nil
}

// Settings returns the live settings. Changes need Save to persist.
func (sm *SettingsManager) Settings() *ViewerSettings {
	return sm.settings
}

// SetSoundEnabled turns tone playback on or off.
func (sm *SettingsManager) SetSoundEnabled(enabled bool) {
	sm.settings.SoundEnabled = enabled
}

// SetSoundVolume sets the tone volume, clamped to 0.0 ~ 1.0.
func (sm *SettingsManager) SetSoundVolume(volume float64) {
	sm.settings.SoundVolume = clampVolume(volume)
}

// SetShakeEnabled turns screen shake on or off.
func (sm *SettingsManager) SetShakeEnabled(enabled bool) {
	sm.settings.ShakeEnabled = enabled
}

// SetLastPet remembers the pet on screen.
func (sm *SettingsManager) SetLastPet(id string) {
	sm.settings.LastPet = id
}

func clampVolume(volume float64) float64 {
	if volume < 0.0 {
		return 0.0
	}
	if volume > 1.0 {
		return 1.0
	}
	return volume
}
