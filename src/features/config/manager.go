package config

import (
	"sync"

	"gopkg.in/yaml.v3"
)

// Manager holds the application configuration and provides thread-safe access to it.
type Manager struct {
	mu     sync.RWMutex
	config *Config
}

// NewManager creates a new Manager.
func NewManager(config *Config) *Manager {
	return &Manager{config: config}
}

// Get returns the current configuration.
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

// redactedCfg gets a redacted copy of the Config.
func (m *Manager) redactedCfg() Config {
	cfgCpy := *m.Get()
	if cfgCpy.Ytdl.Password != "" {
		cfgCpy.Ytdl.Password = "<redacted>"
	}
	if cfgCpy.Ytdl.APIKey != "" {
		cfgCpy.Ytdl.APIKey = "<redacted>"
	}
	if cfgCpy.Plex.Token != "" {
		cfgCpy.Plex.Token = "<redacted>"
	}
	if cfgCpy.Telegram.Token != "" {
		cfgCpy.Telegram.Token = "<redacted>"
	}
	return cfgCpy
}

// GetYAML returns the current configuration as a YAML string with secrets redacted.
func (m *Manager) GetYAML() string {
	yamlBytes, err := yaml.Marshal(m.redactedCfg())
	if err != nil {
		return err.Error()
	}
	return string(yamlBytes)
}
