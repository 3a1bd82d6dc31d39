package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadConfigYAML loads configuration from a YAML file, for operators
// who keep deployment config alongside other YAML-managed infra rather
// than JSON. DialTimeout has no custom yaml (un)marshaler; yaml.v3
// itself writes a time.Duration as a duration string (e.g. "10s") and
// reads it back from one, rejecting a plain integer.

func LoadConfigYAML(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return config, nil
}

// SaveConfigYAML saves configuration to a YAML file.
func SaveConfigYAML(config *Config, filename string) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}
