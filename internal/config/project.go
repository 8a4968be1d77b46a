package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ColorMode controls diagnostic rendering.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// ProjectConfig is the optional .push/config.yaml that seeds CLI
// defaults for a workspace: an in-memory default overridden by the
// on-disk file when present.
type ProjectConfig struct {
	Threads  int       `yaml:"threads"`
	Prelude  string    `yaml:"prelude"`
	Color    ColorMode `yaml:"color"`
	Triplet  string    `yaml:"triplet"`
	TabWidth int       `yaml:"tab_width"`
}

// DefaultProjectConfig returns sensible defaults when no config file is
// present.
func DefaultProjectConfig() *ProjectConfig {
	return &ProjectConfig{
		Threads:  0, // 0 means "use 2 * runtime.NumCPU()"
		Prelude:  "",
		Color:    ColorAuto,
		Triplet:  "",
		TabWidth: 4,
	}
}

// LoadProjectConfig reads path, falling back to defaults if it does not
// exist.
func LoadProjectConfig(path string) (*ProjectConfig, error) {
	cfg := DefaultProjectConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read project config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse project config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path as YAML, creating no parent directories (the
// caller is expected to have already created .push/).
func (c *ProjectConfig) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal project config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
