// Package config loads the service configuration from a YAML file.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"scalebar-service/internal/skins"
	"scalebar-service/internal/units"
)

type Config struct {
	Port          string           `yaml:"port"`
	SessionSecret string           `yaml:"session_secret"`
	UploadDir     string           `yaml:"upload_dir"`
	OutputDir     string           `yaml:"output_dir"`
	System        string           `yaml:"system"`
	Style         string           `yaml:"style"`
	Alignment     string           `yaml:"align"`
	DefaultWidth  float64          `yaml:"default_width"`
	Thresholds    units.Thresholds `yaml:"thresholds"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Port:          "9595",
		SessionSecret: "change-me-scalebar-session-secret",
		UploadDir:     "uploads",
		OutputDir:     "output",
		System:        units.Metric.String(),
		Style:         string(skins.StyleLine),
		Alignment:     skins.AlignLeft.String(),
		DefaultWidth:  200,
		Thresholds:    units.DefaultThresholds,
	}
}

// Load reads path over the defaults. A missing file is not an error. The PORT
// environment variable overrides the port.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		}
	}
	if port := os.Getenv("PORT"); port != "" {
		cfg.Port = port
	}
	cfg.Thresholds = cfg.Thresholds.OrDefault()
	return cfg, cfg.Validate()
}

// Validate checks the enumerated settings.
func (c Config) Validate() error {
	if _, err := units.ParseSystem(c.System); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if _, err := skins.ParseStyle(c.Style); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if _, err := skins.ParseAlignment(c.Alignment); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.DefaultWidth <= 0 {
		return fmt.Errorf("config: default_width must be positive, got %v", c.DefaultWidth)
	}
	return nil
}
