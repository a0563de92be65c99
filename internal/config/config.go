// Package config loads smoothing settings from YAML files.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"savgol-image-filter/internal/savgol"
)

// ErrMissingInput is returned when no input image is configured.
var ErrMissingInput = errors.New("config: input image not set")

// WindowSize is the regression window in pixels.
type WindowSize struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// Config holds everything the command line tool needs for one run.
type Config struct {
	Input   string     `yaml:"input"`
	Output  string     `yaml:"output"`
	Window  WindowSize `yaml:"window"`
	Order   int        `yaml:"order"`
	Workers int        `yaml:"workers"`
	Debug   bool       `yaml:"debug"`
	Preview bool       `yaml:"preview"`
	Metrics bool       `yaml:"metrics"`

	// Baseline names a registered reference smoother whose metrics are
	// logged next to the Savitzky-Golay result. Empty disables it.
	Baseline string `yaml:"baseline"`
}

// Default returns a 5x5 window with a quadratic surface.
func Default() Config {
	return Config{
		Window:  WindowSize{Width: 5, Height: 5},
		Order:   2,
		Workers: 1,
		Metrics: true,
	}
}

// Load reads path over the defaults. Keys missing from the file keep their
// default value.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// SavGolWindow converts the configured window and order.
func (c Config) SavGolWindow() savgol.Window {
	return savgol.Window{Width: c.Window.Width, Height: c.Window.Height, Order: c.Order}
}

// Validate checks the filter parameters and the file settings.
func (c Config) Validate() error {
	if err := c.SavGolWindow().Validate(); err != nil {
		return err
	}
	if c.Workers < 1 {
		return fmt.Errorf("config: workers must be at least 1, got %d", c.Workers)
	}
	if c.Input == "" {
		return ErrMissingInput
	}
	switch c.Baseline {
	case "", "gaussian_blur", "median_blur":
	default:
		return fmt.Errorf("config: unknown baseline %q", c.Baseline)
	}
	if c.Output == "" && !c.Preview {
		return fmt.Errorf("config: output path required unless preview is enabled")
	}
	return nil
}

// Save writes the configuration as YAML.
func (c Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
