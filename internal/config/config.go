// internal/config/config.go
package config

import (
	"fmt"
	"strings"

	"gopkg.in/ini.v1"
)

// Config holds the per-run settings read from config.ini. It is built once
// at startup and read-only afterwards.
type Config struct {
	// ResizerPath is the external image resizer executable.
	ResizerPath string

	// ScaleFactor is the overall output scale relative to the source,
	// already converted from the config file's percentage (200 -> 2.0).
	ScaleFactor float64

	// Container is the output container extension (e.g. "mp4", "mkv").
	Container string

	// Magnification is the native scale multiple of the upscale algorithm.
	Magnification int

	// Algorithm identifies the resizer algorithm (e.g. "XBR").
	Algorithm string

	// FFmpegArgs are extra encoder arguments forwarded verbatim to the
	// reassembly invocation. Empty means the built-in default preset.
	FFmpegArgs []string
}

// Load reads and validates config.ini.
func Load(path string) (*Config, error) {
	file, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg := &Config{
		ResizerPath: file.Section("imageresizer").Key("path").String(),
		Container:   file.Section("output").Key("container").String(),
		Algorithm:   file.Section("upscaler").Key("algorithm").String(),
	}

	percent, err := file.Section("output").Key("scale_factor").Float64()
	if err != nil {
		return nil, fmt.Errorf("invalid output scale_factor: %w", err)
	}
	cfg.ScaleFactor = percent / 100

	cfg.Magnification, err = file.Section("upscaler").Key("magnification_factor").Int()
	if err != nil {
		return nil, fmt.Errorf("invalid upscaler magnification_factor: %w", err)
	}

	// Space-delimited, no shell-style quoting.
	cfg.FFmpegArgs = strings.Fields(file.Section("ffmpeg").Key("args").String())

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.ResizerPath == "" {
		return fmt.Errorf("imageresizer path is required")
	}
	if c.ScaleFactor <= 0 {
		return fmt.Errorf("output scale_factor must be positive, got %.0f%%", c.ScaleFactor*100)
	}
	if c.Container == "" {
		return fmt.Errorf("output container is required")
	}
	if c.Magnification < 1 {
		return fmt.Errorf("upscaler magnification_factor must be at least 1, got %d", c.Magnification)
	}
	if c.Algorithm == "" {
		return fmt.Errorf("upscaler algorithm is required")
	}
	return nil
}
