package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.ini")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

const validConfig = `[imageresizer]
path = /usr/local/bin/imageresizer

[output]
scale_factor = 200
container = mp4

[upscaler]
magnification_factor = 2
algorithm = XBR

[ffmpeg]
args =
`

func TestLoadValidConfig(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if cfg.ResizerPath != "/usr/local/bin/imageresizer" {
		t.Errorf("Expected resizer path /usr/local/bin/imageresizer, got %q", cfg.ResizerPath)
	}
	if cfg.ScaleFactor != 2.0 {
		t.Errorf("Expected scale factor 2.0 from 200%%, got %v", cfg.ScaleFactor)
	}
	if cfg.Container != "mp4" {
		t.Errorf("Expected container mp4, got %q", cfg.Container)
	}
	if cfg.Magnification != 2 {
		t.Errorf("Expected magnification 2, got %d", cfg.Magnification)
	}
	if cfg.Algorithm != "XBR" {
		t.Errorf("Expected algorithm XBR, got %q", cfg.Algorithm)
	}
	if len(cfg.FFmpegArgs) != 0 {
		t.Errorf("Expected no ffmpeg args, got %v", cfg.FFmpegArgs)
	}
}

func TestLoadFFmpegArgs(t *testing.T) {
	content := strings.Replace(validConfig, "args =",
		"args = -c:v libx265 -crf 18 -c:a copy", 1)

	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	expected := []string{"-c:v", "libx265", "-crf", "18", "-c:a", "copy"}
	if len(cfg.FFmpegArgs) != len(expected) {
		t.Fatalf("Expected %d args, got %d: %v", len(expected), len(cfg.FFmpegArgs), cfg.FFmpegArgs)
	}
	for i, arg := range expected {
		if cfg.FFmpegArgs[i] != arg {
			t.Errorf("Expected arg %d to be %q, got %q", i, arg, cfg.FFmpegArgs[i])
		}
	}
}

func TestLoadInvalidConfig(t *testing.T) {
	tests := []struct {
		name          string
		mutate        func(string) string
		errorContains string
		description   string
	}{
		{
			name: "Missing resizer path",
			mutate: func(c string) string {
				return strings.Replace(c, "path = /usr/local/bin/imageresizer", "path =", 1)
			},
			errorContains: "imageresizer path",
			description:   "Empty resizer path must be rejected",
		},
		{
			name: "Non-numeric scale factor",
			mutate: func(c string) string {
				return strings.Replace(c, "scale_factor = 200", "scale_factor = big", 1)
			},
			errorContains: "scale_factor",
			description:   "Scale factor must parse as a number",
		},
		{
			name: "Zero scale factor",
			mutate: func(c string) string {
				return strings.Replace(c, "scale_factor = 200", "scale_factor = 0", 1)
			},
			errorContains: "scale_factor",
			description:   "Zero scale factor is meaningless",
		},
		{
			name: "Missing container",
			mutate: func(c string) string {
				return strings.Replace(c, "container = mp4", "container =", 1)
			},
			errorContains: "container",
			description:   "Output container is required",
		},
		{
			name: "Zero magnification",
			mutate: func(c string) string {
				return strings.Replace(c, "magnification_factor = 2", "magnification_factor = 0", 1)
			},
			errorContains: "magnification_factor",
			description:   "Magnification below 1 is invalid",
		},
		{
			name: "Missing algorithm",
			mutate: func(c string) string {
				return strings.Replace(c, "algorithm = XBR", "algorithm =", 1)
			},
			errorContains: "algorithm",
			description:   "Algorithm identifier is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.mutate(validConfig)))

			if err == nil {
				t.Fatalf("Expected error, got nil (%s)", tt.description)
			}
			if !strings.Contains(err.Error(), tt.errorContains) {
				t.Errorf("Expected error to contain %q, got: %v (%s)", tt.errorContains, err, tt.description)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "does_not_exist.ini"))
	if err == nil {
		t.Fatal("Expected error for missing config file, got nil")
	}
}
