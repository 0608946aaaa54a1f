package staging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	return &Manager{Dir: filepath.Join(t.TempDir(), "staging")}
}

func TestAcquireCreatesDirectory(t *testing.T) {
	m := newTestManager(t)

	dir, err := m.Acquire()
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	info, err := os.Stat(dir)
	if err != nil {
		t.Fatalf("Expected staging directory to exist: %v", err)
	}
	if !info.IsDir() {
		t.Error("Expected staging path to be a directory")
	}
}

func TestAcquireClearsLeftovers(t *testing.T) {
	m := newTestManager(t)

	if err := os.MkdirAll(m.Dir, 0755); err != nil {
		t.Fatal(err)
	}
	leftover := filepath.Join(m.Dir, "frame_00007.png")
	if err := os.WriteFile(leftover, []byte("stale"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := m.Acquire(); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if _, err := os.Stat(leftover); !os.IsNotExist(err) {
		t.Error("Expected leftovers from a prior run to be removed")
	}
}

func TestReleaseRemovesEverything(t *testing.T) {
	m := newTestManager(t)

	dir, err := m.Acquire()
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if err := os.WriteFile(FramePath(dir, i), []byte("raw"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	// Partial output must not block removal.
	if err := os.WriteFile(UpscaledPath(dir, 0), []byte("up"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := m.Release(); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Error("Expected staging directory to be gone after release")
	}
}

func TestReleaseIsIdempotent(t *testing.T) {
	m := newTestManager(t)

	if _, err := m.Acquire(); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if err := m.Release(); err != nil {
			t.Errorf("Release call %d failed: %v", i+1, err)
		}
	}
}

func TestFramePaths(t *testing.T) {
	tests := []struct {
		name     string
		index    int
		raw      string
		upscaled string
	}{
		{name: "First frame", index: 0, raw: "frame_00000.png", upscaled: "frame_00000_up.png"},
		{name: "Padded frame", index: 42, raw: "frame_00042.png", upscaled: "frame_00042_up.png"},
		{name: "Last padded frame", index: 99999, raw: "frame_99999.png", upscaled: "frame_99999_up.png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FramePath("dir", tt.index); got != filepath.Join("dir", tt.raw) {
				t.Errorf("Expected raw path %s, got %s", tt.raw, got)
			}
			if got := UpscaledPath("dir", tt.index); got != filepath.Join("dir", tt.upscaled) {
				t.Errorf("Expected upscaled path %s, got %s", tt.upscaled, got)
			}
		})
	}
}

func TestFindMissing(t *testing.T) {
	tests := []struct {
		name        string
		frameCount  int
		present     []int
		expected    []int
		description string
	}{
		{
			name:        "Complete set",
			frameCount:  5,
			present:     []int{0, 1, 2, 3, 4},
			expected:    nil,
			description: "No gaps after a successful dispatch",
		},
		{
			name:        "Empty set and zero count",
			frameCount:  0,
			present:     nil,
			expected:    nil,
			description: "Zero frames is complete by definition",
		},
		{
			name:        "All missing",
			frameCount:  3,
			present:     nil,
			expected:    []int{0, 1, 2},
			description: "Nothing upscaled yet",
		},
		{
			name:        "Gaps reported in order",
			frameCount:  6,
			present:     []int{0, 2, 5},
			expected:    []int{1, 3, 4},
			description: "Partial failure leaves ordered gaps",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			for _, i := range tt.present {
				if err := os.WriteFile(UpscaledPath(dir, i), []byte("up"), 0644); err != nil {
					t.Fatal(err)
				}
			}

			missing := FindMissing(dir, tt.frameCount)

			if len(missing) != len(tt.expected) {
				t.Fatalf("Expected missing %v, got %v (%s)", tt.expected, missing, tt.description)
			}
			for i, idx := range tt.expected {
				if missing[i] != idx {
					t.Errorf("Expected missing[%d]=%d, got %d (%s)", i, idx, missing[i], tt.description)
				}
			}
		})
	}
}

func TestIncompleteErrorMessage(t *testing.T) {
	short := &IncompleteError{Missing: []int{3, 4, 7}}
	if got := short.Error(); got != "missing upscaled frames: [3, 4, 7]" {
		t.Errorf("Unexpected short message: %q", got)
	}

	var long []int
	for i := 10; i < 30; i++ {
		long = append(long, i)
	}
	msg := (&IncompleteError{Missing: long}).Error()
	if !strings.Contains(msg, "from 10 to 29") {
		t.Errorf("Expected long gap list to be compressed to a range, got: %q", msg)
	}
	if strings.Contains(msg, "[") {
		t.Errorf("Expected no index list for long gaps, got: %q", msg)
	}
}

func TestFramePatternMatchesFramePath(t *testing.T) {
	// The extraction pattern handed to ffmpeg and the per-index paths must
	// agree, or verification would look for files that were never written.
	if got := fmt.Sprintf(FramePattern, 123); got != "frame_00123.png" {
		t.Errorf("Unexpected pattern expansion: %q", got)
	}
	if got := fmt.Sprintf(UpscaledPattern, 123); got != "frame_00123_up.png" {
		t.Errorf("Unexpected upscaled pattern expansion: %q", got)
	}
}
