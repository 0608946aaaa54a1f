// internal/staging/staging.go
// Package staging owns the temporary frame directory for a single run:
// creation, the frame file naming scheme, completeness verification, and
// unconditional cleanup on every exit path.
package staging

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultDir is the fixed relative staging location.
const DefaultDir = ".temp_frames"

// MaxFrames is the largest frame count the 5-digit index padding can hold
// (indices 00000 through 99999). Extraction fails fast beyond this bound
// rather than silently breaking the sequence ordering.
const MaxFrames = 100000

// FramePattern is the printf pattern for raw extracted frames, shared with
// the ffmpeg image2 demuxer/muxer.
const FramePattern = "frame_%05d.png"

// UpscaledPattern is the printf pattern for upscaled companion frames.
const UpscaledPattern = "frame_%05d_up.png"

// Manager owns the staging directory lifecycle.
type Manager struct {
	Dir string
}

// NewManager returns a manager over the fixed default staging path.
func NewManager() *Manager {
	return &Manager{Dir: DefaultDir}
}

// Acquire creates a fresh staging directory. Leftovers from a crashed prior
// run are removed first so frame indices always start from a clean slate.
func (m *Manager) Acquire() (string, error) {
	if err := os.RemoveAll(m.Dir); err != nil {
		return "", fmt.Errorf("failed to clear staging directory %s: %w", m.Dir, err)
	}
	if err := os.MkdirAll(m.Dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create staging directory %s: %w", m.Dir, err)
	}
	return m.Dir, nil
}

// Release removes the staging directory and everything in it. It tolerates
// partial contents and repeated calls; callers must not touch staged files
// afterwards.
func (m *Manager) Release() error {
	if err := os.RemoveAll(m.Dir); err != nil {
		return fmt.Errorf("failed to remove staging directory %s: %w", m.Dir, err)
	}
	return nil
}

// FramePath returns the raw frame file path for an index.
func FramePath(dir string, index int) string {
	return filepath.Join(dir, fmt.Sprintf(FramePattern, index))
}

// UpscaledPath returns the upscaled frame file path for an index.
func UpscaledPath(dir string, index int) string {
	return filepath.Join(dir, fmt.Sprintf(UpscaledPattern, index))
}

// FindMissing scans [0, frameCount) and returns, in order, every index
// whose upscaled frame file does not exist. An empty result means the set
// is complete and reassembly may proceed.
func FindMissing(dir string, frameCount int) []int {
	var missing []int
	for i := 0; i < frameCount; i++ {
		if _, err := os.Stat(UpscaledPath(dir, i)); errors.Is(err, os.ErrNotExist) {
			missing = append(missing, i)
		}
	}
	return missing
}

// IncompleteError reports gaps in the upscaled frame set. The external
// muxer has no defined behavior for a hole in the sequence, so this always
// blocks reassembly.
type IncompleteError struct {
	Missing []int
}

func (e *IncompleteError) Error() string {
	// Long gap lists are compressed to a range.
	if len(e.Missing) > 10 {
		return fmt.Sprintf("missing upscaled frames: from %d to %d",
			e.Missing[0], e.Missing[len(e.Missing)-1])
	}

	parts := make([]string, len(e.Missing))
	for i, frame := range e.Missing {
		parts[i] = fmt.Sprintf("%d", frame)
	}
	return "missing upscaled frames: [" + strings.Join(parts, ", ") + "]"
}
