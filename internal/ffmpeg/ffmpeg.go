// internal/ffmpeg/ffmpeg.go
// Package ffmpeg wraps the two ffmpeg invocations of the pipeline: frame
// extraction into the staging area and reassembly of the upscaled frames
// with the original audio track.
package ffmpeg

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"xbrupscaler/internal/command"
	"xbrupscaler/internal/staging"
)

// DefaultEncodeArgs is the documented fallback preset used when the config
// provides no ffmpeg arguments of its own.
var DefaultEncodeArgs = []string{
	"-c:v", "libx264",
	"-preset", "medium",
	"-tune", "animation",
	"-crf", "15",
	"-pix_fmt", "yuv420p",
	"-c:a", "aac",
	"-b:a", "128k",
	"-shortest",
}

// IsAvailable reports whether ffmpeg can be found on PATH.
func IsAvailable(exec command.Executor) bool {
	return exec.IsAvailable("ffmpeg")
}

// FrameError reports a frame that could not be persisted or verified on
// disk after extraction. It always aborts the whole run.
type FrameError struct {
	Index int
}

func (e *FrameError) Error() string {
	return fmt.Sprintf("frame extraction failed for frame %d", e.Index)
}

// EncodeError reports a failed reassembly invocation.
type EncodeError struct {
	ExitCode int
	Cmd      string
	Output   string
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("encoding video failed with exit code %d", e.ExitCode)
}

// Extractor decodes the source video into the numbered frame sequence.
type Extractor struct {
	Exec    command.Executor
	Verbose bool
	Log     io.Writer
}

// BuildExtractArgs constructs the ffmpeg arguments for frame extraction.
// Indices start at 0 to match the staging layout.
func BuildExtractArgs(videoPath, stagingDir string) []string {
	return []string{
		"-i", videoPath,
		"-start_number", "0",
		"-y", filepath.Join(stagingDir, staging.FramePattern),
	}
}

// Extract decodes every frame of the source into the staging directory and
// returns the count, which becomes the authoritative frame range for all
// later stages. Each expected frame is verified on disk; a hole or a count
// past the index padding limit aborts the run.
func (e *Extractor) Extract(videoPath, stagingDir string) (int, error) {
	args := BuildExtractArgs(videoPath, stagingDir)
	if e.Verbose {
		fmt.Fprintf(e.log(), "Running command: %s\n", command.Line("ffmpeg", args))
	}

	output, err := e.Exec.Execute("ffmpeg", args...)
	if err != nil {
		if e.Verbose {
			fmt.Fprintf(e.log(), "%s\n", output)
		}
		return 0, fmt.Errorf("frame extraction failed: %w", err)
	}

	count, err := countFrames(stagingDir)
	if err != nil {
		return 0, err
	}
	if count > staging.MaxFrames {
		return 0, fmt.Errorf("video has %d frames, more than the %d the frame numbering supports",
			count, staging.MaxFrames)
	}

	for i := 0; i < count; i++ {
		if _, err := os.Stat(staging.FramePath(stagingDir, i)); err != nil {
			return 0, &FrameError{Index: i}
		}
	}
	return count, nil
}

func countFrames(stagingDir string) (int, error) {
	matches, err := filepath.Glob(filepath.Join(stagingDir, "frame_*.png"))
	if err != nil {
		return 0, fmt.Errorf("failed to scan staging directory: %w", err)
	}
	return len(matches), nil
}

// Reassembler combines the upscaled frame sequence with the source's audio
// stream into the final output file.
type Reassembler struct {
	Exec    command.Executor
	Verbose bool
	Log     io.Writer
}

// BuildReassembleArgs constructs the full reassembly invocation: the frame
// sequence at the probed rate as the first input, the source video as the
// second, video mapped from the first and audio from the second, then either
// the caller-supplied encoder arguments or the default preset.
func BuildReassembleArgs(sourceVideo, outputPath, stagingDir string, fps float64, extraArgs []string) []string {
	args := []string{
		"-r", strconv.FormatFloat(fps, 'f', -1, 64),
		"-start_number", "0",
		"-i", filepath.Join(stagingDir, staging.UpscaledPattern),
		"-i", sourceVideo,
		"-map", "0:v",
		"-map", "1:a",
	}

	if len(extraArgs) > 0 {
		args = append(args, extraArgs...)
	} else {
		args = append(args, DefaultEncodeArgs...)
	}

	return append(args, outputPath)
}

// Reassemble runs the reassembly invocation. A non-zero exit becomes an
// EncodeError carrying the exit code and the tool's captured output.
func (r *Reassembler) Reassemble(sourceVideo, outputPath, stagingDir string, fps float64, extraArgs []string) error {
	if len(extraArgs) == 0 {
		fmt.Fprintln(r.log(), "Falling back to the default ffmpeg arguments.")
	}

	args := BuildReassembleArgs(sourceVideo, outputPath, stagingDir, fps, extraArgs)
	if r.Verbose {
		fmt.Fprintf(r.log(), "Running command: %s\n", command.Line("ffmpeg", args))
	}

	output, err := r.Exec.Execute("ffmpeg", args...)
	if err != nil {
		return &EncodeError{
			ExitCode: command.ExitCode(err),
			Cmd:      command.Line("ffmpeg", args),
			Output:   string(output),
		}
	}

	if r.Verbose {
		fmt.Fprintf(r.log(), "%s\n", output)
	}
	return nil
}

func (e *Extractor) log() io.Writer {
	if e.Log != nil {
		return e.Log
	}
	return os.Stdout
}

func (r *Reassembler) log() io.Writer {
	if r.Log != nil {
		return r.Log
	}
	return os.Stdout
}
