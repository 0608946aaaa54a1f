// internal/pipeline/pipeline.go
// Package pipeline sequences the upscale run: staging, extraction, probing,
// dispatch, verification, reassembly. It owns the cancellation token and
// guarantees the staging area is released on every exit path.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"xbrupscaler/internal/command"
	"xbrupscaler/internal/config"
	"xbrupscaler/internal/ffmpeg"
	"xbrupscaler/internal/naming"
	"xbrupscaler/internal/resizer"
	"xbrupscaler/internal/staging"
	"xbrupscaler/internal/video"
)

// ErrInputNotFound indicates the source video path does not resolve to an
// existing file.
var ErrInputNotFound = errors.New("input video file not found")

// Pipeline wires the stages of one upscale run together.
type Pipeline struct {
	Config  *config.Config
	Exec    command.Executor
	Verbose bool

	// Out receives stage announcements and the progress bar. Defaults to
	// os.Stdout.
	Out io.Writer

	// Staging overrides the staging manager; nil uses the fixed default
	// location.
	Staging *staging.Manager

	// Workers bounds the dispatch parallelism; 0 means one per CPU.
	Workers int
}

// New creates a pipeline over the system executor.
func New(cfg *config.Config, verbose bool) *Pipeline {
	return &Pipeline{
		Config:  cfg,
		Exec:    command.SystemExecutor{},
		Verbose: verbose,
	}
}

// Run executes the full pipeline against one input video and returns the
// final output path. The staging directory is removed before Run returns,
// whether the run succeeds, fails, or is cancelled.
func (p *Pipeline) Run(ctx context.Context, inputPath string) (string, error) {
	if _, err := os.Stat(inputPath); err != nil {
		return "", fmt.Errorf("%w: %s", ErrInputNotFound, inputPath)
	}

	manager := p.staging()
	stagingDir, err := manager.Acquire()
	if err != nil {
		return "", err
	}
	defer func() {
		if err := manager.Release(); err != nil {
			fmt.Fprintf(p.out(), "Warning: %v\n", err)
		}
	}()

	fmt.Fprintln(p.out(), "Extracting frames...")
	extractor := &ffmpeg.Extractor{Exec: p.Exec, Verbose: p.Verbose, Log: p.Out}
	frameCount, err := extractor.Extract(inputPath, stagingDir)
	if err != nil {
		return "", err
	}
	if frameCount == 0 {
		fmt.Fprintln(p.out(), "No frames decoded from input; nothing to upscale.")
		return "", nil
	}

	prober := &video.Prober{Exec: p.Exec}
	width, height, err := prober.Resolution(inputPath)
	if err != nil {
		return "", err
	}
	fps, err := prober.FrameRate(inputPath)
	if err != nil {
		return "", err
	}

	dispatcher := &resizer.Dispatcher{
		Exec:     p.Exec,
		Workers:  p.Workers,
		Verbose:  p.Verbose,
		Log:      p.Out,
		Progress: p.Out,
	}
	err = dispatcher.Run(ctx, stagingDir, frameCount, resizer.Config{
		ToolPath:      p.Config.ResizerPath,
		Algorithm:     p.Config.Algorithm,
		Magnification: p.Config.Magnification,
		ScaleFactor:   p.Config.ScaleFactor,
		Width:         width,
		Height:        height,
	})
	if err != nil {
		return "", err
	}

	if missing := staging.FindMissing(stagingDir, frameCount); len(missing) > 0 {
		return "", &staging.IncompleteError{Missing: missing}
	}

	outputPath := naming.NoOverwrite(naming.OutputName(
		inputPath, p.Config.Algorithm, p.Config.Magnification, p.Config.Container))

	fmt.Fprintln(p.out(), "Encoding video...")
	reassembler := &ffmpeg.Reassembler{Exec: p.Exec, Verbose: p.Verbose, Log: p.Out}
	if err := reassembler.Reassemble(inputPath, outputPath, stagingDir, fps, p.Config.FFmpegArgs); err != nil {
		return "", err
	}

	return outputPath, nil
}

func (p *Pipeline) staging() *staging.Manager {
	if p.Staging != nil {
		return p.Staging
	}
	return staging.NewManager()
}

func (p *Pipeline) out() io.Writer {
	if p.Out != nil {
		return p.Out
	}
	return os.Stdout
}
