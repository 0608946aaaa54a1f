// internal/resizer/resizer.go
// Package resizer dispatches the external per-frame upscale tool across all
// extracted frames with bounded parallelism.
package resizer

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"sync"

	"xbrupscaler/internal/command"
	"xbrupscaler/internal/staging"

	"github.com/schollz/progressbar/v3"
)

// Config bundles the external tool and the per-run upscale parameters.
type Config struct {
	// ToolPath is the image resizer executable.
	ToolPath string

	// Algorithm is the resizer algorithm identifier.
	Algorithm string

	// Magnification is the algorithm's native scale multiple.
	Magnification int

	// ScaleFactor is the requested overall output scale.
	ScaleFactor float64

	// Width and Height are the source resolution; the secondary resize
	// target is computed from them.
	Width  int
	Height int
}

// IsAvailable reports whether the resizer path is an executable file.
func IsAvailable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	return info.Mode().Perm()&0111 != 0
}

// FrameError reports a single failed upscale invocation. One failed frame
// is fatal for the whole run.
type FrameError struct {
	Index    int
	ExitCode int
	Cmd      string
	Output   string
}

func (e *FrameError) Error() string {
	return fmt.Sprintf("upscaling frame %d failed with exit code %d", e.Index, e.ExitCode)
}

// BuildArgs constructs the resizer invocation for one frame: load the raw
// frame, apply the algorithm at its native magnification, and save the
// upscaled companion. When the requested scale differs from the native
// magnification, a secondary Lanczos resize to the exact target resolution
// is inserted; at native scale it is omitted.
func BuildArgs(cfg Config, stagingDir string, index int) []string {
	args := []string{
		"/load", staging.FramePath(stagingDir, index),
		"/resize", "auto", fmt.Sprintf("%s %dx", cfg.Algorithm, cfg.Magnification),
	}

	if cfg.ScaleFactor != float64(cfg.Magnification) {
		// Target dimensions truncate toward zero.
		width := int(float64(cfg.Width) * cfg.ScaleFactor)
		height := int(float64(cfg.Height) * cfg.ScaleFactor)
		args = append(args, "/resize", fmt.Sprintf("%dx%d", width, height), "Lanczos")
	}

	return append(args, "/save", staging.UpscaledPath(stagingDir, index))
}

// Dispatcher runs the per-frame upscale processes over a bounded worker
// pool. Each frame writes to a filename exclusive to its index, so workers
// share nothing but the staging directory itself.
type Dispatcher struct {
	Exec    command.Executor
	Workers int
	Verbose bool
	Log     io.Writer

	// Progress receives the progress bar; tests point it at io.Discard.
	Progress io.Writer
}

// Run upscales every frame in [0, frameCount). Frames run in any
// interleaving, but Run returns only after all dispatched work has
// finished. The first failure cancels the remaining queue; in-flight
// processes are left to finish naturally. Cancelling ctx stops new frames
// from starting and surfaces as an error after the drain.
func (d *Dispatcher) Run(ctx context.Context, stagingDir string, frameCount int, cfg Config) error {
	workers := d.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	bar := progressbar.NewOptions(frameCount,
		progressbar.OptionSetDescription("Upscaling frames"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "▐",
			BarEnd:        "▌",
		}),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetWidth(50),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionSetWriter(d.progress()),
	)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	fail := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
		cancel()
	}

	for i := 0; i < frameCount; i++ {
		stopped := false
		select {
		case <-runCtx.Done():
			stopped = true
		case sem <- struct{}{}:
			wg.Add(1)
			go func(index int) {
				defer wg.Done()
				defer func() { <-sem }()

				// A slot acquired after cancellation must not start.
				if runCtx.Err() != nil {
					return
				}
				if err := d.upscaleFrame(stagingDir, index, cfg); err != nil {
					fail(err)
					return
				}
				bar.Add(1)
			}(i)
		}
		if stopped {
			break
		}
	}

	wg.Wait()
	fmt.Fprintln(d.progress())

	if firstErr != nil {
		return firstErr
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("upscaling interrupted: %w", err)
	}
	return nil
}

func (d *Dispatcher) upscaleFrame(stagingDir string, index int, cfg Config) error {
	args := BuildArgs(cfg, stagingDir, index)
	if d.Verbose {
		fmt.Fprintf(d.log(), "Running command: %s\n", command.Line(cfg.ToolPath, args))
	}

	output, err := d.Exec.Execute(cfg.ToolPath, args...)
	if err != nil {
		return &FrameError{
			Index:    index,
			ExitCode: command.ExitCode(err),
			Cmd:      command.Line(cfg.ToolPath, args),
			Output:   string(output),
		}
	}

	if d.Verbose {
		fmt.Fprintf(d.log(), "%s\n", output)
	}
	return nil
}

func (d *Dispatcher) log() io.Writer {
	if d.Log != nil {
		return d.Log
	}
	return os.Stdout
}

func (d *Dispatcher) progress() io.Writer {
	if d.Progress != nil {
		return d.Progress
	}
	return os.Stdout
}
