// main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"xbrupscaler/internal/command"
	"xbrupscaler/internal/config"
	"xbrupscaler/internal/ffmpeg"
	"xbrupscaler/internal/pipeline"
	"xbrupscaler/internal/resizer"
	"xbrupscaler/internal/staging"

	"github.com/charmbracelet/lipgloss"
	"github.com/manifoldco/promptui"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED")).
			MarginBottom(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EF4444")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	detailStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280"))
)

func main() {
	inputFlag := flag.String("i", "", "Input video file")
	verbose := flag.Bool("v", false, "Show verbose output")
	configPath := flag.String("c", "config.ini", "Configuration file path")
	flag.Parse()

	fmt.Println(titleStyle.Render("🎬 XBR Video Upscaler"))

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Println(errorStyle.Render(fmt.Sprintf("❌ %v", err)))
		os.Exit(1)
	}

	if err := checkDependencies(cfg); err != nil {
		fmt.Println(errorStyle.Render(fmt.Sprintf("❌ %v", err)))
		os.Exit(1)
	}

	inputPath := *inputFlag
	if inputPath == "" {
		inputPath, err = promptForInput()
		if err != nil {
			fmt.Println(errorStyle.Render(fmt.Sprintf("❌ %v", err)))
			os.Exit(1)
		}
	}

	// Ctrl+C stops new frames from being dispatched; in-flight external
	// processes drain, then the staging area is removed.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	p := pipeline.New(cfg, *verbose)
	outputPath, err := p.Run(ctx, inputPath)
	if err != nil {
		reportError(err, *verbose)
		os.Exit(1)
	}

	if outputPath == "" {
		return
	}
	fmt.Println(successStyle.Render("✅ Upscaling completed successfully!"))
	fmt.Printf("Video saved to: %s\n", outputPath)
}

func checkDependencies(cfg *config.Config) error {
	if !resizer.IsAvailable(cfg.ResizerPath) {
		return fmt.Errorf("ImageResizer must be correctly installed and executable. Current path: %s", cfg.ResizerPath)
	}
	if !ffmpeg.IsAvailable(command.SystemExecutor{}) {
		return fmt.Errorf("ffmpeg must be correctly installed and in PATH")
	}
	return nil
}

func promptForInput() (string, error) {
	prompt := promptui.Prompt{
		Label: "Input video file",
		Validate: func(input string) error {
			path := strings.TrimSpace(input)
			if path == "" {
				return fmt.Errorf("path cannot be empty")
			}
			if _, err := os.Stat(path); err != nil {
				return fmt.Errorf("file does not exist")
			}
			return nil
		},
	}

	path, err := prompt.Run()
	if err != nil {
		return "", fmt.Errorf("no input video provided: %w", err)
	}
	return strings.TrimSpace(path), nil
}

func reportError(err error, verbose bool) {
	if errors.Is(err, context.Canceled) {
		fmt.Println(errorStyle.Render("❌ Interrupted, staging area cleaned up."))
		return
	}

	fmt.Println(errorStyle.Render(fmt.Sprintf("❌ %v", err)))

	var frameErr *resizer.FrameError
	var encodeErr *ffmpeg.EncodeError
	var incompleteErr *staging.IncompleteError

	switch {
	case errors.As(err, &frameErr):
		if verbose {
			fmt.Println(detailStyle.Render("Command: " + frameErr.Cmd))
			fmt.Println(detailStyle.Render("Output: " + frameErr.Output))
		}
	case errors.As(err, &encodeErr):
		if verbose {
			fmt.Println(detailStyle.Render("Command: " + encodeErr.Cmd))
			fmt.Println(detailStyle.Render("Output: " + encodeErr.Output))
		}
	case errors.As(err, &incompleteErr):
		// The error message already lists or ranges the gaps.
	}
}
