// internal/command/command.go
// Package command is the subprocess boundary for the whole tool. Every
// external invocation (ffmpeg, ffprobe, the image resizer) goes through an
// Executor so tests can substitute a mock.
package command

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Executor runs external commands and reports tool availability.
type Executor interface {
	Execute(name string, args ...string) ([]byte, error)
	IsAvailable(name string) bool
}

// Error describes a command that started but exited non-zero. Output holds
// the combined stdout/stderr captured from the process.
type Error struct {
	Name   string
	Args   []string
	Code   int
	Output []byte
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s exited with code %d", e.Name, e.Code)
}

// CommandLine reconstructs the invocation for verbose reporting.
func (e *Error) CommandLine() string {
	return Line(e.Name, e.Args)
}

// Line formats a command and its arguments as a single shell-like string.
func Line(name string, args []string) string {
	return strings.Join(append([]string{name}, args...), " ")
}

// ExitCode extracts the exit code from an execution error, or -1 if the
// error does not carry one (e.g. the binary could not be started).
func ExitCode(err error) int {
	var cmdErr *Error
	if errors.As(err, &cmdErr) {
		return cmdErr.Code
	}
	return -1
}

// SystemExecutor runs commands with os/exec, capturing combined output.
type SystemExecutor struct{}

func (SystemExecutor) Execute(name string, args ...string) ([]byte, error) {
	cmd := exec.Command(name, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return output, &Error{
				Name:   name,
				Args:   args,
				Code:   exitErr.ExitCode(),
				Output: output,
			}
		}
		return output, fmt.Errorf("failed to run %s: %w", name, err)
	}
	return output, nil
}

func (SystemExecutor) IsAvailable(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}
