// internal/video/info.go
package video

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"xbrupscaler/internal/command"
)

// Prober reads source video metadata with ffprobe. All queries are
// read-only and leave the source untouched.
type Prober struct {
	Exec command.Executor
}

type ffprobeOutput struct {
	Streams []struct {
		Width      int    `json:"width"`
		Height     int    `json:"height"`
		RFrameRate string `json:"r_frame_rate"`
	} `json:"streams"`
}

func (p *Prober) probe(videoPath string) (*ffprobeOutput, error) {
	output, err := p.Exec.Execute("ffprobe",
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height,r_frame_rate",
		"-of", "json",
		videoPath)
	if err != nil {
		return nil, fmt.Errorf("failed to probe %s: %w", videoPath, err)
	}

	var probe ffprobeOutput
	if err := json.Unmarshal(output, &probe); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}
	if len(probe.Streams) == 0 {
		return nil, fmt.Errorf("no video stream found in %s", videoPath)
	}
	return &probe, nil
}

// FrameRate returns the source frame rate. A zero or unreadable rate is an
// error; the reassembly step never guesses a default.
func (p *Prober) FrameRate(videoPath string) (float64, error) {
	probe, err := p.probe(videoPath)
	if err != nil {
		return 0, err
	}

	fps, err := ParseFrameRate(probe.Streams[0].RFrameRate)
	if err != nil {
		return 0, fmt.Errorf("unreadable frame rate for %s: %w", videoPath, err)
	}
	return fps, nil
}

// Resolution returns the source width and height in pixels.
func (p *Prober) Resolution(videoPath string) (int, int, error) {
	probe, err := p.probe(videoPath)
	if err != nil {
		return 0, 0, err
	}

	width := probe.Streams[0].Width
	height := probe.Streams[0].Height
	if width <= 0 || height <= 0 {
		return 0, 0, fmt.Errorf("invalid resolution %dx%d for %s", width, height, videoPath)
	}
	return width, height, nil
}

// ParseFrameRate converts ffprobe's rational frame rate (e.g. "30000/1001")
// to frames per second. Plain decimal values are accepted too.
func ParseFrameRate(rate string) (float64, error) {
	num, den, found := strings.Cut(rate, "/")

	if !found {
		fps, err := strconv.ParseFloat(rate, 64)
		if err != nil || fps <= 0 {
			return 0, fmt.Errorf("invalid frame rate %q", rate)
		}
		return fps, nil
	}

	numerator, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid frame rate %q", rate)
	}
	denominator, err := strconv.ParseFloat(den, 64)
	if err != nil || denominator == 0 {
		return 0, fmt.Errorf("invalid frame rate %q", rate)
	}

	fps := numerator / denominator
	if fps <= 0 {
		return 0, fmt.Errorf("invalid frame rate %q", rate)
	}
	return fps, nil
}
