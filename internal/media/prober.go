// Package media provides video metadata probing via ffprobe.
package media

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Static errors for probing operations.
var (
	// ErrFFprobeExecution is returned when the ffprobe command fails.
	ErrFFprobeExecution = errors.New("ffprobe execution failed")
	// ErrInvalidDuration is returned when ffprobe reports a non-positive duration.
	ErrInvalidDuration = errors.New("invalid media duration")
)

// Prober defines the interface for reading media metadata.
type Prober interface {
	// Duration returns the duration of the media file in seconds.
	Duration(ctx context.Context, path string) (float64, error)
}

// Compile-time check that FFprobeProber implements Prober.
var _ Prober = (*FFprobeProber)(nil)

// FFprobeProber reads media metadata by shelling out to ffprobe.
type FFprobeProber struct {
	ffprobePath string
}

// NewFFprobeProber creates a new prober. If ffprobePath is empty,
// "ffprobe" is resolved from PATH.
func NewFFprobeProber(ffprobePath string) *FFprobeProber {
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &FFprobeProber{ffprobePath: ffprobePath}
}

// Duration returns the duration of the media file in seconds.
func (p *FFprobeProber) Duration(ctx context.Context, path string) (float64, error) {
	cmd := exec.CommandContext(ctx, p.ffprobePath,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)

	output, err := cmd.Output()
	if err != nil {
		if ctx.Err() != nil {
			return 0, fmt.Errorf("ffprobe cancelled: %w", ctx.Err())
		}
		return 0, fmt.Errorf("%w: %v", ErrFFprobeExecution, err)
	}

	duration, err := strconv.ParseFloat(strings.TrimSpace(string(output)), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: parse %q: %v", ErrFFprobeExecution, string(output), err)
	}
	if duration <= 0 {
		return 0, fmt.Errorf("%w: %f", ErrInvalidDuration, duration)
	}
	return duration, nil
}
