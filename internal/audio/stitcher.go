package audio

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidClipPlacement is returned when a clip carries a negative or
// non-finite timeline position.
var ErrInvalidClipPlacement = errors.New("audio: invalid clip placement")

// Clip is a bounded unit of audio tagged with its placement time in
// seconds on a logical timeline. Clips are never mutated after creation.
type Clip struct {
	// Time is the timeline offset in seconds, >= 0.
	Time float64
	// Samples is the clip's mono PCM payload.
	Samples Samples
}

// Stitch places independently timed clips onto a single mono output
// track of ceil(totalDurationSec*sampleRate) samples, silence elsewhere.
//
// Each clip's samples are added (not overwritten) starting at sample
// offset round(clip.Time*sampleRate); overlapping clips are summed and
// clamped so that concurrent dialogue lines remain audible. Samples that
// would land past the end of the output are dropped. Accumulation is
// commutative, so the result does not depend on clip order.
func Stitch(clips []Clip, totalDurationSec float64, sampleRate int) (Samples, error) {
	total := int(math.Ceil(totalDurationSec * float64(sampleRate)))
	if total < 0 {
		total = 0
	}

	// Accumulate in 64-bit and clamp once at the end so the result is
	// independent of clip processing order.
	acc := make([]int64, total)
	for i, c := range clips {
		if c.Time < 0 || math.IsNaN(c.Time) || math.IsInf(c.Time, 0) {
			return nil, fmt.Errorf("%w: clip %d at time %v", ErrInvalidClipPlacement, i, c.Time)
		}
		// Fully past the end of the timeline: dropped.
		if math.Round(c.Time*float64(sampleRate)) >= float64(total) {
			continue
		}
		start := int(math.Round(c.Time * float64(sampleRate)))
		for j, v := range c.Samples {
			idx := start + j
			if idx >= total {
				break
			}
			acc[idx] += int64(v)
		}
	}

	out := make(Samples, total)
	for i, v := range acc {
		out[i] = clamp(v)
	}
	return out, nil
}
