package audio

import (
	"math"
	"math/rand"
)

// ToneDurationSec is the fixed duration of generated tones and noise.
const ToneDurationSec = 2

// GenerateTone produces a sine tone of ToneDurationSec seconds at
// SampleRate. amplitude is expected in [0, 1]; frequency and amplitude
// are caller-validated.
func GenerateTone(frequencyHz, amplitude float64) Samples {
	n := SampleRate * ToneDurationSec
	s := make(Samples, n)
	for i := range s {
		v := math.Sin(2*math.Pi*frequencyHz*float64(i)/SampleRate) * amplitude * MaxSample
		s[i] = int16(math.Round(v))
	}
	return s
}

// GenerateNoise produces white noise of ToneDurationSec seconds at
// SampleRate. The output is not deterministic; noise is generated once
// to seed the static effect catalog, not regenerated at runtime.
func GenerateNoise(amplitude float64) Samples {
	n := SampleRate * ToneDurationSec
	s := make(Samples, n)
	for i := range s {
		v := (rand.Float64()*2 - 1) * amplitude * MaxSample
		s[i] = int16(math.Round(v))
	}
	return s
}
