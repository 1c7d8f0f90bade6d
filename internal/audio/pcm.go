// Package audio provides the PCM audio assembly core: the sample model,
// synthetic tone generation, track mixing, and timeline stitching.
// All operations are pure transforms over value-typed buffers; the package
// never logs, retries, or touches the network.
package audio

import "errors"

// Format constants shared by every generated artifact.
const (
	// SampleRate is the sample rate in Hz used throughout the service.
	SampleRate = 24000
	// BitsPerSample is the bit depth of every PCM sample.
	BitsPerSample = 16
	// NumChannels is the channel count of every generated artifact (mono).
	NumChannels = 1

	// MaxSample and MinSample bound the signed 16-bit sample range.
	MaxSample = 32767
	MinSample = -32768
)

// ErrMalformedAudioData is returned when a byte buffer cannot be
// interpreted as 16-bit PCM (odd byte length, corrupt encoding).
var ErrMalformedAudioData = errors.New("audio: malformed audio data")

// Samples is a mono sequence of signed 16-bit PCM samples.
type Samples []int16

// SamplesFromBytes reinterprets a little-endian byte buffer as 16-bit
// signed samples. The byte length must be even; otherwise
// ErrMalformedAudioData is returned.
func SamplesFromBytes(b []byte) (Samples, error) {
	if len(b)%2 != 0 {
		return nil, ErrMalformedAudioData
	}
	s := make(Samples, len(b)/2)
	for i := range s {
		s[i] = int16(uint16(b[2*i]) | uint16(b[2*i+1])<<8)
	}
	return s, nil
}

// Bytes serializes the samples as little-endian 16-bit PCM.
func (s Samples) Bytes() []byte {
	b := make([]byte, 2*len(s))
	for i, v := range s {
		b[2*i] = byte(uint16(v))
		b[2*i+1] = byte(uint16(v) >> 8)
	}
	return b
}

// Duration returns the playback duration in seconds at the given rate.
func (s Samples) Duration(sampleRate int) float64 {
	return float64(len(s)) / float64(sampleRate)
}

// ChannelSample returns sample i of channel c from an interleaved buffer
// with the given channel count. Flat index layout: i*numChannels + c.
func ChannelSample(interleaved Samples, numChannels, i, c int) int16 {
	return interleaved[i*numChannels+c]
}

// Normalize converts a 16-bit sample to a float in [-1, 1) by dividing
// by 32768.
func Normalize(v int16) float64 {
	return float64(v) / 32768.0
}

// Denormalize converts a float to a 16-bit sample using the standard
// asymmetric PCM scaling: positive values scale by 32767, negative by
// 32768. The result is clamped to the 16-bit range before truncation;
// clamping happens in float space because a float-to-integer conversion
// out of the target range is not defined by the language.
// The asymmetry is required for bit-compatible round trips.
func Denormalize(f float64) int16 {
	var scaled float64
	if f >= 0 {
		scaled = f * 32767
	} else {
		scaled = f * 32768
	}
	if scaled >= MaxSample {
		return MaxSample
	}
	if scaled <= MinSample {
		return MinSample
	}
	return int16(scaled)
}

// clamp bounds a summed value to the signed 16-bit range.
func clamp(v int64) int16 {
	if v > MaxSample {
		return MaxSample
	}
	if v < MinSample {
		return MinSample
	}
	return int16(v)
}
