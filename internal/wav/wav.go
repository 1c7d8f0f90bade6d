// Package wav serializes PCM audio into the canonical uncompressed
// RIFF/WAVE container and reads it back.
package wav

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Container format constants.
const (
	// HeaderSize is the size of the canonical PCM WAV header in bytes.
	HeaderSize = 44
	// FormatPCM is the audio format code for uncompressed PCM.
	FormatPCM = 1
)

// Static errors for WAV decoding.
var (
	// ErrNotRIFF is returned when the payload does not start with a RIFF/WAVE header.
	ErrNotRIFF = errors.New("wav: not a RIFF/WAVE file")
	// ErrUnsupportedFormat is returned for non-PCM or non-16-bit data.
	ErrUnsupportedFormat = errors.New("wav: unsupported audio format")
	// ErrTruncated is returned when the file is shorter than its header claims.
	ErrTruncated = errors.New("wav: truncated file")
)

// Container is the logical view of a WAV file.
type Container struct {
	// SampleRate is the sample rate in Hz.
	SampleRate int
	// NumChannels is the channel count.
	NumChannels int
	// BitsPerSample is the bit depth per sample.
	BitsPerSample int
	// PCMBytes is the raw little-endian sample payload.
	PCMBytes []byte
}

// Encode produces a complete WAV file: a 44-byte canonical PCM header
// followed by the raw PCM payload. All multi-byte header integers are
// little-endian.
func Encode(pcmBytes []byte, sampleRate, numChannels, bitsPerSample int) []byte {
	dataSize := len(pcmBytes)
	blockAlign := numChannels * bitsPerSample / 8
	byteRate := sampleRate * blockAlign

	buf := make([]byte, HeaderSize+dataSize)

	copy(buf[0:4], "RIFF")
	binary.LittleEndian.PutUint32(buf[4:8], uint32(36+dataSize))
	copy(buf[8:12], "WAVE")

	copy(buf[12:16], "fmt ")
	binary.LittleEndian.PutUint32(buf[16:20], 16)
	binary.LittleEndian.PutUint16(buf[20:22], FormatPCM)
	binary.LittleEndian.PutUint16(buf[22:24], uint16(numChannels))
	binary.LittleEndian.PutUint32(buf[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(buf[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(buf[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(buf[34:36], uint16(bitsPerSample))

	copy(buf[36:40], "data")
	binary.LittleEndian.PutUint32(buf[40:44], uint32(dataSize))

	copy(buf[44:], pcmBytes)
	return buf
}

// Decode parses a WAV file back into its logical container. It accepts
// the canonical layout plus files carrying extra chunks between "fmt "
// and "data". Only 16-bit PCM is supported.
func Decode(b []byte) (*Container, error) {
	if len(b) < HeaderSize {
		return nil, ErrTruncated
	}
	if string(b[0:4]) != "RIFF" || string(b[8:12]) != "WAVE" {
		return nil, ErrNotRIFF
	}

	var c Container
	foundFmt := false
	pos := 12
	for pos+8 <= len(b) {
		chunkID := string(b[pos : pos+4])
		chunkSize := int(binary.LittleEndian.Uint32(b[pos+4 : pos+8]))
		body := pos + 8
		if body+chunkSize > len(b) {
			return nil, ErrTruncated
		}

		switch chunkID {
		case "fmt ":
			if chunkSize < 16 {
				return nil, fmt.Errorf("%w: fmt chunk size %d", ErrUnsupportedFormat, chunkSize)
			}
			format := binary.LittleEndian.Uint16(b[body : body+2])
			if format != FormatPCM {
				return nil, fmt.Errorf("%w: format code %d", ErrUnsupportedFormat, format)
			}
			c.NumChannels = int(binary.LittleEndian.Uint16(b[body+2 : body+4]))
			c.SampleRate = int(binary.LittleEndian.Uint32(b[body+4 : body+8]))
			c.BitsPerSample = int(binary.LittleEndian.Uint16(b[body+14 : body+16]))
			if c.BitsPerSample != 16 {
				return nil, fmt.Errorf("%w: %d bits per sample", ErrUnsupportedFormat, c.BitsPerSample)
			}
			foundFmt = true
		case "data":
			if !foundFmt {
				return nil, ErrNotRIFF
			}
			c.PCMBytes = b[body : body+chunkSize]
			return &c, nil
		}

		// Chunks are word-aligned.
		pos = body + chunkSize
		if chunkSize%2 == 1 {
			pos++
		}
	}
	return nil, ErrNotRIFF
}

// ChannelData de-interleaves the PCM payload into one float sequence per
// channel, normalized to [-1, 1) by dividing by 32768.
func (c *Container) ChannelData() ([][]float64, error) {
	bytesPerSample := c.BitsPerSample / 8
	frameSize := bytesPerSample * c.NumChannels
	if frameSize == 0 || len(c.PCMBytes)%frameSize != 0 {
		return nil, ErrTruncated
	}
	frames := len(c.PCMBytes) / frameSize

	out := make([][]float64, c.NumChannels)
	for ch := range out {
		out[ch] = make([]float64, frames)
	}
	for i := 0; i < frames; i++ {
		for ch := 0; ch < c.NumChannels; ch++ {
			off := (i*c.NumChannels + ch) * bytesPerSample
			v := int16(binary.LittleEndian.Uint16(c.PCMBytes[off : off+2]))
			out[ch][i] = float64(v) / 32768.0
		}
	}
	return out, nil
}
