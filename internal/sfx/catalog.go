// Package sfx provides the built-in sound-effect catalog: a fixed set of
// pre-encoded PCM effects generated once at startup from the tone
// generator, with no network dependency.
package sfx

import (
	"errors"

	"github.com/francohuller-ux/Video2Sound/internal/audio"
)

// ErrEffectNotFound is returned when an effect ID is not in the catalog.
var ErrEffectNotFound = errors.New("sfx: effect not found")

// Effect is one catalog entry. Data holds the base64-encoded mono 16-bit
// 24 kHz PCM payload. Entries are immutable for the process lifetime.
type Effect struct {
	// ID is the stable identifier used by the AI collaborator's
	// effect-selection responses.
	ID string `json:"id"`
	// Name is the short display name.
	Name string `json:"name"`
	// Description is the human-readable description shown for selection.
	Description string `json:"description"`
	// Data is the base64-encoded PCM payload.
	Data string `json:"data"`
}

// Catalog is the read-only set of built-in effects.
type Catalog struct {
	effects []Effect
	byID    map[string]int
}

// NewCatalog builds the catalog once from the tone generator. The result
// should be constructed during process initialization and passed
// explicitly to consumers.
func NewCatalog() *Catalog {
	entries := []struct {
		id, name, description string
		samples               audio.Samples
	}{
		{"beep-low", "Low Beep", "Soft low-pitched beep, like a distant appliance", audio.GenerateTone(220, 0.4)},
		{"beep-mid", "Mid Beep", "Steady mid-range tone, like a dial tone", audio.GenerateTone(440, 0.5)},
		{"beep-high", "High Beep", "Bright high-pitched beep, like an alert chime", audio.GenerateTone(880, 0.4)},
		{"whistle", "Whistle", "Thin piercing whistle tone", audio.GenerateTone(1760, 0.3)},
		{"hum", "Hum", "Deep electrical hum, like machinery in the background", audio.GenerateTone(110, 0.5)},
		{"static", "Static", "Broadband static hiss, like radio noise", audio.GenerateNoise(0.3)},
		{"rumble", "Rumble", "Loud rough noise bed, like wind or a passing engine", audio.GenerateNoise(0.6)},
	}

	c := &Catalog{byID: make(map[string]int, len(entries))}
	for _, e := range entries {
		c.byID[e.id] = len(c.effects)
		c.effects = append(c.effects, Effect{
			ID:          e.id,
			Name:        e.name,
			Description: e.description,
			Data:        audio.EncodeBase64(e.samples.Bytes()),
		})
	}
	return c
}

// Effects returns all catalog entries in stable order.
func (c *Catalog) Effects() []Effect {
	out := make([]Effect, len(c.effects))
	copy(out, c.effects)
	return out
}

// Lookup returns the effect with the given ID.
func (c *Catalog) Lookup(id string) (Effect, error) {
	i, ok := c.byID[id]
	if !ok {
		return Effect{}, ErrEffectNotFound
	}
	return c.effects[i], nil
}

// Samples decodes the effect with the given ID back into PCM samples.
func (c *Catalog) Samples(id string) (audio.Samples, error) {
	e, err := c.Lookup(id)
	if err != nil {
		return nil, err
	}
	raw, err := audio.DecodeBase64(e.Data)
	if err != nil {
		return nil, audio.ErrMalformedAudioData
	}
	return audio.SamplesFromBytes(raw)
}
