package audio

// Mix sums same-rate mono tracks sample by sample into a single track.
//
// The output length is the maximum input length; shorter tracks
// contribute silence past their end. Each output sample is the true sum
// of the inputs clamped to [-32768, 32767]. This is deliberate hard
// clipping, not a renormalized average: loud combinations clip rather
// than attenuate, and callers must accept that tradeoff.
//
// An empty input yields an empty track. A single track is returned
// unchanged.
func Mix(tracks []Samples) Samples {
	switch len(tracks) {
	case 0:
		return Samples{}
	case 1:
		return tracks[0]
	}

	maxLen := 0
	for _, t := range tracks {
		if len(t) > maxLen {
			maxLen = len(t)
		}
	}

	out := make(Samples, maxLen)
	for i := 0; i < maxLen; i++ {
		var sum int64
		for _, t := range tracks {
			if i < len(t) {
				sum += int64(t[i])
			}
		}
		out[i] = clamp(sum)
	}
	return out
}
