// Package script extracts structured timed dialogue lines from the
// constrained text grammar emitted by the AI collaborator.
package script

import (
	"regexp"
	"strconv"
	"strings"
)

// DialogueLine is one parsed line of a dialogue script.
type DialogueLine struct {
	// Time is the timeline position of the line in seconds.
	Time float64
	// Speaker is the speaker label, e.g. "Speaker 1".
	Speaker string
	// Age is the speaker's age descriptor, e.g. "Child".
	Age string
	// Gender is the speaker's gender descriptor, e.g. "Male".
	Gender string
	// PerformanceCue describes the vocal delivery, e.g. "curiously".
	PerformanceCue string
	// Text is the dialogue content.
	Text string
}

// lineRe matches one dialogue line:
//
//	[2.350] DIALOGUE: Speaker 1: (Child, Male) [curiously] Pop goes the pebble.
var lineRe = regexp.MustCompile(`^\s*\[(\d+(?:\.\d+)?)\]\s*DIALOGUE:\s*([^:]+):\s*\(([^,)]+),([^)]+)\)\s*\[([^\]]+)\]\s*(.*\S)\s*$`)

// Parse extracts dialogue lines from free-form script text. Only lines
// matching the grammar contribute output; narration, blank lines, and
// malformed entries are silently skipped. The upstream generator is not
// guaranteed to be well-formed, so leniency is deliberate: zero matches
// is an empty list, not an error. Callers must treat an empty result as
// a reportable "no dialogue detected" condition.
func Parse(scriptText string) []DialogueLine {
	var lines []DialogueLine
	for _, raw := range strings.Split(scriptText, "\n") {
		m := lineRe.FindStringSubmatch(raw)
		if m == nil {
			continue
		}
		t, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		lines = append(lines, DialogueLine{
			Time:           t,
			Speaker:        strings.TrimSpace(m[2]),
			Age:            strings.TrimSpace(m[3]),
			Gender:         strings.TrimSpace(m[4]),
			PerformanceCue: strings.TrimSpace(m[5]),
			Text:           strings.TrimSpace(m[6]),
		})
	}
	return lines
}
