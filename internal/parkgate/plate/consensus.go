// Package plate turns noisy per-frame OCR guesses into a trusted plate
// identifier.  A candidate is accepted only if it matches the configured
// national format; a plate is trusted only after K accepted reads, the
// majority value winning.  Requiring K consistent reads trades a little
// latency for false-positive suppression.
package plate

import (
	"regexp"
	"strings"
)

// DefaultThreshold is the consensus threshold K: accepted reads needed
// before a majority is taken.
const DefaultThreshold = 3

// DefaultMarker is the country/region marker a raw OCR string must begin
// with before the format check applies.
const DefaultMarker = "RA"

// plateFormat matches the 7-character plate body: three uppercase
// letters, three digits, one uppercase letter.
var plateFormat = regexp.MustCompile(`^[A-Z]{3}[0-9]{3}[A-Z]$`)

// Consensus accumulates validated plate candidates until the threshold
// is reached, then yields the majority value.  Not safe for concurrent
// use; each lane owns its own instance.
type Consensus struct {
	marker    string
	threshold int
	buf       []string
}

// NewConsensus returns a Consensus with the given marker and threshold.
// Non-positive thresholds and empty markers fall back to the defaults.
func NewConsensus(marker string, threshold int) *Consensus {
	if marker == "" {
		marker = DefaultMarker
	}
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Consensus{
		marker:    marker,
		threshold: threshold,
		buf:       make([]string, 0, threshold),
	}
}

// Observe feeds one raw OCR string.  Malformed candidates are dropped
// silently.  When the buffer reaches the threshold the majority value is
// returned with ok=true and the buffer is cleared; otherwise ok=false.
func (c *Consensus) Observe(raw string) (string, bool) {
	p, ok := Validate(c.marker, raw)
	if !ok {
		return "", false
	}

	c.buf = append(c.buf, p)
	if len(c.buf) < c.threshold {
		return "", false
	}

	winner := majority(c.buf)
	c.buf = c.buf[:0]
	return winner, true
}

// Pending reports how many accepted candidates are buffered.
func (c *Consensus) Pending() int { return len(c.buf) }

// Reset discards any buffered candidates.
func (c *Consensus) Reset() { c.buf = c.buf[:0] }

// Validate checks one raw OCR string against the plate format: it must
// begin with marker, be at least 7 characters, and its first 7
// characters must be letters-digits-letter.  Returns the 7-character
// plate and whether it was accepted.
func Validate(marker, raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, marker) || len(raw) < 7 {
		return "", false
	}
	p := raw[:7]
	if !plateFormat.MatchString(p) {
		return "", false
	}
	return p, true
}

// majority returns the most frequent value in buf, ties broken by which
// value was seen first.
func majority(buf []string) string {
	counts := make(map[string]int, len(buf))
	for _, p := range buf {
		counts[p]++
	}

	best := buf[0]
	bestCount := counts[best]
	for _, p := range buf {
		if counts[p] > bestCount {
			best = p
			bestCount = counts[p]
		}
	}
	return best
}
