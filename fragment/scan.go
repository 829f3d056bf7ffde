package fragment

import (
	"slices"
	"strings"
	"unicode/utf8"
)

// DefaultLadder lists the span lengths FullScanChecker tries at each position, longest first.
var DefaultLadder = []int{100, 80, 60, 50}

// DefaultRequiredFragments is how many independent spans must match before texts are
// considered related.
const DefaultRequiredFragments = 2

// FullScanChecker walks the shorter text left to right looking for contiguous spans that
// also occur in the longer text. It is more thorough than QuickChecker and proportionally
// slower.
type FullScanChecker struct {
	ladder   []int
	required int
}

// ScanOption configures a FullScanChecker.
type ScanOption func(*FullScanChecker)

// WithLadder replaces the candidate span lengths. Lengths are tried longest first; the
// shortest one is the minimum fragment size.
func WithLadder(lengths ...int) ScanOption {
	return func(c *FullScanChecker) {
		c.ladder = slices.Clone(lengths)
	}
}

// WithRequiredFragments sets the number of matching spans needed for a positive result.
func WithRequiredFragments(n int) ScanOption {
	return func(c *FullScanChecker) {
		c.required = n
	}
}

// NewFullScanChecker returns a checker with the 100/80/60/50 ladder and a threshold of two
// fragments unless overridden.
func NewFullScanChecker(opts ...ScanOption) *FullScanChecker {
	c := &FullScanChecker{
		ladder:   slices.Clone(DefaultLadder),
		required: DefaultRequiredFragments,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.ladder = slices.DeleteFunc(c.ladder, func(n int) bool { return n <= 0 })
	slices.Sort(c.ladder)
	slices.Reverse(c.ladder)
	if c.required <= 0 {
		c.required = 1
	}
	return c
}

var defaultFullScan = NewFullScanChecker()

// HasTwoFragments reports whether newText and existingText share at least two disjoint
// spans of 50 or more characters, or one contains the other.
func HasTwoFragments(newText, existingText string) bool {
	return defaultFullScan.HasFragments(newText, existingText)
}

// Name implements Strategy.
func (c *FullScanChecker) Name() string {
	return StrategyFullScan
}

// Match implements Strategy.
func (c *FullScanChecker) Match(candidate, reference string) bool {
	return c.HasFragments(candidate, reference)
}

// Ladder returns a copy of the span lengths, longest first.
func (c *FullScanChecker) Ladder() []int {
	return slices.Clone(c.ladder)
}

// RequiredFragments returns the acceptance threshold.
func (c *FullScanChecker) RequiredFragments() int {
	return c.required
}

// HasFragments reports whether the shorter text contains at least RequiredFragments
// non-overlapping spans, each found verbatim in the longer text. Inputs are not trimmed.
func (c *FullScanChecker) HasFragments(newText, existingText string) bool {
	if utf8.RuneCountInString(newText) > utf8.RuneCountInString(existingText) {
		newText, existingText = existingText, newText
	}

	if strings.Contains(existingText, newText) {
		return true
	}
	if len(c.ladder) == 0 {
		return false
	}

	text := newRuneSlicer(newText)
	shortest := c.ladder[len(c.ladder)-1]
	found := 0

	for i := 0; i < text.count()-shortest; {
		matched := 0
		for _, length := range c.ladder {
			if i+length > text.count() {
				continue
			}
			if strings.Contains(existingText, text.slice(i, i+length)) {
				matched = length
				break
			}
		}

		if matched == 0 {
			i++
			continue
		}

		found++
		if found >= c.required {
			return true
		}
		i += matched
	}

	return false
}

func runeCount(s string) int {
	return utf8.RuneCountInString(s)
}
