package fragment

import (
	"strings"
	"unicode/utf8"
)

// Reason names the rule that settled a QuickChecker decision.
type Reason string

const (
	ReasonContained     Reason = "contained"
	ReasonEdges         Reason = "edges"
	ReasonEdgeAndMiddle Reason = "edge_and_middle"
	ReasonNoMatch       Reason = "no_match"
)

// Decision is the outcome of QuickChecker.Explain.
type Decision struct {
	Similar      bool   `json:"similar"`
	Reason       Reason `json:"reason"`
	SampleLength int    `json:"sample_length,omitempty"`
	FrontFound   bool   `json:"front_found"`
	BackFound    bool   `json:"back_found"`
	MiddleFound  bool   `json:"middle_found"`
}

// QuickChecker tests the boundary features of the shorter text against the longer one.
//
// The premise is that a text stitched together from fragments of a source keeps the source's
// wording at its own edges, so finding both edges (or one edge and the middle) in the source
// is taken as evidence of reassembly.
type QuickChecker struct {
	opts Options
}

// NewQuickChecker returns a checker using DefaultOptions adjusted by overrides.
func NewQuickChecker(overrides ...Override) *QuickChecker {
	return &QuickChecker{opts: DefaultOptions().with(overrides...)}
}

// Options returns the construction-time configuration.
func (c *QuickChecker) Options() Options {
	return c.opts
}

// Name implements Strategy.
func (c *QuickChecker) Name() string {
	return StrategyQuick
}

// Match implements Strategy using the construction-time configuration.
func (c *QuickChecker) Match(candidate, reference string) bool {
	return c.IsSimilar(candidate, reference)
}

// IsSimilar reports whether the shorter of the two texts is plausibly a combination of
// fragments of the longer. Argument order does not matter.
func (c *QuickChecker) IsSimilar(shortText, longText string, overrides ...Override) bool {
	return c.Explain(shortText, longText, overrides...).Similar
}

// Explain runs the same algorithm as IsSimilar and reports how the answer was reached.
func (c *QuickChecker) Explain(shortText, longText string, overrides ...Override) Decision {
	opts := c.opts.with(overrides...)

	short, long := orderByLength(strings.TrimSpace(shortText), strings.TrimSpace(longText))

	if strings.Contains(long, short) {
		return Decision{Similar: true, Reason: ReasonContained, FrontFound: true, BackFound: true}
	}

	sh := newRuneSlicer(short)
	sampleLength := SampleLength(sh.count(), opts)

	d := Decision{SampleLength: sampleLength, Reason: ReasonNoMatch}
	d.FrontFound = strings.Contains(long, sh.head(sampleLength))
	d.BackFound = strings.Contains(long, sh.tail(sampleLength))

	if d.FrontFound && d.BackFound {
		d.Similar = true
		d.Reason = ReasonEdges
		return d
	}

	if d.FrontFound || d.BackFound {
		middle := sh.window(sh.count()/3, sampleLength)
		d.MiddleFound = strings.Contains(long, middle)
		if d.MiddleFound {
			d.Similar = true
			d.Reason = ReasonEdgeAndMiddle
		}
	}

	return d
}

// SampleLength derives the probe width for a short text of shortLen characters:
// floor(shortLen*ratio) clamped into [MinSampleLength, MaxSampleLength]. When min > max the
// floor wins.
func SampleLength(shortLen int, opts Options) int {
	base := int(float64(shortLen) * opts.SampleLengthRatio)
	return max(opts.MinSampleLength, min(base, opts.MaxSampleLength))
}

// orderByLength returns the pair with the text of fewer characters first. Equal lengths are
// ordered lexicographically so that swapping the arguments never changes the result.
func orderByLength(a, b string) (string, string) {
	la, lb := runeCount(a), runeCount(b)
	if la > lb || (la == lb && a > b) {
		return b, a
	}
	return a, b
}

// runeSlicer cuts a string at character boundaries without re-encoding it. Invalid UTF-8
// bytes count as one character each and are kept as they are, so samples still find byte
// sequences present in the other text.
type runeSlicer struct {
	s    string
	offs []int // byte offset of every character start, then len(s)
}

func newRuneSlicer(s string) runeSlicer {
	offs := make([]int, 0, len(s)+1)
	for i := 0; i < len(s); {
		offs = append(offs, i)
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
	}
	return runeSlicer{s: s, offs: append(offs, len(s))}
}

// count returns the number of characters.
func (r runeSlicer) count() int {
	return len(r.offs) - 1
}

// slice returns characters [from, to).
func (r runeSlicer) slice(from, to int) string {
	return r.s[r.offs[from]:r.offs[to]]
}

// head returns the first n characters, or all of them when there are fewer than n.
// A non-positive n yields the empty string.
func (r runeSlicer) head(n int) string {
	if n <= 0 {
		return ""
	}
	return r.slice(0, min(n, r.count()))
}

// tail returns the last n characters, or all of them when there are fewer than n.
func (r runeSlicer) tail(n int) string {
	if n <= 0 {
		return ""
	}
	return r.slice(max(r.count()-n, 0), r.count())
}

// window returns up to n characters starting at start.
func (r runeSlicer) window(start, n int) string {
	if n <= 0 || start >= r.count() {
		return ""
	}
	return r.slice(start, min(start+n, r.count()))
}
