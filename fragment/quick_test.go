package fragment

import (
	"strings"
	"sync"
	"testing"
)

const (
	source      = "第一部分：介绍。第二部分：方法。第三部分：实验。第五部分：讨论。第六部分：结论。"
	firstPart   = "第一部分：介绍。"
	middlePart  = "第三部分：实验。"
	lastPart    = "第六部分：结论。"
	unrelated   = "这是一个完全不同的内容。"
	threeJoined = "第一部分：介绍。第三部分：实验。第六部分：结论。"
)

func TestQuickCheckerScenarios(t *testing.T) {
	checker := NewQuickChecker(WithMinSampleLength(2))

	tests := []struct {
		name  string
		short string
		want  bool
	}{
		{"first fragment", firstPart, true},
		{"middle fragment", middlePart, true},
		{"last fragment", lastPart, true},
		{"three fragments literal", threeJoined, true},
		{"three fragments concatenated", firstPart + middlePart + lastPart, true},
		{"first and middle", firstPart + middlePart, true},
		{"first and last", firstPart + lastPart, true},
		{"middle and last", middlePart + lastPart, true},
		{"unrelated", unrelated, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := checker.IsSimilar(tc.short, source); got != tc.want {
				t.Fatalf("IsSimilar(%q) = %v; want %v (%+v)", tc.short, got, tc.want, checker.Explain(tc.short, source))
			}
		})
	}
}

func TestQuickCheckerPerCallOverrides(t *testing.T) {
	checker := NewQuickChecker()

	// With the default floor of 30 the probe covers the whole 16-character candidate,
	// which is not a substring of the source.
	if checker.IsSimilar(firstPart+middlePart, source) {
		t.Fatalf("expected default options to reject two joined fragments of a short source")
	}
	if !checker.IsSimilar(firstPart+middlePart, source, WithMinSampleLength(2)) {
		t.Fatalf("expected per-call min_sample_length=2 to accept two joined fragments")
	}
	if got := checker.Options(); got != DefaultOptions() {
		t.Fatalf("per-call override leaked into checker options: %+v", got)
	}
}

func TestQuickCheckerExplainReasons(t *testing.T) {
	checker := NewQuickChecker(WithMinSampleLength(4), WithMaxSampleLength(4))

	tests := []struct {
		name       string
		short      string
		long       string
		wantReason Reason
		wantFront  bool
		wantBack   bool
		wantMiddle bool
	}{
		{"contained", "cdef", "abcdefgh", ReasonContained, true, true, false},
		{"both edges", "abcd----ijkl", "abcdXXXXXXXXijkl", ReasonEdges, true, true, false},
		{"front and middle", "abcdefghijkl", "abcdefgh--------", ReasonEdgeAndMiddle, true, false, true},
		{"back and middle", "zzzzefghijkl", "--efghijkl------", ReasonEdgeAndMiddle, false, true, true},
		{"front only", "abcdefghijkl", "abcd------------", ReasonNoMatch, true, false, false},
		{"nothing", "abcdefghijkl", "mnopqrstuvwxyz", ReasonNoMatch, false, false, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d := checker.Explain(tc.short, tc.long)
			if d.Reason != tc.wantReason {
				t.Fatalf("reason = %q; want %q (%+v)", d.Reason, tc.wantReason, d)
			}
			if d.Similar != (tc.wantReason != ReasonNoMatch) {
				t.Fatalf("similar = %v inconsistent with reason %q", d.Similar, d.Reason)
			}
			if d.FrontFound != tc.wantFront || d.BackFound != tc.wantBack || d.MiddleFound != tc.wantMiddle {
				t.Fatalf("probes front=%v back=%v middle=%v; want %v %v %v",
					d.FrontFound, d.BackFound, d.MiddleFound, tc.wantFront, tc.wantBack, tc.wantMiddle)
			}
		})
	}
}

func TestQuickCheckerSymmetry(t *testing.T) {
	checker := NewQuickChecker(WithMinSampleLength(2))
	texts := []string{
		"", " ", source, firstPart, middlePart + lastPart, unrelated, threeJoined,
		"abcd", "dcba", "abce", "  padded text  ", "padded", "the quick brown fox",
		"the quick brown dog", "fox the quick brown",
	}

	for _, a := range texts {
		for _, b := range texts {
			if checker.IsSimilar(a, b) != checker.IsSimilar(b, a) {
				t.Errorf("IsSimilar(%q, %q) is not symmetric", a, b)
			}
		}
	}
}

func TestQuickCheckerContainmentAndEmpty(t *testing.T) {
	checker := NewQuickChecker()
	long := strings.Repeat("transcript text with no particular structure ", 20)

	for _, start := range []int{0, 7, 100, len(long) - 30} {
		sub := long[start : start+25]
		if !checker.IsSimilar(sub, long) {
			t.Errorf("substring at %d not accepted", start)
		}
	}

	for _, y := range []string{"", "x", source, long} {
		if !checker.IsSimilar("", y) {
			t.Errorf("empty string should be similar to %q", y)
		}
	}
}

func TestQuickCheckerDisjoint(t *testing.T) {
	checker := NewQuickChecker()
	a := strings.Repeat("alpha beta gamma delta ", 10)
	b := strings.Repeat("one two three four five six ", 10)
	if checker.IsSimilar(a, b) {
		t.Fatalf("disjoint texts reported similar")
	}
	if checker.IsSimilar(unrelated, source) {
		t.Fatalf("unrelated text reported similar with default options")
	}
}

func TestQuickCheckerIdempotentAndConcurrent(t *testing.T) {
	checker := NewQuickChecker(WithMinSampleLength(2))
	want := checker.IsSimilar(firstPart+lastPart, source)

	var wg sync.WaitGroup
	errs := make(chan string, 64)
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				if checker.IsSimilar(firstPart+lastPart, source) != want {
					errs <- "result changed between calls"
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for msg := range errs {
		t.Fatal(msg)
	}
}

func TestSampleLength(t *testing.T) {
	tests := []struct {
		name     string
		shortLen int
		opts     Options
		want     int
	}{
		{"clamped to floor", 100, DefaultOptions(), 30},
		{"proportional", 500, DefaultOptions(), 100},
		{"clamped to ceiling", 5000, DefaultOptions(), 150},
		{"floor wins when min exceeds max", 100, Options{SampleLengthRatio: 0.2, MinSampleLength: 50, MaxSampleLength: 10}, 50},
		{"zero ratio falls back to floor", 100, Options{SampleLengthRatio: 0, MinSampleLength: 7, MaxSampleLength: 10}, 7},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := SampleLength(tc.shortLen, tc.opts); got != tc.want {
				t.Fatalf("SampleLength(%d) = %d; want %d", tc.shortLen, got, tc.want)
			}
		})
	}
}

func TestQuickCheckerNonPositiveSampleDoesNotPanic(t *testing.T) {
	checker := NewQuickChecker(WithSampleLengthRatio(0), WithMinSampleLength(0))
	d := checker.Explain("xyz", "abcdef")
	if !d.Similar || d.Reason != ReasonEdges || d.SampleLength != 0 {
		t.Fatalf("unexpected decision for empty probes: %+v", d)
	}
}

func TestQuickCheckerKeepsInvalidUTF8Bytes(t *testing.T) {
	long := "AAAA\xffBBBB middle stuff CCCC\xfeDDDD"
	short := "A\xffBB unrelated C\xfeDD"

	d := NewQuickChecker(WithMinSampleLength(4)).Explain(short, long)
	if !d.Similar || d.Reason != ReasonEdges || d.SampleLength != 4 {
		t.Fatalf("edge samples should match the raw bytes: %+v", d)
	}

	// The full scan slices the same way.
	span := strings.Repeat("\xffg", 30)
	existing := span + strings.Repeat("xy", 60) + span
	if !HasTwoFragments(span+"##"+span+"#", existing) {
		t.Fatal("spans containing invalid bytes should match")
	}
}

func TestOptionsValidate(t *testing.T) {
	if err := DefaultOptions().Validate(); err != nil {
		t.Fatalf("default options invalid: %v", err)
	}

	bad := []Options{
		{SampleLengthRatio: 0, MinSampleLength: 30, MaxSampleLength: 150},
		{SampleLengthRatio: 0.2, MinSampleLength: 0, MaxSampleLength: 150},
		{SampleLengthRatio: 0.2, MinSampleLength: 200, MaxSampleLength: 150},
	}
	for _, opts := range bad {
		if err := opts.Validate(); err == nil {
			t.Errorf("expected %+v to be rejected", opts)
		}
	}
}
