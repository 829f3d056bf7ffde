package transcript

import (
	"errors"
	"strings"
	"testing"
)

func TestExtractVideoID(t *testing.T) {
	tests := []struct {
		url     string
		want    string
		wantErr bool
	}{
		{"https://www.youtube.com/watch?v=4KdvcQKNfbQ", "4KdvcQKNfbQ", false},
		{"https://youtu.be/4KdvcQKNfbQ?t=30", "4KdvcQKNfbQ", false},
		{"youtube.com/watch?v=a-b_c1234567", "a-b_c123456", false},
		{"https://vimeo.com/12345", "", true},
		{"https://youtu.be/short", "", true},
	}

	for _, tc := range tests {
		t.Run(tc.url, func(t *testing.T) {
			got, err := ExtractVideoID(tc.url)
			if tc.wantErr {
				if !errors.Is(err, ErrInvalidYouTubeURL) {
					t.Fatalf("expected ErrInvalidYouTubeURL, got %v", err)
				}
				return
			}
			if err != nil || got != tc.want {
				t.Fatalf("got %q, %v; want %q", got, err, tc.want)
			}
		})
	}
}

func TestStableID(t *testing.T) {
	a := StableID("https://www.youtube.com/watch?v=4KdvcQKNfbQ")
	b := StableID("https://www.youtube.com/watch?v=4KdvcQKNfbQ")
	c := StableID("https://www.youtube.com/watch?v=dQw4w9WgXcQ")

	if a != b {
		t.Errorf("same URL produced %s and %s", a, b)
	}
	if a == c {
		t.Errorf("different URLs produced the same id %s", a)
	}
	if len(a) != 36 || a[14] != '5' {
		t.Errorf("expected a version 5 UUID, got %s", a)
	}
}

func TestValidateForArticle(t *testing.T) {
	if err := ValidateForArticle(strings.Repeat("a", 49)); !errors.Is(err, ErrTranscriptTooShort) {
		t.Errorf("49 chars: expected ErrTranscriptTooShort, got %v", err)
	}
	if err := ValidateForArticle(strings.Repeat("a", 50)); err != nil {
		t.Errorf("50 chars: %v", err)
	}
	if err := ValidateForArticle(strings.Repeat("字", 50)); err != nil {
		t.Errorf("50 CJK chars: %v", err)
	}
}
