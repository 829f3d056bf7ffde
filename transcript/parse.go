package transcript

import (
	"errors"
	"fmt"
	"regexp"
	"unicode/utf8"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// MinArticleLength is the shortest transcript, in characters, accepted as article input.
const MinArticleLength = 50

var (
	ErrInvalidYouTubeURL  = errors.New("invalid YouTube URL")
	ErrTranscriptTooShort = errors.New("transcript must be at least 50 characters")
)

var videoIDPattern = regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtu\.be/)([a-zA-Z0-9_-]{11})`)

// Parse decodes a provider response body.
func Parse(data []byte) (*Response, error) {
	var resp Response
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse transcript response: %w", err)
	}
	return &resp, nil
}

// SummaryOf parses data and returns its summary.
func SummaryOf(data []byte) (*Summary, error) {
	resp, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return resp.Summary()
}

// ExtractVideoID pulls the 11-character video id out of a watch or short URL.
func ExtractVideoID(url string) (string, error) {
	m := videoIDPattern.FindStringSubmatch(url)
	if m == nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidYouTubeURL, url)
	}
	return m[1], nil
}

// StableID derives a name-based UUID from a URL so repeated submissions share an id.
func StableID(url string) string {
	return uuid.NewSHA1(uuid.NameSpaceDNS, []byte(url)).String()
}

// ValidateForArticle rejects transcripts too short to write about.
func ValidateForArticle(text string) error {
	if utf8.RuneCountInString(text) < MinArticleLength {
		return ErrTranscriptTooShort
	}
	return nil
}
