package types

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Transcript represents a single video transcript submitted for deduplication
type Transcript struct {
	ID        string    `json:"id"`
	VideoID   string    `json:"video_id,omitempty"`
	URL       string    `json:"url"`
	Title     string    `json:"title,omitempty"`
	Text      string    `json:"text"`
	FetchedAt time.Time `json:"fetched_at"`
}

// EnsureID fills ID from URL (or text when there is no URL) and stamps FetchedAt
func (t *Transcript) EnsureID() {
	if t.ID == "" {
		key := t.URL
		if key == "" {
			key = t.Text
		}
		t.ID = GenerateID(key)
	}
	if t.FetchedAt.IsZero() {
		t.FetchedAt = time.Now()
	}
}

// GenerateID creates a unique ID from URL
func GenerateID(url string) string {
	hash := sha256.Sum256([]byte(url))
	return hex.EncodeToString(hash[:])[:16]
}
