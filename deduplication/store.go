package deduplication

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"transcriptdedup/types"
)

var ErrNotFound = errors.New("transcript not found")

// Record is a stored transcript together with its TTL bookkeeping.
type Record struct {
	ID         string    `json:"id"`
	VideoID    string    `json:"video_id,omitempty"`
	URL        string    `json:"url,omitempty"`
	Title      string    `json:"title,omitempty"`
	Text       string    `json:"text"`
	AddedAt    time.Time `json:"added_at"`
	LastUpdate time.Time `json:"last_update"`
}

// Stale reports whether the record was last matched or added before cutoff.
func (r *Record) Stale(cutoff time.Time) bool {
	return r.LastUpdate.Before(cutoff)
}

func newRecord(t *types.Transcript, now time.Time) *Record {
	return &Record{
		ID:         t.ID,
		VideoID:    t.VideoID,
		URL:        t.URL,
		Title:      t.Title,
		Text:       t.Text,
		AddedAt:    now,
		LastUpdate: now,
	}
}

// Store holds the transcripts that incoming ones are compared against.
type Store interface {
	Add(ctx context.Context, rec *Record) error
	// Get returns ErrNotFound for unknown ids.
	Get(ctx context.Context, id string) (*Record, error)
	// Touch moves LastUpdate to at. It returns ErrNotFound for unknown ids.
	Touch(ctx context.Context, id string, at time.Time) error
	Delete(ctx context.Context, id string) error
	// List returns every record ordered by AddedAt, oldest first.
	List(ctx context.Context) ([]*Record, error)
	Count(ctx context.Context) (int, error)
	Clear(ctx context.Context) error
	Close() error
}

// recordFields flattens a record into hash fields.
func recordFields(r *Record) map[string]any {
	return map[string]any{
		"id":          r.ID,
		"video_id":    r.VideoID,
		"url":         r.URL,
		"title":       r.Title,
		"text":        r.Text,
		"added_at":    r.AddedAt.Format(time.RFC3339Nano),
		"last_update": r.LastUpdate.Format(time.RFC3339Nano),
	}
}

// recordFromFields rebuilds a record from hash fields. A missing last_update falls back to
// added_at; a record with neither timestamp is rejected.
func recordFromFields(fields map[string]string) (*Record, error) {
	if len(fields) == 0 {
		return nil, ErrNotFound
	}

	rec := &Record{
		ID:      fields["id"],
		VideoID: fields["video_id"],
		URL:     fields["url"],
		Title:   fields["title"],
		Text:    fields["text"],
	}

	added, addedErr := parseStoredTime(fields["added_at"])
	last, lastErr := parseStoredTime(fields["last_update"])
	switch {
	case lastErr == nil:
		rec.LastUpdate = last
	case addedErr == nil:
		rec.LastUpdate = added
	default:
		return nil, fmt.Errorf("record %s: timestamp metadata not found", rec.ID)
	}
	if addedErr == nil {
		rec.AddedAt = added
	} else {
		rec.AddedAt = rec.LastUpdate
	}
	return rec, nil
}

func parseStoredTime(v string) (time.Time, error) {
	if strings.TrimSpace(v) == "" {
		return time.Time{}, errors.New("empty string")
	}
	return time.Parse(time.RFC3339Nano, v)
}
