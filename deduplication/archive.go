package deduplication

import (
	"context"
	"fmt"
	"strings"

	"transcriptdedup/logging"
	"transcriptdedup/types"
)

// Archiver persists transcripts accepted as new.
type Archiver interface {
	Archive(ctx context.Context, t *types.Transcript) error
}

// ArchiveSource lists previously archived transcripts, used to warm the store on startup.
type ArchiveSource interface {
	Load(ctx context.Context) ([]*types.Transcript, error)
}

// ObjectStore is the slice of common.S3 the archiver needs.
type ObjectStore interface {
	PutJSON(ctx context.Context, key string, v any) error
	GetJSON(ctx context.Context, key string, v any) error
	Exists(ctx context.Context, key string) (bool, error)
	ListKeys(ctx context.Context, prefix string) ([]string, error)
}

// S3Archiver writes each transcript to <prefix>transcripts/<id>.json.
type S3Archiver struct {
	bucket ObjectStore
	prefix string
}

func NewS3Archiver(bucket ObjectStore, prefix string) *S3Archiver {
	return &S3Archiver{bucket: bucket, prefix: prefix}
}

// Key returns the object key for a transcript id.
func (a *S3Archiver) Key(id string) string {
	return a.dir() + id + ".json"
}

func (a *S3Archiver) dir() string {
	return a.prefix + "transcripts/"
}

// Archive uploads t unless an object for its id already exists. A failed existence check
// falls through to the upload.
func (a *S3Archiver) Archive(ctx context.Context, t *types.Transcript) error {
	key := a.Key(t.ID)

	exists, err := a.bucket.Exists(ctx, key)
	if err != nil {
		logging.Warn().Err(err).Str("key", key).Msg("failed to check archived transcript")
	} else if exists {
		logging.Debug().Str("key", key).Msg("transcript already archived")
		return nil
	}

	if err := a.bucket.PutJSON(ctx, key, t); err != nil {
		return fmt.Errorf("failed to archive transcript %s: %w", t.ID, err)
	}
	return nil
}

// Load downloads every archived transcript. Objects that fail to decode are skipped.
func (a *S3Archiver) Load(ctx context.Context) ([]*types.Transcript, error) {
	keys, err := a.bucket.ListKeys(ctx, a.dir())
	if err != nil {
		return nil, fmt.Errorf("failed to list archived transcripts: %w", err)
	}

	out := make([]*types.Transcript, 0, len(keys))
	for _, key := range keys {
		if !strings.HasSuffix(key, ".json") {
			continue
		}
		var t types.Transcript
		if err := a.bucket.GetJSON(ctx, key, &t); err != nil {
			logging.Warn().Err(err).Str("key", key).Msg("skipping unreadable archived transcript")
			continue
		}
		out = append(out, &t)
	}
	return out, nil
}
