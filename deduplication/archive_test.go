package deduplication

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"testing"
	"time"

	"transcriptdedup/types"
)

// memoryBucket keeps JSON objects in a map, keyed like S3.
type memoryBucket struct {
	objects   map[string][]byte
	puts      int
	putErr    error
	existsErr error
}

func newMemoryBucket() *memoryBucket {
	return &memoryBucket{objects: make(map[string][]byte)}
}

func (b *memoryBucket) PutJSON(_ context.Context, key string, v any) error {
	if b.putErr != nil {
		return b.putErr
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	b.objects[key] = data
	b.puts++
	return nil
}

func (b *memoryBucket) GetJSON(_ context.Context, key string, v any) error {
	data, ok := b.objects[key]
	if !ok {
		return errors.New("NoSuchKey")
	}
	return json.Unmarshal(data, v)
}

func (b *memoryBucket) Exists(_ context.Context, key string) (bool, error) {
	if b.existsErr != nil {
		return false, b.existsErr
	}
	_, ok := b.objects[key]
	return ok, nil
}

func (b *memoryBucket) ListKeys(_ context.Context, prefix string) ([]string, error) {
	var keys []string
	for k := range b.objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func TestS3Archiver(t *testing.T) {
	bucket := newMemoryBucket()
	archiver := NewS3Archiver(bucket, "prod/")
	ctx := context.Background()

	tr := &types.Transcript{ID: "0123456789abcdef", Text: "hello"}
	if err := archiver.Archive(ctx, tr); err != nil {
		t.Fatalf("archive: %v", err)
	}
	if _, ok := bucket.objects["prod/transcripts/0123456789abcdef.json"]; !ok {
		t.Fatalf("objects = %v", bucket.objects)
	}

	// Already archived: no second upload.
	if err := archiver.Archive(ctx, tr); err != nil {
		t.Fatalf("re-archive: %v", err)
	}
	if bucket.puts != 1 {
		t.Fatalf("puts = %d; want 1", bucket.puts)
	}

	// A failing existence check still uploads.
	bucket.existsErr = errors.New("throttled")
	if err := archiver.Archive(ctx, &types.Transcript{ID: "fedcba9876543210", Text: "bye"}); err != nil {
		t.Fatalf("archive with failing exists: %v", err)
	}
	if bucket.puts != 2 {
		t.Fatalf("puts = %d; want 2", bucket.puts)
	}

	bucket.existsErr = nil
	bucket.putErr = errors.New("denied")
	if err := archiver.Archive(ctx, &types.Transcript{ID: "new"}); !errors.Is(err, bucket.putErr) {
		t.Fatalf("expected wrapped put error, got %v", err)
	}
}

func TestS3ArchiverLoad(t *testing.T) {
	bucket := newMemoryBucket()
	archiver := NewS3Archiver(bucket, "")
	ctx := context.Background()

	for _, id := range []string{"aaa", "bbb"} {
		if err := archiver.Archive(ctx, &types.Transcript{ID: id, Text: "text " + id}); err != nil {
			t.Fatalf("archive %s: %v", id, err)
		}
	}
	bucket.objects["transcripts/broken.json"] = []byte("{not json")
	bucket.objects["transcripts/README"] = []byte("ignored")
	bucket.objects["other/ccc.json"] = []byte(`{"id":"ccc"}`)

	loaded, err := archiver.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded) != 2 || loaded[0].ID != "aaa" || loaded[1].ID != "bbb" || loaded[1].Text != "text bbb" {
		t.Fatalf("loaded = %+v", loaded)
	}
}

func TestRestoreFromArchive(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)}
	filter := newFakeFilter()
	store := NewMemoryStore()
	dedup, err := NewDeduplicator(store, Config{Now: clock.Now, TTL: time.Hour, Filter: filter})
	if err != nil {
		t.Fatalf("new deduplicator: %v", err)
	}
	ctx := context.Background()

	bucket := newMemoryBucket()
	archiver := NewS3Archiver(bucket, "")
	archived := []*types.Transcript{
		{ID: "recent", Text: "Recent transcript about pruning apple trees in late winter.", FetchedAt: clock.now.Add(-10 * time.Minute)},
		{ID: "expired", Text: "Old transcript about sharpening chisels.", FetchedAt: clock.now.Add(-3 * time.Hour)},
		{ID: "blank", Text: "   ", FetchedAt: clock.now},
		{ID: "present", Text: "Already stored transcript.", FetchedAt: clock.now.Add(-time.Minute)},
	}
	for _, tr := range archived {
		if err := archiver.Archive(ctx, tr); err != nil {
			t.Fatalf("archive %s: %v", tr.ID, err)
		}
	}
	if err := dedup.AddTranscript(ctx, &types.Transcript{ID: "present", Text: "Already stored transcript."}); err != nil {
		t.Fatalf("add: %v", err)
	}

	restored, err := dedup.Restore(ctx, archiver)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if restored != 1 {
		t.Fatalf("restored = %d; want 1", restored)
	}

	rec, err := store.Get(ctx, "recent")
	if err != nil {
		t.Fatalf("restored record missing: %v", err)
	}
	if !rec.LastUpdate.Equal(archived[0].FetchedAt) {
		t.Fatalf("last_update = %s; want fetch time %s", rec.LastUpdate, archived[0].FetchedAt)
	}
	if _, err := store.Get(ctx, "expired"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expired transcript restored: %v", err)
	}

	result, err := dedup.CheckForDuplicates(ctx, &types.Transcript{Text: archived[0].Text})
	if err != nil || !result.IsDuplicate || result.MatchingID != "recent" || result.Strategy != StrategyBloom {
		t.Fatalf("restored transcript not matched by filter: %+v %v", result, err)
	}
}
