// Package deduplication decides whether an incoming transcript was stitched together from
// transcripts seen within the TTL window.
package deduplication

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"transcriptdedup/fragment"
	"transcriptdedup/logging"
	"transcriptdedup/metrics"
	"transcriptdedup/types"
)

// TTL is the default window during which a stored transcript can be matched.
const TTL = 24 * time.Hour

// StrategyBloom labels results settled by the exact-duplicate filter.
const StrategyBloom = "bloom"

var ErrEmptyTranscript = errors.New("transcript has no text")

// Result contains the result of a duplicate check
type Result struct {
	IsDuplicate bool      `json:"is_duplicate"`
	MatchingID  string    `json:"matching_id,omitempty"`
	Strategy    string    `json:"strategy,omitempty"`
	Reason      string    `json:"reason,omitempty"`
	CheckedAt   time.Time `json:"checked_at"`
}

// Config holds configuration for the deduplicator
type Config struct {
	// Strategy compares an incoming transcript with a stored one. Default: quick checker.
	Strategy fragment.Strategy
	// TTL is how long an unmatched record stays eligible. Default: 24h.
	TTL time.Duration
	// Filter enables the exact-duplicate fast path when non-nil.
	Filter ExactFilter
	// Archiver stores accepted transcripts when non-nil.
	Archiver Archiver
	// Now overrides the clock.
	Now func() time.Time
}

// Deduplicator handles transcript deduplication using fragment matching
type Deduplicator struct {
	store    Store
	strategy fragment.Strategy
	ttl      time.Duration
	filter   ExactFilter
	archiver Archiver
	now      func() time.Time
}

// NewDeduplicator creates a new instance of the deduplicator
func NewDeduplicator(store Store, config Config) (*Deduplicator, error) {
	if store == nil {
		return nil, fmt.Errorf("store cannot be nil")
	}
	cfg := applyConfigDefaults(config)

	return &Deduplicator{
		store:    store,
		strategy: cfg.Strategy,
		ttl:      cfg.TTL,
		filter:   cfg.Filter,
		archiver: cfg.Archiver,
		now:      cfg.Now,
	}, nil
}

// Strategy returns the name of the configured matching strategy.
func (d *Deduplicator) Strategy() string {
	return d.strategy.Name()
}

// CheckForDuplicates checks whether the transcript was assembled from a stored one. Stored
// records are compared oldest first; the first match wins and has its TTL refreshed.
func (d *Deduplicator) CheckForDuplicates(ctx context.Context, t *types.Transcript) (*Result, error) {
	result, err := d.check(ctx, t)
	metrics.RecordDedupCheck(result != nil && result.IsDuplicate, err)
	return result, err
}

func (d *Deduplicator) check(ctx context.Context, t *types.Transcript) (*Result, error) {
	checkTime := d.now()

	text := strings.TrimSpace(t.Text)
	if text == "" {
		logging.Warn().Str("transcript_id", t.ID).Msg("no content to check")
		return &Result{IsDuplicate: false, CheckedAt: checkTime}, nil
	}

	records, err := d.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list stored transcripts: %w", err)
	}

	cutoff := checkTime.Add(-d.ttl)
	live := records[:0]
	for _, rec := range records {
		if rec.Stale(cutoff) {
			d.deleteWithLog(ctx, rec, cutoff)
			continue
		}
		live = append(live, rec)
	}

	// Fast-path: probabilistic exact-duplicate filter. The filter outlives expired records, so
	// a hit only counts when a live record carries the same normalized text.
	if d.filter != nil {
		hash := NormalizeAndHash(text)
		exists, err := d.filter.Exists(ctx, hash)
		if err != nil {
			logging.Warn().Err(err).Msg("bloom check failed, falling back to fragment scan")
		} else if exists {
			if rec := findExact(live, hash); rec != nil {
				metrics.DedupBloomHits.Inc()
				d.touchWithLog(ctx, rec.ID, checkTime)
				return &Result{
					IsDuplicate: true,
					MatchingID:  rec.ID,
					Strategy:    StrategyBloom,
					Reason:      "exact",
					CheckedAt:   checkTime,
				}, nil
			}
			logging.Debug().Str("transcript_id", t.ID).Msg("bloom hit without a live record, scanning fragments")
		}
	}

	for _, rec := range live {
		similar, reason := d.match(text, rec.Text)
		if !similar {
			continue
		}

		d.touchWithLog(ctx, rec.ID, checkTime)

		logging.Info().
			Str("transcript_id", t.ID).
			Str("matching_id", rec.ID).
			Str("strategy", d.strategy.Name()).
			Str("reason", reason).
			Msg("found duplicate transcript")

		return &Result{
			IsDuplicate: true,
			MatchingID:  rec.ID,
			Strategy:    d.strategy.Name(),
			Reason:      reason,
			CheckedAt:   checkTime,
		}, nil
	}

	return &Result{IsDuplicate: false, CheckedAt: checkTime}, nil
}

// match runs the strategy with the incoming text as candidate and records the decision.
func (d *Deduplicator) match(candidate, reference string) (bool, string) {
	start := time.Now()
	var similar bool
	var reason string

	switch s := d.strategy.(type) {
	case *fragment.QuickChecker:
		decision := s.Explain(candidate, reference)
		similar, reason = decision.Similar, string(decision.Reason)
	default:
		similar = s.Match(candidate, reference)
		if similar {
			reason = "fragments"
		}
	}

	metrics.RecordFragmentCheck(d.strategy.Name(), similar, time.Since(start))
	return similar, reason
}

// AddTranscript stores a transcript for future comparisons
func (d *Deduplicator) AddTranscript(ctx context.Context, t *types.Transcript) error {
	if strings.TrimSpace(t.Text) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyTranscript, t.ID)
	}
	t.EnsureID()

	if err := d.store.Add(ctx, newRecord(t, d.now())); err != nil {
		return fmt.Errorf("failed to add transcript: %w", err)
	}

	if d.filter != nil {
		if err := d.filter.Add(ctx, NormalizeAndHash(t.Text)); err != nil {
			logging.Warn().Err(err).Str("transcript_id", t.ID).Msg("failed to add transcript to bloom filter")
		}
	}

	d.refreshStoreSize(ctx)
	logging.Info().Str("transcript_id", t.ID).Msg("added transcript")
	return nil
}

// ProcessTranscript performs both duplicate check and addition if not duplicate. New
// transcripts are archived when an archiver is configured; archive failures are logged.
// Transcripts without text are rejected with ErrEmptyTranscript.
func (d *Deduplicator) ProcessTranscript(ctx context.Context, t *types.Transcript) (*Result, error) {
	if strings.TrimSpace(t.Text) == "" {
		return nil, fmt.Errorf("%w: %s", ErrEmptyTranscript, t.ID)
	}
	t.EnsureID()

	result, err := d.CheckForDuplicates(ctx, t)
	if err != nil {
		return nil, err
	}
	if result.IsDuplicate {
		return result, nil
	}

	if err := d.AddTranscript(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to add new transcript: %w", err)
	}

	if d.archiver != nil {
		if err := d.archiver.Archive(ctx, t); err != nil {
			metrics.DedupArchiveErrors.Inc()
			logging.Error().Err(err).Str("transcript_id", t.ID).Msg("failed to archive transcript")
		}
	}

	return result, nil
}

// CleanupStale removes every record whose last update is older than the TTL and returns how
// many were removed.
func (d *Deduplicator) CleanupStale(ctx context.Context) (int, error) {
	records, err := d.store.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list stored transcripts: %w", err)
	}

	cutoff := d.now().Add(-d.ttl)
	removed := 0
	for _, rec := range records {
		if !rec.Stale(cutoff) {
			continue
		}
		if err := d.store.Delete(ctx, rec.ID); err != nil {
			return removed, fmt.Errorf("failed to delete transcript %s: %w", rec.ID, err)
		}
		metrics.DedupStaleRemoved.Inc()
		removed++
	}

	d.refreshStoreSize(ctx)
	logging.Info().Int("removed", removed).Int("checked", len(records)).Msg("cleanup completed")
	return removed, nil
}

// Restore adds archived transcripts fetched within the TTL that are not already stored. Their
// TTL runs from FetchedAt, so a restore never extends a transcript's window.
func (d *Deduplicator) Restore(ctx context.Context, src ArchiveSource) (int, error) {
	archived, err := src.Load(ctx)
	if err != nil {
		return 0, err
	}

	cutoff := d.now().Add(-d.ttl)
	restored := 0
	for _, t := range archived {
		if t.ID == "" || strings.TrimSpace(t.Text) == "" || t.FetchedAt.Before(cutoff) {
			continue
		}
		if _, err := d.store.Get(ctx, t.ID); err == nil {
			continue
		} else if !errors.Is(err, ErrNotFound) {
			return restored, fmt.Errorf("failed to look up transcript %s: %w", t.ID, err)
		}

		if err := d.store.Add(ctx, newRecord(t, t.FetchedAt)); err != nil {
			return restored, fmt.Errorf("failed to restore transcript %s: %w", t.ID, err)
		}
		if d.filter != nil {
			if err := d.filter.Add(ctx, NormalizeAndHash(t.Text)); err != nil {
				logging.Warn().Err(err).Str("transcript_id", t.ID).Msg("failed to add restored transcript to bloom filter")
			}
		}
		restored++
	}

	d.refreshStoreSize(ctx)
	logging.Info().Int("restored", restored).Int("archived", len(archived)).Msg("restored transcripts from archive")
	return restored, nil
}

// Count returns the number of stored transcripts.
func (d *Deduplicator) Count(ctx context.Context) (int, error) {
	return d.store.Count(ctx)
}

// Clear removes every stored transcript and resets the exact-duplicate filter.
func (d *Deduplicator) Clear(ctx context.Context) error {
	if err := d.store.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear store: %w", err)
	}
	if d.filter != nil {
		if err := d.filter.Reset(ctx); err != nil {
			return fmt.Errorf("failed to reset bloom filter: %w", err)
		}
	}
	metrics.DedupStoreSize.Set(0)
	return nil
}

// Close closes the deduplicator and cleans up resources
func (d *Deduplicator) Close() error {
	var errs []error
	if d.filter != nil {
		errs = append(errs, d.filter.Close())
	}
	errs = append(errs, d.store.Close())
	return errors.Join(errs...)
}

func (d *Deduplicator) deleteWithLog(ctx context.Context, rec *Record, cutoff time.Time) {
	if err := d.store.Delete(ctx, rec.ID); err != nil {
		logging.Warn().Err(err).Str("transcript_id", rec.ID).Msg("failed to delete stale transcript")
		return
	}
	metrics.DedupStaleRemoved.Inc()
	logging.Debug().
		Str("transcript_id", rec.ID).
		Time("last_update", rec.LastUpdate).
		Time("cutoff", cutoff).
		Msg("removed stale transcript")
}

func (d *Deduplicator) touchWithLog(ctx context.Context, id string, at time.Time) {
	if err := d.store.Touch(ctx, id, at); err != nil {
		logging.Warn().Err(err).Str("transcript_id", id).Msg("failed to refresh last update")
	}
}

// findExact returns the first record whose normalized text hashes to hash.
func findExact(records []*Record, hash string) *Record {
	for _, rec := range records {
		if NormalizeAndHash(rec.Text) == hash {
			return rec
		}
	}
	return nil
}

func (d *Deduplicator) refreshStoreSize(ctx context.Context) {
	if n, err := d.store.Count(ctx); err == nil {
		metrics.DedupStoreSize.Set(float64(n))
	}
}

func applyConfigDefaults(config Config) Config {
	if config.Strategy == nil {
		config.Strategy = fragment.NewQuickChecker()
	}
	if config.TTL <= 0 {
		config.TTL = TTL
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	return config
}
