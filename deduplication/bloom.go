package deduplication

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"transcriptdedup/logging"

	"github.com/redis/go-redis/v9"
)

// ExactFilter is a probabilistic set of normalized transcript hashes used as a fast path for
// exact duplicates.
type ExactFilter interface {
	Exists(ctx context.Context, hash string) (bool, error)
	Add(ctx context.Context, hash string) error
	// Reset empties the filter.
	Reset(ctx context.Context) error
	Close() error
}

// BloomConfig configures the RedisBloom key
type BloomConfig struct {
	Key string // redis key for bloom filter
	TTL time.Duration
	// Capacity sets the initial BF.RESERVE capacity (number of items)
	Capacity int
	// ErrorRate sets the desired false positive probability (e.g. 0.001)
	ErrorRate float64
	// If true, BF.RESERVE NONSCALING flag will be used
	NonScaling bool
}

// RedisBloom is a minimal Redis-backed Bloom wrapper using RedisBloom commands.
// The client is owned by the caller.
type RedisBloom struct {
	client redis.UniversalClient
	cfg    BloomConfig
}

// NewRedisBloom wraps client and reserves the filter if the key does not exist yet.
func NewRedisBloom(ctx context.Context, client redis.UniversalClient, cfg BloomConfig) (*RedisBloom, error) {
	if cfg.Key == "" {
		return nil, fmt.Errorf("bloom key is required")
	}
	rb := &RedisBloom{client: client, cfg: cfg}
	if err := rb.reserve(ctx); err != nil {
		return nil, err
	}
	return rb, nil
}

// reserve creates the filter with BF.RESERVE. If Redis lacks the RedisBloom module the
// failure is logged and BF.ADD may still auto-create the filter.
func (r *RedisBloom) reserve(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	exists, err := r.client.Exists(ctx, r.cfg.Key).Result()
	if err != nil {
		return fmt.Errorf("failed to check bloom key %s: %w", r.cfg.Key, err)
	}
	if exists > 0 {
		return nil
	}

	// BF.RESERVE <key> <error_rate> <capacity> [NONSCALING]
	args := []any{"BF.RESERVE", r.cfg.Key, fmt.Sprintf("%f", r.cfg.ErrorRate), r.cfg.Capacity}
	if r.cfg.NonScaling {
		args = append(args, "NONSCALING")
	}
	if err := r.client.Do(ctx, args...).Err(); err != nil {
		logging.Warn().Err(err).Str("key", r.cfg.Key).Msg("BF.RESERVE failed; relying on BF.ADD auto-create")
	}
	return nil
}

// Close is a no-op; the Redis client is shared and closed by its owner.
func (r *RedisBloom) Close() error { return nil }

// Exists checks if the hashed value is present in the bloom filter.
// Uses the RedisBloom BF.EXISTS command.
func (r *RedisBloom) Exists(ctx context.Context, hash string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	// BF.EXISTS <key> <item>
	res, err := r.client.Do(ctx, "BF.EXISTS", r.cfg.Key, hash).Result()
	if err != nil {
		return false, err
	}
	return parseBloomReply(res)
}

// Add inserts the hashed value into the bloom filter and ensures TTL on the key.
func (r *RedisBloom) Add(ctx context.Context, hash string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	// BF.ADD <key> <item>
	if err := r.client.Do(ctx, "BF.ADD", r.cfg.Key, hash).Err(); err != nil {
		return err
	}

	// Sliding window TTL: the filter stays alive for ttl after the most recent insertion.
	if r.cfg.TTL > 0 {
		if err := r.client.Expire(ctx, r.cfg.Key, r.cfg.TTL).Err(); err != nil {
			return err
		}
	}
	return nil
}

// Reset drops the filter and reserves a fresh one.
func (r *RedisBloom) Reset(ctx context.Context) error {
	if err := r.client.Del(ctx, r.cfg.Key).Err(); err != nil {
		return fmt.Errorf("failed to drop bloom key %s: %w", r.cfg.Key, err)
	}
	return r.reserve(ctx)
}

func parseBloomReply(res any) (bool, error) {
	switch v := res.(type) {
	case int64:
		return v == 1, nil
	case bool:
		return v, nil
	case string:
		return v == "1", nil
	default:
		return false, fmt.Errorf("unexpected BF.EXISTS response type %T: %v", res, res)
	}
}

// NormalizeAndHash lower-cases the text, collapses runs of whitespace and returns the hex
// SHA-256 of the result, so transcripts differing only in case or spacing hash alike.
func NormalizeAndHash(text string) string {
	h := sha256.Sum256([]byte(normalizeText(text)))
	return hex.EncodeToString(h[:])
}

func normalizeText(t string) string {
	return strings.Join(strings.Fields(strings.ToLower(t)), " ")
}
