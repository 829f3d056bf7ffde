// Package config loads service settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"transcriptdedup/fragment"

	"github.com/joho/godotenv"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the full service configuration.
type Config struct {
	Port      string
	LogLevel  string
	LogFormat string

	Strategy string
	Fragment fragment.Options

	Store       string
	TTL         time.Duration
	RedisAddr   string
	RedisPass   string
	RedisDB     int
	RedisPrefix string

	// CleanupSchedule is a cron spec for periodic stale-record removal; empty or "off" disables it.
	CleanupSchedule string

	Bloom BloomConfig
	S3    S3Config
	Kafka KafkaConfig
}

// BloomConfig enables the RedisBloom exact-duplicate fast path.
type BloomConfig struct {
	Enabled    bool
	Key        string
	Capacity   int
	ErrorRate  float64
	NonScaling bool
}

// S3Config enables archiving of accepted transcripts. Archiving is off when Bucket is empty.
type S3Config struct {
	Bucket       string
	Region       string
	Profile      string
	Prefix       string
	UsePathStyle bool
	// Restore loads archived transcripts still inside the TTL into the store on startup.
	Restore bool
}

// KafkaConfig enables the transcript intake consumer. Intake is off when Brokers is empty.
type KafkaConfig struct {
	Brokers []string
	Topic   string
	GroupID string
	// ResultsTopic receives one outcome per processed transcript when set.
	ResultsTopic string
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	// Load environment variables from .env if present (non-fatal if missing)
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds a Config from environment variables only. Malformed numbers, booleans and
// durations are reported together as ErrInvalidConfig.
func FromEnv() (*Config, error) {
	env := &envReader{}
	cfg := &Config{
		Port:      GetEnvOrDefault("PORT", DefaultPort),
		LogLevel:  GetEnvOrDefault("LOG_LEVEL", DefaultLogLevel),
		LogFormat: GetEnvOrDefault("LOG_FORMAT", DefaultLogFormat),
		Strategy:  GetEnvOrDefault("FRAGMENT_STRATEGY", DefaultStrategy),
		Fragment: fragment.Options{
			SampleLengthRatio: env.floatVal("FRAGMENT_SAMPLE_RATIO", fragment.DefaultSampleLengthRatio),
			MinSampleLength:   env.intVal("FRAGMENT_MIN_SAMPLE", fragment.DefaultMinSampleLength),
			MaxSampleLength:   env.intVal("FRAGMENT_MAX_SAMPLE", fragment.DefaultMaxSampleLength),
		},
		Store:       strings.ToLower(GetEnvOrDefault("DEDUP_STORE", StoreMemory)),
		TTL:         env.durationVal("DEDUP_TTL", DefaultTTL),
		RedisAddr:   GetEnvOrDefault("REDIS_ADDR", DefaultRedisAddr),
		RedisPass:   os.Getenv("REDIS_PASS"),
		RedisDB:     env.intVal("REDIS_DB", 0),
		RedisPrefix: GetEnvOrDefault("REDIS_PREFIX", DefaultRedisPrefix),

		CleanupSchedule: cleanupSchedule(),

		Bloom: BloomConfig{
			Enabled:    env.boolVal("BLOOM_ENABLED", false),
			Key:        GetEnvOrDefault("BLOOM_KEY", DefaultBloomKey),
			Capacity:   env.intVal("BLOOM_CAPACITY", DefaultBloomCapacity),
			ErrorRate:  env.floatVal("BLOOM_ERROR_RATE", DefaultBloomErrorRate),
			NonScaling: env.boolVal("BLOOM_NONSCALING", false),
		},
		S3: S3Config{
			Bucket:       strings.TrimSpace(os.Getenv("S3_BUCKET")),
			Region:       strings.TrimSpace(os.Getenv("S3_REGION")),
			Profile:      strings.TrimSpace(os.Getenv("S3_PROFILE")),
			Prefix:       normalizePrefix(os.Getenv("S3_PREFIX")),
			UsePathStyle: env.boolVal("S3_USE_PATH_STYLE", false),
			Restore:      env.boolVal("S3_RESTORE", false),
		},
		Kafka: KafkaConfig{
			Brokers:      splitList(os.Getenv("KAFKA_BROKERS")),
			Topic:        GetEnvOrDefault("KAFKA_TOPIC", DefaultKafkaTopic),
			GroupID:      GetEnvOrDefault("KAFKA_GROUP", DefaultKafkaGroup),
			ResultsTopic: strings.TrimSpace(os.Getenv("KAFKA_RESULTS_TOPIC")),
		},
	}

	if err := errors.Join(env.errs...); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the service cannot start with.
func (c *Config) Validate() error {
	if _, err := fragment.StrategyByName(c.Strategy, c.Fragment); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := c.Fragment.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if c.Store != StoreMemory && c.Store != StoreRedis {
		return fmt.Errorf("%w: DEDUP_STORE must be %q or %q, got %q", ErrInvalidConfig, StoreMemory, StoreRedis, c.Store)
	}
	if c.TTL <= 0 {
		return fmt.Errorf("%w: DEDUP_TTL must be positive, got %s", ErrInvalidConfig, c.TTL)
	}
	if c.Bloom.Enabled && (c.Bloom.ErrorRate <= 0 || c.Bloom.ErrorRate >= 1) {
		return fmt.Errorf("%w: BLOOM_ERROR_RATE must be in (0, 1), got %v", ErrInvalidConfig, c.Bloom.ErrorRate)
	}
	return nil
}

// UsesRedis reports whether any component needs a Redis connection.
func (c *Config) UsesRedis() bool {
	return c.Store == StoreRedis || c.Bloom.Enabled
}

// GetEnvOrDefault returns the value of an environment variable or a default value
func GetEnvOrDefault(key, defaultVal string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return defaultVal
}

// envReader parses typed environment variables, keeping every parse failure.
type envReader struct {
	errs []error
}

func (r *envReader) lookup(key string) (string, bool) {
	val := strings.TrimSpace(os.Getenv(key))
	return val, val != ""
}

func (r *envReader) fail(key, val, want string) {
	r.errs = append(r.errs, fmt.Errorf("%s=%q is not a valid %s", key, val, want))
}

func (r *envReader) intVal(key string, defaultVal int) int {
	val, ok := r.lookup(key)
	if !ok {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		r.fail(key, val, "integer")
		return defaultVal
	}
	return n
}

func (r *envReader) floatVal(key string, defaultVal float64) float64 {
	val, ok := r.lookup(key)
	if !ok {
		return defaultVal
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		r.fail(key, val, "number")
		return defaultVal
	}
	return f
}

func (r *envReader) boolVal(key string, defaultVal bool) bool {
	val, ok := r.lookup(key)
	if !ok {
		return defaultVal
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		r.fail(key, val, "boolean")
		return defaultVal
	}
	return b
}

// durationVal accepts Go durations ("36h") or a bare number of seconds.
func (r *envReader) durationVal(key string, defaultVal time.Duration) time.Duration {
	val, ok := r.lookup(key)
	if !ok {
		return defaultVal
	}
	if d, err := time.ParseDuration(val); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(val); err == nil {
		return time.Duration(secs) * time.Second
	}
	r.fail(key, val, "duration")
	return defaultVal
}

func cleanupSchedule() string {
	schedule := GetEnvOrDefault("DEDUP_CLEANUP_SCHEDULE", DefaultCleanupSchedule)
	if strings.EqualFold(schedule, "off") {
		return ""
	}
	return schedule
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func normalizePrefix(raw string) string {
	prefix := strings.Trim(strings.TrimSpace(raw), "/")
	if prefix == "" {
		return ""
	}
	return prefix + "/"
}
