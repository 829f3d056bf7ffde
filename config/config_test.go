package config

import (
	"errors"
	"slices"
	"strings"
	"testing"
	"time"

	"transcriptdedup/fragment"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "FRAGMENT_STRATEGY", "DEDUP_STORE", "DEDUP_TTL", "KAFKA_BROKERS", "S3_BUCKET", "BLOOM_ENABLED", "DEDUP_CLEANUP_SCHEDULE"} {
		t.Setenv(key, "")
	}

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.Port != DefaultPort {
		t.Errorf("Port = %q; want %q", cfg.Port, DefaultPort)
	}
	if cfg.Fragment != fragment.DefaultOptions() {
		t.Errorf("Fragment = %+v; want defaults", cfg.Fragment)
	}
	if cfg.Store != StoreMemory || cfg.TTL != DefaultTTL {
		t.Errorf("store = %q ttl = %s", cfg.Store, cfg.TTL)
	}
	if cfg.UsesRedis() {
		t.Errorf("default config should not need redis")
	}
	if cfg.CleanupSchedule != DefaultCleanupSchedule {
		t.Errorf("CleanupSchedule = %q; want %q", cfg.CleanupSchedule, DefaultCleanupSchedule)
	}
	if len(cfg.Kafka.Brokers) != 0 || cfg.S3.Bucket != "" {
		t.Errorf("optional integrations should be off by default")
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("FRAGMENT_STRATEGY", "fullscan")
	t.Setenv("FRAGMENT_SAMPLE_RATIO", "0.5")
	t.Setenv("FRAGMENT_MIN_SAMPLE", "2")
	t.Setenv("FRAGMENT_MAX_SAMPLE", "40")
	t.Setenv("DEDUP_STORE", "Redis")
	t.Setenv("DEDUP_TTL", "3600")
	t.Setenv("KAFKA_BROKERS", "a:9092, b:9092,")
	t.Setenv("S3_PREFIX", "/archive/")
	t.Setenv("S3_RESTORE", "true")
	t.Setenv("DEDUP_CLEANUP_SCHEDULE", "OFF")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.Port != "9090" || cfg.Strategy != "fullscan" {
		t.Errorf("port/strategy = %q/%q", cfg.Port, cfg.Strategy)
	}
	want := fragment.Options{SampleLengthRatio: 0.5, MinSampleLength: 2, MaxSampleLength: 40}
	if cfg.Fragment != want {
		t.Errorf("Fragment = %+v; want %+v", cfg.Fragment, want)
	}
	if cfg.Store != StoreRedis || !cfg.UsesRedis() {
		t.Errorf("Store = %q", cfg.Store)
	}
	if cfg.TTL != time.Hour {
		t.Errorf("TTL = %s; want 1h", cfg.TTL)
	}
	if !slices.Equal(cfg.Kafka.Brokers, []string{"a:9092", "b:9092"}) {
		t.Errorf("Brokers = %v", cfg.Kafka.Brokers)
	}
	if cfg.CleanupSchedule != "" {
		t.Errorf("CleanupSchedule = %q; want disabled", cfg.CleanupSchedule)
	}
	if cfg.S3.Prefix != "archive/" || !cfg.S3.Restore {
		t.Errorf("S3 = %+v", cfg.S3)
	}
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			Strategy: DefaultStrategy,
			Fragment: fragment.DefaultOptions(),
			Store:    StoreMemory,
			TTL:      time.Minute,
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown strategy", func(c *Config) { c.Strategy = "cosine" }},
		{"zero ratio", func(c *Config) { c.Fragment.SampleLengthRatio = 0 }},
		{"min above max", func(c *Config) { c.Fragment.MinSampleLength = 200 }},
		{"unknown store", func(c *Config) { c.Store = "postgres" }},
		{"non-positive ttl", func(c *Config) { c.TTL = 0 }},
		{"bloom error rate", func(c *Config) { c.Bloom.Enabled = true; c.Bloom.ErrorRate = 1.5 }},
	}

	ok := base()
	if err := ok.Validate(); err != nil {
		t.Fatalf("base config invalid: %v", err)
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base()
			tc.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestFromEnvRejectsMalformedValues(t *testing.T) {
	tests := []struct {
		key, val string
	}{
		{"FRAGMENT_MIN_SAMPLE", "abc"},
		{"FRAGMENT_SAMPLE_RATIO", "a fifth"},
		{"DEDUP_TTL", "tomorrow"},
		{"BLOOM_ENABLED", "maybe"},
		{"REDIS_DB", "1.5"},
	}

	for _, tc := range tests {
		t.Run(tc.key, func(t *testing.T) {
			t.Setenv(tc.key, tc.val)

			cfg, err := FromEnv()
			if !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("expected ErrInvalidConfig, got cfg=%+v err=%v", cfg, err)
			}
			if !strings.Contains(err.Error(), tc.key) {
				t.Fatalf("error %q does not name %s", err, tc.key)
			}
		})
	}
}

func TestFromEnvReportsEveryMalformedValue(t *testing.T) {
	t.Setenv("FRAGMENT_MAX_SAMPLE", "lots")
	t.Setenv("S3_RESTORE", "sometimes")

	_, err := FromEnv()
	if err == nil {
		t.Fatal("expected error")
	}
	for _, key := range []string{"FRAGMENT_MAX_SAMPLE", "S3_RESTORE"} {
		if !strings.Contains(err.Error(), key) {
			t.Errorf("error %q does not name %s", err, key)
		}
	}
}
