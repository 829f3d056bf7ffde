package config

import "time"

// Server Constants
const (
	// DefaultPort is the HTTP listen port
	DefaultPort = "8080"

	// ShutdownTimeout bounds graceful shutdown of the HTTP server
	ShutdownTimeout = 10 * time.Second

	// DefaultLogLevel is the minimum zerolog level
	DefaultLogLevel = "info"

	// DefaultLogFormat is json or console
	DefaultLogFormat = "json"
)

// Fragment Matching Constants
const (
	// DefaultStrategy selects the sampling heuristic
	DefaultStrategy = "quick"
)

// Deduplication Constants
const (
	// StoreMemory keeps transcripts in process memory
	StoreMemory = "memory"

	// StoreRedis keeps transcripts in Redis hashes
	StoreRedis = "redis"

	// DefaultTTL is how long a stored transcript stays eligible for matching
	DefaultTTL = 24 * time.Hour

	// DefaultRedisAddr is the Redis endpoint used by the store and the bloom filter
	DefaultRedisAddr = "localhost:6379"

	// DefaultRedisPrefix namespaces transcript keys
	DefaultRedisPrefix = "transcripts"

	// DefaultCleanupSchedule is the cron spec for removing stale transcripts
	DefaultCleanupSchedule = "@every 1h"
)

// Bloom Filter Constants
const (
	// DefaultBloomKey is the RedisBloom key for exact-duplicate hashes
	DefaultBloomKey = "transcripts:bloom"

	// DefaultBloomCapacity is the BF.RESERVE capacity
	DefaultBloomCapacity = 100000

	// DefaultBloomErrorRate is the BF.RESERVE false positive rate
	DefaultBloomErrorRate = 0.001
)

// Kafka Constants
const (
	// DefaultKafkaTopic carries transcripts submitted for deduplication
	DefaultKafkaTopic = "transcripts.incoming"

	// DefaultKafkaGroup is the consumer group id
	DefaultKafkaGroup = "transcriptdedup"
)
