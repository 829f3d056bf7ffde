package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"transcriptdedup/api"
	"transcriptdedup/common"
	"transcriptdedup/config"
	"transcriptdedup/deduplication"
	"transcriptdedup/fragment"
	"transcriptdedup/intake"
	"transcriptdedup/logging"
	"transcriptdedup/scheduler"
	"transcriptdedup/shared/kafka"

	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logging.Fatal().Err(err).Msg("server exited")
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	var redisClient *redis.Client
	if cfg.UsesRedis() {
		client, err := deduplication.NewRedisClient(ctx, deduplication.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPass,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return err
		}
		defer client.Close()
		redisClient = client
	}

	dedup, err := newDeduplicator(ctx, cfg, redisClient)
	if err != nil {
		return err
	}
	defer func() {
		if err := dedup.Close(); err != nil {
			logging.Warn().Err(err).Msg("failed to close deduplicator")
		}
	}()

	if cfg.CleanupSchedule != "" {
		cleanup := scheduler.NewCleanup(dedup, 0)
		if err := cleanup.Start(cfg.CleanupSchedule); err != nil {
			return err
		}
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
			defer cancel()
			_ = cleanup.Stop(stopCtx)
		}()
	}

	if len(cfg.Kafka.Brokers) > 0 {
		closeIntake, err := startIntake(ctx, cfg, dedup)
		if err != nil {
			return err
		}
		defer closeIntake()
	}

	srv := &http.Server{
		Addr: ":" + cfg.Port,
		Handler: api.NewRouter(api.Dependencies{
			Dedup:    dedup,
			Fragment: cfg.Fragment,
			Strategy: cfg.Strategy,
		}),
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().
			Str("addr", srv.Addr).
			Str("strategy", dedup.Strategy()).
			Str("store", cfg.Store).
			Bool("bloom", cfg.Bloom.Enabled).
			Msg("starting API server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logging.Info().Msg("shutting down API server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newDeduplicator(ctx context.Context, cfg *config.Config, client *redis.Client) (*deduplication.Deduplicator, error) {
	strategy, err := fragment.StrategyByName(cfg.Strategy, cfg.Fragment)
	if err != nil {
		return nil, err
	}

	var store deduplication.Store = deduplication.NewMemoryStore()
	if cfg.Store == config.StoreRedis {
		store = deduplication.NewRedisStore(client, cfg.RedisPrefix, cfg.TTL)
	}

	dcfg := deduplication.Config{Strategy: strategy, TTL: cfg.TTL}

	if cfg.Bloom.Enabled {
		bloom, err := deduplication.NewRedisBloom(ctx, client, deduplication.BloomConfig{
			Key:        cfg.Bloom.Key,
			TTL:        cfg.TTL,
			Capacity:   cfg.Bloom.Capacity,
			ErrorRate:  cfg.Bloom.ErrorRate,
			NonScaling: cfg.Bloom.NonScaling,
		})
		if err != nil {
			return nil, err
		}
		dcfg.Filter = bloom
	}

	if cfg.S3.Bucket != "" {
		bucket, err := common.NewS3(ctx, common.S3Config{
			Bucket:       cfg.S3.Bucket,
			Region:       cfg.S3.Region,
			Profile:      cfg.S3.Profile,
			UsePathStyle: cfg.S3.UsePathStyle,
		})
		if err != nil {
			return nil, err
		}
		archiver := deduplication.NewS3Archiver(bucket, cfg.S3.Prefix)
		dcfg.Archiver = archiver
		logging.Info().Str("bucket", bucket.Bucket()).Str("prefix", cfg.S3.Prefix).Msg("archiving accepted transcripts")
	}

	dedup, err := deduplication.NewDeduplicator(store, dcfg)
	if err != nil {
		return nil, err
	}

	if src, ok := dcfg.Archiver.(deduplication.ArchiveSource); ok && cfg.S3.Restore {
		if _, err := dedup.Restore(ctx, src); err != nil {
			logging.Warn().Err(err).Msg("failed to restore transcripts from archive")
		}
	}
	return dedup, nil
}

// startIntake starts the Kafka consumer in the background and returns its closer.
func startIntake(ctx context.Context, cfg *config.Config, dedup *deduplication.Deduplicator) (func(), error) {
	var publisher *kafka.Publisher
	var pub intake.ResultPublisher
	if cfg.Kafka.ResultsTopic != "" {
		p, err := kafka.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.ResultsTopic)
		if err != nil {
			return nil, err
		}
		publisher, pub = p, p
	}

	consumer, err := intake.NewConsumer(intake.Config{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.Topic,
		GroupID: cfg.Kafka.GroupID,
	}, dedup, pub)
	if err != nil {
		if publisher != nil {
			_ = publisher.Close()
		}
		return nil, err
	}

	go func() {
		if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("failed to start kafka intake")
		}
	}()

	return func() {
		if err := consumer.Close(); err != nil {
			logging.Warn().Err(err).Msg("failed to close kafka consumer")
		}
		if publisher != nil {
			if err := publisher.Close(); err != nil {
				logging.Warn().Err(err).Msg("failed to close kafka publisher")
			}
		}
	}, nil
}
