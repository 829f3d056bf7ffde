// Package scheduler runs periodic stale-transcript cleanup.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"transcriptdedup/logging"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Cleaner removes stale records and reports how many were removed.
type Cleaner interface {
	CleanupStale(ctx context.Context) (int, error)
}

// Cleanup triggers Cleaner on a cron schedule. A run still in progress when the next tick
// fires causes that tick to be skipped.
type Cleanup struct {
	cleaner Cleaner
	timeout time.Duration
	cron    *cron.Cron
	entryID cron.EntryID
	log     zerolog.Logger
	mu      sync.Mutex
	started bool
}

// NewCleanup creates a cleanup job. timeout bounds a single run; zero means one minute.
func NewCleanup(cleaner Cleaner, timeout time.Duration) *Cleanup {
	if timeout <= 0 {
		timeout = time.Minute
	}
	return &Cleanup{
		cleaner: cleaner,
		timeout: timeout,
		cron:    cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		log:     logging.With().Str("component", "cleanup").Logger(),
	}
}

// Start registers the job with the given spec ("@every 30m", "0 * * * *") and starts the cron.
func (c *Cleanup) Start(schedule string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.started {
		return fmt.Errorf("cleanup already scheduled")
	}

	id, err := c.cron.AddFunc(schedule, func() { c.Run(context.Background()) })
	if err != nil {
		return fmt.Errorf("failed to add cleanup job: %w", err)
	}

	c.entryID = id
	c.started = true
	c.cron.Start()
	c.log.Info().Str("schedule", schedule).Msg("cleanup job scheduled")
	return nil
}

// Run performs one cleanup pass.
func (c *Cleanup) Run(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	removed, err := c.cleaner.CleanupStale(ctx)
	if err != nil {
		c.log.Error().Err(err).Int("removed", removed).Msg("scheduled cleanup failed")
		return
	}
	c.log.Debug().Int("removed", removed).Msg("scheduled cleanup finished")
}

// Next returns when the job fires next; zero before Start.
func (c *Cleanup) Next() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.started {
		return time.Time{}
	}
	return c.cron.Entry(c.entryID).Next
}

// Stop stops the cron and waits for a running job until ctx is done.
func (c *Cleanup) Stop(ctx context.Context) error {
	c.mu.Lock()
	started := c.started
	c.mu.Unlock()
	if !started {
		return nil
	}

	done := c.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
