package scheduler

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"transcriptdedup/logging"

	"github.com/rs/zerolog"
)

type countingCleaner struct {
	calls atomic.Int32
	err   error
}

func (c *countingCleaner) CleanupStale(ctx context.Context) (int, error) {
	c.calls.Add(1)
	if _, ok := ctx.Deadline(); !ok {
		return 0, errors.New("run without deadline")
	}
	return 2, c.err
}

func TestRunCallsCleaner(t *testing.T) {
	var buf bytes.Buffer
	previous := logging.Logger()
	logging.SetLogger(zerolog.New(&buf))
	t.Cleanup(func() { logging.SetLogger(previous) })

	cleaner := &countingCleaner{}
	job := NewCleanup(cleaner, 0)

	job.Run(context.Background())
	cleaner.err = errors.New("redis down")
	job.Run(context.Background())

	if got := cleaner.calls.Load(); got != 2 {
		t.Fatalf("calls = %d; want 2", got)
	}
	out := buf.String()
	if !strings.Contains(out, `"component":"cleanup"`) || !strings.Contains(out, `"error":"redis down"`) {
		t.Fatalf("failure not logged with component: %s", out)
	}
}

func TestStartRejectsBadSchedule(t *testing.T) {
	job := NewCleanup(&countingCleaner{}, time.Second)
	if err := job.Start("every now and then"); err == nil {
		t.Fatal("expected error for invalid schedule")
	}
	if !job.Next().IsZero() {
		t.Fatal("Next should be zero when nothing is scheduled")
	}
	if err := job.Stop(context.Background()); err != nil {
		t.Fatalf("Stop on unstarted job: %v", err)
	}
}

func TestStartSchedulesJob(t *testing.T) {
	job := NewCleanup(&countingCleaner{}, time.Second)
	if err := job.Start("@every 1h"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(func() { _ = job.Stop(context.Background()) })

	next := job.Next()
	if next.Before(time.Now().Add(59 * time.Minute)) {
		t.Fatalf("Next = %v; want about an hour from now", next)
	}
	if err := job.Start("@every 1h"); err == nil {
		t.Fatal("second Start should fail")
	}
}
