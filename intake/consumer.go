// Package intake feeds transcripts arriving on Kafka through deduplication.
package intake

import (
	"context"
	"errors"
	"strings"
	"time"

	"transcriptdedup/deduplication"
	"transcriptdedup/logging"
	"transcriptdedup/metrics"
	"transcriptdedup/shared/kafka"
	"transcriptdedup/types"
)

var errSkipped = errors.New("message skipped")

// Processor is the deduplication entry point used for each message.
type Processor interface {
	ProcessTranscript(ctx context.Context, t *types.Transcript) (*deduplication.Result, error)
}

// ResultPublisher receives the outcome of each processed transcript. Optional.
type ResultPublisher interface {
	Publish(ctx context.Context, key string, v any) error
}

// Outcome is published for every processed transcript.
type Outcome struct {
	TranscriptID string    `json:"transcript_id"`
	VideoID      string    `json:"video_id,omitempty"`
	IsDuplicate  bool      `json:"is_duplicate"`
	MatchingID   string    `json:"matching_id,omitempty"`
	Strategy     string    `json:"strategy,omitempty"`
	Reason       string    `json:"reason,omitempty"`
	CheckedAt    time.Time `json:"checked_at"`
}

// Config selects the topic and consumer group.
type Config struct {
	Brokers []string
	Topic   string
	GroupID string
}

// NewHandler decodes types.Transcript messages and processes them. Messages without text are
// marked and skipped; processing errors leave the message unmarked for redelivery.
func NewHandler(p Processor, pub ResultPublisher) *kafka.TypedMessageHandler[types.Transcript] {
	return &kafka.TypedMessageHandler[types.Transcript]{
		Validate: func(t *types.Transcript) bool {
			if strings.TrimSpace(t.Text) == "" {
				logging.Warn().Str("transcript_id", t.ID).Msg("skipping transcript without text")
				metrics.RecordIntakeMessage(false, errSkipped)
				return false
			}
			return true
		},
		Process: func(ctx context.Context, t *types.Transcript) error {
			result, err := p.ProcessTranscript(ctx, t)
			metrics.RecordIntakeMessage(result != nil && result.IsDuplicate, err)
			if err != nil {
				return err
			}

			logging.Info().
				Str("transcript_id", t.ID).
				Bool("duplicate", result.IsDuplicate).
				Str("matching_id", result.MatchingID).
				Msg("processed transcript from kafka")

			if pub == nil {
				return nil
			}
			outcome := Outcome{
				TranscriptID: t.ID,
				VideoID:      t.VideoID,
				IsDuplicate:  result.IsDuplicate,
				MatchingID:   result.MatchingID,
				Strategy:     result.Strategy,
				Reason:       result.Reason,
				CheckedAt:    result.CheckedAt,
			}
			if err := pub.Publish(ctx, t.ID, outcome); err != nil {
				// The transcript is already stored; redelivery would only report it as a duplicate.
				logging.Error().Err(err).Str("transcript_id", t.ID).Msg("failed to publish outcome")
			}
			return nil
		},
		AlwaysMark: true,
	}
}

// NewConsumer builds a Kafka consumer that runs every message through p.
func NewConsumer(cfg Config, p Processor, pub ResultPublisher) (*kafka.Consumer, error) {
	return kafka.NewConsumer(kafka.ConsumerConfig{
		Brokers: cfg.Brokers,
		Topic:   cfg.Topic,
		GroupID: cfg.GroupID,
		Handler: NewHandler(p, pub),
	})
}
