// Package buffered splits a ledger into fixed-size batches for writers that
// talk to remote services.
package buffered

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ArionMiles/mynt2koinly/pkg/api"
	"github.com/ArionMiles/mynt2koinly/pkg/logging"
)

// DefaultBatchSize is the default number of records per batch.
const DefaultBatchSize = 10

// Flusher writes one batch. It is never called with an empty batch.
type Flusher func(ctx context.Context, batch []api.Record) error

// Config holds configuration for batched writing.
type Config struct {
	// BatchSize is the number of records per batch.
	// Defaults to DefaultBatchSize.
	BatchSize int
}

// Batcher hands records to a Flusher in order, BatchSize at a time.
type Batcher struct {
	flusher   Flusher
	batchSize int
	logger    *slog.Logger
}

// New creates a new Batcher with the given flusher function.
func New(flusher Flusher, cfg Config, logger *slog.Logger) *Batcher {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}

	return &Batcher{
		flusher:   flusher,
		batchSize: cfg.BatchSize,
		logger:    logging.OrNop(logger),
	}
}

// Write flushes records batch by batch and stops at the first error.
// Cancellation is checked before each batch.
func (b *Batcher) Write(ctx context.Context, records []api.Record) error {
	for start := 0; start < len(records); start += b.batchSize {
		if err := ctx.Err(); err != nil {
			return err
		}

		end := min(start+b.batchSize, len(records))
		if err := b.flusher(ctx, records[start:end]); err != nil {
			return fmt.Errorf("flushing records %d-%d: %w", start+1, end, err)
		}
		b.logger.Debug("flushed batch", "from", start+1, "to", end)
	}
	return nil
}

// BatchSize returns the configured batch size.
func (b *Batcher) BatchSize() int {
	return b.batchSize
}
