package ingest

import (
	"context"
	"errors"
	"io"
	"runtime"
	"time"

	"cardvault/core/errs"
	"cardvault/core/retry"
	"cardvault/feature/catalog/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// WriteBatch persists one batch of records inside the given transaction.
type WriteBatch func(tx *gorm.DB, cards []models.Card) error

// Options tunes a worker run.
type Options struct {
	// BatchSize is the number of records per transaction. Bounds peak
	// resident records: the worker never holds more than one batch.
	BatchSize int
	// EnglishOnly skips records whose language is not "en".
	EnglishOnly bool
}

// DefaultBatchSize trades throughput against peak memory.
const DefaultBatchSize = 1000

// Worker streams a catalog source into the store in bounded-memory batches.
// It runs on its own goroutine and communicates with the host exclusively
// through the message channel returned by Start; no shared mutable state
// crosses the boundary.
type Worker struct {
	db     *gorm.DB
	write  WriteBatch
	opts   Options
	logger *zap.Logger
}

// NewWorker creates an ingestion worker.
func NewWorker(db *gorm.DB, write WriteBatch, opts Options, logger *zap.Logger) *Worker {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	return &Worker{db: db, write: write, opts: opts, logger: logger}
}

// Start launches the run and returns its message channel. The channel is
// closed after the terminal Completed or Failed message.
func (w *Worker) Start(ctx context.Context, source io.Reader) <-chan Message {
	ch := make(chan Message, 16)
	go w.run(ctx, source, ch)
	return ch
}

func (w *Worker) run(ctx context.Context, source io.Reader, ch chan<- Message) {
	defer close(ch)
	ch <- Started{}

	start := time.Now()
	dec := NewDecoder(source)
	batch := make([]models.Card, 0, w.opts.BatchSize)

	var (
		total   int64
		skipped int64
		batches int
	)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		// One transaction per batch: a failure rolls back this batch only,
		// and lock contention is retried before the run gives up.
		err := retry.Transaction(ctx, w.db, retry.DefaultPolicy, func(tx *gorm.DB) error {
			return w.write(tx, batch)
		})
		if err != nil {
			return err
		}
		total += int64(len(batch))
		batches++
		batch = batch[:0]

		var mem runtime.MemStats
		runtime.ReadMemStats(&mem)
		ch <- Progress{Records: total, Batches: batches, HeapBytes: mem.HeapAlloc}
		return nil
	}

	for {
		// Cancellation is honored at batch boundaries only, preserving
		// per-batch atomicity: the buffer is empty here, so nothing written
		// is lost and nothing buffered is half-committed.
		if len(batch) == 0 {
			select {
			case <-ctx.Done():
				w.logger.Info("Ingestion cancelled",
					zap.Int64("records", total),
					zap.Int("batches", batches))
				ch <- Failed{Err: errs.ErrCancelled}
				return
			default:
			}
		}

		raw, err := dec.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// Malformed input is fatal; no further batches are attempted.
			ch <- Failed{Err: err}
			return
		}

		card, err := parseCard(raw)
		if err != nil {
			ch <- Failed{Err: err}
			return
		}

		if w.opts.EnglishOnly && card.Lang != "" && card.Lang != "en" {
			skipped++
			continue
		}

		batch = append(batch, card)
		if len(batch) < w.opts.BatchSize {
			continue
		}

		if err := flush(); err != nil {
			ch <- Failed{Err: err}
			return
		}
	}

	if err := flush(); err != nil {
		ch <- Failed{Err: err}
		return
	}

	ch <- Completed{Summary: Summary{
		Records:  total,
		Skipped:  skipped,
		Batches:  batches,
		Duration: time.Since(start),
	}}
}
