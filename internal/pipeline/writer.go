package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"wagerpipe/internal/domain/wager"
	"wagerpipe/internal/queue"
)

var (
	wagersPersisted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "writer_wagers_persisted_total",
		Help: "The total number of wagers persisted by bulk insert",
	})
	insertErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "writer_bulk_insert_errors_total",
		Help: "The total number of failed bulk inserts",
	})
	insertDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "writer_bulk_insert_duration_seconds",
		Help:    "Time taken by one bulk-insert round trip",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5},
	})
)

// BulkStore persists one batch in a single round trip.
type BulkStore interface {
	InsertBulk(ctx context.Context, batch []wager.Event) error
}

// Writer drains the consumer-side buffer and bulk-inserts batches. It runs on
// its own loop, independent of delivery callbacks, and is the buffer's single
// reader. A failed round trip is logged and the batch is gone once the call
// returns; no retry queue retains it.
type Writer struct {
	buf       *queue.Buffer
	store     BulkStore
	batchSize int
	tick      time.Duration
	backoff   time.Duration
}

func NewWriter(buf *queue.Buffer, store BulkStore, batchSize int, tick, backoff time.Duration) *Writer {
	return &Writer{
		buf:       buf,
		store:     store,
		batchSize: batchSize,
		tick:      tick,
		backoff:   backoff,
	}
}

func (w *Writer) Run(ctx context.Context) error {
	slog.Info("batch writer started", "batch_size", w.batchSize, "tick", w.tick.String())

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		batch := w.buf.DrainUpTo(w.batchSize)
		if len(batch) == 0 {
			ev, ok, err := w.buf.WaitDequeue(ctx, w.tick)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			batch = append(batch, ev)
			batch = append(batch, w.buf.DrainUpTo(w.batchSize-1)...)
		}

		started := time.Now()
		if err := w.store.InsertBulk(ctx, batch); err != nil {
			if ctx.Err() != nil {
				slog.Warn("shutdown with unwritten batch", "count", len(batch))
				return ctx.Err()
			}
			insertErrors.Inc()
			slog.Error("failed to bulk insert batch", "count", len(batch), "error", err)
			if !sleepCtx(ctx, w.backoff) {
				return ctx.Err()
			}
			continue
		}

		insertDuration.Observe(time.Since(started).Seconds())
		wagersPersisted.Add(float64(len(batch)))
	}
}
