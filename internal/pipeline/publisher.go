package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"wagerpipe/internal/domain/wager"
	"wagerpipe/internal/infrastructure/rabbit"
	"wagerpipe/internal/queue"
)

var (
	wagersPublished = promauto.NewCounter(prometheus.CounterOpts{
		Name: "publisher_wagers_published_total",
		Help: "The total number of wagers published to the broker",
	})
	publishErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "publisher_batch_errors_total",
		Help: "The total number of failed batch publishes",
	})
	publishBatchSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "publisher_batch_size",
		Help:    "Number of wagers per published batch",
		Buckets: []float64{1, 10, 50, 100, 250, 500},
	})
)

// BatchSink publishes one assembled batch to the broker and waits for the
// broker's confirmation.
type BatchSink interface {
	PublishBatch(ctx context.Context, batch []wager.Event) error
}

// Publisher drains the ingest buffer into broker-confirmed batches. It is the
// single reader of the buffer and the single owner of the sink's channel;
// request handlers only ever talk to it through the buffer.
type Publisher struct {
	buf       *queue.Buffer
	sink      BatchSink
	batchSize int
	tick      time.Duration
	backoff   time.Duration
}

func NewPublisher(buf *queue.Buffer, sink BatchSink, batchSize int, tick, backoff time.Duration) *Publisher {
	return &Publisher{
		buf:       buf,
		sink:      sink,
		batchSize: batchSize,
		tick:      tick,
		backoff:   backoff,
	}
}

// Run loops until ctx is cancelled: greedily drain up to a batch, wait for
// data or a tick when the buffer is empty, publish, then pace on the tick so
// a shallow queue does not spin. A publish failure loses the in-flight batch;
// nothing retains it for retry. Cancellation mid-batch drops the drained
// events and exits cleanly.
func (p *Publisher) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.tick)
	defer ticker.Stop()

	slog.Info("buffered publisher started", "batch_size", p.batchSize, "tick", p.tick.String())

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		batch := p.buf.DrainUpTo(p.batchSize)
		if len(batch) == 0 {
			ev, ok, err := p.buf.WaitDequeue(ctx, p.tick)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			batch = append(batch, ev)
			batch = append(batch, p.buf.DrainUpTo(p.batchSize-1)...)
		}

		if err := p.sink.PublishBatch(ctx, batch); err != nil {
			switch {
			case ctx.Err() != nil:
				slog.Warn("shutdown with unpublished batch", "count", len(batch))
				return ctx.Err()
			case errors.Is(err, rabbit.ErrConfirmTimeout):
				// Messages were already sent; only the confirmation wait is
				// abandoned, so nothing is republished.
				slog.Warn("publisher confirms timed out", "count", len(batch))
			default:
				publishErrors.Inc()
				slog.Error("failed to publish batch", "count", len(batch), "error", err)
				if !sleepCtx(ctx, p.backoff) {
					return ctx.Err()
				}
			}
		} else {
			wagersPublished.Add(float64(len(batch)))
			publishBatchSize.Observe(float64(len(batch)))
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
