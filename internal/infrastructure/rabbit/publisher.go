package rabbit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"wagerpipe/internal/domain/wager"
)

// ErrConfirmTimeout reports that the broker did not confirm a published batch
// within the configured window. The messages were already sent and are not
// resent; only the confirmation wait is abandoned.
var ErrConfirmTimeout = errors.New("publisher confirms timed out")

// Publisher publishes wager batches to the queue with per-batch confirms.
// Confirms are requested per batch rather than per message to keep throughput
// high; a confirm failure cannot identify which individual message failed.
type Publisher struct {
	conn           *amqp.Connection
	ch             *amqp.Channel
	queue          string
	confirmTimeout time.Duration
}

func NewPublisher(cfg Config, confirmTimeout time.Duration) (*Publisher, error) {
	conn, ch, err := dial(cfg)
	if err != nil {
		return nil, err
	}

	if err := ch.Confirm(false); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("enable publisher confirms: %w", err)
	}

	return &Publisher{
		conn:           conn,
		ch:             ch,
		queue:          cfg.Queue,
		confirmTimeout: confirmTimeout,
	}, nil
}

// PublishBatch publishes every event as a persistent JSON message tagged with
// the wager id, then waits for the broker to confirm the whole batch.
// A confirm that times out returns ErrConfirmTimeout; the caller decides
// whether to treat that as fatal (the batch loop does not).
func (p *Publisher) PublishBatch(ctx context.Context, batch []wager.Event) error {
	confirms := make([]*amqp.DeferredConfirmation, 0, len(batch))

	for _, ev := range batch {
		body, err := json.Marshal(ev)
		if err != nil {
			return fmt.Errorf("marshal wager %s: %w", ev.WagerID, err)
		}

		dc, err := p.ch.PublishWithDeferredConfirmWithContext(ctx, "", p.queue, false, false, amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    ev.WagerID.String(),
			Body:         body,
		})
		if err != nil {
			return fmt.Errorf("publish wager %s: %w", ev.WagerID, err)
		}
		confirms = append(confirms, dc)
	}

	waitCtx, cancel := context.WithTimeout(ctx, p.confirmTimeout)
	defer cancel()

	for _, dc := range confirms {
		acked, err := dc.WaitContext(waitCtx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return ErrConfirmTimeout
		}
		if !acked {
			return fmt.Errorf("broker nacked batch of %d", len(batch))
		}
	}

	return nil
}

func (p *Publisher) Close() {
	if p.ch != nil {
		p.ch.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}
