package rabbit

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	amqp "github.com/rabbitmq/amqp091-go"

	"wagerpipe/internal/domain/wager"
	"wagerpipe/internal/queue"
)

var (
	deliveriesBuffered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "consumer_deliveries_buffered_total",
		Help: "The total number of deliveries decoded and handed to the write buffer",
	})
	deliveriesRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "consumer_deliveries_rejected_total",
		Help: "The total number of deliveries rejected without requeue",
	})
)

// Consumer subscribes to the wager queue with a bounded prefetch window and
// feeds decoded events into the in-process write buffer. The prefetch limit
// is the flow control between the broker and this process: the broker stops
// forwarding once that many deliveries are unacknowledged.
type Consumer struct {
	conn  *amqp.Connection
	ch    *amqp.Channel
	queue string
	buf   *queue.Buffer
}

func NewConsumer(cfg Config, buf *queue.Buffer) (*Consumer, error) {
	conn, ch, err := dial(cfg)
	if err != nil {
		return nil, err
	}

	if err := ch.Qos(cfg.Prefetch, 0, false); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	return &Consumer{conn: conn, ch: ch, queue: cfg.Queue, buf: buf}, nil
}

// ErrDeliveriesClosed reports that the broker closed the delivery stream
// while the consumer was still supposed to be running.
var ErrDeliveriesClosed = errors.New("delivery channel closed")

// Run consumes deliveries until ctx is cancelled or the channel closes.
func (c *Consumer) Run(ctx context.Context) error {
	deliveries, err := c.ch.ConsumeWithContext(ctx, c.queue, "", false, false, false, false, nil)
	if err != nil {
		return err
	}

	slog.Info("wager consumer started", "queue", c.queue)

	return c.consume(ctx, deliveries)
}

// consume drains the delivery stream. A stream that closes during shutdown is
// a clean exit; a stream that closes with the context still live means the
// connection dropped and the process must not keep running without input.
func (c *Consumer) consume(ctx context.Context, deliveries <-chan amqp.Delivery) error {
	for d := range deliveries {
		c.handle(ctx, d)
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	return ErrDeliveriesClosed
}

// handle decodes one delivery, blocks until the write buffer accepts it, and
// acknowledges. The ack happens at hand-off, not after persistence: a crash
// between this ack and the bulk insert loses the event. Failures are rejected
// without requeue; there is no dead-letter route, so the message is dropped.
func (c *Consumer) handle(ctx context.Context, d amqp.Delivery) {
	var ev wager.Event
	if err := json.Unmarshal(d.Body, &ev); err != nil {
		slog.Error("failed to decode delivery", "queue", c.queue, "delivery_tag", d.DeliveryTag, "error", err)
		deliveriesRejected.Inc()
		if err := d.Nack(false, false); err != nil {
			slog.Error("failed to nack delivery", "delivery_tag", d.DeliveryTag, "error", err)
		}
		return
	}

	if err := c.buf.Put(ctx, ev); err != nil {
		slog.Error("failed to buffer delivery", "queue", c.queue, "delivery_tag", d.DeliveryTag, "error", err)
		deliveriesRejected.Inc()
		if err := d.Nack(false, false); err != nil {
			slog.Error("failed to nack delivery", "delivery_tag", d.DeliveryTag, "error", err)
		}
		return
	}

	if err := d.Ack(false); err != nil {
		slog.Error("failed to ack delivery", "delivery_tag", d.DeliveryTag, "error", err)
		return
	}
	deliveriesBuffered.Inc()
}

func (c *Consumer) Close() {
	if c.ch != nil {
		c.ch.Close()
	}
	if c.conn != nil {
		c.conn.Close()
	}
}
