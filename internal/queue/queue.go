package queue

import (
	"context"
	"time"

	"wagerpipe/internal/domain/wager"
)

// Buffer is a bounded multi-producer/single-consumer buffer of wager events.
// It is the only synchronization point between the request handlers and the
// batch loop that drains it: producers block when it is full (backpressure)
// instead of dropping events or growing without bound.
type Buffer struct {
	ch chan wager.Event
}

func New(capacity int) *Buffer {
	return &Buffer{ch: make(chan wager.Event, capacity)}
}

// Put enqueues one event, blocking while the buffer is full. A cancelled
// context returns ctx.Err() and guarantees the event was not enqueued.
func (b *Buffer) Put(ctx context.Context, ev wager.Event) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	select {
	case b.ch <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// DrainUpTo removes and returns between 0 and n events without blocking,
// preserving insertion order.
func (b *Buffer) DrainUpTo(n int) []wager.Event {
	if n <= 0 {
		return nil
	}

	var out []wager.Event
	for len(out) < n {
		select {
		case ev := <-b.ch:
			out = append(out, ev)
		default:
			return out
		}
	}
	return out
}

// WaitDequeue blocks until one event is available, the wait elapses, or ctx
// is cancelled. The boolean reports whether an event was dequeued.
func (b *Buffer) WaitDequeue(ctx context.Context, wait time.Duration) (wager.Event, bool, error) {
	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case ev := <-b.ch:
		return ev, true, nil
	case <-timer.C:
		return wager.Event{}, false, nil
	case <-ctx.Done():
		return wager.Event{}, false, ctx.Err()
	}
}

func (b *Buffer) Len() int {
	return len(b.ch)
}

func (b *Buffer) Cap() int {
	return cap(b.ch)
}
