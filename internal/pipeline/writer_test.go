package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"wagerpipe/internal/domain/wager"
	"wagerpipe/internal/queue"
)

// fakeStore records bulk-inserted batches and can fail per call.
type fakeStore struct {
	mu      sync.Mutex
	batches [][]wager.Event
	errs    []error
}

func (s *fakeStore) InsertBulk(ctx context.Context, batch []wager.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var err error
	if len(s.errs) > 0 {
		err = s.errs[0]
		s.errs = s.errs[1:]
	}
	if err != nil {
		return err
	}

	cp := make([]wager.Event, len(batch))
	copy(cp, batch)
	s.batches = append(s.batches, cp)
	return nil
}

func (s *fakeStore) rows() []wager.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []wager.Event
	for _, b := range s.batches {
		out = append(out, b...)
	}
	return out
}

func TestWriterPersistsBatchWithAllFields(t *testing.T) {
	buf := queue.New(100)
	loc := time.FixedZone("SAST", 2*60*60)
	dur := int64(321)

	events := make([]wager.Event, 0, 5)
	for i := 0; i < 5; i++ {
		ev := wager.Event{
			WagerID:         uuid.New(),
			AccountID:       uuid.New(),
			Username:        "lucky.luke",
			GameName:        "Book of Ra",
			Provider:        "novomatic",
			Amount:          decimal.RequireFromString("1234.567890123456789"),
			CreatedDateTime: time.Date(2024, 9, 3, 14, 30, 0, 123456789, loc),
			NumberOfBets:    3,
			Duration:        &dur,
		}
		events = append(events, ev)
		require.NoError(t, buf.Put(context.Background(), ev))
	}

	store := &fakeStore{}
	w := NewWriter(buf, store, 1000, time.Millisecond, time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	require.Eventually(t, func() bool { return len(store.rows()) == 5 },
		2*time.Second, 5*time.Millisecond)
	cancel()

	rows := store.rows()
	for i, got := range rows {
		want := events[i]
		require.Equal(t, want.WagerID, got.WagerID)
		require.Equal(t, want.AccountID, got.AccountID)
		require.True(t, want.Amount.Equal(got.Amount), "amount changed in transit")
		require.Equal(t,
			want.CreatedDateTime.Format(time.RFC3339Nano),
			got.CreatedDateTime.Format(time.RFC3339Nano),
			"timestamp offset not preserved")
		require.Equal(t, want.Duration, got.Duration)
	}
}

func TestWriterDropsFailedBatchWithoutRetry(t *testing.T) {
	buf := queue.New(100)
	first := make(map[uuid.UUID]bool)
	for i := 0; i < 10; i++ {
		ev := wager.Event{WagerID: uuid.New()}
		first[ev.WagerID] = true
		require.NoError(t, buf.Put(context.Background(), ev))
	}

	// The failed batch is gone once InsertBulk returns: not persisted, not
	// re-queued. Later events are unaffected.
	store := &fakeStore{errs: []error{errors.New("deadlock detected")}}
	w := NewWriter(buf, store, 1000, time.Millisecond, time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	require.Eventually(t, func() bool { return buf.Len() == 0 },
		time.Second, time.Millisecond)
	late := wager.Event{WagerID: uuid.New()}
	require.NoError(t, buf.Put(context.Background(), late))

	require.Eventually(t, func() bool { return len(store.rows()) == 1 },
		2*time.Second, 5*time.Millisecond)
	cancel()

	rows := store.rows()
	require.Equal(t, late.WagerID, rows[0].WagerID)
	for _, got := range rows {
		require.False(t, first[got.WagerID], "failed batch was retried")
	}
}

func TestWriterNeverExceedsBatchSize(t *testing.T) {
	buf := queue.New(500)
	for i := 0; i < 450; i++ {
		require.NoError(t, buf.Put(context.Background(), wager.Event{WagerID: uuid.New()}))
	}

	store := &fakeStore{}
	w := NewWriter(buf, store, 100, time.Millisecond, time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	require.Eventually(t, func() bool { return len(store.rows()) == 450 },
		2*time.Second, 5*time.Millisecond)
	cancel()

	store.mu.Lock()
	defer store.mu.Unlock()
	for _, batch := range store.batches {
		require.LessOrEqual(t, len(batch), 100)
	}
}

func TestWriterStopsPromptlyWhenCancelled(t *testing.T) {
	buf := queue.New(10)
	store := &fakeStore{}
	w := NewWriter(buf, store, 100, time.Millisecond, time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.ErrorIs(t, w.Run(ctx), context.Canceled)
	require.Empty(t, store.rows())
}
