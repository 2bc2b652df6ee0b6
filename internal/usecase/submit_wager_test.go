package usecase

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"wagerpipe/internal/domain/wager"
	"wagerpipe/internal/queue"
)

func TestSubmitWagerEnqueues(t *testing.T) {
	ingest := queue.New(10)
	uc := NewSubmitWager(ingest)

	ev := wager.Event{WagerID: uuid.New(), Username: "lucky.luke"}
	require.NoError(t, uc.Execute(context.Background(), ev))

	out := ingest.DrainUpTo(10)
	require.Len(t, out, 1)
	require.Equal(t, ev.WagerID, out[0].WagerID)
}

func TestSubmitWagerAssignsMissingID(t *testing.T) {
	ingest := queue.New(10)
	uc := NewSubmitWager(ingest)

	require.NoError(t, uc.Execute(context.Background(), wager.Event{}))

	out := ingest.DrainUpTo(10)
	require.Len(t, out, 1)
	require.NotEqual(t, uuid.Nil, out[0].WagerID)
}

func TestSubmitWagerCancelled(t *testing.T) {
	ingest := queue.New(1)
	uc := NewSubmitWager(ingest)
	require.NoError(t, uc.Execute(context.Background(), wager.Event{WagerID: uuid.New()}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := uc.Execute(ctx, wager.Event{WagerID: uuid.New()})
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 1, ingest.Len())
}
