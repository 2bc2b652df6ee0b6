package usecase

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"wagerpipe/internal/domain/wager"
	"wagerpipe/internal/queue"
)

// SubmitWager accepts one wager event into the ingest buffer. Success means
// accepted for publication, not durably stored; the producer contract is
// fire-and-forget from this point on.
type SubmitWager struct {
	ingest *queue.Buffer
}

func NewSubmitWager(ingest *queue.Buffer) *SubmitWager {
	return &SubmitWager{ingest: ingest}
}

func (uc *SubmitWager) Execute(ctx context.Context, ev wager.Event) error {
	if ev.WagerID == uuid.Nil {
		ev.WagerID = uuid.New()
	}

	if err := uc.ingest.Put(ctx, ev); err != nil {
		return fmt.Errorf("enqueue wager: %w", err)
	}

	return nil
}
