package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"wagerpipe/internal/domain/wager"
)

type stubPlayerReader struct {
	items []wager.ListItem
	total int
	err   error
}

func (r *stubPlayerReader) GetPlayerWagersPaged(ctx context.Context, accountID uuid.UUID, page, pageSize int) ([]wager.ListItem, int, error) {
	return r.items, r.total, r.err
}

func TestGetPlayerWagersReportsTotalsOnPagePastEnd(t *testing.T) {
	// A page beyond the player's data returns no rows, but the totals still
	// describe the whole result set.
	reads := &stubPlayerReader{items: nil, total: 120}
	uc := NewGetPlayerWagers(reads)

	resp, err := uc.Execute(context.Background(), uuid.New(), 99, 10)
	require.NoError(t, err)

	require.NotNil(t, resp.Data)
	require.Empty(t, resp.Data)
	require.Equal(t, 120, resp.Total)
	require.Equal(t, 12, resp.TotalPages)
	require.Equal(t, 99, resp.Page)
	require.Equal(t, 10, resp.PageSize)
}

func TestGetPlayerWagersRoundsTotalPagesUp(t *testing.T) {
	reads := &stubPlayerReader{
		items: []wager.ListItem{{WagerID: uuid.New()}},
		total: 21,
	}
	uc := NewGetPlayerWagers(reads)

	resp, err := uc.Execute(context.Background(), uuid.New(), 1, 10)
	require.NoError(t, err)
	require.Equal(t, 3, resp.TotalPages)
}

func TestGetPlayerWagersEmptyPlayer(t *testing.T) {
	uc := NewGetPlayerWagers(&stubPlayerReader{})

	resp, err := uc.Execute(context.Background(), uuid.New(), 1, 10)
	require.NoError(t, err)
	require.NotNil(t, resp.Data)
	require.Zero(t, resp.Total)
	require.Zero(t, resp.TotalPages)
}

func TestGetPlayerWagersWrapsReadError(t *testing.T) {
	reads := &stubPlayerReader{err: errors.New("pool exhausted")}
	uc := NewGetPlayerWagers(reads)

	_, err := uc.Execute(context.Background(), uuid.New(), 1, 10)
	require.ErrorContains(t, err, "get player wagers")
}
