package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"wagerpipe/internal/domain/wager"
)

var wagerColumns = []string{
	"wager_id", "account_id", "username", "game_name", "provider", "amount", "created_date_time",
}

type WagerRepository struct {
	pool *pgxpool.Pool
}

func NewWagerRepository(pool *pgxpool.Pool) *WagerRepository {
	return &WagerRepository{pool: pool}
}

// InsertOne persists a single wager. Fallback path for non-batched use.
func (r *WagerRepository) InsertOne(ctx context.Context, ev wager.Event) error {
	const sql = `
		INSERT INTO casino.wagers (wager_id, account_id, username, game_name, provider, amount, created_date_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.pool.Exec(ctx, sql,
		ev.WagerID, ev.AccountID, ev.Username, ev.GameName, ev.Provider, ev.Amount, ev.CreatedDateTime)
	if err != nil {
		return fmt.Errorf("insert wager %s: %w", ev.WagerID, err)
	}

	return nil
}

// InsertBulk persists the whole batch in one COPY round trip. The batch
// either lands as a unit or the round trip fails as a unit; callers do not
// get per-row failure information.
func (r *WagerRepository) InsertBulk(ctx context.Context, batch []wager.Event) error {
	if len(batch) == 0 {
		return nil
	}

	rows := make([][]any, 0, len(batch))
	for _, ev := range batch {
		rows = append(rows, []any{
			ev.WagerID, ev.AccountID, ev.Username, ev.GameName, ev.Provider, ev.Amount, ev.CreatedDateTime,
		})
	}

	_, err := r.pool.CopyFrom(ctx,
		pgx.Identifier{"casino", "wagers"},
		wagerColumns,
		pgx.CopyFromRows(rows))
	if err != nil {
		return fmt.Errorf("bulk insert %d wagers: %w", len(batch), err)
	}

	return nil
}
