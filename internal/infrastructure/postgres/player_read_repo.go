package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"wagerpipe/internal/domain/wager"
)

type PlayerReadRepository struct {
	pool *pgxpool.Pool
}

func NewPlayerReadRepository(pool *pgxpool.Pool) *PlayerReadRepository {
	return &PlayerReadRepository{pool: pool}
}

// GetPlayerWagersPaged returns one page of a player's wagers, newest first,
// plus the total row count for that player. The total comes from an
// independent count statement so a page past the last one still reports how
// many wagers exist; both statements share a single batched round trip.
func (r *PlayerReadRepository) GetPlayerWagersPaged(ctx context.Context, accountID uuid.UUID, page, pageSize int) ([]wager.ListItem, int, error) {
	const pageSQL = `
		SELECT wager_id, account_id, game_name, provider, amount, created_date_time
		FROM casino.wagers
		WHERE account_id = $1
		ORDER BY created_date_time DESC
		LIMIT $2 OFFSET $3
	`
	const countSQL = `
		SELECT COUNT(*) FROM casino.wagers WHERE account_id = $1
	`

	b := &pgx.Batch{}
	b.Queue(pageSQL, accountID, pageSize, (page-1)*pageSize)
	b.Queue(countSQL, accountID)

	br := r.pool.SendBatch(ctx, b)
	defer br.Close()

	rows, err := br.Query()
	if err != nil {
		return nil, 0, fmt.Errorf("query player wagers: %w", err)
	}

	var items []wager.ListItem
	for rows.Next() {
		var it wager.ListItem
		if err := rows.Scan(&it.WagerID, &it.AccountID, &it.Game, &it.Provider, &it.Amount, &it.CreatedDate); err != nil {
			rows.Close()
			return nil, 0, fmt.Errorf("scan wager row: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("read wager rows: %w", err)
	}
	rows.Close()

	var total int
	if err := br.QueryRow().Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count player wagers: %w", err)
	}

	return items, total, nil
}

// GetTopSpenders returns the top accounts by total wagered amount, descending.
func (r *PlayerReadRepository) GetTopSpenders(ctx context.Context, count int) ([]wager.TopSpender, error) {
	const sql = `
		SELECT account_id, MAX(username) AS username, SUM(amount) AS total_amount
		FROM casino.wagers
		GROUP BY account_id
		ORDER BY total_amount DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, sql, count)
	if err != nil {
		return nil, fmt.Errorf("query top spenders: %w", err)
	}
	defer rows.Close()

	var spenders []wager.TopSpender
	for rows.Next() {
		var s wager.TopSpender
		if err := rows.Scan(&s.AccountID, &s.Username, &s.TotalAmount); err != nil {
			return nil, fmt.Errorf("scan top spender: %w", err)
		}
		spenders = append(spenders, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read top spender rows: %w", err)
	}

	return spenders, nil
}
