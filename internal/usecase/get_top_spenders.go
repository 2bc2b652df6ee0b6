package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"wagerpipe/internal/domain/wager"
)

// TopSpenderReader is what this use case needs from the read store.
type TopSpenderReader interface {
	GetTopSpenders(ctx context.Context, count int) ([]wager.TopSpender, error)
}

type GetTopSpenders struct {
	redisClient *redis.Client
	reads       TopSpenderReader
}

func NewGetTopSpenders(redisClient *redis.Client, reads TopSpenderReader) *GetTopSpenders {
	return &GetTopSpenders{
		redisClient: redisClient,
		reads:       reads,
	}
}

func (uc *GetTopSpenders) Execute(ctx context.Context, count int) ([]wager.TopSpender, error) {
	cacheKey := fmt.Sprintf("topspenders:%d", count)

	if uc.redisClient != nil {
		val, err := uc.redisClient.Get(ctx, cacheKey).Result()
		if err == nil {
			var spenders []wager.TopSpender
			if err := json.Unmarshal([]byte(val), &spenders); err == nil {
				return spenders, nil
			}
		}
	}

	spenders, err := uc.reads.GetTopSpenders(ctx, count)
	if err != nil {
		return nil, fmt.Errorf("get top spenders: %w", err)
	}

	if spenders == nil {
		spenders = []wager.TopSpender{}
	}

	if uc.redisClient != nil {
		data, _ := json.Marshal(spenders)
		// Short TTL: the aggregate scans the whole table, but the leaderboard
		// may lag ingestion by at most this long.
		uc.redisClient.Set(ctx, cacheKey, data, 5*time.Second)
	}

	return spenders, nil
}
