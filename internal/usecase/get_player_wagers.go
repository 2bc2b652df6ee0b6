package usecase

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"wagerpipe/internal/domain/wager"
)

// PlayerWagerReader is what this use case needs from the read store.
type PlayerWagerReader interface {
	GetPlayerWagersPaged(ctx context.Context, accountID uuid.UUID, page, pageSize int) ([]wager.ListItem, int, error)
}

type PaginatedResponse struct {
	Data       []wager.ListItem `json:"data"`
	Page       int              `json:"page"`
	PageSize   int              `json:"pageSize"`
	Total      int              `json:"total"`
	TotalPages int              `json:"totalPages"`
}

type GetPlayerWagers struct {
	reads PlayerWagerReader
}

func NewGetPlayerWagers(reads PlayerWagerReader) *GetPlayerWagers {
	return &GetPlayerWagers{reads: reads}
}

func (uc *GetPlayerWagers) Execute(ctx context.Context, accountID uuid.UUID, page, pageSize int) (*PaginatedResponse, error) {
	items, total, err := uc.reads.GetPlayerWagersPaged(ctx, accountID, page, pageSize)
	if err != nil {
		return nil, fmt.Errorf("get player wagers: %w", err)
	}

	if items == nil {
		items = []wager.ListItem{}
	}

	totalPages := 0
	if total > 0 {
		totalPages = (total + pageSize - 1) / pageSize
	}

	return &PaginatedResponse{
		Data:       items,
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
	}, nil
}
