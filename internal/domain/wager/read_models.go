package wager

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ListItem is one row of a player's paged wager history.
type ListItem struct {
	WagerID     uuid.UUID       `json:"wagerId"`
	AccountID   uuid.UUID       `json:"accountId"`
	Game        string          `json:"game"`
	Provider    string          `json:"provider"`
	Amount      decimal.Decimal `json:"amount"`
	CreatedDate time.Time       `json:"createdDate"`
}

// TopSpender is one row of the total-spend leaderboard.
type TopSpender struct {
	AccountID   uuid.UUID       `json:"accountId"`
	Username    string          `json:"username"`
	TotalAmount decimal.Decimal `json:"totalAmountSpend"`
}
