package wager

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// The upstream contract carries amounts as bare JSON numbers, not quoted
// strings. Precision survives because decimal renders its exact value and
// both ends of the pipe decode back into a decimal, never a float64.
func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// Event is the wager envelope as it travels through the pipeline.
// It is serialized with exactly the same field names on both hops
// (API -> broker and broker -> consumer); the upstream contract uses
// camelCase keys except the literal "Username".
type Event struct {
	WagerID             uuid.UUID       `json:"wagerId"`
	Theme               string          `json:"theme"`
	Provider            string          `json:"provider"`
	GameName            string          `json:"gameName"`
	TransactionID       string          `json:"transactionId"`
	BrandID             uuid.UUID       `json:"brandId"`
	AccountID           uuid.UUID       `json:"accountId"`
	Username            string          `json:"Username"`
	ExternalReferenceID string          `json:"externalReferenceId"`
	TransactionTypeID   uuid.UUID       `json:"transactionTypeId"`
	Amount              decimal.Decimal `json:"amount"`
	CreatedDateTime     time.Time       `json:"createdDateTime"`
	NumberOfBets        int             `json:"numberOfBets"`
	CountryCode         string          `json:"countryCode"`
	SessionData         string          `json:"sessionData"`
	Duration            *int64          `json:"duration"`
}
