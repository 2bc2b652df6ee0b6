package wager

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestEventWireFormat(t *testing.T) {
	loc := time.FixedZone("SAST", 2*60*60)
	dur := int64(95)
	ev := Event{
		WagerID:             uuid.MustParse("6f1f9a66-6f3d-4f29-9b7e-111111111111"),
		Theme:               "egypt",
		Provider:            "pragmatic",
		GameName:            "Gates of Olympus",
		TransactionID:       "tx-001",
		BrandID:             uuid.New(),
		AccountID:           uuid.New(),
		Username:            "lucky.luke",
		ExternalReferenceID: "ext-77",
		TransactionTypeID:   uuid.New(),
		Amount:              decimal.RequireFromString("250.7500000000000001"),
		CreatedDateTime:     time.Date(2024, 9, 3, 14, 30, 45, 0, loc),
		NumberOfBets:        2,
		CountryCode:         "ZA",
		SessionData:         "opaque-blob",
		Duration:            &dur,
	}

	body, err := json.Marshal(ev)
	require.NoError(t, err)

	// The upstream contract is camelCase except the literal "Username"; the
	// same keys appear on both hops, none added, none dropped.
	var keys map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(body, &keys))
	for _, k := range []string{
		"wagerId", "theme", "provider", "gameName", "transactionId", "brandId",
		"accountId", "Username", "externalReferenceId", "transactionTypeId",
		"amount", "createdDateTime", "numberOfBets", "countryCode",
		"sessionData", "duration",
	} {
		require.Contains(t, keys, k)
	}
	require.Len(t, keys, 16)

	// The amount is a bare JSON number, full precision intact.
	require.Contains(t, string(body), `"amount":250.7500000000000001`)

	var got Event
	require.NoError(t, json.Unmarshal(body, &got))

	require.Equal(t, ev.WagerID, got.WagerID)
	require.Equal(t, ev.Username, got.Username)
	require.True(t, ev.Amount.Equal(got.Amount), "decimal amount changed in transit")
	require.Equal(t,
		ev.CreatedDateTime.Format(time.RFC3339Nano),
		got.CreatedDateTime.Format(time.RFC3339Nano),
		"timestamp offset not preserved")
	require.Equal(t, ev.Duration, got.Duration)
}

func TestEventNullableDuration(t *testing.T) {
	body, err := json.Marshal(Event{WagerID: uuid.New()})
	require.NoError(t, err)
	require.Contains(t, string(body), `"duration":null`)

	var got Event
	require.NoError(t, json.Unmarshal(body, &got))
	require.Nil(t, got.Duration)
}
