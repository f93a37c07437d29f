package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrice_UnmarshalJSON(t *testing.T) {
	t.Run("StringAmount", func(t *testing.T) {
		var p Price
		require.NoError(t, json.Unmarshal([]byte(`{"amount":"10.50","currency_code":"EUR"}`), &p))
		assert.Equal(t, "10.50", p.Amount)
		assert.Equal(t, "EUR", p.CurrencyCode)
	})

	t.Run("NumericAmount", func(t *testing.T) {
		var p Price
		require.NoError(t, json.Unmarshal([]byte(`{"amount":10,"currency_code":"EUR"}`), &p))
		assert.Equal(t, "10", p.Amount)
	})

	t.Run("FractionalNumericAmount", func(t *testing.T) {
		var p Price
		require.NoError(t, json.Unmarshal([]byte(`{"amount":10.5,"currency_code":"EUR"}`), &p))
		assert.Equal(t, "10.5", p.Amount)
	})

	t.Run("MissingAmount", func(t *testing.T) {
		var p Price
		require.NoError(t, json.Unmarshal([]byte(`{"currency_code":"EUR"}`), &p))
		assert.Empty(t, p.Amount)
	})

	t.Run("UnsupportedAmountType", func(t *testing.T) {
		var p Price
		assert.Error(t, json.Unmarshal([]byte(`{"amount":["x"],"currency_code":"EUR"}`), &p))
	})
}

func TestListing_JSONFieldNames(t *testing.T) {
	ext := "111"
	updated := int64(1700000000500)
	l := Listing{
		LocalID:           "L1",
		ExternalID:        &ext,
		Title:             "Jacket",
		Price:             Price{Amount: "10", CurrencyCode: "EUR"},
		CreatedAtRemote:   1700000000000,
		AddedAt:           1700000000100,
		UpdatedAt:         &updated,
		PublicationStatus: StatusPublished,
	}

	data, err := json.Marshal(l)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))

	for _, key := range []string{"localId", "externalId", "createdAtRemote", "addedAt", "updatedAt", "publicationStatus"} {
		assert.Contains(t, m, key)
	}
	assert.NotContains(t, m, "deletionDate")
}
