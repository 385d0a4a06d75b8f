package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const legacyBlob = `{
  "expenses": [
    {"id": 1710500000000, "date": "2024-03-15", "amount": 120.5, "item": "chicken", "category": "Protein"},
    {"id": 1710500000001, "date": "2024-03-16", "amount": 3, "item": "gum", "category": "Candy"}
  ],
  "categories": [{"id": 1, "name": "Protein"}, {"id": 2, "name": "Protein"}],
  "itemCategoryMap": {"Chicken": "Protein", "gum": "Candy"}
}`

func TestLegacyConvert(t *testing.T) {
	var legacy LegacySnapshot
	require.NoError(t, json.Unmarshal([]byte(legacyBlob), &legacy))

	snap, err := legacy.Convert()
	require.NoError(t, err)

	_, ok := snap.Categories.Find(FallbackCategoryID)
	assert.True(t, ok, "fallback added")

	require.Len(t, snap.Expenses, 2)
	assert.Equal(t, int64(1), snap.Expenses[0].CategoryID, "first exact name match wins")
	assert.Equal(t, int64(12050), snap.Expenses[0].Amount.Cents)
	assert.Equal(t, FallbackCategoryID, snap.Expenses[1].CategoryID)

	assert.Equal(t, ItemMap{"chicken": 1, "gum": FallbackCategoryID}, snap.Items)
}

func TestLegacyConvertAdoptsLegacyOther(t *testing.T) {
	legacy := LegacySnapshot{
		Expenses: []LegacyExpense{
			{ID: 1, Date: "2024-03-15", Item: "foil", Category: "Other"},
			{ID: 2, Date: "2024-03-16", Item: "gum", Category: "Candy"},
		},
		Categories: []Category{{ID: 1, Name: "Protein"}, {ID: 5, Name: "Other"}},
		Items:      map[string]string{"foil": "Other"},
	}

	snap, err := legacy.Convert()
	require.NoError(t, err)

	assert.Equal(t, Categories{{ID: 1, Name: "Protein"}, {ID: FallbackCategoryID, Name: "Other"}}, snap.Categories)
	_, ok := snap.Categories.Find(5)
	assert.False(t, ok)
	assert.Equal(t, FallbackCategoryID, snap.Expenses[0].CategoryID)
	assert.Equal(t, FallbackCategoryID, snap.Expenses[1].CategoryID)
	assert.Equal(t, ItemMap{"foil": FallbackCategoryID}, snap.Items)
	assert.Equal(t, int64(5), legacy.Categories[1].ID, "input left untouched")
}

func TestLegacyConvertRejectsBadDate(t *testing.T) {
	legacy := LegacySnapshot{Expenses: []LegacyExpense{{ID: 1, Date: "yesterday", Item: "x"}}}
	_, err := legacy.Convert()
	assert.ErrorIs(t, err, ErrInvalidDate)
}
