package repo

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/miradorstack/trigger-rca/internal/models"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := OpenSQLiteStore(filepath.Join(t.TempDir(), "logbook.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStoreInclusiveRange(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	start := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)

	require.NoError(t, store.SaveFoods(ctx, []models.FoodOccurrence{
		{ID: "f-start", Name: "milk", Quantity: "1 cup", Timestamp: start},
		{ID: "f-end", Name: "bread", Timestamp: end},
		{ID: "f-after", Name: "wine", Timestamp: end.Add(time.Nanosecond)},
	}))
	require.NoError(t, store.SaveSymptoms(ctx, []models.SymptomOccurrence{
		{ID: "s-1", Type: "Bloating", Intensity: 6, Timestamp: start.Add(2 * time.Hour), Notes: "after breakfast"},
		{ID: "s-before", Type: "Bloating", Intensity: 4, Timestamp: start.Add(-time.Second)},
	}))

	foods, err := store.FoodsInRange(ctx, start, end)
	require.NoError(t, err)
	require.Len(t, foods, 2)
	assert.ElementsMatch(t, []string{"f-start", "f-end"}, []string{foods[0].ID, foods[1].ID})
	for _, f := range foods {
		if f.ID == "f-start" {
			assert.Equal(t, "1 cup", f.Quantity)
			assert.True(t, f.Timestamp.Equal(start))
		}
	}

	symptoms, err := store.SymptomsInRange(ctx, start, end)
	require.NoError(t, err)
	require.Len(t, symptoms, 1)
	assert.Equal(t, "after breakfast", symptoms[0].Notes)
	assert.Equal(t, 6, symptoms[0].Intensity)
}

func TestSQLiteStoreRejectsInvalidRows(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	at := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)

	err := store.SaveSymptoms(ctx, []models.SymptomOccurrence{
		{ID: "ok", Type: "Cramps", Intensity: 3, Timestamp: at},
		{ID: "bad", Type: "Cramps", Intensity: 12, Timestamp: at},
	})
	assert.True(t, errors.Is(err, models.ErrInvalid))

	symptoms, err := store.SymptomsInRange(ctx, at.Add(-time.Hour), at.Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, symptoms, "failed batch must roll back")
}

func TestSQLiteStoreGeneratesIDs(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	at := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)

	require.NoError(t, store.SaveFoods(ctx, []models.FoodOccurrence{{Name: "apple", Timestamp: at}}))
	foods, err := store.FoodsInRange(ctx, at, at)
	require.NoError(t, err)
	require.Len(t, foods, 1)
	assert.NotEmpty(t, foods[0].ID)
}
