package ledger

import (
	"context"
	"testing"

	"cardvault/core/database"
	"cardvault/core/errs"
	"cardvault/feature/ledger/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestRepo(t *testing.T) (*Repo, *gorm.DB) {
	t.Helper()
	db, err := database.Connect(database.Config{Path: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db, models.Migrations()))
	return NewRepo(db), db
}

func record(collection, name, set, number, foil string, qty int) ImportRecord {
	return ImportRecord{
		Collection:      collection,
		Name:            name,
		SetCode:         set,
		CollectorNumber: number,
		Foil:            foil,
		Quantity:        qty,
	}
}

func TestImportRecord_Validate(t *testing.T) {
	assert.NoError(t, record("A", "Shock", "m20", "160", "normal", 1).Validate())
	assert.ErrorIs(t, record("", "Shock", "m20", "160", "normal", 1).Validate(), errs.ErrInvalidInput)
	assert.ErrorIs(t, record("A", "", "m20", "160", "normal", 1).Validate(), errs.ErrInvalidInput)
	assert.ErrorIs(t, record("A", "Shock", "m20", "160", "etched", 1).Validate(), errs.ErrInvalidInput)
	assert.ErrorIs(t, record("A", "Shock", "m20", "160", "normal", -1).Validate(), errs.ErrInvalidInput)
}

func TestRepo_MergeImportSumsQuantity(t *testing.T) {
	repo, db := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.MergeImport(db, []ImportRecord{
		record("A", "Shock", "m20", "160", "normal", 2),
	}))
	// Same key again merges; a different foil state is its own row.
	require.NoError(t, repo.MergeImport(db, []ImportRecord{
		record("A", "Shock", "m20", "160", "normal", 3),
		record("A", "Shock", "m20", "160", "foil", 1),
	}))

	entries, err := repo.List(ctx, "A")
	require.NoError(t, err)
	require.Len(t, entries, 2)

	byFoil := make(map[string]int, 2)
	for _, e := range entries {
		byFoil[e.Foil] = e.Quantity
	}
	assert.Equal(t, 5, byFoil["normal"])
	assert.Equal(t, 1, byFoil["foil"])
}

func TestRepo_AggregateAll(t *testing.T) {
	repo, db := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.MergeImport(db, []ImportRecord{
		record("A", "Shock", "m20", "160", "normal", 2),
		record("B", "Shock", "m20", "160", "foil", 1),
		record("B", "Opt", "dom", "60", "normal", 4),
	}))

	aggs, err := repo.AggregateAll(ctx)
	require.NoError(t, err)
	require.Len(t, aggs, 2)

	byName := make(map[string]Aggregate, 2)
	for _, a := range aggs {
		byName[a.Name] = a
	}
	shock := byName["Shock"]
	assert.Equal(t, 3, shock.Total)
	assert.Equal(t, 1, shock.FoilQty)
	assert.Equal(t, 2, shock.NormalQty)

	opt := byName["Opt"]
	assert.Equal(t, 4, opt.Total)
	assert.Zero(t, opt.FoilQty)
}

func TestRepo_SetQuantityAndDelete(t *testing.T) {
	repo, db := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.MergeImport(db, []ImportRecord{
		record("A", "Shock", "m20", "160", "normal", 2),
	}))
	entries, err := repo.List(ctx, "A")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	id := entries[0].ID

	require.NoError(t, repo.SetQuantity(ctx, id, 7))
	entry, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 7, entry.Quantity)

	assert.ErrorIs(t, repo.SetQuantity(ctx, id, -1), errs.ErrInvalidInput)
	assert.ErrorIs(t, repo.SetQuantity(ctx, "no-such-id", 1), errs.ErrNotFound)

	require.NoError(t, repo.Delete(ctx, id))
	assert.ErrorIs(t, repo.Delete(ctx, id), errs.ErrNotFound)
	_, err = repo.Get(ctx, id)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestRepo_Collections(t *testing.T) {
	repo, db := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.MergeImport(db, []ImportRecord{
		record("A", "Shock", "m20", "160", "normal", 2),
		record("A", "Opt", "dom", "60", "normal", 1),
		record("B", "Shock", "m20", "160", "normal", 4),
	}))

	collections, err := repo.Collections(ctx)
	require.NoError(t, err)
	require.Len(t, collections, 2)
	assert.Equal(t, CollectionSummary{Collection: "A", Entries: 2, Cards: 3}, collections[0])
	assert.Equal(t, CollectionSummary{Collection: "B", Entries: 1, Cards: 4}, collections[1])

	removed, err := repo.DeleteCollection(ctx, "A")
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	collections, err = repo.Collections(ctx)
	require.NoError(t, err)
	require.Len(t, collections, 1)
	assert.Equal(t, "B", collections[0].Collection)
}
