package reconcile

import (
	"context"
	"testing"
	"time"

	"cardvault/core/database"
	"cardvault/core/errs"
	"cardvault/core/progress"
	"cardvault/feature/catalog"
	catalogmodels "cardvault/feature/catalog/models"
	"cardvault/feature/ledger"
	ledgermodels "cardvault/feature/ledger/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Connect(database.Config{Path: ":memory:"})
	require.NoError(t, err)

	migrations := append(catalogmodels.Migrations(), ledgermodels.Migrations()...)
	require.NoError(t, database.Migrate(db, migrations))
	return db
}

func newTestEngine(t *testing.T, db *gorm.DB) *Engine {
	t.Helper()
	return NewEngine(db, catalog.NewRepo(db), ledger.NewRepo(db),
		zap.NewNop(), progress.Discard, 30*time.Second)
}

func seedCatalog(t *testing.T, db *gorm.DB, promo bool, cards ...catalogmodels.Card) {
	t.Helper()
	repo := catalog.NewRepo(db)
	require.NoError(t, repo.UpsertBatch(db, cards, promo))
}

func seedLedger(t *testing.T, db *gorm.DB, records ...ledger.ImportRecord) {
	t.Helper()
	repo := ledger.NewRepo(db)
	require.NoError(t, repo.MergeImport(db, records))
}

func collectedQty(t *testing.T, db *gorm.DB, table, id string) int {
	t.Helper()
	var qty int
	err := db.Table(table).Select("collected_qty").Where("id = ?", id).Scan(&qty).Error
	require.NoError(t, err)
	return qty
}

func TestReconcile_AggregatesAcrossCollections(t *testing.T) {
	db := newTestDB(t)
	seedCatalog(t, db, false, catalogmodels.Card{
		ID: "bolt-lea", Name: "Lightning Bolt", SetCode: "lea",
		CollectorNumber: "161", Lang: "en",
	})
	seedLedger(t, db,
		ledger.ImportRecord{Collection: "A", Name: "Lightning Bolt", SetCode: "lea", CollectorNumber: "161", Foil: "normal", Quantity: 2},
		ledger.ImportRecord{Collection: "B", Name: "Lightning Bolt", SetCode: "lea", CollectorNumber: "161", Foil: "foil", Quantity: 1},
	)

	engine := newTestEngine(t, db)
	report, err := engine.Reconcile(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.Aggregates)
	assert.Equal(t, 1, report.Matched)
	assert.Equal(t, 1, report.Updated)
	assert.Equal(t, 3, collectedQty(t, db, "cards", "bolt-lea"))
}

func TestReconcile_SecondRunWritesNothing(t *testing.T) {
	db := newTestDB(t)
	seedCatalog(t, db, false, catalogmodels.Card{
		ID: "bolt-lea", Name: "Lightning Bolt", SetCode: "lea",
		CollectorNumber: "161", Lang: "en",
	})
	seedLedger(t, db, ledger.ImportRecord{
		Collection: "A", Name: "Lightning Bolt", SetCode: "lea",
		CollectorNumber: "161", Foil: "normal", Quantity: 3,
	})

	engine := newTestEngine(t, db)
	first, err := engine.Reconcile(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, first.Updated)

	second, err := engine.Reconcile(context.Background())
	require.NoError(t, err)
	assert.Zero(t, second.Updated)
	assert.Zero(t, second.Cleared)
	assert.Equal(t, 3, collectedQty(t, db, "cards", "bolt-lea"))
}

func TestReconcile_ResetsRemovedCards(t *testing.T) {
	db := newTestDB(t)
	seedCatalog(t, db, false, catalogmodels.Card{
		ID: "bolt-lea", Name: "Lightning Bolt", SetCode: "lea",
		CollectorNumber: "161", Lang: "en",
	})
	seedLedger(t, db, ledger.ImportRecord{
		Collection: "A", Name: "Lightning Bolt", SetCode: "lea",
		CollectorNumber: "161", Foil: "normal", Quantity: 3,
	})

	engine := newTestEngine(t, db)
	_, err := engine.Reconcile(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, collectedQty(t, db, "cards", "bolt-lea"))

	_, err = ledger.NewRepo(db).DeleteCollection(context.Background(), "A")
	require.NoError(t, err)

	report, err := engine.Reconcile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Cleared)
	assert.Zero(t, collectedQty(t, db, "cards", "bolt-lea"))
}

func TestReconcile_UnmatchedIsNotFatal(t *testing.T) {
	db := newTestDB(t)
	seedCatalog(t, db, false, catalogmodels.Card{
		ID: "bolt-lea", Name: "Lightning Bolt", SetCode: "lea",
		CollectorNumber: "161", Lang: "en",
	})
	seedLedger(t, db,
		ledger.ImportRecord{Collection: "A", Name: "Lightning Bolt", SetCode: "lea", CollectorNumber: "161", Foil: "normal", Quantity: 1},
		ledger.ImportRecord{Collection: "A", Name: "No Such Card", SetCode: "xxx", CollectorNumber: "1", Foil: "normal", Quantity: 4},
	)

	engine := newTestEngine(t, db)
	report, err := engine.Reconcile(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, report.Aggregates)
	assert.Equal(t, 1, report.Matched)
	require.Len(t, report.Unmatched, 1)
	assert.Equal(t, "No Such Card", report.Unmatched[0].Name)
	assert.Equal(t, 4, report.Unmatched[0].Quantity)
	assert.Equal(t, 1, collectedQty(t, db, "cards", "bolt-lea"))
}

func TestReconcile_PromoCatalogFallback(t *testing.T) {
	db := newTestDB(t)
	seedCatalog(t, db, true, catalogmodels.Card{
		ID: "guide-promo", Name: "Goblin Guide", SetCode: "plg21",
		CollectorNumber: "1", Lang: "en",
	})
	seedLedger(t, db, ledger.ImportRecord{
		Collection: "A", Name: "Goblin Guide", SetCode: "plg21",
		CollectorNumber: "1", Foil: "foil", Quantity: 2,
	})

	engine := newTestEngine(t, db)
	report, err := engine.Reconcile(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.Matched)
	assert.Equal(t, 2, collectedQty(t, db, "promo_cards", "guide-promo"))
	assert.Zero(t, collectedQty(t, db, "cards", "guide-promo"))
}

func TestReconcile_ConcurrentRunRejected(t *testing.T) {
	db := newTestDB(t)
	engine := newTestEngine(t, db)

	require.NoError(t, engine.acquire())
	defer engine.release()

	_, err := engine.Reconcile(context.Background())
	assert.ErrorIs(t, err, errs.ErrAlreadyRunning)

	// The ledger's post-mutation trigger treats the in-flight run as done.
	assert.NoError(t, engine.Trigger(context.Background()))
}

func TestReadPhase_FoldsDuplicateNames(t *testing.T) {
	db := newTestDB(t)
	seedCatalog(t, db, false, catalogmodels.Card{
		ID: "shock-m20", Name: "Shock", SetCode: "m20",
		CollectorNumber: "160", Lang: "en",
	})
	// Two spellings of the same name must collapse to one prefetch term,
	// not fetch (and index) the same rows twice.
	seedLedger(t, db,
		ledger.ImportRecord{Collection: "A", Name: "Shock", SetCode: "m20", CollectorNumber: "160", Foil: "normal", Quantity: 1},
		ledger.ImportRecord{Collection: "B", Name: "SHOCK", SetCode: "m20", CollectorNumber: "160", Foil: "normal", Quantity: 2},
	)

	engine := newTestEngine(t, db)
	aggregates, index, err := engine.readPhase(context.Background())
	require.NoError(t, err)
	assert.Len(t, aggregates, 2)

	cards, err := index.FindNameFold(context.Background(), false, "shock")
	require.NoError(t, err)
	assert.Len(t, cards, 1)
}

func TestReconcile_PlaceholderNamesReported(t *testing.T) {
	db := newTestDB(t)
	seedLedger(t, db, ledger.ImportRecord{
		Collection: "A", Name: "unknown", SetCode: "", CollectorNumber: "",
		Foil: "normal", Quantity: 1,
	})

	engine := newTestEngine(t, db)
	report, err := engine.Reconcile(context.Background())
	require.NoError(t, err)

	assert.Zero(t, report.Matched)
	require.Len(t, report.Unmatched, 1)
	assert.Equal(t, "unknown", report.Unmatched[0].Name)
}
