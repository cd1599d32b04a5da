package ledger

import (
	"context"
	"time"

	"cardvault/core/errs"
	"cardvault/feature/ledger/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ImportRecord is the normalized shape produced by external file-format
// parsers and UI actions; the core consumes only this.
type ImportRecord struct {
	Collection      string `json:"collectionName"`
	Name            string `json:"cardName"`
	SetCode         string `json:"setCode"`
	CollectorNumber string `json:"collectorNumber"`
	Foil            string `json:"foil"`
	Quantity        int    `json:"quantity"`
	Condition       string `json:"condition"`
	Lang            string `json:"language"`
}

// Validate rejects records that would corrupt the ledger key space.
func (r ImportRecord) Validate() error {
	if r.Collection == "" || r.Name == "" {
		return errs.ErrInvalidInput
	}
	if !models.ValidFoil(r.Foil) {
		return errs.ErrInvalidInput
	}
	if r.Quantity < 0 {
		return errs.ErrInvalidInput
	}
	return nil
}

// Aggregate is one distinct owned print: ledger rows grouped by
// (name, set, number) across every collection and foil state. Transient,
// never persisted.
type Aggregate struct {
	Name            string
	SetCode         string
	CollectorNumber string
	Total           int
	FoilQty         int
	NormalQty       int
}

// Repo provides ledger persistence.
type Repo struct {
	db *gorm.DB
}

// NewRepo creates a ledger repository.
func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

// MergeImport upserts a batch of normalized records inside the caller's
// transaction. An existing (collection, name, set, number, foil) row gains
// the imported quantity; new keys insert fresh rows.
func (r *Repo) MergeImport(tx *gorm.DB, records []ImportRecord) error {
	if len(records) == 0 {
		return nil
	}

	now := time.Now()
	entries := make([]models.LedgerEntry, 0, len(records))
	for _, rec := range records {
		entries = append(entries, models.LedgerEntry{
			ID:              uuid.NewString(),
			Collection:      rec.Collection,
			Name:            rec.Name,
			SetCode:         rec.SetCode,
			CollectorNumber: rec.CollectorNumber,
			Foil:            rec.Foil,
			Quantity:        rec.Quantity,
			Condition:       rec.Condition,
			Lang:            rec.Lang,
			ImportedAt:      now,
		})
	}

	err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "collection"}, {Name: "name"}, {Name: "set_code"},
			{Name: "collector_number"}, {Name: "foil"},
		},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"quantity":    gorm.Expr("quantity + excluded.quantity"),
			"imported_at": now,
		}),
	}).Create(&entries).Error
	if err != nil {
		return &errs.StoreError{Op: "ledger merge import", Err: err}
	}
	return nil
}

// Get returns one entry by id.
func (r *Repo) Get(ctx context.Context, id string) (*models.LedgerEntry, error) {
	var entry models.LedgerEntry
	err := r.db.WithContext(ctx).First(&entry, "id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errs.ErrNotFound
		}
		return nil, &errs.StoreError{Op: "ledger get", Err: err}
	}
	return &entry, nil
}

// SetQuantity updates one entry's quantity.
func (r *Repo) SetQuantity(ctx context.Context, id string, quantity int) error {
	if quantity < 0 {
		return errs.ErrInvalidInput
	}
	res := r.db.WithContext(ctx).
		Model(&models.LedgerEntry{}).
		Where("id = ?", id).
		Update("quantity", quantity)
	if res.Error != nil {
		return &errs.StoreError{Op: "ledger set quantity", Err: res.Error}
	}
	if res.RowsAffected == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// Delete removes one entry.
func (r *Repo) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.LedgerEntry{}, "id = ?", id)
	if res.Error != nil {
		return &errs.StoreError{Op: "ledger delete", Err: res.Error}
	}
	if res.RowsAffected == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// DeleteCollection removes every entry of a named collection and returns
// how many rows went away.
func (r *Repo) DeleteCollection(ctx context.Context, collection string) (int64, error) {
	res := r.db.WithContext(ctx).Delete(&models.LedgerEntry{}, "collection = ?", collection)
	if res.Error != nil {
		return 0, &errs.StoreError{Op: "ledger delete collection", Err: res.Error}
	}
	return res.RowsAffected, nil
}

// CollectionSummary is one named collection and its size.
type CollectionSummary struct {
	Collection string `json:"collection"`
	Entries    int64  `json:"entries"`
	Cards      int64  `json:"cards"`
}

// Collections lists every collection with entry and card counts.
func (r *Repo) Collections(ctx context.Context) ([]CollectionSummary, error) {
	var out []CollectionSummary
	err := r.db.WithContext(ctx).
		Model(&models.LedgerEntry{}).
		Select("collection, COUNT(*) AS entries, COALESCE(SUM(quantity), 0) AS cards").
		Group("collection").
		Order("collection").
		Find(&out).Error
	if err != nil {
		return nil, &errs.StoreError{Op: "ledger collections", Err: err}
	}
	return out, nil
}

// List returns every entry in a collection.
func (r *Repo) List(ctx context.Context, collection string) ([]models.LedgerEntry, error) {
	var entries []models.LedgerEntry
	err := r.db.WithContext(ctx).
		Where("collection = ?", collection).
		Order("name, set_code, collector_number, foil").
		Find(&entries).Error
	if err != nil {
		return nil, &errs.StoreError{Op: "ledger list", Err: err}
	}
	return entries, nil
}

// AggregateAll groups the whole ledger by print identity, summing total,
// foil and normal quantities across every collection. One GROUP BY; no
// per-entry round-trips.
func (r *Repo) AggregateAll(ctx context.Context) ([]Aggregate, error) {
	var out []Aggregate
	err := r.db.WithContext(ctx).
		Model(&models.LedgerEntry{}).
		Select(
			"name, set_code, collector_number, "+
				"SUM(quantity) AS total, "+
				"SUM(CASE WHEN foil = ? THEN quantity ELSE 0 END) AS foil_qty, "+
				"SUM(CASE WHEN foil = ? THEN quantity ELSE 0 END) AS normal_qty",
			models.FoilFoil, models.FoilNormal,
		).
		Group("name, set_code, collector_number").
		Find(&out).Error
	if err != nil {
		return nil, &errs.StoreError{Op: "ledger aggregate", Err: err}
	}
	return out, nil
}
