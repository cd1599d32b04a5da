package catalog

import (
	"context"
	"strings"
	"time"

	"cardvault/core/errs"
	"cardvault/feature/catalog/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repo provides the indexed catalog lookups. Every finder is a point lookup
// against one of the schema's indexes; none of them scans.
type Repo struct {
	db *gorm.DB
}

// NewRepo creates a catalog repository.
func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

func tableFor(promo bool) string {
	if promo {
		return models.PromoCard{}.TableName()
	}
	return models.Card{}.TableName()
}

// upsertColumns lists every column ingestion owns. collected_qty is absent:
// it belongs to the reconciliation engine and survives re-ingestion.
var upsertColumns = []string{
	"oracle_id", "name", "set_code", "set_name", "collector_number",
	"lang", "layout", "card_faces", "type_line", "rarity", "released_at",
	"image_status", "data",
}

// UpsertBatch inserts or replaces one batch of records keyed by id, inside
// the caller's transaction.
func (r *Repo) UpsertBatch(tx *gorm.DB, cards []models.Card, promo bool) error {
	if len(cards) == 0 {
		return nil
	}
	err := tx.Table(tableFor(promo)).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns(upsertColumns),
		}).
		Create(&cards).Error
	if err != nil {
		return &errs.StoreError{Op: "upsert batch", Err: err}
	}
	return nil
}

func (r *Repo) find(ctx context.Context, promo bool, conds string, args ...any) ([]models.Card, error) {
	var cards []models.Card
	err := r.db.WithContext(ctx).
		Table(tableFor(promo)).
		Where(conds, args...).
		Order("id").
		Find(&cards).Error
	if err != nil {
		return nil, &errs.StoreError{Op: "catalog lookup", Err: err}
	}
	for i := range cards {
		cards[i].Promo = promo
	}
	return cards, nil
}

// FindExact matches name, set and number case-sensitively.
func (r *Repo) FindExact(ctx context.Context, promo bool, name, set, number string) ([]models.Card, error) {
	return r.find(ctx, promo,
		"name = ? AND set_code = ? AND collector_number = ?", name, set, number)
}

// FindFold matches name, set and number case-insensitively.
func (r *Repo) FindFold(ctx context.Context, promo bool, name, set, number string) ([]models.Card, error) {
	return r.find(ctx, promo,
		"lower(name) = ? AND lower(set_code) = ? AND collector_number = ?",
		strings.ToLower(name), strings.ToLower(set), number)
}

// FindNameSetFold matches name and set case-insensitively, ignoring the
// collector number.
func (r *Repo) FindNameSetFold(ctx context.Context, promo bool, name, set string) ([]models.Card, error) {
	return r.find(ctx, promo,
		"lower(name) = ? AND lower(set_code) = ?",
		strings.ToLower(name), strings.ToLower(set))
}

// FindNameFold matches the name case-insensitively across every printing.
func (r *Repo) FindNameFold(ctx context.Context, promo bool, name string) ([]models.Card, error) {
	return r.find(ctx, promo, "lower(name) = ?", strings.ToLower(name))
}

// candidateChunk bounds the IN list of the bulk prefetch; SQLite caps bound
// parameters per statement.
const candidateChunk = 500

// CandidatesByNames fetches, in bulk, every row of both catalogs whose name
// matches any of the given names case-insensitively. One chunked query per
// catalog instead of one round-trip per aggregate.
func (r *Repo) CandidatesByNames(ctx context.Context, names []string) ([]models.Card, error) {
	lowered := make([]string, 0, len(names))
	for _, n := range names {
		lowered = append(lowered, strings.ToLower(n))
	}

	var out []models.Card
	for _, promo := range []bool{false, true} {
		for start := 0; start < len(lowered); start += candidateChunk {
			end := start + candidateChunk
			if end > len(lowered) {
				end = len(lowered)
			}
			var chunk []models.Card
			err := r.db.WithContext(ctx).
				Table(tableFor(promo)).
				Where("lower(name) IN ?", lowered[start:end]).
				Order("id").
				Find(&chunk).Error
			if err != nil {
				return nil, &errs.StoreError{Op: "candidate prefetch", Err: err}
			}
			for i := range chunk {
				chunk[i].Promo = promo
			}
			out = append(out, chunk...)
		}
	}
	return out, nil
}

// CollectedRow is one catalog id currently annotated as collected.
type CollectedRow struct {
	ID    string
	Promo bool
	Qty   int
}

// CollectedPositive returns every catalog id with collected_qty > 0, from
// both catalogs.
func (r *Repo) CollectedPositive(ctx context.Context) ([]CollectedRow, error) {
	var out []CollectedRow
	for _, promo := range []bool{false, true} {
		var rows []struct {
			ID           string
			CollectedQty int
		}
		err := r.db.WithContext(ctx).
			Table(tableFor(promo)).
			Select("id", "collected_qty").
			Where("collected_qty > 0").
			Find(&rows).Error
		if err != nil {
			return nil, &errs.StoreError{Op: "collected scan", Err: err}
		}
		for _, row := range rows {
			out = append(out, CollectedRow{ID: row.ID, Promo: promo, Qty: row.CollectedQty})
		}
	}
	return out, nil
}

// SetCollected updates one card's collected_qty inside the caller's
// transaction.
func (r *Repo) SetCollected(tx *gorm.DB, id string, promo bool, qty int) error {
	err := tx.Table(tableFor(promo)).
		Where("id = ?", id).
		Update("collected_qty", qty).Error
	if err != nil {
		return &errs.StoreError{Op: "set collected", Err: err}
	}
	return nil
}

// SaveMeta replaces the catalog provenance row after a successful ingest.
func (r *Repo) SaveMeta(ctx context.Context, source string, count int64) error {
	meta := models.CatalogMeta{
		ID:          1,
		Source:      source,
		RecordCount: count,
		BuiltAt:     time.Now().UTC().Format(time.RFC3339),
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&meta).Error
	if err != nil {
		return &errs.StoreError{Op: "save meta", Err: err}
	}
	return nil
}

// Meta returns the provenance of the last successful ingest, if any.
func (r *Repo) Meta(ctx context.Context) (*models.CatalogMeta, error) {
	var meta models.CatalogMeta
	err := r.db.WithContext(ctx).First(&meta, 1).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errs.ErrNotFound
		}
		return nil, &errs.StoreError{Op: "read meta", Err: err}
	}
	return &meta, nil
}
