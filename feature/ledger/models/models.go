package models

import "time"

// Foil states a ledger entry can carry.
const (
	FoilNormal = "normal"
	FoilFoil   = "foil"
)

// ValidFoil reports whether the foil state is one of the known values.
func ValidFoil(foil string) bool {
	return foil == FoilNormal || foil == FoilFoil
}

// LedgerEntry is one owned-card row in a named collection. The composite
// key (collection, name, set, number, foil) is unique; re-importing the
// same key merges quantity instead of duplicating the row.
type LedgerEntry struct {
	ID              string    `gorm:"column:id;primaryKey" json:"id"`
	Collection      string    `gorm:"column:collection;uniqueIndex:idx_ledger_key" json:"collection"`
	Name            string    `gorm:"column:name;uniqueIndex:idx_ledger_key" json:"name"`
	SetCode         string    `gorm:"column:set_code;uniqueIndex:idx_ledger_key" json:"set_code"`
	CollectorNumber string    `gorm:"column:collector_number;uniqueIndex:idx_ledger_key" json:"collector_number"`
	Foil            string    `gorm:"column:foil;uniqueIndex:idx_ledger_key" json:"foil"`
	Quantity        int       `gorm:"column:quantity" json:"quantity"`
	Condition       string    `gorm:"column:condition" json:"condition"`
	Lang            string    `gorm:"column:lang" json:"lang"`
	ImportedAt      time.Time `gorm:"column:imported_at" json:"imported_at"`
}

// TableName overrides the table name used by LedgerEntry.
func (LedgerEntry) TableName() string {
	return "ledger_entries"
}
