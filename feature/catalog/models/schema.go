package models

import (
	"cardvault/core/database"

	"gorm.io/gorm"
)

// Migrations returns the catalog schema migrations. Every resolver tier and
// the reconcile diff query must hit an index, never a scan; the expression
// indexes over lower(name) and lower(set_code) exist for the
// case-insensitive tiers.
func Migrations() []database.Migration {
	return []database.Migration{
		{
			Version: 1,
			Name:    "create catalog tables",
			Run: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&Card{}, &PromoCard{}, &CatalogMeta{})
			},
		},
		{
			Version: 2,
			Name:    "create catalog lookup indexes",
			Run: func(tx *gorm.DB) error {
				stmts := []string{
					`CREATE INDEX IF NOT EXISTS idx_cards_name ON cards(name)`,
					`CREATE INDEX IF NOT EXISTS idx_cards_name_lower ON cards(lower(name))`,
					`CREATE INDEX IF NOT EXISTS idx_cards_set_number ON cards(set_code, collector_number)`,
					`CREATE INDEX IF NOT EXISTS idx_cards_name_set_number_lower ON cards(lower(name), lower(set_code), collector_number)`,
					`CREATE INDEX IF NOT EXISTS idx_cards_collected ON cards(collected_qty)`,
					`CREATE INDEX IF NOT EXISTS idx_promo_cards_name ON promo_cards(name)`,
					`CREATE INDEX IF NOT EXISTS idx_promo_cards_name_lower ON promo_cards(lower(name))`,
					`CREATE INDEX IF NOT EXISTS idx_promo_cards_set_number ON promo_cards(set_code, collector_number)`,
					`CREATE INDEX IF NOT EXISTS idx_promo_cards_name_set_number_lower ON promo_cards(lower(name), lower(set_code), collector_number)`,
				}
				for _, stmt := range stmts {
					if err := tx.Exec(stmt).Error; err != nil {
						return err
					}
				}
				return nil
			},
		},
	}
}
