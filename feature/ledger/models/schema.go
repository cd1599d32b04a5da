package models

import (
	"cardvault/core/database"

	"gorm.io/gorm"
)

// Migrations returns the ledger schema migrations. Versions continue after
// the catalog's.
func Migrations() []database.Migration {
	return []database.Migration{
		{
			Version: 3,
			Name:    "create ledger table",
			Run: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&LedgerEntry{})
			},
		},
	}
}
