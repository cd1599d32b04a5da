package database

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Migration is one versioned, additive schema change. Run executes inside a
// transaction and must be safe to hold the write lock for its duration.
type Migration struct {
	// Version is a strictly increasing integer. Applied versions are
	// recorded in schema_migrations and never re-run.
	Version int
	// Name describes the change for the migration log.
	Name string
	// Run applies the change.
	Run func(tx *gorm.DB) error
}

// schemaMigration is the bookkeeping row for an applied migration.
type schemaMigration struct {
	Version   int    `gorm:"primaryKey"`
	Name      string `gorm:"size:128"`
	AppliedAt time.Time
}

func (schemaMigration) TableName() string {
	return "schema_migrations"
}

// Migrate applies every registered migration that has not run yet, in
// version order, each in its own transaction. Replaces scattered
// "does this column exist" probes: a version either ran or it didn't.
func Migrate(db *gorm.DB, migrations []Migration) error {
	if err := db.AutoMigrate(&schemaMigration{}); err != nil {
		return fmt.Errorf("failed to create schema_migrations: %w", err)
	}

	applied := make(map[int]bool)
	var rows []schemaMigration
	if err := db.Find(&rows).Error; err != nil {
		return fmt.Errorf("failed to read schema_migrations: %w", err)
	}
	for _, row := range rows {
		applied[row.Version] = true
	}

	for _, m := range migrations {
		if applied[m.Version] {
			continue
		}
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := m.Run(tx); err != nil {
				return err
			}
			return tx.Create(&schemaMigration{
				Version:   m.Version,
				Name:      m.Name,
				AppliedAt: time.Now(),
			}).Error
		})
		if err != nil {
			return fmt.Errorf("migration %d (%s) failed: %w", m.Version, m.Name, err)
		}
	}

	// Schema changed; cached capability probes are stale.
	invalidateProbes()

	return nil
}
