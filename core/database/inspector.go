package database

import (
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

// ColumnInfo describes one column of a table.
type ColumnInfo struct {
	Field string
	Type  string
}

// GetTableColumns retrieves the column definitions for a given table.
func GetTableColumns(db *gorm.DB, tableName string) ([]ColumnInfo, error) {
	// SQLite exposes the schema through PRAGMA table_info.
	type sqliteColumn struct {
		Cid        int
		Name       string
		Type       string
		Notnull    int
		DefaultVal *string
		Pk         int
	}
	var cols []sqliteColumn
	if err := db.Raw(fmt.Sprintf("PRAGMA table_info('%s')", tableName)).Scan(&cols).Error; err != nil {
		return nil, fmt.Errorf("failed to get columns for table %s: %w", tableName, err)
	}

	columns := make([]ColumnInfo, 0, len(cols))
	for _, col := range cols {
		columns = append(columns, ColumnInfo{
			Field: strings.ToLower(col.Name),
			Type:  strings.ToLower(col.Type),
		})
	}
	return columns, nil
}

// probeStore caches capability probes (e.g. "does the ledger table exist").
// Entries live until invalidateProbes is called after a schema change; there
// is no wall-clock expiry.
type probeStore struct {
	mu     sync.RWMutex
	probes map[string]bool
	sf     singleflight.Group
}

var globalProbeStore = &probeStore{
	probes: make(map[string]bool),
}

// TableExists reports whether the table is present. Results are cached and
// deduplicated with singleflight; the cache is flushed whenever Migrate runs.
func TableExists(db *gorm.DB, tableName string) (bool, error) {
	globalProbeStore.mu.RLock()
	exists, ok := globalProbeStore.probes[tableName]
	globalProbeStore.mu.RUnlock()
	if ok {
		return exists, nil
	}

	result, err, _ := globalProbeStore.sf.Do(tableName, func() (interface{}, error) {
		has := db.Migrator().HasTable(tableName)
		globalProbeStore.mu.Lock()
		globalProbeStore.probes[tableName] = has
		globalProbeStore.mu.Unlock()
		return has, nil
	})
	if err != nil {
		return false, err
	}
	return result.(bool), nil
}

// VerifySchema confirms the store exposes the tables and columns the
// application depends on. Run at startup after Migrate: a store file from
// an older build (or a foreign one) fails fast here instead of erroring
// midway through an import or reconcile.
func VerifySchema(db *gorm.DB, required map[string][]string) error {
	for table, columns := range required {
		exists, err := TableExists(db, table)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("store is missing table %s", table)
		}
		if len(columns) == 0 {
			continue
		}

		cols, err := GetTableColumns(db, table)
		if err != nil {
			return err
		}
		have := make(map[string]bool, len(cols))
		for _, col := range cols {
			have[col.Field] = true
		}
		for _, col := range columns {
			if !have[strings.ToLower(col)] {
				return fmt.Errorf("store table %s is missing column %s", table, col)
			}
		}
	}
	return nil
}

// invalidateProbes flushes every cached probe. Fired by Migrate.
func invalidateProbes() {
	globalProbeStore.mu.Lock()
	globalProbeStore.probes = make(map[string]bool)
	globalProbeStore.mu.Unlock()
}
