package database

import (
	"fmt"
	"net/url"
	"strconv"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect opens the embedded SQLite store.
//
// The store is configured for one-writer/many-reader concurrency: WAL
// journaling keeps readers unblocked while a writer holds the lock, and the
// busy timeout bounds the wait when writers contend with each other.
func Connect(cfg Config) (*gorm.DB, error) {
	path := cfg.Path
	if path == "" {
		path = "cards.db"
	}

	busy := cfg.BusyTimeoutMS
	if busy <= 0 {
		busy = 5000
	}

	params := url.Values{}
	params.Set("_journal_mode", "WAL")
	params.Set("_busy_timeout", strconv.Itoa(busy))
	params.Set("_foreign_keys", "on")
	if cfg.IngestTuning {
		// Bulk loads don't need an fsync per commit; a crash mid-build is
		// recovered by re-running ingestion, which is idempotent.
		params.Set("_synchronous", "OFF")
	} else {
		params.Set("_synchronous", "NORMAL")
	}

	inMemory := path == ":memory:"
	dsn := fmt.Sprintf("file:%s?%s", path, params.Encode())
	if inMemory {
		dsn = ":memory:"
	}

	// Suppress GORM logging; the application logger reports failures.
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	db, err := gorm.Open(sqlite.Open(dsn), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	if inMemory {
		// Each connection to ":memory:" is its own database; pin the pool
		// to one so every caller sees the same data.
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
	} else {
		// A small pool is enough: WAL lets readers proceed concurrently and
		// writers serialize on the database lock, waiting up to the busy
		// timeout.
		sqlDB.SetMaxOpenConns(4)
		sqlDB.SetMaxIdleConns(4)
	}

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}
