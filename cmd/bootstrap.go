package cmd

import (
	"fmt"

	"cardvault/core/config"
	"cardvault/core/database"
	"cardvault/core/logger"
	catalogmodels "cardvault/feature/catalog/models"
	ledgermodels "cardvault/feature/ledger/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// allMigrations is the full versioned schema registry, in order.
func allMigrations() []database.Migration {
	return append(catalogmodels.Migrations(), ledgermodels.Migrations()...)
}

// bootstrap loads configuration, builds the logger and opens the migrated
// store. Every subcommand starts here.
func bootstrap(ingestTuning bool) (*config.Config, *zap.Logger, *gorm.DB, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	dbCfg := cfg.Database
	dbCfg.IngestTuning = ingestTuning
	db, err := database.Connect(dbCfg)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to open store: %w", err)
	}

	if err := database.Migrate(db, allMigrations()); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to migrate store: %w", err)
	}

	// Probe the capabilities every command relies on before touching data.
	err = database.VerifySchema(db, map[string][]string{
		"cards":          {"collected_qty"},
		"promo_cards":    {"collected_qty"},
		"ledger_entries": {"quantity"},
	})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("store schema check failed: %w", err)
	}

	return cfg, l, db, nil
}
