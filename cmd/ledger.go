package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"cardvault/core/progress"
	"cardvault/feature/catalog"
	"cardvault/feature/ledger"
	"cardvault/feature/reconcile"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// ledgerCmd is the parent command for ledger operations.
var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Manage the ledger of owned cards",
}

// ledgerImportCmd merges a normalized import file into the ledger.
var ledgerImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import normalized ledger records from a JSON file",
	Long: `Merges a JSON array of normalized records into the ledger. A record
that matches an existing (collection, name, set, number, foil) row adds its
quantity to that row. A reconciliation pass runs after the merge.`,
	Args: cobra.ExactArgs(1),
	RunE: runLedgerImport,
}

// ledgerCollectionsCmd lists the named collections.
var ledgerCollectionsCmd = &cobra.Command{
	Use:   "collections",
	Short: "List collections with entry and card counts",
	RunE:  runLedgerCollections,
}

// ledgerDeleteCmd removes a whole collection.
var ledgerDeleteCmd = &cobra.Command{
	Use:   "delete <collection>",
	Short: "Delete a collection and reconcile",
	Args:  cobra.ExactArgs(1),
	RunE:  runLedgerDelete,
}

func init() {
	ledgerCmd.AddCommand(ledgerImportCmd)
	ledgerCmd.AddCommand(ledgerCollectionsCmd)
	ledgerCmd.AddCommand(ledgerDeleteCmd)
	RootCmd.AddCommand(ledgerCmd)
}

// ledgerService builds a ledger service whose mutations reconcile against
// the catalog, same as the server wiring.
func ledgerService() (*ledger.Service, *zap.Logger, error) {
	cfg, l, db, err := bootstrap(false)
	if err != nil {
		return nil, nil, err
	}

	engine := reconcile.NewEngine(db, catalog.NewRepo(db), ledger.NewRepo(db),
		l, progress.Discard, time.Duration(cfg.Catalog.ReadTimeoutSeconds)*time.Second)
	return ledger.NewService(db, l, engine), l, nil
}

func runLedgerImport(cmd *cobra.Command, args []string) error {
	service, l, err := ledgerService()
	if err != nil {
		return err
	}
	defer l.Sync()

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read import file: %w", err)
	}

	var records []ledger.ImportRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return fmt.Errorf("failed to parse import file: %w", err)
	}

	merged, err := service.Import(context.Background(), records)
	if err != nil {
		return err
	}
	l.Info("Ledger import finished", zap.Int("records", merged))
	return nil
}

func runLedgerCollections(cmd *cobra.Command, args []string) error {
	service, l, err := ledgerService()
	if err != nil {
		return err
	}
	defer l.Sync()

	collections, err := service.Collections(context.Background())
	if err != nil {
		return err
	}
	for _, col := range collections {
		l.Info("Collection",
			zap.String("name", col.Collection),
			zap.Int64("entries", col.Entries),
			zap.Int64("cards", col.Cards))
	}
	return nil
}

func runLedgerDelete(cmd *cobra.Command, args []string) error {
	service, l, err := ledgerService()
	if err != nil {
		return err
	}
	defer l.Sync()

	removed, err := service.DeleteCollection(context.Background(), args[0])
	if err != nil {
		return err
	}
	l.Info("Collection deleted",
		zap.String("collection", args[0]),
		zap.Int64("entries", removed))
	return nil
}
