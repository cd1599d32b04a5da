package cmd

import (
	"context"
	"time"

	"cardvault/core/progress"
	"cardvault/feature/catalog"
	"cardvault/feature/ledger"
	"cardvault/feature/reconcile"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// reconcileCmd runs one reconciliation pass and reports the outcome.
var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Reconcile the ledger against the catalog",
	Long: `Aggregates the ledger of owned cards, resolves every distinct print
against the catalog, and updates the catalog's collected annotations to
match. Running it again with an unchanged ledger writes nothing.`,
	RunE: runReconcile,
}

func init() {
	RootCmd.AddCommand(reconcileCmd)
}

func runReconcile(cmd *cobra.Command, args []string) error {
	cfg, l, db, err := bootstrap(false)
	if err != nil {
		return err
	}
	defer l.Sync()

	engine := reconcile.NewEngine(db, catalog.NewRepo(db), ledger.NewRepo(db),
		l, progress.Discard, time.Duration(cfg.Catalog.ReadTimeoutSeconds)*time.Second)

	report, err := engine.Reconcile(context.Background())
	if err != nil {
		return err
	}

	for _, miss := range report.Unmatched {
		l.Warn("Unmatched ledger entry",
			zap.String("name", miss.Name),
			zap.String("set", miss.SetCode),
			zap.String("number", miss.CollectorNumber),
			zap.Int("quantity", miss.Quantity))
	}
	l.Info("Reconciliation report",
		zap.Int("aggregates", report.Aggregates),
		zap.Int("matched", report.Matched),
		zap.Int("unmatched", len(report.Unmatched)),
		zap.Int("updated", report.Updated),
		zap.Int("cleared", report.Cleared),
		zap.Duration("duration", report.Duration))
	return nil
}
