package cmd

import (
	"context"
	"fmt"
	"os"

	"cardvault/core/progress"
	"cardvault/core/storage"
	"cardvault/feature/catalog"
	"cardvault/feature/catalog/ingest"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	ingestFromStorage bool
	ingestObject      string
	ingestPromo       bool
	ingestEnglishOnly bool
)

// ingestCmd streams a bulk catalog file into the embedded store.
var ingestCmd = &cobra.Command{
	Use:   "ingest [file]",
	Short: "Ingest a bulk catalog file into the store",
	Long: `Streams a bulk catalog JSON array into the embedded store in
bounded-memory batches. Re-running with the same file is safe: records are
upserted by id.

The source is a local file path, or an object in the configured bucket with
--from-storage. --promo targets the promotional/token catalog.

Examples:
  # Local bulk file
  cardvault ingest all-cards.json

  # Promotional catalog from object storage (uses catalog.promo_object)
  cardvault ingest --from-storage --promo

  # Specific object
  cardvault ingest --from-storage --object bulk/all-cards-20260828.json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().BoolVar(&ingestFromStorage, "from-storage", false, "Read the bulk file from the configured bucket instead of a local path")
	ingestCmd.Flags().StringVar(&ingestObject, "object", "", "Object name in the bucket (defaults to the configured bulk/promo object)")
	ingestCmd.Flags().BoolVar(&ingestPromo, "promo", false, "Target the promotional/token catalog")
	ingestCmd.Flags().BoolVar(&ingestEnglishOnly, "english-only", false, "Skip non-English records")

	RootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	// Ingest tuning relaxes fsync for the bulk load; a crash mid-build is
	// recovered by re-running, which converges on the same rows.
	cfg, l, db, err := bootstrap(true)
	if err != nil {
		return err
	}
	defer l.Sync()

	opts := ingest.Options{
		BatchSize:   cfg.Catalog.BatchSize,
		EnglishOnly: cfg.Catalog.EnglishOnly || ingestEnglishOnly,
	}

	var service *catalog.Service
	var summary *ingest.Summary

	switch {
	case ingestFromStorage:
		client, err := storage.NewClient(cfg.Storage)
		if err != nil {
			return fmt.Errorf("failed to connect to storage: %w", err)
		}
		service = catalog.NewService(db, client, cfg.Storage.Bucket, l, progress.NewBroadcaster(), opts)

		object := ingestObject
		if object == "" {
			object = cfg.Catalog.BulkObject
			if ingestPromo {
				object = cfg.Catalog.PromoObject
			}
		}
		summary, err = service.ImportFromStorage(ctx, object, ingestPromo)
		if err != nil {
			return err
		}

	case len(args) == 1:
		file, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open bulk file: %w", err)
		}
		defer file.Close()

		service = catalog.NewService(db, nil, "", l, progress.NewBroadcaster(), opts)
		summary, err = service.ImportCatalog(ctx, file, args[0], ingestPromo)
		if err != nil {
			return err
		}

	default:
		return fmt.Errorf("a bulk file path or --from-storage is required")
	}

	l.Info("Ingest finished",
		zap.Int64("records", summary.Records),
		zap.Int64("skipped", summary.Skipped),
		zap.Int("batches", summary.Batches),
		zap.Duration("duration", summary.Duration))
	return nil
}
