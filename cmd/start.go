package cmd

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cardvault/core/loader"
	"cardvault/core/logger"
	"cardvault/core/middleware"
	"cardvault/core/progress"
	"cardvault/core/storage"
	"cardvault/feature/catalog"
	"cardvault/feature/catalog/ingest"
	"cardvault/feature/ledger"
	"cardvault/feature/reconcile"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the cardvault server",
	Long:  `Starts the HTTP server and initializes all enabled features.`,
	Run: func(cmd *cobra.Command, args []string) {
		// 1. Configuration, logger, migrated store
		cfg, logg, db, err := bootstrap(false)
		if err != nil {
			log.Fatalf("Failed to start: %v", err)
		}
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		// 2. Object storage (optional): only storage-sourced catalog imports
		// need it, so a misconfigured endpoint must not keep the server down.
		var store storage.Client
		if client, err := storage.NewClient(cfg.Storage); err != nil {
			logg.Warn("Optional storage client failed", zap.Error(err))
		} else {
			store = client
		}

		// 3. Shared progress channel and services
		bus := progress.NewBroadcaster()
		catalogService := catalog.NewService(db, store, cfg.Storage.Bucket, logg, bus, ingest.Options{
			BatchSize:   cfg.Catalog.BatchSize,
			EnglishOnly: cfg.Catalog.EnglishOnly,
		})
		engine := reconcile.NewEngine(db, catalogService.Repo(), ledger.NewRepo(db),
			logg, bus, time.Duration(cfg.Catalog.ReadTimeoutSeconds)*time.Second)
		ledgerService := ledger.NewService(db, logg, engine)

		// 4. Fiber app
		app := fiber.New(fiber.Config{
			DisableStartupMessage: true, // We will log our own startup message
		})

		// RayID must be first to trace everything
		app.Use(middleware.RayID())

		// Request logging with zap + ray_id
		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})

		app.Use(middleware.APIKey(cfg.Server.ApiKey))

		// 5. Feature loader
		mgr := loader.NewManager(logg)
		mgr.Register(catalog.NewFeature(catalogService))
		mgr.Register(ledger.NewFeature(ledgerService))
		mgr.Register(reconcile.NewFeature(engine, bus, logg))

		if err := mgr.LoadAll(app); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		// 6. Start server
		go func() {
			logg.Info("Starting server", zap.String("port", cfg.Server.Port))
			if err := app.Listen(":" + cfg.Server.Port); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// 7. Graceful shutdown
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		_ = app.Shutdown()
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
