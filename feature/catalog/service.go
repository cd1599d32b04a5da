package catalog

import (
	"context"
	"fmt"
	"io"
	"sync"

	"cardvault/core/errs"
	"cardvault/core/progress"
	"cardvault/core/storage"
	"cardvault/feature/catalog/ingest"
	"cardvault/feature/catalog/models"
	"cardvault/feature/resolver"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service orchestrates catalog imports and lookups.
type Service struct {
	db     *gorm.DB
	repo   *Repo
	client storage.Client
	bucket string
	logger *zap.Logger
	bus    *progress.Broadcaster
	opts   ingest.Options

	// Single-flight guard: two concurrent imports would race on the same
	// ids. The second caller is rejected, not queued.
	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
}

// NewService creates a catalog service. client may be nil when no object
// storage is configured; storage-sourced imports then fail with an error.
func NewService(db *gorm.DB, client storage.Client, bucket string, logger *zap.Logger, bus *progress.Broadcaster, opts ingest.Options) *Service {
	return &Service{
		db:     db,
		repo:   NewRepo(db),
		client: client,
		bucket: bucket,
		logger: logger,
		bus:    bus,
		opts:   opts,
	}
}

// Repo exposes the catalog repository to collaborating features.
func (s *Service) Repo() *Repo {
	return s.repo
}

func (s *Service) acquire(parent context.Context) (context.Context, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil, errs.ErrAlreadyRunning
	}
	ctx, cancel := context.WithCancel(parent)
	s.running = true
	s.cancel = cancel
	return ctx, nil
}

func (s *Service) release() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.running = false
	s.mu.Unlock()
}

// CancelImport requests a cooperative abort of the running import, if any.
// The worker honors it at the next batch boundary.
func (s *Service) CancelImport() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running || s.cancel == nil {
		return false
	}
	s.cancel()
	return true
}

// Importing reports whether an import is in flight.
func (s *Service) Importing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// ImportCatalog streams the source into the canonical store. promo selects
// the secondary promotional/token catalog. The call blocks until the worker
// finishes; progress is published on the shared broadcaster throughout.
func (s *Service) ImportCatalog(ctx context.Context, source io.Reader, label string, promo bool) (*ingest.Summary, error) {
	runCtx, err := s.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer s.release()

	s.logger.Info("Catalog import starting",
		zap.String("source", label),
		zap.Bool("promo", promo),
		zap.Int("batch_size", s.opts.BatchSize))
	s.bus.Report(progress.Message{Phase: progress.PhaseImport, State: progress.StateStart})

	worker := ingest.NewWorker(s.db, func(tx *gorm.DB, cards []models.Card) error {
		return s.repo.UpsertBatch(tx, cards, promo)
	}, s.opts, s.logger)

	var summary *ingest.Summary
	var runErr error

	for msg := range worker.Start(runCtx, source) {
		switch m := msg.(type) {
		case ingest.Started:
		case ingest.Progress:
			s.bus.Report(progress.Message{
				Phase:   progress.PhaseImport,
				State:   progress.StateProgress,
				Percent: -1, // streaming input, total unknown
				Records: m.Records,
			})
		case ingest.Completed:
			sum := m.Summary
			summary = &sum
		case ingest.Failed:
			runErr = m.Err
		}
	}

	if runErr != nil {
		s.bus.Report(progress.Message{
			Phase: progress.PhaseImport,
			State: progress.StateFail,
			Error: runErr.Error(),
		})
		s.logger.Error("Catalog import failed", zap.Error(runErr))
		return nil, runErr
	}

	if err := s.repo.SaveMeta(ctx, label, summary.Records); err != nil {
		s.logger.Warn("Failed to record catalog metadata", zap.Error(err))
	}

	s.bus.Report(progress.Message{
		Phase:   progress.PhaseImport,
		State:   progress.StateDone,
		Percent: 100,
		Records: summary.Records,
	})
	s.logger.Info("Catalog import finished",
		zap.Int64("records", summary.Records),
		zap.Int64("skipped", summary.Skipped),
		zap.Int("batches", summary.Batches),
		zap.Duration("duration", summary.Duration))
	return summary, nil
}

// ImportFromStorage streams a bulk catalog object from the configured
// bucket into the store.
func (s *Service) ImportFromStorage(ctx context.Context, objectName string, promo bool) (*ingest.Summary, error) {
	if s.client == nil {
		return nil, fmt.Errorf("no object storage configured")
	}
	if _, err := s.client.StatObject(ctx, s.bucket, objectName, minio.StatObjectOptions{}); err != nil {
		return nil, fmt.Errorf("bulk object %s not found: %w", objectName, err)
	}
	obj, err := s.client.GetObject(ctx, s.bucket, objectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to open bulk object %s: %w", objectName, err)
	}
	defer obj.Close()

	return s.ImportCatalog(ctx, obj, objectName, promo)
}

// Meta returns the provenance of the last successful ingest.
func (s *Service) Meta(ctx context.Context) (*models.CatalogMeta, error) {
	return s.repo.Meta(ctx)
}

// Search returns every printing matching the name, case-insensitively.
func (s *Service) Search(ctx context.Context, name string) ([]models.Card, error) {
	if name == "" {
		return nil, errs.ErrInvalidInput
	}
	return s.repo.FindNameFold(ctx, false, name)
}

// Resolve finds the best catalog record for a loose identity using the
// ranked fallback ladder, straight against the store's indexes.
func (s *Service) Resolve(ctx context.Context, name, set, number string) (*resolver.Match, error) {
	return resolver.Resolve(ctx, s.repo, name, set, number)
}
