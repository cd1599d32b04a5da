package ledger

import (
	"context"

	"cardvault/core/retry"
	"cardvault/feature/ledger/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Reconciler is invoked after every ledger mutation so the catalog's
// collected annotations track the ledger. The reconciliation engine
// satisfies it; a concurrent run collapsing to a no-op is not an error.
type Reconciler interface {
	Trigger(ctx context.Context) error
}

// Service handles ledger operations. Every mutation path triggers a
// reconciliation pass once the write has committed.
type Service struct {
	db         *gorm.DB
	repo       *Repo
	logger     *zap.Logger
	reconciler Reconciler
}

// NewService creates a ledger service. reconciler may be nil in tests.
func NewService(db *gorm.DB, logger *zap.Logger, reconciler Reconciler) *Service {
	return &Service{
		db:         db,
		repo:       NewRepo(db),
		logger:     logger,
		reconciler: reconciler,
	}
}

// Repo exposes the ledger repository to collaborating features.
func (s *Service) Repo() *Repo {
	return s.repo
}

func (s *Service) reconcile(ctx context.Context) {
	if s.reconciler == nil {
		return
	}
	if err := s.reconciler.Trigger(ctx); err != nil {
		s.logger.Warn("Post-mutation reconcile failed", zap.Error(err))
	}
}

// Import merges a batch of normalized records into the ledger in one
// transaction, then reconciles.
func (s *Service) Import(ctx context.Context, records []ImportRecord) (int, error) {
	for _, rec := range records {
		if err := rec.Validate(); err != nil {
			return 0, err
		}
	}

	err := retry.Transaction(ctx, s.db, retry.DefaultPolicy, func(tx *gorm.DB) error {
		return s.repo.MergeImport(tx, records)
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("Ledger import merged", zap.Int("records", len(records)))
	s.reconcile(ctx)
	return len(records), nil
}

// Add merges a single record, then reconciles.
func (s *Service) Add(ctx context.Context, record ImportRecord) error {
	_, err := s.Import(ctx, []ImportRecord{record})
	return err
}

// SetQuantity updates one entry's quantity, then reconciles.
func (s *Service) SetQuantity(ctx context.Context, id string, quantity int) error {
	if err := s.repo.SetQuantity(ctx, id, quantity); err != nil {
		return err
	}
	s.reconcile(ctx)
	return nil
}

// Delete removes one entry, then reconciles.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.reconcile(ctx)
	return nil
}

// DeleteCollection removes a whole collection, then reconciles so catalog
// rows it referenced fall back to zero.
func (s *Service) DeleteCollection(ctx context.Context, collection string) (int64, error) {
	removed, err := s.repo.DeleteCollection(ctx, collection)
	if err != nil {
		return 0, err
	}
	s.logger.Info("Collection deleted",
		zap.String("collection", collection),
		zap.Int64("entries", removed))
	s.reconcile(ctx)
	return removed, nil
}

// Collections lists every collection with counts.
func (s *Service) Collections(ctx context.Context) ([]CollectionSummary, error) {
	return s.repo.Collections(ctx)
}

// List returns every entry in a collection.
func (s *Service) List(ctx context.Context, collection string) ([]models.LedgerEntry, error) {
	return s.repo.List(ctx, collection)
}
