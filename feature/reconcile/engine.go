package reconcile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"cardvault/core/errs"
	"cardvault/core/progress"
	"cardvault/core/retry"
	"cardvault/feature/catalog"
	"cardvault/feature/ledger"
	"cardvault/feature/resolver"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Engine drives the ledger-to-catalog reconciliation: aggregate the ledger,
// resolve every aggregate against the catalogs, diff the result against the
// current collected annotations, and apply the whole diff in one
// transaction. A run that finds no differences writes nothing.
type Engine struct {
	db          *gorm.DB
	catalog     *catalog.Repo
	ledger      *ledger.Repo
	logger      *zap.Logger
	reporter    progress.Reporter
	readTimeout time.Duration

	mu      sync.Mutex
	running bool
}

// NewEngine creates a reconciliation engine. readTimeout bounds the read
// phase (aggregation and candidate prefetch); zero disables the bound.
func NewEngine(db *gorm.DB, catalogRepo *catalog.Repo, ledgerRepo *ledger.Repo,
	logger *zap.Logger, reporter progress.Reporter, readTimeout time.Duration) *Engine {
	if reporter == nil {
		reporter = progress.Discard
	}
	return &Engine{
		db:          db,
		catalog:     catalogRepo,
		ledger:      ledgerRepo,
		logger:      logger,
		reporter:    reporter,
		readTimeout: readTimeout,
	}
}

// Trigger satisfies the ledger's post-mutation hook. A run already in
// flight is not an error here: the in-flight run reads committed state, and
// callers that need the report use Reconcile directly.
func (e *Engine) Trigger(ctx context.Context) error {
	_, err := e.Reconcile(ctx)
	if errors.Is(err, errs.ErrAlreadyRunning) {
		return nil
	}
	return err
}

// Running reports whether a reconciliation is in flight.
func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

func (e *Engine) acquire() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.running {
		return errs.ErrAlreadyRunning
	}
	e.running = true
	return nil
}

func (e *Engine) release() {
	e.mu.Lock()
	e.running = false
	e.mu.Unlock()
}

// target is one catalog row the ledger says should be annotated.
type target struct {
	id    string
	promo bool
}

// Reconcile runs one full pass and returns its report. Only one run per
// engine is allowed at a time; a second concurrent call fails with
// ErrAlreadyRunning.
func (e *Engine) Reconcile(ctx context.Context) (*Report, error) {
	if err := e.acquire(); err != nil {
		return nil, err
	}
	defer e.release()

	started := time.Now()
	e.reporter.Report(progress.Message{Phase: progress.PhaseReconcile, State: progress.StateStart})

	report, err := e.run(ctx)
	if err != nil {
		e.reporter.Report(progress.Message{
			Phase: progress.PhaseReconcile,
			State: progress.StateFail,
			Error: err.Error(),
		})
		return nil, err
	}

	report.Duration = time.Since(started)
	e.reporter.Report(progress.Message{
		Phase:   progress.PhaseReconcile,
		State:   progress.StateDone,
		Percent: 100,
		Records: int64(report.Aggregates),
	})
	e.logger.Info("Reconciliation complete",
		zap.Int("aggregates", report.Aggregates),
		zap.Int("matched", report.Matched),
		zap.Int("updated", report.Updated),
		zap.Int("cleared", report.Cleared),
		zap.Duration("duration", report.Duration))
	return report, nil
}

func (e *Engine) run(ctx context.Context) (*Report, error) {
	readCtx := ctx
	if e.readTimeout > 0 {
		var cancel context.CancelFunc
		readCtx, cancel = context.WithTimeout(ctx, e.readTimeout)
		defer cancel()
	}

	aggregates, index, err := e.readPhase(readCtx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: reconcile read phase", errs.ErrTimeout)
		}
		return nil, err
	}

	report := &Report{Aggregates: len(aggregates)}
	desired := make(map[target]int)
	for i, agg := range aggregates {
		outcome := MatchOutcome{
			Name:            agg.Name,
			SetCode:         agg.SetCode,
			CollectorNumber: agg.CollectorNumber,
			Quantity:        agg.Total,
		}

		match, err := resolver.Resolve(ctx, index, agg.Name, agg.SetCode, agg.CollectorNumber)
		switch {
		case err == nil:
			report.Matched++
			desired[target{id: match.Card.ID, promo: match.Card.Promo}] += agg.Total
		case errors.Is(err, errs.ErrNotFound), errors.Is(err, errs.ErrInvalidInput):
			report.Unmatched = append(report.Unmatched, outcome)
		default:
			return nil, err
		}

		if (i+1)%1000 == 0 {
			e.reporter.Report(progress.Message{
				Phase:   progress.PhaseReconcile,
				State:   progress.StateProgress,
				Percent: float64(i+1) / float64(len(aggregates)) * 100,
				Records: int64(i + 1),
			})
		}
	}

	current, err := e.catalog.CollectedPositive(readCtx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: reconcile read phase", errs.ErrTimeout)
		}
		return nil, err
	}

	annotated := make(map[target]int, len(current))
	for _, row := range current {
		annotated[target{id: row.ID, promo: row.Promo}] = row.Qty
	}

	updates := make(map[target]int)
	for tgt, qty := range desired {
		// Rows not annotated count as zero, so an unchanged ledger always
		// produces an empty diff.
		if qty != annotated[tgt] {
			updates[tgt] = qty
		}
	}
	for tgt := range annotated {
		if _, ok := desired[tgt]; !ok {
			updates[tgt] = 0
			report.Cleared++
		}
	}

	if len(updates) == 0 {
		return report, nil
	}

	err = retry.Transaction(ctx, e.db, retry.DefaultPolicy, func(tx *gorm.DB) error {
		for tgt, qty := range updates {
			if err := e.catalog.SetCollected(tx, tgt.id, tgt.promo, qty); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrReconciliationFailed, err)
	}
	report.Updated = len(updates)
	return report, nil
}

// readPhase aggregates the ledger and prefetches every candidate the
// resolver could need, building the in-memory index both bulk queries feed.
func (e *Engine) readPhase(ctx context.Context) ([]ledger.Aggregate, *resolver.Index, error) {
	aggregates, err := e.ledger.AggregateAll(ctx)
	if err != nil {
		return nil, nil, err
	}

	// Dedupe on the folded name: the prefetch lowers names anyway, so two
	// ledger spellings differing only in case are one query term and one
	// index bucket.
	seen := make(map[string]struct{}, len(aggregates))
	names := make([]string, 0, len(aggregates))
	for _, agg := range aggregates {
		if !resolver.ValidName(agg.Name) {
			continue
		}
		key := strings.ToLower(agg.Name)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		names = append(names, agg.Name)
	}

	cards, err := e.catalog.CandidatesByNames(ctx, names)
	if err != nil {
		return nil, nil, err
	}
	return aggregates, resolver.NewIndex(cards), nil
}
