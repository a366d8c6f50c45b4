package tasks

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/arunsworld/nursery"
	"github.com/charmbracelet/log"

	"trackdex/internal/ledger"
	"trackdex/internal/matcher"
	"trackdex/internal/models"
)

// DefaultVerifyWorkers is the worker count for the concurrent verification
// pass. Verification is read-mostly against the index, so a small pool keeps
// it fast without starving other readers.
const DefaultVerifyWorkers = 4

// VerifyResult contains counts from a ledger verification pass.
type VerifyResult struct {
	Checked  int // ledger rows still in the 'missing' state that were re-verified
	Resolved int // rows re-found locally and transitioned to 'downloaded'
}

// Reconciler re-runs the match engine (with the filesystem fallback) against
// ledger entries to clear false positives: tracks recorded missing that have
// since landed in the library.
type Reconciler struct {
	ledger *ledger.Repository
	engine *matcher.Engine
	logger *log.Logger

	// Workers bounds the concurrent verification calls. Defaults to
	// [DefaultVerifyWorkers].
	Workers int
}

// NewReconciler creates a Reconciler over the given ledger and match engine.
func NewReconciler(repo *ledger.Repository, engine *matcher.Engine, logger *log.Logger) *Reconciler {
	if logger == nil {
		logger = log.Default()
	}
	return &Reconciler{
		ledger:  repo,
		engine:  engine,
		logger:  logger,
		Workers: DefaultVerifyWorkers,
	}
}

// VerifyMissing re-verifies every 'missing' ledger row and flips re-found
// rows to 'downloaded'. The match engine's verdict is the sole source of
// truth for the transition.
func (r *Reconciler) VerifyMissing(ctx context.Context, progress chan<- ProgressUpdate) (*VerifyResult, error) {
	rows, err := r.ledger.ListMissing()
	if err != nil {
		return nil, fmt.Errorf("failed to list missing tracks: %w", err)
	}

	result := &VerifyResult{Checked: len(rows)}
	if len(rows) == 0 {
		return result, nil
	}

	workers := r.Workers
	if workers <= 0 {
		workers = DefaultVerifyWorkers
	}

	jobs := make(chan *models.MissingTrack)
	var step, resolved atomic.Int64

	err = nursery.RunConcurrentlyWithContext(ctx,
		func(ctx context.Context, errs chan error) {
			defer close(jobs)
			for _, row := range rows {
				select {
				case <-ctx.Done():
					return
				case jobs <- row:
				}
			}
		},
		func(ctx context.Context, errs chan error) {
			if err := nursery.RunMultipleCopiesConcurrentlyWithContext(ctx, workers, r.verifyWorker(jobs, &step, &resolved, progress, len(rows))); err != nil {
				errs <- err
			}
		},
	)
	if err != nil {
		return nil, fmt.Errorf("verification pass failed: %w", err)
	}

	result.Resolved = int(resolved.Load())
	r.logger.Info("verification pass complete", "checked", result.Checked, "resolved", result.Resolved)

	return result, nil
}

// verifyWorker drains the job channel, running comprehensive verification on
// each row. Status update failures are logged and skipped; a single bad row
// must not abort the pass.
func (r *Reconciler) verifyWorker(jobs <-chan *models.MissingTrack, step, resolved *atomic.Int64, progress chan<- ProgressUpdate, total int) nursery.ConcurrentJob {
	return func(ctx context.Context, errs chan error) {
		for row := range jobs {
			n := int(step.Add(1))
			sendProgress(progress, verifyUpdate(n, total, row.Title()))

			verdict := r.engine.VerifyComprehensive(row.Title(), row.Artist())
			if !verdict.Exists {
				continue
			}

			if err := r.ledger.UpdateStatus(row.ID(), models.StatusDownloaded); err != nil {
				r.logger.Warn("failed to update resolved track", "id", row.ID(), "title", row.Title(), "err", err)
				continue
			}

			resolved.Add(1)
			r.logger.Info("missing track re-found locally",
				"title", row.Title(),
				"artist", row.Artist(),
				"method", verdict.Method)
		}
	}
}
