package tasks

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"trackdex/internal/catalog"
	"trackdex/internal/index"
	"trackdex/internal/models"
	"trackdex/internal/normalizer"
	"trackdex/internal/shared"
)

// DefaultBatchSize is the slice size for the indexing phase. The full listing
// is fetched once and cut into batches of this size for bulk insertion.
const DefaultBatchSize = 2500

// IndexStore is the mutation surface of the reference index used by the
// indexer. The match engine reads the same store but never writes it.
type IndexStore interface {
	Clear() error
	BulkInsert(ctx context.Context, rows []models.IndexedTrack) (int, error)
	Add(track models.IndexedTrack) error
	Stats() (index.Stats, error)
}

// RunResult contains the final counts of a full indexing run.
//
// Processed counts every catalog row seen; Inserted counts rows actually
// written. The gap between the two reveals duplicate or malformed rows.
type RunResult struct {
	Estimated     int           // best-effort pre-run estimate, 0 when unknown
	Processed     int           // catalog rows handled across all batches
	Inserted      int           // rows newly written to the index
	Batches       int           // batches attempted
	FailedBatches int           // batches that errored and were skipped
	Duration      time.Duration // wall-clock run time
}

// RescanResult contains counts from an incremental recent-additions rescan.
type RescanResult struct {
	Fetched      int // recently-added rows retrieved from the catalog
	NewlyIndexed int // rows inside the recency window added to the index
}

// Indexer orchestrates rebuilds of the reference index from the external
// catalog. It owns all index mutation; concurrent readers are expected, a
// concurrent second rebuild is not.
type Indexer struct {
	catalog catalog.Source
	store   IndexStore
	logger  *log.Logger

	// BatchSize overrides the indexing batch size. Defaults to [DefaultBatchSize].
	BatchSize int

	running atomic.Bool
}

// NewIndexer creates an Indexer over the given catalog source and index store.
func NewIndexer(source catalog.Source, store IndexStore, logger *log.Logger) *Indexer {
	if logger == nil {
		logger = log.Default()
	}
	return &Indexer{
		catalog:   source,
		store:     store,
		logger:    logger,
		BatchSize: DefaultBatchSize,
	}
}

// Run performs a full rebuild: connect, estimate, clear, fetch the entire
// listing once, then bulk-insert in fixed-size batches.
//
// Failures before the clearing phase leave the previous index state intact.
// A failing batch is logged and skipped so one bad batch cannot abort the
// remaining ninety percent of a large catalog. Only one run may be active at
// a time; overlapping calls fail fast with [shared.ErrIndexerBusy].
func (ix *Indexer) Run(ctx context.Context, progress chan<- ProgressUpdate) (*RunResult, error) {
	if !ix.running.CompareAndSwap(false, true) {
		return nil, shared.ErrIndexerBusy
	}
	defer ix.running.Store(false)

	start := time.Now()
	result := &RunResult{}

	sendProgress(progress, connectingUpdate(ix.catalog.Name()))
	if err := ix.catalog.Ping(ctx); err != nil {
		sendProgress(progress, failedUpdate(err))
		return nil, fmt.Errorf("failed to connect to catalog: %w", err)
	}

	// Best-effort estimate; failure here degrades progress reporting to
	// plain counts instead of aborting the run.
	sendProgress(progress, estimatingUpdate())
	if total, err := ix.catalog.CountTracks(ctx); err != nil {
		ix.logger.Warn("failed to estimate library size, proceeding without totals", "err", err)
	} else {
		result.Estimated = total
	}
	sendProgress(progress, estimatedUpdate(result.Estimated))

	// Full rebuild strategy: catalog metadata can change in place and the
	// source offers no change feed, so clear and repopulate.
	sendProgress(progress, clearingUpdate())
	if err := ix.store.Clear(); err != nil {
		sendProgress(progress, failedUpdate(err))
		return nil, fmt.Errorf("failed to clear index: %w", err)
	}

	sendProgress(progress, fetchingUpdate())
	listing, err := ix.catalog.ListAllTracks(ctx)
	if err != nil {
		sendProgress(progress, failedUpdate(err))
		return nil, fmt.Errorf("failed to fetch track listing: %w", err)
	}
	ix.logger.Info("fetched complete track listing", "tracks", len(listing))

	batchSize := ix.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	totalBatches := (len(listing) + batchSize - 1) / batchSize

	for startIdx := 0; startIdx < len(listing); startIdx += batchSize {
		end := min(startIdx+batchSize, len(listing))
		batch := listing[startIdx:end]
		result.Batches++

		inserted, err := ix.store.BulkInsert(ctx, normalizeBatch(batch))
		result.Processed += len(batch)
		result.Inserted += inserted

		if err != nil {
			// Partial-failure tolerance: the run advances to the
			// next batch instead of aborting.
			result.FailedBatches++
			ix.logger.Error("batch failed, continuing with next batch",
				"batch", result.Batches, "size", len(batch), "err", err)
		}

		sendProgress(progress, batchUpdate(result.Batches, totalBatches, result.Processed, result.Inserted))
	}

	result.Duration = time.Since(start)
	sendProgress(progress, completedUpdate(result))
	ix.logger.Info("indexing run complete",
		"processed", result.Processed,
		"inserted", result.Inserted,
		"batches", result.Batches,
		"failed_batches", result.FailedBatches,
		"duration", result.Duration)

	return result, nil
}

// RescanRecent indexes catalog rows added within the given window, the
// lightweight alternative to a full rebuild after new files land.
func (ix *Indexer) RescanRecent(ctx context.Context, window time.Duration, limit int, progress chan<- ProgressUpdate) (*RescanResult, error) {
	if limit <= 0 {
		limit = 500
	}

	recent, err := ix.catalog.ListRecentlyAdded(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent additions: %w", err)
	}

	result := &RescanResult{Fetched: len(recent)}
	cutoff := time.Now().Add(-window)

	for _, track := range recent {
		if track.AddedAt == nil || track.AddedAt.Before(cutoff) {
			continue
		}
		row := normalizeTrack(track)
		if row.Empty() {
			continue
		}
		if err := ix.store.Add(row); err != nil {
			ix.logger.Warn("failed to index recent track", "title", track.Title, "err", err)
			continue
		}
		result.NewlyIndexed++
	}

	sendProgress(progress, rescanUpdate(result.Fetched, result.NewlyIndexed))
	ix.logger.Info("rescan complete", "fetched", result.Fetched, "indexed", result.NewlyIndexed)

	return result, nil
}

// normalizeBatch cleans a slice of raw catalog rows into index rows.
// Rows with neither title nor artist are dropped here, at the normalization
// boundary: never inserted, never counted as errors.
func normalizeBatch(batch []models.CatalogTrack) []models.IndexedTrack {
	rows := make([]models.IndexedTrack, 0, len(batch))
	for _, track := range batch {
		row := normalizeTrack(track)
		if row.Empty() {
			continue
		}
		rows = append(rows, row)
	}
	return rows
}

func normalizeTrack(track models.CatalogTrack) models.IndexedTrack {
	return models.IndexedTrack{
		TitleClean:  normalizer.Clean(track.Title),
		ArtistClean: normalizer.Clean(track.Artist),
		AlbumClean:  normalizer.Clean(track.Album),
		Year:        track.Year,
		AddedAt:     track.AddedAt,
	}
}
