package main

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"trackdex/internal/tasks"
	"trackdex/internal/ui"
)

// IndexRun performs a full rebuild of the reference index from the catalog.
func (r *Runner) IndexRun(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireStore(); err != nil {
		return err
	}
	if err := r.requireCatalog(); err != nil {
		return err
	}

	r.logger.Info("starting full index rebuild", "catalog", r.source.Name())
	r.writePlain("Rebuilding library index from %s...\n\n", r.source.Name())

	progressCh := make(chan tasks.ProgressUpdate, 50)
	go func() {
		for update := range progressCh {
			switch update.Phase {
			case tasks.Connecting, tasks.Estimating, tasks.Clearing, tasks.Fetching:
				r.writePlain("%s\n", update.Message)
			case tasks.Indexing:
				r.writePlain("  %s\n", update.Message)
			case tasks.Failed:
				r.writePlain("%s\n", ui.Err(update.Message))
			}
		}
	}()

	result, err := r.indexer.Run(ctx, progressCh)
	close(progressCh)

	if err != nil {
		return err
	}

	r.writePlain("\n")
	r.writePlainHeader("Index Rebuild Complete")
	r.writePlain("Processed: %d tracks\n", result.Processed)
	r.writePlain("Indexed:   %d tracks\n", result.Inserted)
	r.writePlain("Batches:   %d (%d failed)\n", result.Batches, result.FailedBatches)
	r.writePlain("Duration:  %s\n", result.Duration.Round(time.Second))

	if result.FailedBatches > 0 {
		r.writePlain("\n%s\n", ui.Warn(fmt.Sprintf("%d batches failed and were skipped; the index is incomplete", result.FailedBatches)))
	}

	return nil
}

// IndexRescan indexes tracks added to the catalog within the recency window.
func (r *Runner) IndexRescan(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireStore(); err != nil {
		return err
	}
	if err := r.requireCatalog(); err != nil {
		return err
	}

	window := r.config.RescanWindow()
	limit := cmd.Int("limit")
	if limit <= 0 {
		limit = r.config.Indexer.RescanLimit
	}

	r.logger.Info("rescanning recent additions", "window", window, "limit", limit)

	result, err := r.indexer.RescanRecent(ctx, window, limit, nil)
	if err != nil {
		return err
	}

	r.writePlain("Fetched %d recently added tracks, %d newly indexed\n", result.Fetched, result.NewlyIndexed)
	return nil
}

// IndexStats prints reference index totals.
func (r *Runner) IndexStats(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireStore(); err != nil {
		return err
	}

	stats, err := r.store.Stats()
	if err != nil {
		return fmt.Errorf("failed to read index stats: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(stats, cmd.Bool("pretty"))
	}

	r.writePlain("%s %d tracks indexed\n", ui.Title("Library index:"), stats.TotalIndexed)
	return nil
}

// indexCommand handles reference index operations
func indexCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "index",
		Aliases: []string{"idx"},
		Usage:   "Build and inspect the library reference index",
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "Full rebuild of the index from the catalog",
				Action: r.IndexRun,
			},
			{
				Name:  "rescan",
				Usage: "Index tracks recently added to the catalog",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of recent tracks to fetch",
					},
				},
				Action: r.IndexRescan,
			},
			{
				Name:  "stats",
				Usage: "Show index totals",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.IndexStats,
			},
		},
	}
}
