package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"trackdex/internal/shared"
	"trackdex/internal/tasks"
	"trackdex/internal/ui"
)

// VerifyTrack checks a single title/artist pair against the index and filesystem.
func (r *Runner) VerifyTrack(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireStore(); err != nil {
		return err
	}

	title := cmd.String("title")
	artist := cmd.String("artist")
	if title == "" {
		return fmt.Errorf("%w: --title is required", shared.ErrMissingArgument)
	}

	verification := r.engine.VerifyComprehensive(title, artist)

	if cmd.Bool("json") {
		return r.writeJSON(verification, cmd.Bool("pretty"))
	}

	if verification.Exists {
		r.writePlain("%s %s - %s found (%s)\n", ui.Ok("✓"), artist, title, verification.Method)
	} else {
		r.writePlain("%s %s - %s not found\n", ui.Err("✗"), artist, title)
	}

	return nil
}

// VerifyMissing re-checks every ledger entry still marked missing.
func (r *Runner) VerifyMissing(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireStore(); err != nil {
		return err
	}

	if workers := cmd.Int("workers"); workers > 0 {
		r.reconciler.Workers = workers
	}

	r.logger.Info("verifying missing tracks against the index")
	r.writePlain("Re-checking ledger entries...\n\n")

	progressCh := make(chan tasks.ProgressUpdate, 50)
	go func() {
		for update := range progressCh {
			if update.Phase == tasks.Verifying {
				r.writePlain("  %s\n", update.Message)
			}
		}
	}()

	result, err := r.reconciler.VerifyMissing(ctx, progressCh)
	close(progressCh)

	if err != nil {
		return err
	}

	r.writePlain("\n")
	r.writePlainHeader("Verification Complete")
	r.writePlain("Checked:  %d tracks\n", result.Checked)
	r.writePlain("Resolved: %d now available locally\n", result.Resolved)
	return nil
}

// verifyCommand handles availability checks
func verifyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "verify",
		Usage: "Check track availability against the index",
		Commands: []*cli.Command{
			{
				Name:  "track",
				Usage: "Verify a single title and artist",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "title",
						Aliases:  []string{"t"},
						Usage:    "Track title",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "artist",
						Aliases: []string{"a"},
						Usage:   "Artist name",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.VerifyTrack,
			},
			{
				Name:  "missing",
				Usage: "Re-check every ledger entry still marked missing",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent verification workers",
					},
				},
				Action: r.VerifyMissing,
			},
		},
	}
}
