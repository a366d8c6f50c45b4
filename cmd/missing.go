package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"trackdex/internal/models"
	"trackdex/internal/shared"
	"trackdex/internal/ui"
)

// missingTrackRow is the JSON shape for ledger listings.
type missingTrackRow struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Artist   string `json:"artist"`
	Album    string `json:"album,omitempty"`
	Playlist string `json:"source_playlist_title"`
	Status   string `json:"status"`
}

// MissingList lists ledger entries, optionally filtered by status or playlist.
func (r *Runner) MissingList(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireStore(); err != nil {
		return err
	}

	criteria := map[string]any{}
	if status := cmd.String("status"); status != "" {
		if !models.TrackStatus(status).Valid() {
			return fmt.Errorf("%w: unknown status %q", shared.ErrInvalidStatus, status)
		}
		criteria["status"] = status
	}
	if playlist := cmd.String("playlist"); playlist != "" {
		criteria["source_playlist_title"] = playlist
	}

	tracks, err := r.ledger.List(criteria)
	if err != nil {
		return fmt.Errorf("failed to list missing tracks: %w", err)
	}

	if cmd.Bool("json") {
		rows := make([]missingTrackRow, 0, len(tracks))
		for _, t := range tracks {
			rows = append(rows, missingTrackRow{
				ID:       t.ID(),
				Title:    t.Title(),
				Artist:   t.Artist(),
				Album:    t.Album(),
				Playlist: t.SourcePlaylistTitle(),
				Status:   string(t.Status()),
			})
		}
		return r.writeJSON(rows, cmd.Bool("pretty"))
	}

	if len(tracks) == 0 {
		r.writePlain("No tracks in the ledger\n")
		return nil
	}

	r.writePlainHeader(fmt.Sprintf("Missing Tracks (%d)", len(tracks)))
	for _, t := range tracks {
		marker := ui.Err("✗")
		if t.Status() != models.StatusMissing {
			marker = ui.Ok("✓")
		}
		r.writePlain("%s %s - %s [%s] (%s)\n", marker, t.Artist(), t.Title(), string(t.Status()), t.SourcePlaylistTitle())
		r.writePlain("  %s\n", ui.Help(t.ID()))
	}

	return nil
}

// MissingResolve marks a ledger entry as manually resolved.
func (r *Runner) MissingResolve(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireStore(); err != nil {
		return err
	}

	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: track ID is required", shared.ErrMissingArgument)
	}

	status := models.TrackStatus(cmd.String("status"))
	if !status.Valid() {
		return fmt.Errorf("%w: unknown status %q", shared.ErrInvalidStatus, status)
	}

	track, err := r.ledger.Get(id)
	if err != nil {
		return fmt.Errorf("failed to find track: %w", err)
	}

	if err := r.ledger.UpdateStatus(id, status); err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}

	r.logger.Info("ledger entry updated", "id", id, "status", status)
	r.writePlain("%s %s - %s marked %s\n", ui.Ok("✓"), track.Artist(), track.Title(), string(status))
	return nil
}

// MissingClean removes resolved or junk entries from the ledger.
func (r *Runner) MissingClean(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireStore(); err != nil {
		return err
	}

	if cmd.Bool("all") {
		if err := r.ledger.DeleteAll(); err != nil {
			return fmt.Errorf("failed to clear ledger: %w", err)
		}
		r.writePlain("%s ledger cleared\n", ui.Ok("✓"))
		return nil
	}

	if cmd.Bool("invalid") {
		removed, err := r.ledger.CleanInvalid(cmd.String("preserve"))
		if err != nil {
			return fmt.Errorf("failed to clean invalid entries: %w", err)
		}
		r.writePlain("%s removed %d junk entries\n", ui.Ok("✓"), removed)
		return nil
	}

	removed, remaining, err := r.ledger.CleanResolved()
	if err != nil {
		return fmt.Errorf("failed to clean resolved entries: %w", err)
	}

	r.writePlain("%s removed %d resolved entries, %d still missing\n", ui.Ok("✓"), removed, remaining)
	return nil
}

// missingCommand handles missing-track ledger operations
func missingCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "missing",
		Aliases: []string{"miss"},
		Usage:   "Inspect and maintain the missing-track ledger",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List ledger entries",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "status",
						Usage: "Filter by status (missing, downloaded, resolved_manual)",
					},
					&cli.StringFlag{
						Name:  "playlist",
						Usage: "Filter by source playlist title",
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
				Action: r.MissingList,
			},
			{
				Name:  "resolve",
				Usage: "Mark a ledger entry as resolved",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "id",
					},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "status",
						Usage: "Status to set",
						Value: string(models.StatusResolvedManual),
					},
				},
				Action: r.MissingResolve,
			},
			{
				Name:  "clean",
				Usage: "Remove resolved or junk entries",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "invalid",
						Usage: "Remove entries matching junk keywords instead of resolved ones",
					},
					&cli.StringFlag{
						Name:  "preserve",
						Usage: "Also remove entries sourced from playlists carrying this tag",
					},
					&cli.BoolFlag{
						Name:  "all",
						Usage: "Delete every ledger entry",
					},
				},
				Action: r.MissingClean,
			},
		},
	}
}
