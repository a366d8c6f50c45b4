// Package ledger implements SQLite persistence for the missing-track ledger.
//
// The ledger records tracks referenced by playlists that failed the match
// engine, with a resolution lifecycle (missing -> downloaded | resolved_manual).
// The match engine's verdict is the sole source of truth for automatic status
// transitions; manual resolution and cleanup are operator-driven.
package ledger

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"trackdex/internal/models"
	"trackdex/internal/shared"
)

// invalidKeywords marks ledger rows that slipped in from non-music playlists
// (TV episodes, movies) and are purged by CleanInvalid.
var invalidKeywords = []string{"simpsons", "family guy", "episode", "movie"}

// Repository implements models.Repository[*models.MissingTrack].
//
// Duplicate records for the same (title, artist, source playlist) are
// silently ignored on insert, mirroring the idempotent behavior of the
// reference index.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new ledger Repository with the given database connection
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new [models.MissingTrack] with a generated ID.
// Inserting a duplicate of an existing (title, artist, source playlist)
// triple is a no-op and not an error.
func (r *Repository) Create(track *models.MissingTrack) error {
	if track.ID() == "" {
		track.SetID(shared.GenerateID())
	}

	if err := track.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT OR IGNORE INTO missing_tracks (id, title, artist, album, source_playlist_title, source_playlist_id, status, added_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query,
		track.ID(),
		track.Title(),
		track.Artist(),
		track.Album(),
		track.SourcePlaylistTitle(),
		track.SourcePlaylistID(),
		string(track.Status()),
		track.CreatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert missing track: %w", err)
	}

	return nil
}

// Get retrieves a missing-track record by ID
func (r *Repository) Get(id string) (*models.MissingTrack, error) {
	query := `
		SELECT id, title, artist, album, source_playlist_title, source_playlist_id, status, added_date
		FROM missing_tracks
		WHERE id = ?
	`

	return r.scanOne(r.db.QueryRow(query, id))
}

// Update persists status changes for an existing record
func (r *Repository) Update(track *models.MissingTrack) error {
	if err := track.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	result, err := r.db.Exec(
		"UPDATE missing_tracks SET status = ? WHERE id = ?",
		string(track.Status()), track.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update missing track: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrTrackNotFound, track.ID())
	}

	return nil
}

// UpdateStatus transitions a record to the given lifecycle status.
func (r *Repository) UpdateStatus(id string, status models.TrackStatus) error {
	if !status.Valid() {
		return fmt.Errorf("%w: %s", shared.ErrInvalidStatus, status)
	}

	result, err := r.db.Exec("UPDATE missing_tracks SET status = ? WHERE id = ?", string(status), id)
	if err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrTrackNotFound, id)
	}

	return nil
}

// Delete removes a record by ID
func (r *Repository) Delete(id string) error {
	result, err := r.db.Exec("DELETE FROM missing_tracks WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete missing track: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrTrackNotFound, id)
	}

	return nil
}

// List retrieves all records matching the given criteria, ordered by insertion time
func (r *Repository) List(criteria map[string]any) ([]*models.MissingTrack, error) {
	query := `
		SELECT id, title, artist, album, source_playlist_title, source_playlist_id, status, added_date
		FROM missing_tracks
		WHERE 1 = 1
	`

	args := []any{}

	if status, ok := criteria["status"].(string); ok && status != "" {
		query += " AND status = ?"
		args = append(args, status)
	}

	if playlist, ok := criteria["source_playlist_title"].(string); ok && playlist != "" {
		query += " AND source_playlist_title = ?"
		args = append(args, playlist)
	}

	query += " ORDER BY added_date ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query missing tracks: %w", err)
	}
	defer rows.Close()

	var tracks []*models.MissingTrack
	for rows.Next() {
		track, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		tracks = append(tracks, track)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return tracks, nil
}

// ListMissing returns all records still in the 'missing' state, the work
// queue for the verification and remediation passes.
func (r *Repository) ListMissing() ([]*models.MissingTrack, error) {
	return r.List(map[string]any{"status": string(models.StatusMissing)})
}

// DeleteAll removes every ledger record. Operator cleanup only.
func (r *Repository) DeleteAll() error {
	if _, err := r.db.Exec("DELETE FROM missing_tracks"); err != nil {
		return fmt.Errorf("failed to delete missing tracks: %w", err)
	}
	return nil
}

// CleanResolved deletes records whose lifecycle has completed (downloaded or
// resolved manually) and returns the count removed and the count remaining.
func (r *Repository) CleanResolved() (removed, remaining int, err error) {
	result, err := r.db.Exec(
		"DELETE FROM missing_tracks WHERE status IN (?, ?)",
		string(models.StatusDownloaded), string(models.StatusResolvedManual),
	)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to clean resolved tracks: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to get affected rows: %w", err)
	}

	if err := r.db.QueryRow("SELECT COUNT(*) FROM missing_tracks").Scan(&remaining); err != nil {
		return int(n), 0, fmt.Errorf("failed to count remaining tracks: %w", err)
	}

	return int(n), remaining, nil
}

// CleanInvalid purges rows that are plainly not music (TV/movie titles) and
// rows sourced from playlists carrying the preserve tag, which are read-only.
func (r *Repository) CleanInvalid(preserveTag string) (int, error) {
	removed := 0

	if preserveTag != "" {
		result, err := r.db.Exec(
			"DELETE FROM missing_tracks WHERE source_playlist_title LIKE ?",
			"%"+preserveTag+"%",
		)
		if err != nil {
			return removed, fmt.Errorf("failed to clean preserved playlists: %w", err)
		}
		if n, err := result.RowsAffected(); err == nil {
			removed += int(n)
		}
	}

	for _, keyword := range invalidKeywords {
		pattern := "%" + keyword + "%"
		result, err := r.db.Exec(
			"DELETE FROM missing_tracks WHERE LOWER(title) LIKE ? OR LOWER(artist) LIKE ?",
			pattern, pattern,
		)
		if err != nil {
			return removed, fmt.Errorf("failed to clean invalid tracks: %w", err)
		}
		if n, err := result.RowsAffected(); err == nil {
			removed += int(n)
		}
	}

	return removed, nil
}

// scanOne scans a single [sql.Row] into a [models.MissingTrack]
func (r *Repository) scanOne(row *sql.Row) (*models.MissingTrack, error) {
	var (
		id            string
		title         string
		artist        string
		album         sql.NullString
		playlistTitle string
		playlistID    sql.NullString
		status        string
		addedDate     time.Time
	)

	err := row.Scan(&id, &title, &artist, &album, &playlistTitle, &playlistID, &status, &addedDate)
	if err == sql.ErrNoRows {
		return nil, shared.ErrTrackNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan missing track: %w", err)
	}

	return buildTrack(id, title, artist, album.String, playlistTitle, playlistID.String, status, addedDate), nil
}

// scanRow scans a row from [sql.Rows] into a [models.MissingTrack]
func (r *Repository) scanRow(rows *sql.Rows) (*models.MissingTrack, error) {
	var (
		id            string
		title         string
		artist        string
		album         sql.NullString
		playlistTitle string
		playlistID    sql.NullString
		status        string
		addedDate     time.Time
	)

	err := rows.Scan(&id, &title, &artist, &album, &playlistTitle, &playlistID, &status, &addedDate)
	if err != nil {
		return nil, fmt.Errorf("failed to scan missing track: %w", err)
	}

	return buildTrack(id, title, artist, album.String, playlistTitle, playlistID.String, status, addedDate), nil
}

func buildTrack(id, title, artist, album, playlistTitle, playlistID, status string, addedDate time.Time) *models.MissingTrack {
	track := models.NewMissingTrack(title, artist, album, playlistTitle, playlistID)
	track.SetID(id)
	track.SetStatus(models.TrackStatus(strings.ToLower(status)))
	track.SetCreatedAt(addedDate)
	return track
}
