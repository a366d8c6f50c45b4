// Package index implements the persistent reference index of the local library.
//
// The store holds one normalized (title, artist, album, year, added-at) tuple
// per track physically present in the library, keyed by the unique triple
// (artist_clean, album_clean, title_clean). It is bulk-loaded by the indexer,
// read concurrently by the match engine, and cleared only at the start of a
// full rebuild.
package index

import (
	"context"
	"database/sql"
	"fmt"

	"trackdex/internal/models"
	"trackdex/internal/shared"
)

// chunkSize bounds the number of rows per bulk-insert transaction to keep
// transaction size and memory flat regardless of catalog size.
const chunkSize = 1000

// prefixLen is the candidate pre-filter prefix length. Cleaned strings at or
// below this length are too short to produce a selective LIKE pattern.
const prefixLen = 4

// Candidate is a (title, artist) pair returned by the prefix pre-filter for
// fuzzy scoring. The pre-filter is deliberately coarse and must never be used
// as an existence signal on its own.
type Candidate struct {
	TitleClean  string
	ArtistClean string
}

// Stats reports aggregate counts for the reference index.
type Stats struct {
	TotalIndexed int `json:"total_tracks_indexed"`
}

// Store provides access to the reference index table.
//
// The store normalizes nothing itself: callers pass already-cleaned
// strings (see the normalizer package's indexing profile).
type Store struct {
	db *sql.DB
}

// NewStore creates a new Store with the given database connection
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// BulkInsert inserts rows in fixed-size chunks with INSERT OR IGNORE and
// returns the count of rows actually newly inserted. Duplicates within the
// batch or against existing data do not increment the count, so re-running
// the same batch is idempotent.
//
// Rows with both title and artist empty are excluded before insertion.
// Synchronous commits are relaxed on the loading connection for the duration
// of the call and restored afterward.
func (s *Store) BulkInsert(ctx context.Context, rows []models.IndexedTrack) (int, error) {
	usable := make([]models.IndexedTrack, 0, len(rows))
	for _, row := range rows {
		if row.Empty() {
			continue
		}
		usable = append(usable, row)
	}
	if len(usable) == 0 {
		return 0, nil
	}

	conn, err := s.db.Conn(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to acquire connection: %w", err)
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, "PRAGMA synchronous=OFF"); err != nil {
		return 0, fmt.Errorf("failed to relax synchronous mode: %w", err)
	}
	defer conn.ExecContext(context.WithoutCancel(ctx), "PRAGMA synchronous=NORMAL")

	inserted := 0
	for start := 0; start < len(usable); start += chunkSize {
		end := min(start+chunkSize, len(usable))

		n, err := s.insertChunk(ctx, conn, usable[start:end])
		if err != nil {
			return inserted, err
		}
		inserted += n
	}

	return inserted, nil
}

// insertChunk inserts one chunk of rows inside a single transaction.
func (s *Store) insertChunk(ctx context.Context, conn *sql.Conn, chunk []models.IndexedTrack) (int, error) {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO library_index (title_clean, artist_clean, album_clean, year, added_at)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, row := range chunk {
		result, err := stmt.ExecContext(ctx, row.TitleClean, row.ArtistClean, row.AlbumClean, row.Year, row.AddedAt)
		if err != nil {
			return 0, fmt.Errorf("failed to insert row: %w", err)
		}
		if n, err := result.RowsAffected(); err == nil {
			inserted += int(n)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit chunk: %w", err)
	}

	return inserted, nil
}

// Add inserts a single row, retrying with exponential backoff on transient
// lock contention. Used by the incremental rescan path; full rebuilds go
// through BulkInsert.
func (s *Store) Add(track models.IndexedTrack) error {
	if track.Empty() {
		return nil
	}

	return shared.Retry(shared.RetryOpts{}, func() error {
		_, err := s.db.Exec(`
			INSERT OR IGNORE INTO library_index (title_clean, artist_clean, album_clean, year, added_at)
			VALUES (?, ?, ?, ?, ?)
		`, track.TitleClean, track.ArtistClean, track.AlbumClean, track.Year, track.AddedAt)
		if err != nil {
			return fmt.Errorf("%w: %v", shared.ErrStoreContention, err)
		}
		return nil
	})
}

// ExactLookup reports whether a row with exactly the given cleaned title and
// artist exists. Point lookup on the covering (artist_clean, title_clean) index.
func (s *Store) ExactLookup(titleClean, artistClean string) (bool, error) {
	var id int
	err := s.db.QueryRow(
		"SELECT id FROM library_index WHERE title_clean = ? AND artist_clean = ? LIMIT 1",
		titleClean, artistClean,
	).Scan(&id)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("exact lookup failed: %w", err)
	}
	return true, nil
}

// RelaxedLookup reports whether a row with the given cleaned title and an
// empty indexed artist exists. Handles compilation rows where artist metadata
// was never captured.
func (s *Store) RelaxedLookup(titleClean string) (bool, error) {
	var id int
	err := s.db.QueryRow(
		"SELECT id FROM library_index WHERE title_clean = ? AND artist_clean = '' LIMIT 1",
		titleClean,
	).Scan(&id)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("relaxed lookup failed: %w", err)
	}
	return true, nil
}

// CandidateLookup returns rows whose cleaned title or artist contains the
// first four characters of the query title or artist. A cheap, recall-widening
// pre-filter for the fuzzy tier; prefixes are only built from strings longer
// than four characters to avoid degenerate patterns.
func (s *Store) CandidateLookup(titleClean, artistClean string) ([]Candidate, error) {
	var patterns []string
	if len(titleClean) > prefixLen-1 {
		patterns = append(patterns, "%"+titleClean[:prefixLen]+"%")
	}
	if len(artistClean) > prefixLen-1 {
		patterns = append(patterns, "%"+artistClean[:prefixLen]+"%")
	}
	if len(patterns) == 0 {
		return nil, nil
	}

	var predicates []string
	var args []any
	for _, p := range patterns {
		predicates = append(predicates, "title_clean LIKE ? OR artist_clean LIKE ?")
		args = append(args, p, p)
	}

	query := "SELECT title_clean, artist_clean FROM library_index WHERE " + joinOr(predicates)
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("candidate lookup failed: %w", err)
	}
	defer rows.Close()

	var candidates []Candidate
	for rows.Next() {
		var c Candidate
		if err := rows.Scan(&c.TitleClean, &c.ArtistClean); err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}
		candidates = append(candidates, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return candidates, nil
}

// Clear removes all rows from the reference index. Used only at the start of
// a full re-index, never partially; callers serialize rebuilds externally.
func (s *Store) Clear() error {
	if _, err := s.db.Exec("DELETE FROM library_index"); err != nil {
		return fmt.Errorf("failed to clear index: %w", err)
	}
	return nil
}

// Stats returns aggregate counts for the index.
func (s *Store) Stats() (Stats, error) {
	var stats Stats
	err := s.db.QueryRow("SELECT COUNT(*) FROM library_index").Scan(&stats.TotalIndexed)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to count indexed tracks: %w", err)
	}
	return stats, nil
}

func joinOr(predicates []string) string {
	out := ""
	for i, p := range predicates {
		if i > 0 {
			out += " OR "
		}
		out += "(" + p + ")"
	}
	return out
}
