package index

import (
	"context"
	"database/sql"
	"testing"

	"trackdex/internal/models"
	"trackdex/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	// a single connection so every query sees the same in-memory database
	db.SetMaxOpenConns(1)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

func testRows() []models.IndexedTrack {
	return []models.IndexedTrack{
		{TitleClean: "bohemian rhapsody", ArtistClean: "queen", AlbumClean: "a night at the opera"},
		{TitleClean: "under pressure", ArtistClean: "queen", AlbumClean: "hot space"},
		{TitleClean: "instrumental interlude", ArtistClean: "", AlbumClean: "various"},
	}
}

func TestStoreBulkInsert(t *testing.T) {
	t.Run("inserts all rows", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		store := NewStore(db)
		inserted, err := store.BulkInsert(context.Background(), testRows())
		if err != nil {
			t.Fatalf("bulk insert failed: %v", err)
		}
		if inserted != 3 {
			t.Errorf("expected 3 inserted, got %d", inserted)
		}

		stats, err := store.Stats()
		if err != nil {
			t.Fatalf("stats failed: %v", err)
		}
		if stats.TotalIndexed != 3 {
			t.Errorf("expected 3 indexed, got %d", stats.TotalIndexed)
		}
	})

	t.Run("reinserting the same rows changes nothing", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		store := NewStore(db)
		if _, err := store.BulkInsert(context.Background(), testRows()); err != nil {
			t.Fatalf("first insert failed: %v", err)
		}

		inserted, err := store.BulkInsert(context.Background(), testRows())
		if err != nil {
			t.Fatalf("second insert failed: %v", err)
		}
		if inserted != 0 {
			t.Errorf("expected 0 inserted on duplicate run, got %d", inserted)
		}

		stats, _ := store.Stats()
		if stats.TotalIndexed != 3 {
			t.Errorf("expected count unchanged at 3, got %d", stats.TotalIndexed)
		}
	})

	t.Run("skips rows with no identity", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		store := NewStore(db)
		rows := []models.IndexedTrack{
			{TitleClean: "", ArtistClean: ""},
			{TitleClean: "real song", ArtistClean: "real artist"},
		}

		inserted, err := store.BulkInsert(context.Background(), rows)
		if err != nil {
			t.Fatalf("bulk insert failed: %v", err)
		}
		if inserted != 1 {
			t.Errorf("expected 1 inserted, got %d", inserted)
		}
	})

	t.Run("empty batch is a no-op", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		store := NewStore(db)
		inserted, err := store.BulkInsert(context.Background(), nil)
		if err != nil {
			t.Fatalf("bulk insert failed: %v", err)
		}
		if inserted != 0 {
			t.Errorf("expected 0 inserted, got %d", inserted)
		}
	})
}

func TestStoreAdd(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	store := NewStore(db)
	track := models.IndexedTrack{TitleClean: "new arrival", ArtistClean: "somebody"}

	if err := store.Add(track); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	// Adding the same row again is silently ignored.
	if err := store.Add(track); err != nil {
		t.Fatalf("duplicate add failed: %v", err)
	}

	stats, _ := store.Stats()
	if stats.TotalIndexed != 1 {
		t.Errorf("expected 1 indexed, got %d", stats.TotalIndexed)
	}
}

func TestStoreLookups(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	store := NewStore(db)
	if _, err := store.BulkInsert(context.Background(), testRows()); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	t.Run("exact hit", func(t *testing.T) {
		ok, err := store.ExactLookup("bohemian rhapsody", "queen")
		if err != nil {
			t.Fatalf("lookup failed: %v", err)
		}
		if !ok {
			t.Error("expected exact hit")
		}
	})

	t.Run("exact miss on wrong artist", func(t *testing.T) {
		ok, err := store.ExactLookup("bohemian rhapsody", "abba")
		if err != nil {
			t.Fatalf("lookup failed: %v", err)
		}
		if ok {
			t.Error("expected miss for wrong artist")
		}
	})

	t.Run("relaxed hit on empty indexed artist", func(t *testing.T) {
		ok, err := store.RelaxedLookup("instrumental interlude")
		if err != nil {
			t.Fatalf("lookup failed: %v", err)
		}
		if !ok {
			t.Error("expected relaxed hit")
		}
	})

	t.Run("relaxed miss when indexed artist is set", func(t *testing.T) {
		ok, err := store.RelaxedLookup("bohemian rhapsody")
		if err != nil {
			t.Fatalf("lookup failed: %v", err)
		}
		if ok {
			t.Error("expected miss: row has an artist")
		}
	})

	t.Run("candidates by title prefix", func(t *testing.T) {
		candidates, err := store.CandidateLookup("bohemian rapsody", "")
		if err != nil {
			t.Fatalf("lookup failed: %v", err)
		}
		if len(candidates) != 1 || candidates[0].TitleClean != "bohemian rhapsody" {
			t.Errorf("expected the bohemian rhapsody row, got %v", candidates)
		}
	})

	t.Run("candidates by artist prefix", func(t *testing.T) {
		candidates, err := store.CandidateLookup("xyz", "queen")
		if err != nil {
			t.Fatalf("lookup failed: %v", err)
		}
		if len(candidates) != 2 {
			t.Errorf("expected both queen rows, got %v", candidates)
		}
	})

	t.Run("short query yields no candidates", func(t *testing.T) {
		candidates, err := store.CandidateLookup("ab", "cd")
		if err != nil {
			t.Fatalf("lookup failed: %v", err)
		}
		if candidates != nil {
			t.Errorf("expected nil candidates, got %v", candidates)
		}
	})

	t.Run("lookups against an empty index miss cleanly", func(t *testing.T) {
		if err := store.Clear(); err != nil {
			t.Fatalf("clear failed: %v", err)
		}

		if ok, err := store.ExactLookup("bohemian rhapsody", "queen"); err != nil || ok {
			t.Errorf("expected clean miss, got ok=%v err=%v", ok, err)
		}
		if ok, err := store.RelaxedLookup("instrumental interlude"); err != nil || ok {
			t.Errorf("expected clean miss, got ok=%v err=%v", ok, err)
		}
		if candidates, err := store.CandidateLookup("bohemian rhapsody", "queen"); err != nil || len(candidates) != 0 {
			t.Errorf("expected no candidates, got %v err=%v", candidates, err)
		}
	})
}

func TestStoreClear(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	store := NewStore(db)
	if _, err := store.BulkInsert(context.Background(), testRows()); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("clear failed: %v", err)
	}

	stats, err := store.Stats()
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if stats.TotalIndexed != 0 {
		t.Errorf("expected empty index, got %d rows", stats.TotalIndexed)
	}
}
