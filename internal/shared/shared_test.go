package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.Catalog.LibraryName != "Music" {
		t.Errorf("unexpected default library name: %s", config.Catalog.LibraryName)
	}
	if config.Database.Path == "" {
		t.Error("default database path should not be empty")
	}
	if config.Indexer.BatchSize != 2500 {
		t.Errorf("unexpected default batch size: %d", config.Indexer.BatchSize)
	}
}

func TestConfigDurations(t *testing.T) {
	config := DefaultConfig()

	if got := config.ProbeTimeout(); got != 5*time.Second {
		t.Errorf("unexpected probe timeout: %s", got)
	}
	if got := config.CatalogTimeout(); got != 120*time.Second {
		t.Errorf("unexpected catalog timeout: %s", got)
	}
	if got := config.RescanWindow(); got != 30*time.Minute {
		t.Errorf("unexpected rescan window: %s", got)
	}

	// Zeroed settings fall back rather than producing zero durations.
	config.Library.ProbeTimeout = 0
	config.Indexer.RescanMinutes = 0
	if config.ProbeTimeout() <= 0 || config.RescanWindow() <= 0 {
		t.Error("expected positive fallback durations")
	}
}

func TestLoadConfig(t *testing.T) {
	t.Run("round-trips a created config file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")

		if err := CreateConfigFile(path); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		config, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}
		if config.Catalog.LibraryName != "Music" {
			t.Errorf("unexpected library name: %s", config.Catalog.LibraryName)
		}
	})

	t.Run("refuses to overwrite an existing file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(path, []byte("# mine"), 0644); err != nil {
			t.Fatalf("failed to write file: %v", err)
		}

		if err := CreateConfigFile(path); err == nil {
			t.Error("expected error for existing file")
		}
	})

	t.Run("missing file errors", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
			t.Error("expected error for missing file")
		}
	})

	t.Run("malformed TOML errors", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(path, []byte("[catalog\nbroken"), 0644); err != nil {
			t.Fatalf("failed to write file: %v", err)
		}

		if _, err := LoadConfig(path); err == nil {
			t.Error("expected parse error")
		}
	})
}

func TestNewDatabase(t *testing.T) {
	t.Run("in-memory database", func(t *testing.T) {
		db, err := NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		if err := db.Ping(); err != nil {
			t.Errorf("ping failed: %v", err)
		}
	})

	t.Run("file-backed database", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "test.db")

		db, err := NewDatabase(path)
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		if _, err := db.Exec("CREATE TABLE probe (id INTEGER)"); err != nil {
			t.Errorf("write failed: %v", err)
		}
		if _, err := os.Stat(path); err != nil {
			t.Errorf("database file not created: %v", err)
		}
	})
}

func TestMigrations(t *testing.T) {
	db, err := NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	db.SetMaxOpenConns(1)

	if err := RunMigrations(db); err != nil {
		t.Fatalf("migrations failed: %v", err)
	}

	for _, table := range []string{"library_index", "missing_tracks"} {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&name)
		if err != nil {
			t.Errorf("expected table %s to exist: %v", table, err)
		}
	}

	// Running migrations again is a no-op.
	if err := RunMigrations(db); err != nil {
		t.Errorf("re-running migrations failed: %v", err)
	}

	t.Run("rollback drops the tables", func(t *testing.T) {
		if err := RollbackMigration(db); err != nil {
			t.Fatalf("rollback failed: %v", err)
		}

		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'library_index'").Scan(&name)
		if err == nil {
			t.Error("expected library_index to be dropped")
		}
	})
}

func TestGenerateID(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := GenerateID()
		if id == "" {
			t.Fatal("empty ID")
		}
		if seen[id] {
			t.Fatalf("duplicate ID: %s", id)
		}
		seen[id] = true
	}
}

func TestRetry(t *testing.T) {
	t.Run("returns nil on first success", func(t *testing.T) {
		calls := 0
		err := Retry(RetryOpts{BaseDelay: time.Millisecond}, func() error {
			calls++
			return nil
		})
		if err != nil || calls != 1 {
			t.Errorf("expected single successful call, got calls=%d err=%v", calls, err)
		}
	})

	t.Run("retries until success", func(t *testing.T) {
		calls := 0
		err := Retry(RetryOpts{MaxAttempts: 3, BaseDelay: time.Millisecond}, func() error {
			calls++
			if calls < 3 {
				return errors.New("transient")
			}
			return nil
		})
		if err != nil || calls != 3 {
			t.Errorf("expected success on third call, got calls=%d err=%v", calls, err)
		}
	})

	t.Run("gives up after max attempts", func(t *testing.T) {
		calls := 0
		sentinel := errors.New("permanent")
		err := Retry(RetryOpts{MaxAttempts: 2, BaseDelay: time.Millisecond}, func() error {
			calls++
			return sentinel
		})
		if calls != 2 {
			t.Errorf("expected 2 calls, got %d", calls)
		}
		if !errors.Is(err, sentinel) {
			t.Errorf("expected wrapped sentinel, got %v", err)
		}
	})
}
