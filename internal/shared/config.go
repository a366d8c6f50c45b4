package shared

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Catalog  CatalogConfig  `toml:"catalog"`
	Database DatabaseConfig `toml:"database"`
	Library  LibraryConfig  `toml:"library"`
	Indexer  IndexerConfig  `toml:"indexer"`
}

// CatalogConfig contains connection settings for the external media catalog.
type CatalogConfig struct {
	URL            string  `toml:"url"`
	Token          string  `toml:"token"`
	LibraryName    string  `toml:"library_name"`
	ConnectTimeout int     `toml:"connect_timeout"` // seconds; large catalogs are slow to enumerate
	RateLimit      float64 `toml:"rate_limit"`      // requests per second
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// LibraryConfig contains settings for the on-disk music library.
type LibraryConfig struct {
	MusicPath    string `toml:"music_path"`    // base path for the filesystem fallback probe
	ProbeTimeout int    `toml:"probe_timeout"` // seconds
}

// IndexerConfig contains batch indexing settings.
type IndexerConfig struct {
	BatchSize     int `toml:"batch_size"`
	RescanMinutes int `toml:"rescan_minutes"` // recency window for the incremental rescan path
	RescanLimit   int `toml:"rescan_limit"`
}

// ProbeTimeout returns the filesystem probe deadline as a duration.
func (c *Config) ProbeTimeout() time.Duration {
	if c.Library.ProbeTimeout <= 0 {
		return 5 * time.Second
	}
	return time.Duration(c.Library.ProbeTimeout) * time.Second
}

// CatalogTimeout returns the catalog HTTP timeout as a duration. Zero means
// the client default applies.
func (c *Config) CatalogTimeout() time.Duration {
	return time.Duration(c.Catalog.ConnectTimeout) * time.Second
}

// RescanWindow returns the recency window for incremental rescans.
func (c *Config) RescanWindow() time.Duration {
	if c.Indexer.RescanMinutes <= 0 {
		return 30 * time.Minute
	}
	return time.Duration(c.Indexer.RescanMinutes) * time.Minute
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	// Check if file already exists
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	// Write the embedded example config to the file
	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
