package main

import (
	"context"
	"database/sql"
	"errors"
	"os"

	"github.com/urfave/cli/v3"

	"trackdex/internal/catalog"
	"trackdex/internal/shared"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		}
	}

	var source catalog.Source
	if config.Catalog.URL != "" && config.Catalog.Token != "" {
		source = catalog.NewPlexSource(catalog.PlexOpts{
			URL:            config.Catalog.URL,
			Token:          config.Catalog.Token,
			LibraryName:    config.Catalog.LibraryName,
			ConnectTimeout: config.CatalogTimeout(),
			RateLimit:      config.Catalog.RateLimit,
		})
	}

	var db *sql.DB
	if _, err := os.Stat(config.Database.Path); err == nil {
		if db, err = shared.NewDatabase(config.Database.Path); err == nil {
			shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)
			defer db.Close()
		} else {
			logger.Warn("failed to open database", "path", config.Database.Path, "error", err)
		}
	}

	runner := NewRunner(RunnerOpts{
		Config: config,
		DB:     db,
		Source: source,
		Logger: logger,
	})

	app := &cli.Command{
		Name:     "trackdex",
		Usage:    "Index a media catalog and verify track availability",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		err_ := errors.Unwrap(err)
		if errors.Is(err_, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		} else {
			logger.Fatalf("application error: %v", err)
		}
	}
}

func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Initialize database and run migrations",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
		},
		Action: r.Setup,
	}
}
