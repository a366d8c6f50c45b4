package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"trackdex/internal/catalog"
	"trackdex/internal/index"
	"trackdex/internal/ledger"
	"trackdex/internal/matcher"
	"trackdex/internal/shared"
	"trackdex/internal/tasks"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	db         *sql.DB
	source     catalog.Source
	store      *index.Store
	engine     *matcher.Engine
	ledger     *ledger.Repository
	indexer    *tasks.Indexer
	reconciler *tasks.Reconciler
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config *shared.Config
	DB     *sql.DB
	Source catalog.Source
	Logger *log.Logger
	Output io.Writer
}

// NewRunner creates a new Runner with the provided configuration.
//
// The store, match engine, ledger and task runners are derived from the
// database handle; when DB is nil (setup has not run yet) those stay nil and
// each action reports the missing prerequisite instead of panicking.
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	r := &Runner{
		config: opts.Config,
		db:     opts.DB,
		source: opts.Source,
		logger: opts.Logger,
		output: opts.Output,
	}

	if opts.DB != nil {
		r.store = index.NewStore(opts.DB)
		r.ledger = ledger.NewRepository(opts.DB)

		prober := matcher.NewProber(opts.Config.Library.MusicPath, opts.Config.ProbeTimeout())
		r.engine = matcher.NewEngine(r.store, prober, opts.Logger)
		r.reconciler = tasks.NewReconciler(r.ledger, r.engine, opts.Logger)

		if opts.Source != nil {
			r.indexer = tasks.NewIndexer(opts.Source, r.store, opts.Logger)
			if opts.Config.Indexer.BatchSize > 0 {
				r.indexer.BatchSize = opts.Config.Indexer.BatchSize
			}
		}
	}

	return r
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, indexCommand, missingCommand, verifyCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// requireStore guards actions that need an initialized database.
func (r *Runner) requireStore() error {
	if r.db == nil || r.store == nil {
		return fmt.Errorf("%w: database not initialized, run 'trackdex setup' first", shared.ErrMissingConfig)
	}
	return nil
}

// requireCatalog guards actions that talk to the external catalog.
func (r *Runner) requireCatalog() error {
	if r.source == nil || r.indexer == nil {
		return fmt.Errorf("%w: catalog url and token must be set in config.toml", shared.ErrMissingConfig)
	}
	return nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
