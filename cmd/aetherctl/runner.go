package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/aetherinc/aether-waitlist/config"
	"github.com/aetherinc/aether-waitlist/repository"
)

// Runner holds the dependencies shared by every command
type Runner struct {
	config *config.Config
	logger *log.Logger
	output io.Writer
	db     *gorm.DB
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config *config.Config
	Logger *log.Logger
	Output io.Writer
	DB     *gorm.DB
}

// NewRunner creates a Runner; the database is opened on first use unless opts.DB is set
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = config.FromEnv()
	}
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	return &Runner{
		config: opts.Config,
		logger: opts.Logger,
		output: opts.Output,
		db:     opts.DB,
	}
}

func (r *Runner) register() []*cli.Command {
	return []*cli.Command{
		migrateCommand(r),
		createAdminCommand(r),
		importToolsCommand(r),
		seedToolsCommand(r),
		sendTestEmailCommand(r),
		analyticsCommand(r),
	}
}

// database opens the configured store once and migrates it
func (r *Runner) database() (*gorm.DB, error) {
	if r.db != nil {
		return r.db, nil
	}
	db, err := repository.OpenDatabase(r.config.Database, zap.NewNop())
	if err != nil {
		return nil, err
	}
	if err := repository.Migrate(db); err != nil {
		_ = repository.CloseDatabase(db)
		return nil, err
	}
	r.logger.Debug("database ready", "driver", r.config.Database.Driver)
	r.db = db
	return db, nil
}

// Close releases the database if one was opened
func (r *Runner) Close() {
	if r.db == nil {
		return
	}
	if err := repository.CloseDatabase(r.db); err != nil {
		r.logger.Warn("failed to close database", "err", err)
	}
	r.db = nil
}

func (r *Runner) writePlainln(format string, args ...any) {
	fmt.Fprintf(r.output, format+"\n", args...)
}
