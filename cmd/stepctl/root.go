package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	_ "modernc.org/sqlite"

	"github.com/petrijr/stepflow/internal/catalog"
	"github.com/petrijr/stepflow/internal/config"
	"github.com/petrijr/stepflow/internal/logging"
)

// app carries the state shared by all subcommands of one invocation.
type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     config.Config
	logger  *slog.Logger

	out    io.Writer
	errOut io.Writer
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	a := &app{
		v:      viper.New(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		out:    out,
		errOut: errOut,
	}

	cmd := &cobra.Command{
		Use:   "stepctl",
		Short: "Inspect published workflow step catalogs",
		Long: `stepctl reads the step catalogs that stepflow workflows publish to a
SQLite database. It lists catalogued workflows, prints the steps of a
workflow with their accepted and emitted events, and exports or imports
catalog snapshots as YAML or JSON.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}
	cmd.SetOut(out)
	cmd.SetErr(errOut)

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default is stepctl.yaml in standard locations)")
	flags.String("db", config.DefaultDB, "SQLite catalog database")
	flags.String("log-level", config.DefaultLogLevel, "Log level: debug, info, warn or error")
	flags.String("log-format", config.DefaultLogFormat, "Log format: json or text")

	_ = a.v.BindPFlag("db", flags.Lookup("db"))
	_ = a.v.BindPFlag("log_level", flags.Lookup("log-level"))
	_ = a.v.BindPFlag("log_format", flags.Lookup("log-format"))

	cmd.AddCommand(
		a.workflowsCmd(),
		a.stepsCmd(),
		a.exportCmd(),
		a.importCmd(),
	)
	return cmd
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(a.v, a.cfgFile)
	if err != nil {
		return err
	}
	a.cfg = cfg

	// Load has already validated the level.
	level, _ := logging.ParseLevel(cfg.LogLevel)
	a.logger = logging.New(a.errOut, level, cfg.LogFormat)
	a.logger.Debug("config_loaded",
		slog.String("db", cfg.DB),
		slog.String("config_file", cfg.File),
	)
	return nil
}

// withStore opens the catalog database for the duration of fn.
func (a *app) withStore(ctx context.Context, fn func(catalog.Store) error) error {
	db, err := sql.Open("sqlite", a.cfg.DB)
	if err != nil {
		return fmt.Errorf("open catalog %s: %w", a.cfg.DB, err)
	}
	defer func() { _ = db.Close() }()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("open catalog %s: %w", a.cfg.DB, err)
	}
	store, err := catalog.NewSQLiteStore(db)
	if err != nil {
		return fmt.Errorf("init catalog %s: %w", a.cfg.DB, err)
	}
	a.logger.Debug("catalog_opened", slog.String("db", a.cfg.DB))
	return fn(store)
}
