// Package main provides the reefnet operator CLI: offline price calculations
// and quote-book maintenance against the service's SQLite database.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/reefnet/wholesale/internal/catalog"
	"github.com/reefnet/wholesale/internal/db"
	"github.com/reefnet/wholesale/internal/logger"
	"github.com/reefnet/wholesale/internal/migrations"
	"github.com/reefnet/wholesale/internal/quote"
	"github.com/reefnet/wholesale/internal/seed"
	"github.com/reefnet/wholesale/internal/settings"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app holds what the commands share once the root command has run.
type app struct {
	configFile string

	cfg      *viper.Viper
	log      *zap.Logger
	db       *sql.DB
	catalog  *catalog.Catalog
	settings *settings.SQLStore
	quotes   *quote.Service
}

func newRootCmd() *cobra.Command {
	a := &app{catalog: catalog.Default()}

	root := &cobra.Command{
		Use:   "reefnet",
		Short: "Reefnet wholesale salmon pricing",
		Long: `reefnet prices wholesale salmon lots and manages saved quotes.

It reads the same SQLite database as the HTTP service. The database path
comes from --db, REEFNET_DB_PATH or db_path in reefnet.yaml.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return a.open(cmd.Context(), root, cmd)
	}
	root.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		return a.close()
	}

	root.PersistentFlags().StringVar(&a.configFile, "config", "", "config file (default: ./reefnet.yaml)")
	root.PersistentFlags().String("db", "", "SQLite database path")
	root.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")

	root.AddCommand(newOptionsCmd(a))
	root.AddCommand(withDatabase(newCalcCmd(a)))
	root.AddCommand(newSettingsCmd(a))
	root.AddCommand(newQuotesCmd(a))

	return root
}

const annotationDatabase = "reefnet.database"

// withDatabase marks cmd as needing the opened database.
func withDatabase(cmd *cobra.Command) *cobra.Command {
	if cmd.Annotations == nil {
		cmd.Annotations = map[string]string{}
	}
	cmd.Annotations[annotationDatabase] = "true"
	return cmd
}

func usesDatabase(cmd *cobra.Command) bool {
	return cmd.Annotations[annotationDatabase] == "true"
}

// open loads config and, for commands marked withDatabase, opens, migrates
// and seeds the database. Help, completion and options never touch it.
func (a *app) open(ctx context.Context, root, cmd *cobra.Command) error {
	cfg, err := loadConfig(a.configFile, root)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	a.cfg = cfg

	log, err := logger.New(cfg.GetString(cfgKeyLogLevel))
	if err != nil {
		return err
	}
	a.log = log

	if !usesDatabase(cmd) {
		return nil
	}

	database, err := db.Open(ctx, cfg.GetString(cfgKeyDBPath))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	a.db = database

	if err := migrations.Up(ctx, database); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	stats, err := seed.Run(ctx, database, catalog.Default())
	if err != nil {
		return fmt.Errorf("seed database: %w", err)
	}
	a.log.Debug("seed complete",
		zap.Int("inserts", stats.Inserts),
		zap.Int("updates", stats.Updates),
		zap.Int("deletes", stats.Deletes))

	cat, err := catalog.Load(ctx, database)
	if err != nil {
		return fmt.Errorf("load processing catalog: %w", err)
	}
	a.catalog = cat

	a.settings = settings.NewSQLStore(database)
	a.quotes = quote.NewService(quote.NewSQLStore(database), a.log.Named("quote"))
	return nil
}

func (a *app) close() error {
	if a.log != nil {
		_ = a.log.Sync()
	}
	if a.db != nil {
		err := a.db.Close()
		a.db = nil
		return err
	}
	return nil
}
