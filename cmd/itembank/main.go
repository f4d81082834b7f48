package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/mind-engage/itembank/internal/config"
	"github.com/mind-engage/itembank/internal/db"
	"github.com/mind-engage/itembank/internal/logging"
)

var (
	cfg = config.FromEnv()

	flagDBDriver string
	flagDBDSN    string
)

var rootCmd = &cobra.Command{
	Use:   "itembank",
	Short: "Item bank backend",
	Long: `itembank loads item-bank spreadsheets into a relational store and serves
a filterable, paginated item API over HTTP.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDBDriver, "db-driver", "", "store driver: sqlite|postgres (env DB_DRIVER)")
	rootCmd.PersistentFlags().StringVar(&flagDBDSN, "db-dsn", "", "store DSN (env DB_DSN; sqlite defaults to DB_PATH)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger() zerolog.Logger {
	return logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)
}

// openStore applies flag overrides and opens the configured store.
func openStore(ctx context.Context) (*sql.DB, db.Driver, error) {
	if flagDBDriver != "" {
		cfg.DBDriver = flagDBDriver
	}
	if flagDBDSN != "" {
		cfg.DBDSN = flagDBDSN
	}
	driver, err := db.ParseDriver(cfg.DBDriver)
	if err != nil {
		return nil, "", err
	}
	dsn := cfg.DBDSN
	if dsn == "" {
		if driver != db.DriverSQLite {
			return nil, "", fmt.Errorf("DB_DSN is required for %s", driver)
		}
		if dsn, err = db.SQLiteDSN(cfg.DBPath); err != nil {
			return nil, "", err
		}
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	h, err := db.Open(ctx, driver, dsn)
	if err != nil {
		return nil, "", fmt.Errorf("db open: %w", err)
	}
	return h, driver, nil
}
