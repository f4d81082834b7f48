package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	api "github.com/mind-engage/itembank/internal/api/http"
	"github.com/mind-engage/itembank/internal/ingest"
	"github.com/mind-engage/itembank/internal/item"
	"github.com/mind-engage/itembank/internal/storage"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (env HTTP_ADDR, default :8000)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	logger := newLogger()
	if serveAddr != "" {
		cfg.HTTPAddr = serveAddr
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbh, driver, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer dbh.Close()

	src, err := storage.NewFSStore(cfg.DataDir)
	if err != nil {
		return err
	}

	defaults := api.IngestDefaults{
		ExcelPath:  cfg.DefaultExcelPath,
		SheetIndex: cfg.DefaultSheetIndex,
	}
	handler := api.NewRouter(api.Deps{
		Ingest:      ingest.NewService(dbh, driver),
		Items:       item.NewSQLStore(dbh, driver),
		Sources:     src,
		Logger:      logger,
		Defaults:    defaults,
		CORSOrigins: cfg.CORSOrigins,
		Timeout:     cfg.RequestTimeout,
	})
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.HTTPAddr).Str("db", string(driver)).Str("data_dir", cfg.DataDir).Msg("listening")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
