package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/reefnet/wholesale/internal/catalog"
	"github.com/reefnet/wholesale/internal/config"
	"github.com/reefnet/wholesale/internal/db"
	"github.com/reefnet/wholesale/internal/logger"
	"github.com/reefnet/wholesale/internal/migrations"
	"github.com/reefnet/wholesale/internal/notify"
	"github.com/reefnet/wholesale/internal/quote"
	"github.com/reefnet/wholesale/internal/seed"
	"github.com/reefnet/wholesale/internal/settings"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load("")
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	database, err := db.Open(ctx, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	if cfg.IsDev() || cfg.AutoMigrate {
		if err := migrations.Up(ctx, database); err != nil {
			return fmt.Errorf("failed to run database migrations: %w", err)
		}
	}

	stats, err := seed.Run(ctx, database, catalog.Default())
	if err != nil {
		return fmt.Errorf("failed to seed database: %w", err)
	}
	log.Info("seed complete",
		zap.Int("inserts", stats.Inserts),
		zap.Int("updates", stats.Updates),
		zap.Int("deletes", stats.Deletes))

	cat, err := catalog.Load(ctx, database)
	if err != nil {
		return fmt.Errorf("failed to load processing catalog: %w", err)
	}

	var opts []quote.Option
	notifier, err := notify.New(notify.Config{
		Endpoint:   cfg.Notify.Endpoint,
		AccessKey:  cfg.Notify.AccessKey,
		To:         cfg.Notify.To,
		Timeout:    cfg.Notify.Timeout,
		MaxElapsed: cfg.Notify.MaxElapsed,
	}, log.Named("notify"))
	switch {
	case errors.Is(err, notify.ErrDisabled):
		log.Warn("quote notifications disabled: NOTIFY_ACCESS_KEY is not set")
	case err != nil:
		return fmt.Errorf("failed to build notifier: %w", err)
	default:
		opts = append(opts, quote.WithNotifier(notifier), quote.WithNotifyTimeout(cfg.Notify.MaxElapsed+cfg.Notify.Timeout))
	}

	quotes := quote.NewService(quote.NewSQLStore(database), log.Named("quote"), opts...)
	defer quotes.Wait()

	srv := &server{
		settings: settings.NewSQLStore(database),
		catalog:  cat,
		quotes:   quotes,
		logger:   log,
	}

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", httpServer.Addr))
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server stopped: %w", err)
		}
	case <-ctx.Done():
		shutdownCtx, stop := context.WithTimeout(context.Background(), 15*time.Second)
		defer stop()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		log.Info("server shutdown gracefully")
	}

	return nil
}
