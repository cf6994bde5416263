package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"avrora/internal/config"
	apphttp "avrora/internal/http"
	applog "avrora/internal/log"
	"avrora/internal/sheets"
	"avrora/internal/sheets/export"
	gsheet "avrora/internal/sheets/google"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	logger := applog.New(applog.Config{
		Level:     applog.ParseLevel(cfg.LogLevel),
		Component: "app",
	})
	applog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	var secondary sheets.WorkbookReader
	if gsheet.Configured() {
		google, err := gsheet.NewFromEnv(context.Background())
		if err != nil {
			logger.Warn("sheets api fallback disabled", "error", err)
		} else {
			secondary = google
			logger.Info("sheets api fallback enabled")
		}
	}
	reader := sheets.NewFallback(export.New(cfg.FetchTimeout), secondary)
	cached := sheets.NewCached(reader, cfg.CacheTTL, cfg.CacheMaxEntries)

	srv := apphttp.NewServer(cfg, cached, cached, logger.WithComponent("http"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("starting server", "port", cfg.Port, "sources", len(cfg.Cities))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("server stopped")
}
