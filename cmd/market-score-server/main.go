package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iwvelando/market-score/internal/config"
	"github.com/iwvelando/market-score/internal/scoreconfig"
	"github.com/iwvelando/market-score/internal/server"
	"github.com/iwvelando/market-score/internal/store"
	"github.com/iwvelando/market-score/pkg/constants"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

var version = "dev"

func main() {
	// A missing .env file is fine
	_ = godotenv.Load()

	configLocation := flag.String("config", envOr("MARKET_SCORE_SERVER_CONFIG", constants.DefaultServerConfigFile), "path to server configuration file")
	address := flag.String("address", os.Getenv("MARKET_SCORE_ADDRESS"), "listen address override")
	databasePath := flag.String("db", os.Getenv("MARKET_SCORE_DB"), "SQLite database path override")
	logLevel := flag.String("log-level", os.Getenv("MARKET_SCORE_LOG_LEVEL"), "log level override (debug, info, warn, error)")
	flag.Parse()

	cfg, err := server.LoadConfig(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load server configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		os.Exit(1)
	}
	if *address != "" {
		cfg.Address = *address
	}

	logger, err := config.NewLogger(cfg.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	overrides, storePath := loadAppConfig(logger, cfg.ConfigFile)
	cfg.UseStorePath(storePath)
	if *databasePath != "" {
		cfg.DatabasePath = *databasePath
	}

	db, err := store.Open(ctx, cfg.DatabasePath, logger)
	if err != nil {
		logger.Fatal("failed to open keyword store",
			zap.String("op", "main"),
			zap.String("path", cfg.DatabasePath),
			zap.Error(err),
		)
	}
	defer func() {
		_ = db.Close()
	}()

	handler, err := server.NewHandler(ctx, logger, db, server.Options{
		Version:        version,
		MaxBodySize:    cfg.BodySizeBytes(),
		RequestTimeout: cfg.Timeout(),
		AllowedOrigins: cfg.AllowedOrigins,
		BaseOverrides:  overrides,
	})
	if err != nil {
		logger.Fatal("failed to build HTTP handler",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	srv := &http.Server{
		Addr:              cfg.Address,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("listening",
			zap.String("op", "main"),
			zap.String("address", cfg.Address),
			zap.String("version", version),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server stopped",
				zap.String("op", "main"),
				zap.Error(err),
			)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
}

// loadAppConfig reads the score overrides and store path from the
// application config file, if one is configured. Problems are logged and
// never fatal.
func loadAppConfig(logger *zap.Logger, path string) (map[string]scoreconfig.PartialScoreConfig, string) {
	if path == "" {
		return nil, ""
	}

	conf, err := config.LoadConfiguration(path)
	if err != nil {
		logger.Warn("ignoring application configuration file",
			zap.String("op", "main"),
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, ""
	}

	overrides, warnings := conf.ScoreOverrides()
	for _, warning := range warnings {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}
	return overrides, conf.Store.Path
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
