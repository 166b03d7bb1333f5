package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

func main() {
	configPath := flag.String("config", "./config.json", "path to the JSON configuration file")
	flag.Parse()

	baseLogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	actionChan := make(chan string, 1)

	go func() {
		osSignalChan := make(chan os.Signal, 1)
		signal.Notify(osSignalChan, syscall.SIGINT, syscall.SIGTERM)
		<-osSignalChan
		baseLogger.Info("OS signal received, initiating shutdown.")
		actionChan <- actionShutdown
	}()

	for {
		action, err := run(*configPath, actionChan)
		if err != nil {
			baseLogger.Error("An error occurred during server run, shutting down.", "error", err)
			os.Exit(1)
		}
		if action != actionRestart {
			break
		}
		baseLogger.Info("--- Server Restarting ---")
	}

	baseLogger.Info("babble has shut down.")
}

// run hosts the server for one cycle and returns whenever it is shut down or restarted.
func run(configPath string, actionChan chan string) (string, error) {
	config, err := LoadConfig(configPath)
	if err != nil {
		return "", fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: config.Server.logLevel()}))
	logger.Info("Starting server cycle...", "version", Version)

	if err = os.MkdirAll(config.Server.DataDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create data directory: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := initDB(ctx, config.Server.DatabasePath)
	cancel()
	if err != nil {
		return "", fmt.Errorf("failed to initialize database: %w", err)
	}

	// A fresh registry per cycle, so a restart never registers a collector twice.
	var reg *prometheus.Registry
	if config.Server.MetricsEnabled {
		reg = prometheus.NewRegistry()
	}
	server, err := NewServer(config, logger, db, reg, actionChan)
	if err != nil {
		_ = db.Close()
		return "", fmt.Errorf("failed to create server object: %w", err)
	}

	httpServer := &http.Server{
		Addr:              config.Server.ServerAddr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Starting babble server", "address", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed", "error", err)
			actionChan <- actionShutdown
		}
	}()

	action := <-actionChan // Block here until the API or an OS signal sends an action.

	logger.Info("Stopping server for " + action + "...")
	ctx, cancel = context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err = httpServer.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown failed", "error", err)
	}
	logger.Info("HTTP server stopped.")

	server.Close()
	logger.Info("Closing database connection.")
	if err = db.Close(); err != nil {
		logger.Error("Failed to close database", "error", err)
	}

	return action, nil
}
