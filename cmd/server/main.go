package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"feedsight/internal/app"
	"feedsight/internal/config"
	"feedsight/internal/feedback"
	"feedsight/internal/httpapi"
	"feedsight/internal/logger"
)

func main() {
	_ = godotenv.Load()

	cfgPath := flag.String("config", "config.yaml", "Path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if port := os.Getenv("PORT"); port != "" {
		cfg.Server.Port = port
	}

	zl := logger.NewZapLogger(logger.Options{
		FilePath: cfg.Logging.FilePath,
		Level:    cfg.Logging.Level,
		JSON:     true,
	})
	defer zl.Sync()

	a, err := app.Build(context.Background(), cfg, zl)
	if err != nil {
		zl.Error("server", "failed to initialize", map[string]interface{}{"error": err})
		os.Exit(1)
	}
	defer a.Close()

	handler := httpapi.NewRouter(a.Service, feedback.NewRepository(a.DB), zl)

	// analysis runs are bounded by the service timeout; leave headroom for encoding
	writeTimeout := time.Duration(cfg.Server.AnalysisTimeoutSec+15) * time.Second
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: writeTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		zl.Info("server", "starting server", map[string]interface{}{"port": cfg.Server.Port})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Error("server", "server failed to start", map[string]interface{}{"error": err})
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zl.Info("server", "shutting down server", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zl.Error("server", "server forced to shutdown", map[string]interface{}{"error": err})
	}
	zl.Info("server", "server exited", nil)
}
