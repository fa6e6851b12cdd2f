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
	"github.com/sirupsen/logrus"

	"call-dashboard-go/internal/config"
	"call-dashboard-go/internal/dataset"
	"call-dashboard-go/internal/httpapi"
	"call-dashboard-go/internal/logger"
	"call-dashboard-go/internal/metrics"
	"call-dashboard-go/internal/pipeline"
)

func main() {
	_ = godotenv.Load() // loads .env

	cfg, err := config.Load()
	if err != nil {
		logger.New().WithError(err).Fatal("invalid configuration")
	}

	log := logger.NewWith(cfg.Environment, cfg.LogLevel, os.Stdout)
	log.WithFields(logrus.Fields{
		"service":         "call-dashboard-go",
		"port":            cfg.Port,
		"display_tz":      cfg.Location.String(),
		"allowed_origins": cfg.AllowedOrigins,
	}).Info("starting service")

	// remote endpoint wins over the local sheet when both are set
	var source pipeline.Source
	if cfg.DataSourceURL != "" {
		log.WithFields(logrus.Fields{
			"url":         cfg.DataSourceURL,
			"timeout_sec": int(cfg.FetchTimeout / time.Second),
			"retries":     cfg.FetchRetries,
		}).Info("using remote data source")
		source = dataset.NewRemoteSource(cfg.DataSourceURL, cfg.FetchTimeout, cfg.FetchRetries, log)
	} else {
		log.WithField("dataset_path", cfg.DatasetPath).Info("using spreadsheet data source")
		source = dataset.NewSheetSource(cfg.DatasetPath, log)
	}

	m := metrics.New()
	svc := pipeline.New(source, cfg.Location, log, m)

	// the API serves 503 until a refresh succeeds, so a failed first load is not fatal
	if _, err := svc.Refresh(context.Background()); err != nil {
		log.WithError(err).WithField("kind", dataset.Kind(err)).Warn("initial load failed")
	}

	api := httpapi.NewServer(svc, m, log, cfg.AllowedOrigins)
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      api.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.FetchTimeout + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.WithField("addr", srv.Addr).Info("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server terminated")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("forced shutdown")
		return
	}
	log.Info("server stopped")
}
