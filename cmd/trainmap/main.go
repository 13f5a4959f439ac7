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

	"github.com/getsentry/sentry-go"
	"github.com/joho/godotenv"
	"trainmap.dev/internal/app"
	"trainmap.dev/internal/config"
	"trainmap.dev/internal/publisher"
	"trainmap.dev/internal/report"
)

const version = "1.0.0"

func main() {
	var (
		port       int
		env        string
		configFile string
		configURL  string
	)
	flag.IntVar(&port, "port", 4000, "API server port")
	flag.StringVar(&env, "env", "development", "Environment (development|staging|production)")
	flag.StringVar(&configFile, "config-file", "", "Path to a local JSON or YAML configuration file")
	flag.StringVar(&configURL, "config-url", "", "URL to a remote JSON or YAML configuration file")
	flag.Parse()

	// A missing .env file is fine; the environment may already be set.
	_ = godotenv.Load()

	if err := config.ValidateConfigFlags(&configFile, &configURL); err != nil {
		fmt.Println("Error:", err)
		flag.Usage()
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	if err := report.SetupSentry(env, version); err != nil {
		logger.Error("Failed to initialize Sentry", "error", err)
	}
	defer report.FlushSentry()
	report.ConfigureScope(env, version)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := app.NewPooledClient(30 * time.Second)

	var (
		settings config.Settings
		err      error
	)
	if configFile != "" {
		settings, err = config.LoadSettingsFromFile(configFile)
	} else {
		settings, err = config.LoadSettingsFromURL(ctx, client, configURL, os.Getenv("CONFIG_AUTH_USER"), os.Getenv("CONFIG_AUTH_PASS"))
	}
	if err != nil {
		logger.Error("Failed to load configuration", "error", err)
		report.FlushSentry()
		os.Exit(1)
	}

	cfg := config.NewConfig(port, env, settings)
	application := app.New(cfg, logger, client, version)

	if settings.NATS.URL != "" {
		pub, err := publisher.NewNATSPublisher(settings.NATS.URL, settings.NATS.SubjectPrefix, logger)
		if err != nil {
			logger.Error("Failed to connect publisher", "error", err)
			report.ReportError(err)
		} else {
			defer pub.Close()
			application.Poller.Publisher = pub
		}
	}

	go application.Poller.Run(ctx)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      application.Routes(ctx),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("starting server", "addr", srv.Addr, "env", cfg.Env, "feed_id", settings.Feed.FeedID)
		serverErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if !errors.Is(err, http.ErrServerClosed) {
			report.ReportError(err, sentry.LevelFatal)
			report.FlushSentry()
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Graceful shutdown failed", "error", err)
		}
	}
}
