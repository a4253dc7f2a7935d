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
	"golang.org/x/sync/errgroup"

	"github.com/kal997/file-interest-server/internal/api"
	"github.com/kal997/file-interest-server/internal/config"
	"github.com/kal997/file-interest-server/internal/cron"
	"github.com/kal997/file-interest-server/internal/interest"
	"github.com/kal997/file-interest-server/internal/logger"
	"github.com/kal997/file-interest-server/internal/notifier"
	"github.com/kal997/file-interest-server/internal/service"
	"github.com/kal997/file-interest-server/internal/storage"
)

func main() {

	if value, ok := os.LookupEnv("ENV"); ok && value == "prod" {
		// In Docker/Compose, rely only on provided env vars
	} else {
		// Local dev: force load .env
		if err := godotenv.Overload(); err != nil {
			logrus.Fatalf("Could not load .env: %v", err)
		}
	}

	// Load configuration into config
	cfg, err := config.LoadFromEnv()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	if err := cfg.Validate(); err != nil {
		logrus.Fatalf("Invalid configuration: %v", err)
	}

	log, err := logger.New(string(cfg.GetLogLevel()))
	if err != nil {
		logrus.Fatalf("Failed to initialize logger: %v", err)
	}

	if err := run(cfg, log); err != nil {
		log.Fatalf("File server failed: %v", err)
	}
	log.Info("Server exited properly")
}

func run(cfg *config.Config, log *logrus.Logger) error {
	// Initialize storage
	store, err := storage.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.WithError(err).Warn("failed to close store")
		}
	}()

	// Test storage connection
	if err := store.HealthCheck(context.Background()); err != nil {
		return err
	}

	hub := notifier.NewHub(log)
	deliverers := notifier.Multi{notifier.NewLogDeliverer(log), hub}

	if cfg.IsRedisNotifyEnabled() {
		// The notify-logger process owns the audit file and reads events from Redis
		redis, err := notifier.NewRedisNotifier(cfg.GetRedisAddr())
		if err != nil {
			return err
		}
		defer redis.Close()
		deliverers = append(deliverers, redis)
		log.Infof("Publishing notifications to Redis at %s", cfg.GetRedisAddr())
	} else {
		audit, err := logger.NewFileLogger(cfg.GetLogFile())
		if err != nil {
			return err
		}
		defer audit.Close()
		deliverers = append(deliverers, notifier.NewAuditDeliverer(audit))
		log.Infof("Logging notifications to file: %s", cfg.GetLogFile())
	}

	svc := service.New(store, interest.NewRegistry(), deliverers, log)
	handler := api.NewHandler(svc, cfg.GetMaxUploadBytes(), log)

	server := &http.Server{
		Addr:              cfg.GetHTTPAddr(),
		Handler:           api.NewContainer(handler, hub, log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Create context for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.WithFields(logrus.Fields{
			"addr":    cfg.GetHTTPAddr(),
			"backend": cfg.GetStoreBackend(),
		}).Info("Starting file server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down server...")

		_ = hub.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if schedule := cfg.GetSweepSchedule(); schedule != "" {
		sweeper := cron.NewManager(log, schedule, svc)
		g.Go(func() error {
			return sweeper.Run(gctx)
		})
	}

	return g.Wait()
}
