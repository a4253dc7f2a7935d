package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/kal997/file-interest-server/internal/config"
	"github.com/kal997/file-interest-server/internal/logger"
	"github.com/kal997/file-interest-server/internal/notifier"
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

	if !cfg.IsRedisNotifyEnabled() {
		log.Fatal("NOTIFY_REDIS must be enabled with a REDIS_HOST")
	}

	// Initialize notifier, worst case 5s before timeout
	redis, err := notifier.NewRedisNotifier(cfg.GetRedisAddr())
	if err != nil {
		log.Fatalf("Failed to initialize notifier: %v", err)
	}
	defer redis.Close()

	// Test notifier connection
	if err := redis.HealthCheck(context.Background()); err != nil {
		log.Fatalf("Notifier health check failed: %v", err)
	}

	// Initialize file logger
	fileLogger, err := logger.NewFileLogger(cfg.GetLogFile())
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer fileLogger.Close()

	log.Info("Starting fileserver-notify-logger")
	log.Infof("Connected to Redis at %s", cfg.GetRedisAddr())
	log.Infof("Logging to file: %s", cfg.GetLogFile())

	// Create context for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Subscribe to notifications for every file
	events, err := redis.Subscribe(ctx, []string{"*"})
	if err != nil {
		log.Fatalf("Failed to subscribe to notifications: %v", err)
	}

	log.Info("Listening for file notifications...")

	// Process events
	for {
		select {
		case <-ctx.Done():
			log.Info("Shutting down...")
			return
		case event, ok := <-events:
			if !ok {
				log.Info("Event channel closed")
				return
			}

			if err := fileLogger.LogEvent(ctx, event); err != nil {
				log.WithError(err).Warn("Failed to log event")
			} else {
				log.WithFields(logrus.Fields{
					"filename":        event.Filename,
					"subscription_id": event.SubscriptionID,
				}).Debug("Logged notification")
			}
		}
	}
}
