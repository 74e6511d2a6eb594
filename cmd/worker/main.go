package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ppsu-social/ppsu-social/internal/config"
	"github.com/ppsu-social/ppsu-social/internal/repository"
	"github.com/ppsu-social/ppsu-social/internal/workers"
	"github.com/ppsu-social/ppsu-social/pkg/logger"
	"github.com/ppsu-social/ppsu-social/pkg/queue"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := logger.NewLogger()
	logger.Info("Starting PPSU Social worker...")

	db, err := repository.NewDatabase(&cfg.Database)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	consumer := queue.NewKafkaConsumer(cfg.Kafka.Brokers, cfg.Kafka.Topics.EngagementEvents, "notification-worker-group")
	defer consumer.Close()

	notificationRepo := repository.NewNotificationRepository(db.DB)
	storyRepo := repository.NewStoryRepository(db.DB)

	notificationWorker := workers.NewNotificationWorker(notificationRepo, consumer, logger)
	storyPurger := workers.NewStoryPurger(storyRepo, time.Hour, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := notificationWorker.Start(ctx); err != nil && ctx.Err() == nil {
			logger.WithError(err).Error("Notification worker stopped with error")
		}
	}()

	go storyPurger.Start(ctx)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down worker...")
	cancel()

	if err := notificationWorker.Stop(); err != nil {
		logger.WithError(err).Error("Failed to stop notification worker")
	}

	logger.Info("Worker exited")
}
