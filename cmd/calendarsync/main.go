package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"bookable/internal/calendar"
	calrepo "bookable/internal/calendar/repository"
	"bookable/pkg/config"
	"bookable/pkg/kafka"
	kafka_config "bookable/pkg/kafka/config"
	kafka_middleware "bookable/pkg/kafka/middleware"
	"bookable/pkg/model"

	"github.com/joho/godotenv"
)

const (
	ServiceName   = "calendarsync"
	ConsumerGroup = "calendarsync-workers"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.Client.GracefulShutdown()

	cfg.Log.Info("Starting Calendar Sync worker")

	connectionRepo := calrepo.NewMongoConnectionRepository(cfg)
	registry := calendar.NewDefaultRegistry(cfg)
	syncer := calendar.NewSyncer(connectionRepo, registry, cfg.Log)

	kafkaCfg := kafka_config.Load()
	consumer, err := kafka.NewConsumer(
		kafkaCfg,
		model.TopicReservationEvents,
		ConsumerGroup,
		model.TopicReservationEventsDLQ,
		syncer.HandleMessage,
	)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka consumer", "error", err)
	}

	consumer.Use(kafka_middleware.LoggingConsumerMiddleware(cfg.Log))
	consumer.Use(kafka_middleware.MetricsConsumerMiddleware())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		cfg.Log.Info("Shutdown signal received", "signal", sig.String())
		cancel()
	}()

	if err := consumer.Start(ctx); err != nil && ctx.Err() == nil {
		cfg.Log.Error("Consumer stopped with error", "error", err)
	}

	if err := consumer.Close(); err != nil {
		cfg.Log.Error("Failed to close consumer", "error", err)
	}
	cfg.Log.Info("Calendar Sync worker stopped")
}
