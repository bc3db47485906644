package main

import (
	"context"
	"errors"
	"time"

	"salonbook/internal/notifications"
	"salonbook/internal/notifications/handler"
	"salonbook/pkg/app"
	"salonbook/pkg/config"
	"salonbook/pkg/kafka"
	kafka_config "salonbook/pkg/kafka/config"
	kafka_middleware "salonbook/pkg/kafka/middleware"
	"salonbook/pkg/metrics"
)

const ServiceName = "notifier"

func main() {
	cfg := config.Load(ServiceName)

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal("Invalid configuration", "error", err)
	}
	cfg.LogConfiguration()

	cfg.Log.Info("Starting Notifier service")
	serverApp := app.NewApplication(cfg)
	broker := notifications.NewBroker(notifications.DefaultBufferSize, notifications.DefaultHistorySize, cfg.Log)
	consumer := initConsumer(cfg, serverApp, broker)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			cfg.Log.Error("Kafka consumer exited", "error", err)
		}
	}()

	serverApp.OnShutdown(func() {
		cancel()
		<-done
		if err := consumer.Close(); err != nil {
			cfg.Log.Error("Failed to close Kafka consumer", "error", err)
		}
		broker.Close()
	})

	// Polls must finish before the request timeout middleware cuts them off.
	maxWait := max(cfg.RequestTimeout-time.Second, time.Second)
	serverApp.SetApp(handler.NewNotificationHandler(broker, maxWait, cfg.Log))
	serverApp.Run()
}

func initConsumer(cfg *config.Config, serverApp *app.Application, broker *notifications.Broker) *kafka.Consumer {
	kafkaCfg := kafka_config.Load(cfg.Log)

	consumer, err := kafka.NewConsumer(kafkaCfg, broker.HandleMessage, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka consumer", "error", err)
	}

	if kafkaCfg.EnableMiddleware {
		consumer.Use(kafka_middleware.LoggingConsumerMiddleware(cfg.Log))
		consumer.Use(kafka_middleware.MetricsConsumerMiddleware(metrics.NewKafkaMetrics(serverApp.Registry())))
	}

	cfg.Log.Info("Notifier consumer initialized", "topic", kafkaCfg.Topics.Appointments, "group_id", kafkaCfg.Topics.NotifierGroupID)
	return consumer
}
