package main

import (
	"salonbook/internal/appointments/events"
	"salonbook/internal/appointments/handler"
	"salonbook/internal/appointments/repository"
	"salonbook/internal/appointments/service"
	"salonbook/internal/appointments/validator"
	"salonbook/pkg/app"
	"salonbook/pkg/config"
	"salonbook/pkg/kafka"
	kafka_config "salonbook/pkg/kafka/config"
	kafka_middleware "salonbook/pkg/kafka/middleware"
	"salonbook/pkg/metrics"
)

const ServiceName = "appointments"

func main() {
	cfg := config.Load(ServiceName)

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal("Invalid configuration", "error", err)
	}
	cfg.LogConfiguration()

	cfg.Log.Info("Starting Appointments service")
	cfg.SetMongo()

	serverApp := app.NewApplication(cfg)
	serverApp.AddReadinessCheck("mongo", app.MongoCheck(cfg.Client.Mongo))

	producer := initProducer(cfg, serverApp)
	serverApp.OnShutdown(func() {
		if err := producer.Close(); err != nil {
			cfg.Log.Error("Failed to close Kafka producer", "error", err)
		}
	})

	appointmentService := service.NewAppointmentService(
		repository.NewMongoAppointmentRepository(cfg),
		repository.NewMongoLockRepository(cfg),
		events.NewKafkaPublisher(producer),
		validator.NewAppointmentValidator(cfg.Log),
		metrics.NewAppointmentMetrics(serverApp.Registry()),
		cfg,
	)
	cfg.Log.Info("Appointment service initialized", "database", cfg.MongoDatabaseName, "topic", producer.Topic())

	serverApp.SetApp(handler.NewAppointmentHandler(appointmentService, cfg.Log))
	serverApp.Run()
}

func initProducer(cfg *config.Config, serverApp *app.Application) *kafka.Producer {
	kafkaCfg := kafka_config.Load(cfg.Log)

	producer, err := kafka.NewProducer(kafkaCfg, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}

	if kafkaCfg.EnableMiddleware {
		producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
		producer.Use(kafka_middleware.MetricsProducerMiddleware(metrics.NewKafkaMetrics(serverApp.Registry())))
	}
	return producer
}
