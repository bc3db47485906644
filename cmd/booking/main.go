package main

import (
	"salonbook/internal/bookingflow/handler"
	"salonbook/internal/bookingflow/service"
	"salonbook/internal/bookingflow/session"
	"salonbook/internal/bookingflow/validator"
	"salonbook/pkg/app"
	"salonbook/pkg/client"
	"salonbook/pkg/config"
	"salonbook/pkg/metrics"
	"salonbook/pkg/middleware"
)

const ServiceName = "booking"

func main() {
	cfg := config.Load(ServiceName)

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal("Invalid configuration", "error", err)
	}
	cfg.LogConfiguration()

	cfg.Log.Info("Starting Booking service")
	serverApp := app.NewApplication(cfg)
	store := initSessionStore(cfg, serverApp)
	bookingService := initServices(cfg, serverApp, store)
	serverApp.SetApp(handler.NewBookingHandler(bookingService, cfg.Log))
	serverApp.Run()
}

// initSessionStore picks the session backend. With Redis the idempotency
// cache moves there as well so replicas share both.
func initSessionStore(cfg *config.Config, serverApp *app.Application) session.Store {
	if cfg.SessionStore != config.SessionStoreRedis {
		cfg.Log.Info("Using in-memory session store", "ttl", cfg.SessionTTL)
		return session.NewMemoryStore(cfg.SessionTTL)
	}

	cfg.SetRedis()
	serverApp.SetIdempotencyStore(middleware.NewRedisIdempotencyStore(cfg.Client.Redis, cfg.IdempotencyTTL, cfg.Log))
	serverApp.AddReadinessCheck("redis", app.RedisCheck(cfg.Client.Redis))

	cfg.Log.Info("Using Redis session store", "addr", cfg.RedisAddr, "ttl", cfg.SessionTTL)
	return session.NewRedisStore(cfg.Client.Redis, cfg.SessionTTL)
}

func initServices(cfg *config.Config, serverApp *app.Application, store session.Store) service.BookingService {
	catalogClient := client.NewCatalogClient(cfg.CatalogServiceURL, cfg.ClientTimeout)
	appointmentClient := client.NewAppointmentClient(cfg.AppointmentsServiceURL, cfg.ClientTimeout)

	bookingService := service.NewBookingService(
		store,
		catalogClient,
		appointmentClient,
		validator.NewSelectionValidator(cfg.Log),
		metrics.NewBookingMetrics(serverApp.Registry()),
		cfg,
	)

	cfg.Log.Info("Booking flow service initialized",
		"catalog_url", cfg.CatalogServiceURL,
		"appointments_url", cfg.AppointmentsServiceURL,
	)
	return bookingService
}
