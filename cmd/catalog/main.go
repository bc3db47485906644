package main

import (
	"salonbook/internal/catalog/handler"
	"salonbook/internal/catalog/repository"
	"salonbook/internal/catalog/service"
	"salonbook/internal/catalog/validator"
	"salonbook/pkg/app"
	"salonbook/pkg/config"
)

const ServiceName = "catalog"

func main() {
	cfg := config.Load(ServiceName)

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal("Invalid configuration", "error", err)
	}
	cfg.LogConfiguration()

	cfg.Log.Info("Starting Catalog service")
	cfg.SetMongo()

	serverApp := app.NewApplication(cfg)
	serverApp.AddReadinessCheck("mongo", app.MongoCheck(cfg.Client.Mongo))
	serverApp.SetApp(handler.NewCatalogHandler(initServices(cfg), cfg.Log))
	serverApp.Run()
}

func initServices(cfg *config.Config) service.CatalogService {
	catalogService := service.NewCatalogService(
		repository.NewMongoBranchRepository(cfg),
		repository.NewMongoServiceRepository(cfg),
		repository.NewMongoStylistRepository(cfg),
		validator.NewCatalogValidator(),
		cfg,
	)

	cfg.Log.Info("Catalog service initialized", "database", cfg.MongoDatabaseName)
	return catalogService
}
