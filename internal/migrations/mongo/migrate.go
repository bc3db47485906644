// Package mongo creates the salonbook collections with their JSON-schema
// validators and indexes. Every step is idempotent.
package mongo

import (
	"context"
	"fmt"

	appointmentsrepo "salonbook/internal/appointments/repository"
	catalogrepo "salonbook/internal/catalog/repository"
	"salonbook/internal/migrations/mongo/validators"
	"salonbook/pkg/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	BranchesIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "is_active", Value: 1}, {Key: "name", Value: 1}}},
	}

	ServicesIndexes = []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "branch_id", Value: 1},
			{Key: "category", Value: 1},
			{Key: "name", Value: 1},
		}},
	}

	StylistsIndexes = []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "branch_id", Value: 1},
			{Key: "is_available", Value: 1},
			{Key: "rating", Value: -1},
		}},
	}

	AppointmentsIndexes = []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "stylist_ids", Value: 1},
			{Key: "date", Value: 1},
			{Key: "start_time", Value: 1},
		}},
		{Keys: bson.D{
			{Key: "branch_id", Value: 1},
			{Key: "date", Value: 1},
			{Key: "start_time", Value: 1},
		}},
		{Keys: bson.D{
			{Key: "client_id", Value: 1},
			{Key: "start_time", Value: 1},
		}},
	}

	// Locks past expires_at are swept by the TTL monitor.
	AppointmentLocksIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0),
		},
	}
)

type Collection struct {
	Name      string
	Indexes   []mongo.IndexModel
	Validator bson.M
}

// Collections lists everything RunMigration manages, in creation order.
func Collections() []Collection {
	return []Collection{
		{Name: catalogrepo.BranchesCollection, Indexes: BranchesIndexes, Validator: validators.BranchValidator},
		{Name: catalogrepo.ServicesCollection, Indexes: ServicesIndexes, Validator: validators.ServiceValidator},
		{Name: catalogrepo.StylistsCollection, Indexes: StylistsIndexes, Validator: validators.StylistValidator},
		{Name: appointmentsrepo.AppointmentsCollection, Indexes: AppointmentsIndexes, Validator: validators.AppointmentValidator},
		{Name: appointmentsrepo.LocksCollection, Indexes: AppointmentLocksIndexes, Validator: validators.AppointmentLockValidator},
	}
}

func RunMigration(ctx context.Context, client *mongo.Client, dbName string, log *logger.Logger) error {
	db := client.Database(dbName)
	log.Info("Running Mongo migrations", "database", dbName)

	for _, def := range Collections() {
		if err := ensureCollection(ctx, db, def.Name, def.Validator, log); err != nil {
			return fmt.Errorf("failed to ensure collection %s: %w", def.Name, err)
		}
		if err := ensureIndexes(ctx, db, def.Name, def.Indexes, log); err != nil {
			return fmt.Errorf("failed to ensure indexes for %s: %w", def.Name, err)
		}
	}

	log.Info("All migrations applied successfully")
	return nil
}

func ensureCollection(ctx context.Context, db *mongo.Database, name string, validator bson.M, log *logger.Logger) error {
	existing, err := db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return err
	}

	if len(existing) == 0 {
		log.Info("Creating collection", "collection", name)
		opts := options.CreateCollection().SetValidator(validator)
		if err := db.CreateCollection(ctx, name, opts); err != nil {
			return fmt.Errorf("failed creating %s: %w", name, err)
		}
		return nil
	}

	log.Info("Collection exists, updating validator", "collection", name)
	command := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
	}
	if err := db.RunCommand(ctx, command).Err(); err != nil {
		log.Warn("Failed updating validator", "collection", name, "error", err)
	}
	return nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database, name string, models []mongo.IndexModel, log *logger.Logger) error {
	if len(models) == 0 {
		return nil
	}
	if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
		return err
	}
	log.Info("Ensured indexes", "collection", name, "count", len(models))
	return nil
}
