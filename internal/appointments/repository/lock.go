package repository

import (
	"context"
	"fmt"
	"time"

	appointmentserrors "salonbook/internal/appointments/errors"
	"salonbook/pkg/config"
	mongodb "salonbook/pkg/db/mongo"
	"salonbook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// LockRepository stores advisory locks. A lock is a document keyed by its id,
// so the unique _id index is what makes acquisition exclusive.
type LockRepository interface {
	Acquire(ctx context.Context, lockID string, ttl time.Duration) error
	Release(ctx context.Context, lockID string) error
}

type mongoLockRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoLockRepository(cfg *config.Config) LockRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoLockRepository{
		cfg:        cfg,
		collection: db.Collection(LocksCollection),
	}
}

// Acquire returns ErrLockHeld while another holder's lock is unexpired.
// An expired lock left behind by a crashed holder is removed first; the TTL
// index only sweeps about once a minute.
func (r *mongoLockRepository) Acquire(ctx context.Context, lockID string, ttl time.Duration) error {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC()
	if _, err := r.collection.DeleteOne(ctx, bson.M{
		"_id":        lockID,
		"expires_at": bson.M{"$lt": now},
	}); err != nil {
		return fmt.Errorf("failed to clear stale lock: %w", err)
	}

	lock := &model.AppointmentLock{
		ID:        lockID,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}
	if _, err := r.collection.InsertOne(ctx, lock); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s", appointmentserrors.ErrLockHeld, lockID)
		}
		return fmt.Errorf("failed to acquire lock: %w", err)
	}
	return nil
}

func (r *mongoLockRepository) Release(ctx context.Context, lockID string) error {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if _, err := r.collection.DeleteOne(ctx, bson.M{"_id": lockID}); err != nil {
		return fmt.Errorf("failed to release lock: %w", err)
	}
	return nil
}
