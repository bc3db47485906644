package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	catalogerrors "salonbook/internal/catalog/errors"
	"salonbook/pkg/config"
	mongodb "salonbook/pkg/db/mongo"
	"salonbook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type StylistRepository interface {
	Create(ctx context.Context, s *model.Stylist) error
	FindByID(ctx context.Context, id string) (*model.Stylist, error)
	FindByBranch(ctx context.Context, branchID string, availableOnly bool) ([]*model.Stylist, error)
	SetAvailability(ctx context.Context, id string, available bool) error
}

type mongoStylistRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoStylistRepository(cfg *config.Config) StylistRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoStylistRepository{
		cfg:        cfg,
		collection: db.Collection(StylistsCollection),
	}
}

func (r *mongoStylistRepository) Create(ctx context.Context, s *model.Stylist) error {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	s.ID = ""
	s.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, s)
	if err != nil {
		return fmt.Errorf("failed to create stylist: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		s.ID = oid.Hex()
	}
	return nil
}

func (r *mongoStylistRepository) FindByID(ctx context.Context, id string) (*model.Stylist, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", catalogerrors.ErrInvalidID, id)
	}

	var s model.Stylist
	if err := r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&s); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", catalogerrors.ErrStylistNotFound, id)
		}
		return nil, fmt.Errorf("failed to find stylist: %w", err)
	}
	return &s, nil
}

func (r *mongoStylistRepository) FindByBranch(ctx context.Context, branchID string, availableOnly bool) ([]*model.Stylist, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{"branch_id": branchID}
	if availableOnly {
		filter["is_available"] = true
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "rating", Value: -1}, {Key: "name", Value: 1}}).
		SetLimit(maxListResults)

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query stylists: %w", err)
	}
	defer cursor.Close(ctx)

	stylists := []*model.Stylist{}
	if err := cursor.All(ctx, &stylists); err != nil {
		return nil, fmt.Errorf("failed to decode stylists: %w", err)
	}
	return stylists, nil
}

func (r *mongoStylistRepository) SetAvailability(ctx context.Context, id string, available bool) error {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", catalogerrors.ErrInvalidID, id)
	}

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": bson.M{"is_available": available}},
	)
	if err != nil {
		return fmt.Errorf("failed to update stylist availability: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", catalogerrors.ErrStylistNotFound, id)
	}
	return nil
}
