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

const (
	BranchesCollection = "branches"
	ServicesCollection = "services"
	StylistsCollection = "stylists"

	maxListResults = 1000
)

type BranchRepository interface {
	Create(ctx context.Context, b *model.Branch) error
	FindByID(ctx context.Context, id string) (*model.Branch, error)
	FindAll(ctx context.Context, activeOnly bool) ([]*model.Branch, error)
}

type mongoBranchRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoBranchRepository(cfg *config.Config) BranchRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBranchRepository{
		cfg:        cfg,
		collection: db.Collection(BranchesCollection),
	}
}

func (r *mongoBranchRepository) Create(ctx context.Context, b *model.Branch) error {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	b.ID = ""
	b.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, b)
	if err != nil {
		return fmt.Errorf("failed to create branch: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		b.ID = oid.Hex()
	}
	return nil
}

func (r *mongoBranchRepository) FindByID(ctx context.Context, id string) (*model.Branch, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", catalogerrors.ErrInvalidID, id)
	}

	var b model.Branch
	if err := r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&b); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", catalogerrors.ErrBranchNotFound, id)
		}
		return nil, fmt.Errorf("failed to find branch: %w", err)
	}
	return &b, nil
}

func (r *mongoBranchRepository) FindAll(ctx context.Context, activeOnly bool) ([]*model.Branch, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{}
	if activeOnly {
		filter["is_active"] = true
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "city", Value: 1}, {Key: "name", Value: 1}}).
		SetLimit(maxListResults)

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query branches: %w", err)
	}
	defer cursor.Close(ctx)

	branches := []*model.Branch{}
	if err := cursor.All(ctx, &branches); err != nil {
		return nil, fmt.Errorf("failed to decode branches: %w", err)
	}
	return branches, nil
}
