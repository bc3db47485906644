package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	appointmentserrors "salonbook/internal/appointments/errors"
	"salonbook/pkg/config"
	mongodb "salonbook/pkg/db/mongo"
	"salonbook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	AppointmentsCollection = "appointments"
	LocksCollection        = "appointment_locks"

	maxListResults = 500
)

type AppointmentRepository interface {
	Create(ctx context.Context, a *model.Appointment) error
	FindByID(ctx context.Context, id string) (*model.Appointment, error)
	FindByBranch(ctx context.Context, branchID, date string) ([]*model.Appointment, error)
	FindByStylist(ctx context.Context, stylistID, date string) ([]*model.Appointment, error)
	FindByClient(ctx context.Context, clientID string) ([]*model.Appointment, error)
	UpdateStatus(ctx context.Context, id, from, to string) error
	ExecuteTransaction(ctx context.Context, fn mongodb.TransactionFunc) error
}

type mongoAppointmentRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongodb.TransactionManager
}

func NewMongoAppointmentRepository(cfg *config.Config) AppointmentRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoAppointmentRepository{
		cfg:        cfg,
		collection: db.Collection(AppointmentsCollection),
		txManager:  mongodb.NewTransactionManager(cfg.Client.Mongo),
	}
}

func (r *mongoAppointmentRepository) Create(ctx context.Context, a *model.Appointment) error {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	a.ID = ""
	a.CreatedAt = now
	a.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, a)
	if err != nil {
		return fmt.Errorf("failed to create appointment: %w", err)
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		a.ID = oid.Hex()
	}
	return nil
}

func (r *mongoAppointmentRepository) FindByID(ctx context.Context, id string) (*model.Appointment, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", appointmentserrors.ErrInvalidID, id)
	}

	var a model.Appointment
	if err := r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&a); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", appointmentserrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find appointment: %w", err)
	}
	return &a, nil
}

func (r *mongoAppointmentRepository) FindByBranch(ctx context.Context, branchID, date string) ([]*model.Appointment, error) {
	filter := bson.M{"branch_id": branchID}
	if date != "" {
		filter["date"] = date
	}
	return r.find(ctx, filter)
}

// FindByStylist returns the stylist's appointments that still occupy time,
// so cancelled and no-show entries are left out.
func (r *mongoAppointmentRepository) FindByStylist(ctx context.Context, stylistID, date string) ([]*model.Appointment, error) {
	filter := bson.M{
		"stylist_ids": stylistID,
		"status":      bson.M{"$nin": bson.A{config.Cancelled, config.NoShow}},
	}
	if date != "" {
		filter["date"] = date
	}
	return r.find(ctx, filter)
}

func (r *mongoAppointmentRepository) FindByClient(ctx context.Context, clientID string) ([]*model.Appointment, error) {
	return r.find(ctx, bson.M{"client_id": clientID})
}

func (r *mongoAppointmentRepository) find(ctx context.Context, filter bson.M) ([]*model.Appointment, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "start_time", Value: 1}}).
		SetLimit(maxListResults)

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query appointments: %w", err)
	}
	defer cursor.Close(ctx)

	appointments := []*model.Appointment{}
	if err := cursor.All(ctx, &appointments); err != nil {
		return nil, fmt.Errorf("failed to decode appointments: %w", err)
	}
	return appointments, nil
}

// UpdateStatus moves id from one status to another. The filter on the old
// status makes a concurrent transition lose with ErrStatusChanged.
func (r *mongoAppointmentRepository) UpdateStatus(ctx context.Context, id, from, to string) error {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", appointmentserrors.ErrInvalidID, id)
	}

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": objectID, "status": from},
		bson.M{"$set": bson.M{
			"status":     to,
			"updated_at": time.Now().UTC().Truncate(time.Millisecond),
		}},
	)
	if err != nil {
		return fmt.Errorf("failed to update appointment status: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", appointmentserrors.ErrStatusChanged, id)
	}
	return nil
}

func (r *mongoAppointmentRepository) ExecuteTransaction(ctx context.Context, fn mongodb.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
