package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	availerrors "bookable/internal/availability/errors"
	"bookable/pkg/config"
	"bookable/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	EventTypeCollectionName = "EventTypes"
)

type EventTypeRepository interface {
	Create(ctx context.Context, et *model.EventType) error
	FindByID(ctx context.Context, id string) (*model.EventType, error)
	FindByHost(ctx context.Context, hostID string, limit int, offset int64) ([]*model.EventType, error)
	CountByHost(ctx context.Context, hostID string) (int64, error)
	Update(ctx context.Context, id string, et *model.EventType) error
	Delete(ctx context.Context, id string) error
}

type mongoEventTypeRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoEventTypeRepository(cfg *config.Config) EventTypeRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoEventTypeRepository{
		cfg:        cfg,
		collection: db.Collection(EventTypeCollectionName),
	}
}

func (r *mongoEventTypeRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoEventTypeRepository) Create(ctx context.Context, et *model.EventType) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	et.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, et)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("event type slug %q already exists for host %s", et.Slug, et.HostID)
		}
		return fmt.Errorf("failed to create event type: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		et.ID = oid.Hex()
	}
	return nil
}

func (r *mongoEventTypeRepository) FindByID(ctx context.Context, id string) (*model.EventType, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", availerrors.ErrInvalidID, id)
	}

	var et model.EventType
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&et)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", availerrors.ErrEventTypeNotFound, id)
		}
		return nil, fmt.Errorf("failed to find event type: %w", err)
	}

	return &et, nil
}

func (r *mongoEventTypeRepository) FindByHost(ctx context.Context, hostID string, limit int, offset int64) ([]*model.EventType, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(offset).
		SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{"host_id": hostID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query event types: %w", err)
	}
	defer cursor.Close(ctx)

	var eventTypes []*model.EventType
	if err = cursor.All(ctx, &eventTypes); err != nil {
		return nil, fmt.Errorf("failed to decode event types: %w", err)
	}
	return eventTypes, nil
}

func (r *mongoEventTypeRepository) CountByHost(ctx context.Context, hostID string) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{"host_id": hostID})
	if err != nil {
		return 0, fmt.Errorf("failed to count event types: %w", err)
	}
	return count, nil
}

func (r *mongoEventTypeRepository) Update(ctx context.Context, id string, et *model.EventType) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", availerrors.ErrInvalidID, id)
	}

	update := bson.M{
		"$set": bson.M{
			"name":              et.Name,
			"duration_min":      et.DurationMin,
			"step_min":          et.StepMin,
			"buffer_before_min": et.BufferBeforeMin,
			"buffer_after_min":  et.BufferAfterMin,
			"time_zone":         et.TimeZone,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to update event type: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", availerrors.ErrEventTypeNotFound, id)
	}
	return nil
}

func (r *mongoEventTypeRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", availerrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete event type: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", availerrors.ErrEventTypeNotFound, id)
	}
	return nil
}
