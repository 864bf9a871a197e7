package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bookable/pkg/config"
	"bookable/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	CollectionName = "CalendarConnections"
)

var (
	ErrNotFound  = errors.New("calendar connection not found")
	ErrInvalidID = errors.New("invalid calendar connection ID")
)

type ConnectionRepository interface {
	Create(ctx context.Context, conn *model.CalendarConnection) error
	FindByID(ctx context.Context, id string) (*model.CalendarConnection, error)
	FindByHost(ctx context.Context, hostID string) ([]*model.CalendarConnection, error)
	Delete(ctx context.Context, id string) error
}

type mongoConnectionRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoConnectionRepository(cfg *config.Config) ConnectionRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoConnectionRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoConnectionRepository) Create(ctx context.Context, conn *model.CalendarConnection) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	conn.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, conn)
	if err != nil {
		return fmt.Errorf("failed to create calendar connection: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		conn.ID = oid.Hex()
	}
	return nil
}

func (r *mongoConnectionRepository) FindByID(ctx context.Context, id string) (*model.CalendarConnection, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidID, id)
	}

	var conn model.CalendarConnection
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&conn)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find calendar connection: %w", err)
	}

	return &conn, nil
}

func (r *mongoConnectionRepository) FindByHost(ctx context.Context, hostID string) ([]*model.CalendarConnection, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, bson.M{"host_id": hostID})
	if err != nil {
		return nil, fmt.Errorf("failed to find calendar connections: %w", err)
	}
	defer cursor.Close(ctx)

	var connections []*model.CalendarConnection
	if err = cursor.All(ctx, &connections); err != nil {
		return nil, fmt.Errorf("failed to decode calendar connections: %w", err)
	}

	return connections, nil
}

func (r *mongoConnectionRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete calendar connection: %w", err)
	}

	if result.DeletedCount == 0 {
		return ErrNotFound
	}

	return nil
}
