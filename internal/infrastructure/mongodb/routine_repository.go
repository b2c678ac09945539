package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/labops-platform/routine-service/internal/domain"
	"github.com/labops-platform/routine-service/pkg/mongodb"
)

type RoutineRepository struct {
	collection *mongo.Collection
}

func NewRoutineRepository(client *mongodb.CircuitBreakerClient) *RoutineRepository {
	repo := &RoutineRepository{
		collection: client.Collection("routines"),
	}
	repo.ensureIndexes(context.Background())
	return repo
}

func (r *RoutineRepository) ensureIndexes(ctx context.Context) {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "laboratoryId", Value: 1}, {Key: "name", Value: 1}}},
		{Keys: bson.D{{Key: "laboratoryId", Value: 1}, {Key: "scheduleType", Value: 1}}},
	}
	r.collection.Indexes().CreateMany(ctx, indexes)
}

func (r *RoutineRepository) Save(ctx context.Context, routine *domain.Routine) error {
	routine.UpdatedAt = time.Now().UTC()

	opts := options.Update().SetUpsert(true)
	filter := bson.M{"_id": routine.ID}
	update := bson.M{"$set": routine}

	if _, err := r.collection.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to save routine: %w", err)
	}
	return nil
}

func (r *RoutineRepository) FindByID(ctx context.Context, id string) (*domain.Routine, error) {
	var routine domain.Routine
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&routine)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find routine: %w", err)
	}
	return &routine, nil
}

func (r *RoutineRepository) FindByLaboratory(ctx context.Context, laboratoryID string) ([]*domain.Routine, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{"laboratoryId": laboratoryID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find routines: %w", err)
	}
	defer cursor.Close(ctx)

	var routines []*domain.Routine
	if err := cursor.All(ctx, &routines); err != nil {
		return nil, fmt.Errorf("failed to decode routines: %w", err)
	}
	return routines, nil
}

func (r *RoutineRepository) Delete(ctx context.Context, id string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete routine: %w", err)
	}
	if result.DeletedCount == 0 {
		return domain.ErrRoutineNotFound
	}
	return nil
}
