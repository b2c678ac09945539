package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/labops-platform/routine-service/internal/domain"
	"github.com/labops-platform/routine-service/pkg/logging"
	"github.com/labops-platform/routine-service/pkg/mongodb"
)

// ExecutionRepository persists routine executions and carries the two
// atomicity guarantees the engine relies on: at most one in_progress
// execution per routine, and completion applied together with its stock
// deductions.
type ExecutionRepository struct {
	client     *mongodb.CircuitBreakerClient
	collection *mongo.Collection
	products   *mongo.Collection
	logger     *logging.Logger
}

func NewExecutionRepository(client *mongodb.CircuitBreakerClient, logger *logging.Logger) *ExecutionRepository {
	repo := &ExecutionRepository{
		client:     client,
		collection: client.Collection("routine_executions"),
		products:   client.Collection("products"),
		logger:     logger,
	}
	repo.ensureIndexes(context.Background())
	return repo
}

func (r *ExecutionRepository) ensureIndexes(ctx context.Context) {
	indexes := []mongo.IndexModel{
		// One in_progress execution per routine, enforced by the database.
		// Without this index concurrent starts are not serialized, so a
		// failure here must not go unnoticed.
		{
			Keys: bson.D{{Key: "routineId", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"status": string(domain.ExecutionInProgress)}),
		},
		{Keys: bson.D{{Key: "laboratoryId", Value: 1}, {Key: "startedAt", Value: -1}}},
		{Keys: bson.D{{Key: "routineId", Value: 1}, {Key: "startedAt", Value: -1}}},
	}
	if _, err := r.collection.Indexes().CreateMany(ctx, indexes); err != nil {
		r.logger.Error("Failed to create execution indexes", "error", err)
	}
}

func (r *ExecutionRepository) Create(ctx context.Context, execution *domain.RoutineExecution) error {
	if _, err := r.collection.InsertOne(ctx, execution); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrExecutionAlreadyActive
		}
		return fmt.Errorf("failed to create execution: %w", err)
	}
	return nil
}

func (r *ExecutionRepository) Update(ctx context.Context, execution *domain.RoutineExecution) error {
	filter := bson.M{"_id": execution.ID}
	update := bson.M{"$set": execution}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update execution: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrExecutionNotActive
	}
	return nil
}

func (r *ExecutionRepository) FindByID(ctx context.Context, id string) (*domain.RoutineExecution, error) {
	var execution domain.RoutineExecution
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&execution)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find execution: %w", err)
	}
	return &execution, nil
}

func (r *ExecutionRepository) FindActiveByRoutine(ctx context.Context, routineID string) (*domain.RoutineExecution, error) {
	filter := bson.M{
		"routineId": routineID,
		"status":    string(domain.ExecutionInProgress),
	}

	var execution domain.RoutineExecution
	err := r.collection.FindOne(ctx, filter).Decode(&execution)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find active execution: %w", err)
	}
	return &execution, nil
}

func (r *ExecutionRepository) FindByLaboratory(ctx context.Context, laboratoryID, routineID string, limit, offset int64) ([]*domain.RoutineExecution, int64, error) {
	filter := bson.M{"laboratoryId": laboratoryID}
	if routineID != "" {
		filter["routineId"] = routineID
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count executions: %w", err)
	}

	opts := options.Find().
		SetLimit(limit).
		SetSkip(offset).
		SetSort(bson.D{{Key: "startedAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find executions: %w", err)
	}
	defer cursor.Close(ctx)

	var executions []*domain.RoutineExecution
	if err := cursor.All(ctx, &executions); err != nil {
		return nil, 0, fmt.Errorf("failed to decode executions: %w", err)
	}
	return executions, total, nil
}

// CompleteWithDeductions persists a completed execution and applies all of
// its material deductions in a single transaction. The status write is a
// compare-and-set against in_progress, so a concurrent complete or cancel
// loses cleanly with ErrExecutionNotActive. Deductions may drive stock
// negative; the resulting levels are returned for the caller to report.
func (r *ExecutionRepository) CompleteWithDeductions(ctx context.Context, execution *domain.RoutineExecution) ([]domain.StockLevel, error) {
	levels := make([]domain.StockLevel, 0, len(execution.MaterialDeductions))

	err := r.client.WithTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		filter := bson.M{
			"_id":    execution.ID,
			"status": string(domain.ExecutionInProgress),
		}
		update := bson.M{"$set": bson.M{
			"status":             string(domain.ExecutionCompleted),
			"completedAt":        execution.CompletedAt,
			"stepCompletions":    execution.StepCompletions,
			"materialDeductions": execution.MaterialDeductions,
		}}

		result, err := r.collection.UpdateOne(sessCtx, filter, update)
		if err != nil {
			return fmt.Errorf("failed to complete execution: %w", err)
		}
		if result.MatchedCount == 0 {
			return domain.ErrExecutionNotActive
		}

		levels = levels[:0]
		for _, deduction := range execution.MaterialDeductions {
			opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
			var product domain.Product
			err := r.products.FindOneAndUpdate(
				sessCtx,
				bson.M{"_id": deduction.ProductID},
				bson.M{"$inc": bson.M{"quantity": -deduction.Quantity}},
				opts,
			).Decode(&product)
			if err != nil {
				if err == mongo.ErrNoDocuments {
					return domain.ErrProductNotFound
				}
				return fmt.Errorf("failed to deduct stock for %s: %w", deduction.ProductID, err)
			}

			levels = append(levels, domain.StockLevel{
				ProductID: product.ID,
				Name:      product.Name,
				Quantity:  product.Quantity,
				Unit:      product.Unit,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return levels, nil
}
