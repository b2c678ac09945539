package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/labops-platform/routine-service/internal/domain"
	"github.com/labops-platform/routine-service/pkg/mongodb"
)

type ReservationRepository struct {
	collection *mongo.Collection
}

func NewReservationRepository(client *mongodb.CircuitBreakerClient) *ReservationRepository {
	repo := &ReservationRepository{
		collection: client.Collection("equipment_reservations"),
	}
	repo.ensureIndexes(context.Background())
	return repo
}

func (r *ReservationRepository) ensureIndexes(ctx context.Context) {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "equipmentId", Value: 1}, {Key: "window.start", Value: 1}}},
		{Keys: bson.D{{Key: "laboratoryId", Value: 1}}},
	}
	r.collection.Indexes().CreateMany(ctx, indexes)
}

func (r *ReservationRepository) Save(ctx context.Context, reservation *domain.EquipmentReservation) error {
	opts := options.Update().SetUpsert(true)
	filter := bson.M{"_id": reservation.ID}
	update := bson.M{"$set": reservation}

	if _, err := r.collection.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to save reservation: %w", err)
	}
	return nil
}

// overlapFilter matches reservations whose half-open window intersects the
// hint. A reservation ending exactly when the hint starts does not match.
func overlapFilter(rangeHint domain.TimeRange) bson.M {
	return bson.M{
		"window.start": bson.M{"$lt": rangeHint.End},
		"window.end":   bson.M{"$gt": rangeHint.Start},
	}
}

func (r *ReservationRepository) FindByEquipment(ctx context.Context, equipmentID string, rangeHint domain.TimeRange) ([]*domain.EquipmentReservation, error) {
	filter := overlapFilter(rangeHint)
	filter["equipmentId"] = equipmentID

	opts := options.Find().SetSort(bson.D{{Key: "window.start", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find reservations: %w", err)
	}
	defer cursor.Close(ctx)

	var reservations []*domain.EquipmentReservation
	if err := cursor.All(ctx, &reservations); err != nil {
		return nil, fmt.Errorf("failed to decode reservations: %w", err)
	}
	return reservations, nil
}

func (r *ReservationRepository) FindByEquipmentIDs(ctx context.Context, equipmentIDs []string, rangeHint domain.TimeRange) (map[string][]*domain.EquipmentReservation, error) {
	results := make(map[string][]*domain.EquipmentReservation, len(equipmentIDs))
	if len(equipmentIDs) == 0 {
		return results, nil
	}

	filter := overlapFilter(rangeHint)
	filter["equipmentId"] = bson.M{"$in": equipmentIDs}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find reservations: %w", err)
	}
	defer cursor.Close(ctx)

	var reservations []*domain.EquipmentReservation
	if err := cursor.All(ctx, &reservations); err != nil {
		return nil, fmt.Errorf("failed to decode reservations: %w", err)
	}

	for _, reservation := range reservations {
		results[reservation.EquipmentID] = append(results[reservation.EquipmentID], reservation)
	}
	return results, nil
}

func (r *ReservationRepository) Delete(ctx context.Context, id string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete reservation: %w", err)
	}
	if result.DeletedCount == 0 {
		return domain.ErrReservationNotFound
	}
	return nil
}
