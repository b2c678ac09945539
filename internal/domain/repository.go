package domain

import "context"

// StockLevel is the post-deduction stock snapshot for one product
type StockLevel struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Quantity  float64 `json:"quantity"`
	Unit      string  `json:"unit"`
}

// RoutineRepository defines the interface for routine persistence
type RoutineRepository interface {
	Save(ctx context.Context, routine *Routine) error
	FindByID(ctx context.Context, id string) (*Routine, error)
	FindByLaboratory(ctx context.Context, laboratoryID string) ([]*Routine, error)
	Delete(ctx context.Context, id string) error
}

// ExecutionRepository defines the interface for execution persistence.
// Create must atomically reject a second in_progress execution for the same
// routine with ErrExecutionAlreadyActive. CompleteWithDeductions must apply
// the status transition and every stock decrement together, or neither, and
// returns the resulting stock levels.
type ExecutionRepository interface {
	Create(ctx context.Context, execution *RoutineExecution) error
	Update(ctx context.Context, execution *RoutineExecution) error
	FindByID(ctx context.Context, id string) (*RoutineExecution, error)
	FindActiveByRoutine(ctx context.Context, routineID string) (*RoutineExecution, error)
	FindByLaboratory(ctx context.Context, laboratoryID, routineID string, limit, offset int64) ([]*RoutineExecution, int64, error)
	CompleteWithDeductions(ctx context.Context, execution *RoutineExecution) ([]StockLevel, error)
}

// ProductRepository defines the interface for product stock persistence
type ProductRepository interface {
	Save(ctx context.Context, product *Product) error
	FindByID(ctx context.Context, id string) (*Product, error)
	FindByIDs(ctx context.Context, ids []string) (map[string]*Product, error)
	IncrementQuantity(ctx context.Context, id string, delta float64) (*Product, error)
}

// ReservationRepository defines the interface for equipment reservations
type ReservationRepository interface {
	Save(ctx context.Context, reservation *EquipmentReservation) error
	FindByEquipment(ctx context.Context, equipmentID string, rangeHint TimeRange) ([]*EquipmentReservation, error)
	FindByEquipmentIDs(ctx context.Context, equipmentIDs []string, rangeHint TimeRange) (map[string][]*EquipmentReservation, error)
	Delete(ctx context.Context, id string) error
}
