package application

import (
	"context"

	"github.com/labops-platform/routine-service/internal/domain"
	"github.com/labops-platform/routine-service/pkg/logging"
)

type fakeRoutineRepo struct {
	routines map[string]*domain.Routine
	saveErr  error
	findErr  error
}

func (f *fakeRoutineRepo) Save(ctx context.Context, routine *domain.Routine) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	if f.routines == nil {
		f.routines = make(map[string]*domain.Routine)
	}
	f.routines[routine.ID] = routine
	return nil
}

func (f *fakeRoutineRepo) FindByID(ctx context.Context, id string) (*domain.Routine, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.routines[id], nil
}

func (f *fakeRoutineRepo) FindByLaboratory(ctx context.Context, laboratoryID string) ([]*domain.Routine, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	results := make([]*domain.Routine, 0)
	for _, routine := range f.routines {
		if routine.LaboratoryID == laboratoryID {
			results = append(results, routine)
		}
	}
	return results, nil
}

func (f *fakeRoutineRepo) Delete(ctx context.Context, id string) error {
	delete(f.routines, id)
	return nil
}

type fakeExecutionRepo struct {
	executions  map[string]*domain.RoutineExecution
	products    map[string]*domain.Product
	createErr   error
	updateErr   error
	completeErr error
}

func (f *fakeExecutionRepo) Create(ctx context.Context, execution *domain.RoutineExecution) error {
	if f.createErr != nil {
		return f.createErr
	}
	for _, existing := range f.executions {
		if existing.RoutineID == execution.RoutineID && existing.Status == domain.ExecutionInProgress {
			return domain.ErrExecutionAlreadyActive
		}
	}
	if f.executions == nil {
		f.executions = make(map[string]*domain.RoutineExecution)
	}
	f.executions[execution.ID] = execution
	return nil
}

func (f *fakeExecutionRepo) Update(ctx context.Context, execution *domain.RoutineExecution) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.executions[execution.ID] = execution
	return nil
}

func (f *fakeExecutionRepo) FindByID(ctx context.Context, id string) (*domain.RoutineExecution, error) {
	return f.executions[id], nil
}

func (f *fakeExecutionRepo) FindActiveByRoutine(ctx context.Context, routineID string) (*domain.RoutineExecution, error) {
	for _, execution := range f.executions {
		if execution.RoutineID == routineID && execution.Status == domain.ExecutionInProgress {
			return execution, nil
		}
	}
	return nil, nil
}

func (f *fakeExecutionRepo) FindByLaboratory(ctx context.Context, laboratoryID, routineID string, limit, offset int64) ([]*domain.RoutineExecution, int64, error) {
	results := make([]*domain.RoutineExecution, 0)
	for _, execution := range f.executions {
		if execution.LaboratoryID != laboratoryID {
			continue
		}
		if routineID != "" && execution.RoutineID != routineID {
			continue
		}
		results = append(results, execution)
	}
	return results, int64(len(results)), nil
}

// CompleteWithDeductions mirrors the transactional contract: the status
// change and every deduction are applied to the fake's maps together.
func (f *fakeExecutionRepo) CompleteWithDeductions(ctx context.Context, execution *domain.RoutineExecution) ([]domain.StockLevel, error) {
	if f.completeErr != nil {
		return nil, f.completeErr
	}
	f.executions[execution.ID] = execution

	levels := make([]domain.StockLevel, 0, len(execution.MaterialDeductions))
	for _, deduction := range execution.MaterialDeductions {
		product, ok := f.products[deduction.ProductID]
		if !ok {
			return nil, domain.ErrProductNotFound
		}
		product.Quantity -= deduction.Quantity
		levels = append(levels, domain.StockLevel{
			ProductID: product.ID,
			Name:      product.Name,
			Quantity:  product.Quantity,
			Unit:      product.Unit,
		})
	}
	return levels, nil
}

type fakeProductRepo struct {
	products map[string]*domain.Product
	findErr  error
}

func (f *fakeProductRepo) Save(ctx context.Context, product *domain.Product) error {
	if f.products == nil {
		f.products = make(map[string]*domain.Product)
	}
	f.products[product.ID] = product
	return nil
}

func (f *fakeProductRepo) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.products[id], nil
}

func (f *fakeProductRepo) FindByIDs(ctx context.Context, ids []string) (map[string]*domain.Product, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	results := make(map[string]*domain.Product)
	for _, id := range ids {
		if product, ok := f.products[id]; ok {
			results[id] = product
		}
	}
	return results, nil
}

func (f *fakeProductRepo) IncrementQuantity(ctx context.Context, id string, delta float64) (*domain.Product, error) {
	product, ok := f.products[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	product.Quantity += delta
	return product, nil
}

type fakeReservationRepo struct {
	reservations []*domain.EquipmentReservation
	saveErr      error
	findErr      error
}

func (f *fakeReservationRepo) Save(ctx context.Context, reservation *domain.EquipmentReservation) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.reservations = append(f.reservations, reservation)
	return nil
}

func (f *fakeReservationRepo) FindByEquipment(ctx context.Context, equipmentID string, rangeHint domain.TimeRange) ([]*domain.EquipmentReservation, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	results := make([]*domain.EquipmentReservation, 0)
	for _, reservation := range f.reservations {
		if reservation.EquipmentID == equipmentID && reservation.Window.Overlaps(rangeHint) {
			results = append(results, reservation)
		}
	}
	return results, nil
}

func (f *fakeReservationRepo) FindByEquipmentIDs(ctx context.Context, equipmentIDs []string, rangeHint domain.TimeRange) (map[string][]*domain.EquipmentReservation, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	results := make(map[string][]*domain.EquipmentReservation)
	for _, id := range equipmentIDs {
		for _, reservation := range f.reservations {
			if reservation.EquipmentID == id && reservation.Window.Overlaps(rangeHint) {
				results[id] = append(results[id], reservation)
			}
		}
	}
	return results, nil
}

func (f *fakeReservationRepo) Delete(ctx context.Context, id string) error {
	kept := make([]*domain.EquipmentReservation, 0, len(f.reservations))
	for _, reservation := range f.reservations {
		if reservation.ID != id {
			kept = append(kept, reservation)
		}
	}
	f.reservations = kept
	return nil
}

func testLogger() *logging.Logger {
	return logging.New(logging.DefaultConfig("test"))
}
