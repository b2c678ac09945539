package labevents

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EventFactory creates CloudEvents for lab platform domain events
type EventFactory struct {
	source string
}

// NewEventFactory creates a new EventFactory for a specific source
func NewEventFactory(source string) *EventFactory {
	return &EventFactory{source: source}
}

// CreateEvent creates a new LabCloudEvent with the given parameters
func (f *EventFactory) CreateEvent(
	ctx context.Context,
	eventType string,
	subject string,
	data interface{},
) *LabCloudEvent {
	return &LabCloudEvent{
		SpecVersion:     "1.0",
		Type:            eventType,
		Source:          f.source,
		Subject:         subject,
		ID:              uuid.New().String(),
		Time:            time.Now().UTC(),
		DataContentType: "application/json",
		Data:            data,
	}
}

// CreateExecutionStartedEvent creates an ExecutionStarted event
func (f *EventFactory) CreateExecutionStartedEvent(ctx context.Context, data ExecutionStartedData) *LabCloudEvent {
	event := f.CreateEvent(ctx, ExecutionStarted, "execution/"+data.ExecutionID, data)
	event.LaboratoryID = data.LaboratoryID
	event.RoutineID = data.RoutineID
	event.ExecutionID = data.ExecutionID
	return event
}

// CreateExecutionCompletedEvent creates an ExecutionCompleted event
func (f *EventFactory) CreateExecutionCompletedEvent(ctx context.Context, data ExecutionCompletedData) *LabCloudEvent {
	event := f.CreateEvent(ctx, ExecutionCompleted, "execution/"+data.ExecutionID, data)
	event.LaboratoryID = data.LaboratoryID
	event.RoutineID = data.RoutineID
	event.ExecutionID = data.ExecutionID
	return event
}

// CreateExecutionCancelledEvent creates an ExecutionCancelled event
func (f *EventFactory) CreateExecutionCancelledEvent(ctx context.Context, data ExecutionCancelledData) *LabCloudEvent {
	event := f.CreateEvent(ctx, ExecutionCancelled, "execution/"+data.ExecutionID, data)
	event.LaboratoryID = data.LaboratoryID
	event.RoutineID = data.RoutineID
	event.ExecutionID = data.ExecutionID
	return event
}

// CreateStockDeductedEvent creates a StockDeducted event
func (f *EventFactory) CreateStockDeductedEvent(ctx context.Context, data StockDeductedData) *LabCloudEvent {
	event := f.CreateEvent(ctx, StockDeducted, "product/"+data.ProductID, data)
	event.LaboratoryID = data.LaboratoryID
	event.ExecutionID = data.ExecutionID
	return event
}

// CreateNegativeStockAlertEvent creates a NegativeStockAlert event
func (f *EventFactory) CreateNegativeStockAlertEvent(ctx context.Context, data NegativeStockAlertData) *LabCloudEvent {
	event := f.CreateEvent(ctx, NegativeStockAlert, "product/"+data.ProductID, data)
	event.LaboratoryID = data.LaboratoryID
	return event
}

// CreateReservationCreatedEvent creates a ReservationCreated event
func (f *EventFactory) CreateReservationCreatedEvent(ctx context.Context, data ReservationCreatedData) *LabCloudEvent {
	event := f.CreateEvent(ctx, ReservationCreated, "equipment/"+data.EquipmentID, data)
	event.LaboratoryID = data.LaboratoryID
	return event
}
