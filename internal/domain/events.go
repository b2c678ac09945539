package domain

import "time"

// DomainEvent is the interface for all domain events
type DomainEvent interface {
	EventType() string
	OccurredAt() time.Time
}

// RoutineCreatedEvent is published when a routine is created
type RoutineCreatedEvent struct {
	RoutineID    string    `json:"routineId"`
	LaboratoryID string    `json:"laboratoryId"`
	Name         string    `json:"name"`
	ScheduleType string    `json:"scheduleType"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (e *RoutineCreatedEvent) EventType() string     { return "lab.routine.created" }
func (e *RoutineCreatedEvent) OccurredAt() time.Time { return e.CreatedAt }

// ExecutionStartedEvent is published when a routine execution starts
type ExecutionStartedEvent struct {
	ExecutionID  string    `json:"executionId"`
	RoutineID    string    `json:"routineId"`
	LaboratoryID string    `json:"laboratoryId"`
	ExecutedBy   string    `json:"executedBy"`
	StepCount    int       `json:"stepCount"`
	StartedAt    time.Time `json:"startedAt"`
}

func (e *ExecutionStartedEvent) EventType() string     { return "lab.routine.execution-started" }
func (e *ExecutionStartedEvent) OccurredAt() time.Time { return e.StartedAt }

// StepCompletionUpdatedEvent is published when a step's completion changes
type StepCompletionUpdatedEvent struct {
	ExecutionID  string    `json:"executionId"`
	RoutineID    string    `json:"routineId"`
	LaboratoryID string    `json:"laboratoryId"`
	StepID       string    `json:"stepId"`
	Completed    bool      `json:"completed"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (e *StepCompletionUpdatedEvent) EventType() string {
	return "lab.routine.execution-step-completed"
}
func (e *StepCompletionUpdatedEvent) OccurredAt() time.Time { return e.UpdatedAt }

// ExecutionCompletedEvent is published when an execution completes
type ExecutionCompletedEvent struct {
	ExecutionID    string              `json:"executionId"`
	RoutineID      string              `json:"routineId"`
	LaboratoryID   string              `json:"laboratoryId"`
	ExecutedBy     string              `json:"executedBy"`
	CompletedSteps int                 `json:"completedSteps"`
	TotalSteps     int                 `json:"totalSteps"`
	Deductions     []MaterialDeduction `json:"deductions"`
	CompletedAt    time.Time           `json:"completedAt"`
}

func (e *ExecutionCompletedEvent) EventType() string     { return "lab.routine.execution-completed" }
func (e *ExecutionCompletedEvent) OccurredAt() time.Time { return e.CompletedAt }

// ExecutionCancelledEvent is published when an execution is cancelled
type ExecutionCancelledEvent struct {
	ExecutionID  string    `json:"executionId"`
	RoutineID    string    `json:"routineId"`
	LaboratoryID string    `json:"laboratoryId"`
	Reason       string    `json:"reason,omitempty"`
	CancelledAt  time.Time `json:"cancelledAt"`
}

func (e *ExecutionCancelledEvent) EventType() string     { return "lab.routine.execution-cancelled" }
func (e *ExecutionCancelledEvent) OccurredAt() time.Time { return e.CancelledAt }

// StockReceivedEvent is published when product stock is received
type StockReceivedEvent struct {
	ProductID    string    `json:"productId"`
	LaboratoryID string    `json:"laboratoryId"`
	Quantity     float64   `json:"quantity"`
	Unit         string    `json:"unit"`
	NewQuantity  float64   `json:"newQuantity"`
	ReceivedAt   time.Time `json:"receivedAt"`
}

func (e *StockReceivedEvent) EventType() string     { return "lab.inventory.stock-received" }
func (e *StockReceivedEvent) OccurredAt() time.Time { return e.ReceivedAt }

// StockDeductedEvent is published when product stock is decremented
type StockDeductedEvent struct {
	ProductID    string    `json:"productId"`
	LaboratoryID string    `json:"laboratoryId"`
	ExecutionID  string    `json:"executionId,omitempty"`
	Quantity     float64   `json:"quantity"`
	Unit         string    `json:"unit"`
	NewQuantity  float64   `json:"newQuantity"`
	DeductedAt   time.Time `json:"deductedAt"`
}

func (e *StockDeductedEvent) EventType() string     { return "lab.inventory.stock-deducted" }
func (e *StockDeductedEvent) OccurredAt() time.Time { return e.DeductedAt }

// NegativeStockEvent is published when stock goes below zero
type NegativeStockEvent struct {
	ProductID    string    `json:"productId"`
	LaboratoryID string    `json:"laboratoryId"`
	Quantity     float64   `json:"quantity"`
	Unit         string    `json:"unit"`
	AlertedAt    time.Time `json:"alertedAt"`
}

func (e *NegativeStockEvent) EventType() string     { return "lab.inventory.negative-stock-alert" }
func (e *NegativeStockEvent) OccurredAt() time.Time { return e.AlertedAt }

// ReservationCreatedEvent is published when an equipment reservation is created
type ReservationCreatedEvent struct {
	ReservationID string    `json:"reservationId"`
	EquipmentID   string    `json:"equipmentId"`
	LaboratoryID  string    `json:"laboratoryId"`
	ReservedBy    string    `json:"reservedBy"`
	WindowStart   time.Time `json:"windowStart"`
	WindowEnd     time.Time `json:"windowEnd"`
	CreatedAt     time.Time `json:"createdAt"`
}

func (e *ReservationCreatedEvent) EventType() string     { return "lab.equipment.reservation-created" }
func (e *ReservationCreatedEvent) OccurredAt() time.Time { return e.CreatedAt }
