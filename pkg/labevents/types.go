package labevents

import (
	"time"
)

// EventType constants for lab platform domain events
const (
	// Routine lifecycle events
	RoutineCreated = "lab.routine.created"
	RoutineUpdated = "lab.routine.updated"
	RoutineDeleted = "lab.routine.deleted"

	// Execution events
	ExecutionStarted       = "lab.routine.execution-started"
	ExecutionStepCompleted = "lab.routine.execution-step-completed"
	ExecutionCompleted     = "lab.routine.execution-completed"
	ExecutionCancelled     = "lab.routine.execution-cancelled"

	// Inventory events
	StockReceived      = "lab.inventory.stock-received"
	StockDeducted      = "lab.inventory.stock-deducted"
	NegativeStockAlert = "lab.inventory.negative-stock-alert"
	LowStockAlert      = "lab.inventory.low-stock-alert"

	// Equipment events
	ReservationCreated  = "lab.equipment.reservation-created"
	ReservationConflict = "lab.equipment.reservation-conflict"
)

// Topic constants for Kafka publishing
const (
	TopicRoutineEvents   = "lab.routine.events"
	TopicInventoryEvents = "lab.inventory.events"
	TopicEquipmentEvents = "lab.equipment.events"
)

// LabCloudEvent represents a CloudEvents v1.0 compliant event for the lab platform
type LabCloudEvent struct {
	SpecVersion     string      `json:"specversion"`
	Type            string      `json:"type"`
	Source          string      `json:"source"`
	Subject         string      `json:"subject,omitempty"`
	ID              string      `json:"id"`
	Time            time.Time   `json:"time"`
	DataContentType string      `json:"datacontenttype"`
	Data            interface{} `json:"data"`

	// Lab-specific extensions
	CorrelationID string `json:"labcorrelationid,omitempty"`
	LaboratoryID  string `json:"lablaboratoryid,omitempty"`
	RoutineID     string `json:"labroutineid,omitempty"`
	ExecutionID   string `json:"labexecutionid,omitempty"`
}

// ExecutionStartedData represents the data payload for ExecutionStarted
type ExecutionStartedData struct {
	ExecutionID  string    `json:"executionId"`
	RoutineID    string    `json:"routineId"`
	LaboratoryID string    `json:"laboratoryId"`
	ExecutedBy   string    `json:"executedBy"`
	StepCount    int       `json:"stepCount"`
	StartedAt    time.Time `json:"startedAt"`
}

// ExecutionCompletedData represents the data payload for ExecutionCompleted
type ExecutionCompletedData struct {
	ExecutionID    string              `json:"executionId"`
	RoutineID      string              `json:"routineId"`
	LaboratoryID   string              `json:"laboratoryId"`
	ExecutedBy     string              `json:"executedBy"`
	CompletedSteps int                 `json:"completedSteps"`
	TotalSteps     int                 `json:"totalSteps"`
	Deductions     []DeductionSnapshot `json:"deductions"`
	CompletedAt    time.Time           `json:"completedAt"`
}

// ExecutionCancelledData represents the data payload for ExecutionCancelled
type ExecutionCancelledData struct {
	ExecutionID  string    `json:"executionId"`
	RoutineID    string    `json:"routineId"`
	LaboratoryID string    `json:"laboratoryId"`
	Reason       string    `json:"reason,omitempty"`
	CancelledAt  time.Time `json:"cancelledAt"`
}

// DeductionSnapshot represents one material deduction in an event payload
type DeductionSnapshot struct {
	ProductID string  `json:"productId"`
	Quantity  float64 `json:"quantity"`
	Unit      string  `json:"unit"`
}

// StockDeductedData represents the data payload for StockDeducted
type StockDeductedData struct {
	ProductID    string    `json:"productId"`
	LaboratoryID string    `json:"laboratoryId"`
	ExecutionID  string    `json:"executionId,omitempty"`
	Quantity     float64   `json:"quantity"`
	Unit         string    `json:"unit"`
	NewQuantity  float64   `json:"newQuantity"`
	DeductedAt   time.Time `json:"deductedAt"`
}

// NegativeStockAlertData represents the data payload for NegativeStockAlert
type NegativeStockAlertData struct {
	ProductID    string    `json:"productId"`
	LaboratoryID string    `json:"laboratoryId"`
	Quantity     float64   `json:"quantity"`
	Unit         string    `json:"unit"`
	AlertedAt    time.Time `json:"alertedAt"`
}

// ReservationCreatedData represents the data payload for ReservationCreated
type ReservationCreatedData struct {
	ReservationID string    `json:"reservationId"`
	EquipmentID   string    `json:"equipmentId"`
	LaboratoryID  string    `json:"laboratoryId"`
	ReservedBy    string    `json:"reservedBy"`
	WindowStart   time.Time `json:"windowStart"`
	WindowEnd     time.Time `json:"windowEnd"`
}
