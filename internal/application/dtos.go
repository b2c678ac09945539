package application

import (
	"time"

	"github.com/labops-platform/routine-service/internal/domain"
)

// RoutineDTO is the API representation of a routine
type RoutineDTO struct {
	ID           string                   `json:"id"`
	LaboratoryID string                   `json:"laboratoryId"`
	Name         string                   `json:"name"`
	Description  string                   `json:"description,omitempty"`
	ScheduleType string                   `json:"scheduleType"`
	Recurrence   *RecurrenceRuleDTO       `json:"recurrence,omitempty"`
	Deadline     *time.Time               `json:"deadline,omitempty"`
	Steps        []domain.RoutineStep     `json:"steps"`
	Materials    []domain.RoutineMaterial `json:"materials"`
	Equipment    []EquipmentDTO           `json:"equipment"`
	CreatedAt    time.Time                `json:"createdAt"`
	UpdatedAt    time.Time                `json:"updatedAt"`
}

// RecurrenceRuleDTO is the API representation of a recurrence rule
type RecurrenceRuleDTO struct {
	Frequency  string     `json:"frequency"`
	Interval   int        `json:"interval"`
	DaysOfWeek []int      `json:"daysOfWeek,omitempty"`
	DayOfMonth int        `json:"dayOfMonth,omitempty"`
	StartDate  time.Time  `json:"startDate"`
	EndDate    *time.Time `json:"endDate,omitempty"`
}

// EquipmentDTO is the API representation of an equipment requirement
type EquipmentDTO struct {
	EquipmentID      string `json:"equipmentId"`
	EstimatedMinutes int    `json:"estimatedMinutes"`
	Required         bool   `json:"required"`
}

// ExecutionDTO is the API representation of a routine execution
type ExecutionDTO struct {
	ID                 string                     `json:"id"`
	RoutineID          string                     `json:"routineId"`
	RoutineName        string                     `json:"routineName"`
	LaboratoryID       string                     `json:"laboratoryId"`
	ExecutedBy         string                     `json:"executedBy"`
	Status             string                     `json:"status"`
	StartedAt          time.Time                  `json:"startedAt"`
	CompletedAt        *time.Time                 `json:"completedAt,omitempty"`
	CancelledAt        *time.Time                 `json:"cancelledAt,omitempty"`
	StepCompletions    []domain.StepCompletion    `json:"stepCompletions"`
	MaterialDeductions []domain.MaterialDeduction `json:"materialDeductions,omitempty"`
}

// CompletionResultDTO is the response to completing an execution: the
// terminal execution, resulting stock levels, and any negative-stock
// warnings the caller should surface
type CompletionResultDTO struct {
	Execution   *ExecutionDTO       `json:"execution"`
	StockLevels []domain.StockLevel `json:"stockLevels"`
	Warnings    []string            `json:"warnings,omitempty"`
}

// AvailabilityDTO is the API representation of an availability check
type AvailabilityDTO struct {
	RoutineID          string                     `json:"routineId"`
	CheckedAt          time.Time                  `json:"checkedAt"`
	CanStart           bool                       `json:"canStart"`
	MaterialsAvailable bool                       `json:"materialsAvailable"`
	EquipmentAvailable bool                       `json:"equipmentAvailable"`
	MaterialIssues     []domain.MaterialIssue     `json:"materialIssues"`
	EquipmentConflicts []domain.EquipmentConflict `json:"equipmentConflicts"`
}

// UpcomingEntryDTO is one row of the upcoming-work view
type UpcomingEntryDTO struct {
	RoutineID    string    `json:"routineId"`
	RoutineName  string    `json:"routineName"`
	DueDate      time.Time `json:"dueDate"`
	DaysUntilDue int       `json:"daysUntilDue"`
	Status       string    `json:"status"`
	ExecutionID  string    `json:"executionId,omitempty"`
}

// ReservationDTO is the API representation of an equipment reservation
type ReservationDTO struct {
	ID           string    `json:"id"`
	EquipmentID  string    `json:"equipmentId"`
	LaboratoryID string    `json:"laboratoryId"`
	ReservedBy   string    `json:"reservedBy"`
	Start        time.Time `json:"start"`
	End          time.Time `json:"end"`
	Description  string    `json:"description,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// ReservationResultDTO is the response to creating a reservation. Under the
// advisory conflict policy the reservation is created and conflicts are
// reported alongside it.
type ReservationResultDTO struct {
	Reservation *ReservationDTO  `json:"reservation"`
	Conflicts   []ReservationDTO `json:"conflicts,omitempty"`
}

// ProductDTO is the API representation of a stock item
type ProductDTO struct {
	ID           string    `json:"id"`
	LaboratoryID string    `json:"laboratoryId"`
	Name         string    `json:"name"`
	Quantity     float64   `json:"quantity"`
	Unit         string    `json:"unit"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
