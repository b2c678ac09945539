package application

import "time"

// CreateRoutineCommand creates a routine with its steps, materials,
// equipment, and schedule
type CreateRoutineCommand struct {
	LaboratoryID string                 `json:"laboratoryId" binding:"required"`
	Name         string                 `json:"name" binding:"required"`
	Description  string                 `json:"description"`
	ScheduleType string                 `json:"scheduleType" binding:"required,schedule_type"`
	Recurrence   *RecurrenceRuleRequest `json:"recurrence,omitempty"`
	Deadline     *time.Time             `json:"deadline,omitempty"`
	Steps        []StepRequest          `json:"steps"`
	Materials    []MaterialRequest      `json:"materials"`
	Equipment    []EquipmentRequest     `json:"equipment"`
}

// RecurrenceRuleRequest is the recurrence section of a routine request
type RecurrenceRuleRequest struct {
	Frequency  string     `json:"frequency" binding:"required,frequency"`
	Interval   int        `json:"interval" binding:"required,min=1"`
	DaysOfWeek []int      `json:"daysOfWeek,omitempty" binding:"omitempty,dive,weekday"`
	DayOfMonth int        `json:"dayOfMonth,omitempty" binding:"omitempty,min=1,max=31"`
	StartDate  time.Time  `json:"startDate" binding:"required"`
	EndDate    *time.Time `json:"endDate,omitempty"`
}

// StepRequest is one step of a routine request
type StepRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// MaterialRequest is one required material of a routine request
type MaterialRequest struct {
	ProductID string  `json:"productId" binding:"required"`
	Quantity  float64 `json:"quantity" binding:"required,gt=0"`
	Unit      string  `json:"unit" binding:"required,unit_code"`
}

// EquipmentRequest is one equipment requirement of a routine request
type EquipmentRequest struct {
	EquipmentID      string `json:"equipmentId" binding:"required"`
	EstimatedMinutes int    `json:"estimatedMinutes" binding:"required,min=1"`
	Required         bool   `json:"required"`
}

// StartExecutionCommand starts a run of a routine
type StartExecutionCommand struct {
	RoutineID  string `json:"-"`
	ExecutedBy string `json:"executedBy" binding:"required"`
}

// UpdateStepCommand sets one step's completion state
type UpdateStepCommand struct {
	ExecutionID string `json:"-"`
	StepID      string `json:"-"`
	Completed   *bool  `json:"completed" binding:"required"`
	Notes       string `json:"notes"`
}

// CompleteExecutionCommand completes an execution and applies deductions
type CompleteExecutionCommand struct {
	ExecutionID string `json:"-"`
}

// CancelExecutionCommand cancels an in-progress execution
type CancelExecutionCommand struct {
	ExecutionID string `json:"-"`
	Reason      string `json:"reason"`
}

// ExecutionHistoryQuery lists past executions for a laboratory
type ExecutionHistoryQuery struct {
	LaboratoryID string
	RoutineID    string
	Page         int64
	PageSize     int64
}

// ListUpcomingQuery lists due-soon routines for a laboratory
type ListUpcomingQuery struct {
	LaboratoryID string
	HorizonDays  int
}

// CreateReservationCommand books equipment over a time window
type CreateReservationCommand struct {
	EquipmentID  string    `json:"-"`
	LaboratoryID string    `json:"laboratoryId" binding:"required"`
	ReservedBy   string    `json:"reservedBy" binding:"required"`
	Start        time.Time `json:"start" binding:"required"`
	End          time.Time `json:"end" binding:"required"`
	Description  string    `json:"description"`
	// ExcludeReservationID skips one existing reservation during conflict
	// checking, for edit-in-place
	ExcludeReservationID string `json:"excludeReservationId"`
}

// CreateProductCommand registers a stock item
type CreateProductCommand struct {
	LaboratoryID string  `json:"laboratoryId" binding:"required"`
	Name         string  `json:"name" binding:"required"`
	Quantity     float64 `json:"quantity" binding:"min=0"`
	Unit         string  `json:"unit" binding:"required,unit_code"`
}

// ReceiveStockCommand adds stock to a product
type ReceiveStockCommand struct {
	ProductID string  `json:"-"`
	Quantity  float64 `json:"quantity" binding:"required,gt=0"`
}
