package domain

import (
	"time"

	"github.com/google/uuid"
)

// ExecutionStatus represents the lifecycle state of a routine execution
type ExecutionStatus string

const (
	ExecutionInProgress ExecutionStatus = "in_progress"
	ExecutionCompleted  ExecutionStatus = "completed"
	ExecutionCancelled  ExecutionStatus = "cancelled"
)

// IsValid checks if the execution status is valid
func (s ExecutionStatus) IsValid() bool {
	switch s {
	case ExecutionInProgress, ExecutionCompleted, ExecutionCancelled:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether the status admits no further transitions
func (s ExecutionStatus) IsTerminal() bool {
	return s == ExecutionCompleted || s == ExecutionCancelled
}

// RoutineExecution is the aggregate root for one concrete run of a routine.
// Lifecycle: in_progress, then exactly one of completed or cancelled.
// At most one in_progress execution exists per routine at a time.
type RoutineExecution struct {
	ID                 string              `bson:"_id"`
	RoutineID          string              `bson:"routineId"`
	RoutineName        string              `bson:"routineName"`
	LaboratoryID       string              `bson:"laboratoryId"`
	ExecutedBy         string              `bson:"executedBy"`
	Status             ExecutionStatus     `bson:"status"`
	StartedAt          time.Time           `bson:"startedAt"`
	CompletedAt        *time.Time          `bson:"completedAt,omitempty"`
	CancelledAt        *time.Time          `bson:"cancelledAt,omitempty"`
	StepCompletions    []StepCompletion    `bson:"stepCompletions"`
	MaterialDeductions []MaterialDeduction `bson:"materialDeductions,omitempty"`
	DomainEvents       []DomainEvent       `bson:"-"`
}

// StepCompletion tracks whether one routine step has been done in this run
type StepCompletion struct {
	StepID      string     `bson:"stepId" json:"stepId"`
	Name        string     `bson:"name" json:"name"`
	Completed   bool       `bson:"completed" json:"completed"`
	CompletedAt *time.Time `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	Notes       string     `bson:"notes,omitempty" json:"notes,omitempty"`
}

// MaterialDeduction records one stock decrement applied at completion
type MaterialDeduction struct {
	ProductID string  `bson:"productId" json:"productId"`
	Quantity  float64 `bson:"quantity" json:"quantity"`
	Unit      string  `bson:"unit" json:"unit"`
}

// NewRoutineExecution starts a run of the routine, creating one pending
// StepCompletion per routine step
func NewRoutineExecution(routine *Routine, executedBy string) *RoutineExecution {
	now := time.Now()

	completions := make([]StepCompletion, 0, len(routine.Steps))
	for _, step := range routine.Steps {
		completions = append(completions, StepCompletion{
			StepID:    step.StepID,
			Name:      step.Name,
			Completed: false,
		})
	}

	execution := &RoutineExecution{
		ID:              uuid.New().String(),
		RoutineID:       routine.ID,
		RoutineName:     routine.Name,
		LaboratoryID:    routine.LaboratoryID,
		ExecutedBy:      executedBy,
		Status:          ExecutionInProgress,
		StartedAt:       now,
		StepCompletions: completions,
		DomainEvents:    make([]DomainEvent, 0),
	}

	execution.AddDomainEvent(&ExecutionStartedEvent{
		ExecutionID:  execution.ID,
		RoutineID:    routine.ID,
		LaboratoryID: routine.LaboratoryID,
		ExecutedBy:   executedBy,
		StepCount:    len(completions),
		StartedAt:    now,
	})

	return execution
}

// UpdateStepCompletion sets the completion flag and notes for one step.
// Re-setting the same value is a no-op success; no event is emitted and no
// timestamp changes.
func (e *RoutineExecution) UpdateStepCompletion(stepID string, completed bool, notes string) error {
	if e.Status != ExecutionInProgress {
		return ErrExecutionNotActive
	}

	for idx := range e.StepCompletions {
		if e.StepCompletions[idx].StepID != stepID {
			continue
		}

		if e.StepCompletions[idx].Completed == completed && e.StepCompletions[idx].Notes == notes {
			return nil
		}

		e.StepCompletions[idx].Completed = completed
		if notes != "" {
			e.StepCompletions[idx].Notes = notes
		}
		if completed {
			now := time.Now()
			e.StepCompletions[idx].CompletedAt = &now
		} else {
			e.StepCompletions[idx].CompletedAt = nil
		}

		e.AddDomainEvent(&StepCompletionUpdatedEvent{
			ExecutionID:  e.ID,
			RoutineID:    e.RoutineID,
			LaboratoryID: e.LaboratoryID,
			StepID:       stepID,
			Completed:    completed,
			UpdatedAt:    time.Now(),
		})
		return nil
	}

	return ErrStepNotFound
}

// Complete transitions the execution to completed and records the material
// deductions for the routine's material list. Partial step completion is
// allowed; deductions are recorded for every required material regardless.
func (e *RoutineExecution) Complete(routine *Routine) error {
	if e.Status != ExecutionInProgress {
		return ErrExecutionNotActive
	}

	now := time.Now()
	deductions := make([]MaterialDeduction, 0, len(routine.Materials))
	for _, material := range routine.Materials {
		deductions = append(deductions, MaterialDeduction{
			ProductID: material.ProductID,
			Quantity:  material.Quantity,
			Unit:      material.Unit,
		})
	}

	e.Status = ExecutionCompleted
	e.CompletedAt = &now
	e.MaterialDeductions = deductions

	e.AddDomainEvent(&ExecutionCompletedEvent{
		ExecutionID:    e.ID,
		RoutineID:      e.RoutineID,
		LaboratoryID:   e.LaboratoryID,
		ExecutedBy:     e.ExecutedBy,
		CompletedSteps: e.CompletedStepCount(),
		TotalSteps:     len(e.StepCompletions),
		Deductions:     deductions,
		CompletedAt:    now,
	})

	return nil
}

// Cancel transitions the execution to cancelled. Stock is never touched;
// step completions are retained for audit.
func (e *RoutineExecution) Cancel(reason string) error {
	if e.Status != ExecutionInProgress {
		return ErrExecutionNotActive
	}

	now := time.Now()
	e.Status = ExecutionCancelled
	e.CancelledAt = &now

	e.AddDomainEvent(&ExecutionCancelledEvent{
		ExecutionID:  e.ID,
		RoutineID:    e.RoutineID,
		LaboratoryID: e.LaboratoryID,
		Reason:       reason,
		CancelledAt:  now,
	})

	return nil
}

// CompletedStepCount returns how many steps are marked completed
func (e *RoutineExecution) CompletedStepCount() int {
	count := 0
	for _, sc := range e.StepCompletions {
		if sc.Completed {
			count++
		}
	}
	return count
}

// FindStepCompletion returns the completion record for a step, or nil
func (e *RoutineExecution) FindStepCompletion(stepID string) *StepCompletion {
	for idx := range e.StepCompletions {
		if e.StepCompletions[idx].StepID == stepID {
			return &e.StepCompletions[idx]
		}
	}
	return nil
}

// AddDomainEvent adds a domain event
func (e *RoutineExecution) AddDomainEvent(event DomainEvent) {
	e.DomainEvents = append(e.DomainEvents, event)
}

// ClearDomainEvents clears all domain events
func (e *RoutineExecution) ClearDomainEvents() {
	e.DomainEvents = make([]DomainEvent, 0)
}

// GetDomainEvents returns all domain events
func (e *RoutineExecution) GetDomainEvents() []DomainEvent {
	return e.DomainEvents
}
