package domain

import (
	"time"

	"github.com/google/uuid"
)

// ScheduleType represents how a routine is scheduled
type ScheduleType string

const (
	ScheduleOneTime   ScheduleType = "one_time"
	ScheduleRecurring ScheduleType = "recurring"
	ScheduleTemplate  ScheduleType = "template"
)

// IsValid checks if the schedule type is valid
func (s ScheduleType) IsValid() bool {
	switch s {
	case ScheduleOneTime, ScheduleRecurring, ScheduleTemplate:
		return true
	default:
		return false
	}
}

// Routine is the aggregate root for a reusable lab procedure: ordered
// steps, required materials, required equipment, and a schedule.
type Routine struct {
	ID           string             `bson:"_id"`
	LaboratoryID string             `bson:"laboratoryId"`
	Name         string             `bson:"name"`
	Description  string             `bson:"description,omitempty"`
	Steps        []RoutineStep      `bson:"steps"`
	Materials    []RoutineMaterial  `bson:"materials"`
	Equipment    []RoutineEquipment `bson:"equipment"`
	ScheduleType ScheduleType       `bson:"scheduleType"`
	Recurrence   *RecurrenceRule    `bson:"recurrence,omitempty"`
	Deadline     *time.Time         `bson:"deadline,omitempty"`
	Assignees    []string           `bson:"assignees,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt"`
	DomainEvents []DomainEvent      `bson:"-"`
}

// RoutineStep is one ordered step of a routine
type RoutineStep struct {
	StepID      string `bson:"stepId" json:"stepId"`
	Name        string `bson:"name" json:"name"`
	Description string `bson:"description,omitempty" json:"description,omitempty"`
	Order       int    `bson:"order" json:"order"`
}

// RoutineMaterial is a product consumed by one run of the routine
type RoutineMaterial struct {
	ProductID string  `bson:"productId" json:"productId"`
	Quantity  float64 `bson:"quantity" json:"quantity"`
	Unit      string  `bson:"unit" json:"unit"`
}

// RoutineEquipment is a piece of equipment the routine occupies while running
type RoutineEquipment struct {
	EquipmentID       string        `bson:"equipmentId" json:"equipmentId"`
	EstimatedDuration time.Duration `bson:"estimatedDurationNs" json:"estimatedDuration"`
	Required          bool          `bson:"required" json:"required"`
}

// NewRoutine creates a new Routine aggregate. Schedule invariants are
// enforced here: a recurring routine carries a valid recurrence rule, a
// one-time routine carries a deadline, a template carries neither.
func NewRoutine(laboratoryID, name, description string, scheduleType ScheduleType, recurrence *RecurrenceRule, deadline *time.Time) (*Routine, error) {
	if !scheduleType.IsValid() {
		return nil, ErrInvalidScheduleType
	}

	switch scheduleType {
	case ScheduleRecurring:
		if recurrence == nil {
			return nil, ErrMissingRecurrence
		}
		if err := recurrence.Validate(); err != nil {
			return nil, err
		}
	case ScheduleOneTime:
		if deadline == nil {
			return nil, ErrMissingDeadline
		}
		recurrence = nil
	case ScheduleTemplate:
		recurrence = nil
		deadline = nil
	}

	now := time.Now()
	routine := &Routine{
		ID:           uuid.New().String(),
		LaboratoryID: laboratoryID,
		Name:         name,
		Description:  description,
		Steps:        make([]RoutineStep, 0),
		Materials:    make([]RoutineMaterial, 0),
		Equipment:    make([]RoutineEquipment, 0),
		ScheduleType: scheduleType,
		Recurrence:   recurrence,
		Deadline:     deadline,
		CreatedAt:    now,
		UpdatedAt:    now,
		DomainEvents: make([]DomainEvent, 0),
	}

	routine.AddDomainEvent(&RoutineCreatedEvent{
		RoutineID:    routine.ID,
		LaboratoryID: laboratoryID,
		Name:         name,
		ScheduleType: string(scheduleType),
		CreatedAt:    now,
	})

	return routine, nil
}

// AddStep appends a step to the routine
func (r *Routine) AddStep(name, description string) RoutineStep {
	step := RoutineStep{
		StepID:      uuid.New().String(),
		Name:        name,
		Description: description,
		Order:       len(r.Steps) + 1,
	}
	r.Steps = append(r.Steps, step)
	r.UpdatedAt = time.Now()
	return step
}

// AddMaterial appends a required material
func (r *Routine) AddMaterial(productID string, quantity float64, unit string) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	r.Materials = append(r.Materials, RoutineMaterial{
		ProductID: productID,
		Quantity:  quantity,
		Unit:      unit,
	})
	r.UpdatedAt = time.Now()
	return nil
}

// AddEquipment appends an equipment requirement
func (r *Routine) AddEquipment(equipmentID string, estimatedDuration time.Duration, required bool) error {
	if estimatedDuration <= 0 {
		return ErrInvalidInterval
	}
	r.Equipment = append(r.Equipment, RoutineEquipment{
		EquipmentID:       equipmentID,
		EstimatedDuration: estimatedDuration,
		Required:          required,
	})
	r.UpdatedAt = time.Now()
	return nil
}

// FindStep returns the step with the given ID, or nil
func (r *Routine) FindStep(stepID string) *RoutineStep {
	for idx := range r.Steps {
		if r.Steps[idx].StepID == stepID {
			return &r.Steps[idx]
		}
	}
	return nil
}

// DueDates expands the routine's schedule into concrete due dates within
// the window. Templates never produce instances; one-time routines produce
// at most one, at their deadline.
func (r *Routine) DueDates(windowStart, windowEnd time.Time) ([]time.Time, error) {
	switch r.ScheduleType {
	case ScheduleTemplate:
		return nil, nil
	case ScheduleOneTime:
		if r.Deadline == nil {
			return nil, nil
		}
		d := dateOnly(*r.Deadline)
		if d.Before(dateOnly(windowStart)) || d.After(dateOnly(windowEnd)) {
			return nil, nil
		}
		return []time.Time{d}, nil
	default:
		if r.Recurrence == nil {
			return nil, ErrMissingRecurrence
		}
		return r.Recurrence.Expand(windowStart, windowEnd)
	}
}

// NextDue returns the earliest due date within [from, from+horizon], or nil
// if none falls inside the horizon
func (r *Routine) NextDue(from time.Time, horizon time.Duration) (*time.Time, error) {
	dates, err := r.DueDates(from, from.Add(horizon))
	if err != nil {
		return nil, err
	}
	if len(dates) == 0 {
		return nil, nil
	}
	return &dates[0], nil
}

// AddDomainEvent adds a domain event
func (r *Routine) AddDomainEvent(event DomainEvent) {
	r.DomainEvents = append(r.DomainEvents, event)
}

// ClearDomainEvents clears all domain events
func (r *Routine) ClearDomainEvents() {
	r.DomainEvents = make([]DomainEvent, 0)
}

// GetDomainEvents returns all domain events
func (r *Routine) GetDomainEvents() []DomainEvent {
	return r.DomainEvents
}
