package domain

import "errors"

// Errors
var (
	ErrInvalidInterval        = errors.New("invalid interval: start must be before end")
	ErrInvalidRecurrenceRule  = errors.New("invalid recurrence rule")
	ErrExecutionAlreadyActive = errors.New("routine already has an execution in progress")
	ErrExecutionNotActive     = errors.New("execution is not in progress")
	ErrStepNotFound           = errors.New("routine step not found")
	ErrRoutineNotFound        = errors.New("routine not found")
	ErrProductNotFound        = errors.New("product not found")
	ErrReservationNotFound    = errors.New("reservation not found")
	ErrReservationConflict    = errors.New("equipment is already reserved for the requested window")
	ErrInvalidQuantity        = errors.New("invalid quantity")
	ErrInvalidScheduleType    = errors.New("invalid schedule type")
	ErrMissingDeadline        = errors.New("one-time routine requires a deadline")
	ErrMissingRecurrence      = errors.New("recurring routine requires a recurrence rule")
)
