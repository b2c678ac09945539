package application

import (
	"time"

	"github.com/labops-platform/routine-service/internal/domain"
)

// ToRoutineDTO converts a Routine aggregate to its DTO
func ToRoutineDTO(routine *domain.Routine) *RoutineDTO {
	if routine == nil {
		return nil
	}

	equipment := make([]EquipmentDTO, 0, len(routine.Equipment))
	for _, eq := range routine.Equipment {
		equipment = append(equipment, EquipmentDTO{
			EquipmentID:      eq.EquipmentID,
			EstimatedMinutes: int(eq.EstimatedDuration / time.Minute),
			Required:         eq.Required,
		})
	}

	return &RoutineDTO{
		ID:           routine.ID,
		LaboratoryID: routine.LaboratoryID,
		Name:         routine.Name,
		Description:  routine.Description,
		ScheduleType: string(routine.ScheduleType),
		Recurrence:   toRecurrenceRuleDTO(routine.Recurrence),
		Deadline:     routine.Deadline,
		Steps:        routine.Steps,
		Materials:    routine.Materials,
		Equipment:    equipment,
		CreatedAt:    routine.CreatedAt,
		UpdatedAt:    routine.UpdatedAt,
	}
}

func toRecurrenceRuleDTO(rule *domain.RecurrenceRule) *RecurrenceRuleDTO {
	if rule == nil {
		return nil
	}

	days := make([]int, 0, len(rule.DaysOfWeek))
	for _, d := range rule.DaysOfWeek {
		days = append(days, int(d))
	}

	return &RecurrenceRuleDTO{
		Frequency:  string(rule.Frequency),
		Interval:   rule.Interval,
		DaysOfWeek: days,
		DayOfMonth: rule.DayOfMonth,
		StartDate:  rule.StartDate,
		EndDate:    rule.EndDate,
	}
}

// ToRecurrenceRule converts a recurrence request to the domain rule
func ToRecurrenceRule(req *RecurrenceRuleRequest) *domain.RecurrenceRule {
	if req == nil {
		return nil
	}

	days := make([]time.Weekday, 0, len(req.DaysOfWeek))
	for _, d := range req.DaysOfWeek {
		days = append(days, time.Weekday(d))
	}

	return &domain.RecurrenceRule{
		Frequency:  domain.Frequency(req.Frequency),
		Interval:   req.Interval,
		DaysOfWeek: days,
		DayOfMonth: req.DayOfMonth,
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
	}
}

// ToExecutionDTO converts a RoutineExecution aggregate to its DTO
func ToExecutionDTO(execution *domain.RoutineExecution) *ExecutionDTO {
	if execution == nil {
		return nil
	}

	return &ExecutionDTO{
		ID:                 execution.ID,
		RoutineID:          execution.RoutineID,
		RoutineName:        execution.RoutineName,
		LaboratoryID:       execution.LaboratoryID,
		ExecutedBy:         execution.ExecutedBy,
		Status:             string(execution.Status),
		StartedAt:          execution.StartedAt,
		CompletedAt:        execution.CompletedAt,
		CancelledAt:        execution.CancelledAt,
		StepCompletions:    execution.StepCompletions,
		MaterialDeductions: execution.MaterialDeductions,
	}
}

// ToExecutionDTOs converts a slice of executions
func ToExecutionDTOs(executions []*domain.RoutineExecution) []ExecutionDTO {
	dtos := make([]ExecutionDTO, 0, len(executions))
	for _, execution := range executions {
		dtos = append(dtos, *ToExecutionDTO(execution))
	}
	return dtos
}

// ToAvailabilityDTO converts an availability check result to its DTO
func ToAvailabilityDTO(check *domain.AvailabilityCheck) *AvailabilityDTO {
	if check == nil {
		return nil
	}

	return &AvailabilityDTO{
		RoutineID:          check.RoutineID,
		CheckedAt:          check.CheckedAt,
		CanStart:           check.CanStart(),
		MaterialsAvailable: check.MaterialsAvailable,
		EquipmentAvailable: check.EquipmentAvailable,
		MaterialIssues:     check.MaterialIssues,
		EquipmentConflicts: check.EquipmentConflicts,
	}
}

// ToUpcomingEntryDTOs converts upcoming entries to their DTOs
func ToUpcomingEntryDTOs(entries []domain.UpcomingEntry) []UpcomingEntryDTO {
	dtos := make([]UpcomingEntryDTO, 0, len(entries))
	for _, entry := range entries {
		dtos = append(dtos, UpcomingEntryDTO{
			RoutineID:    entry.RoutineID,
			RoutineName:  entry.RoutineName,
			DueDate:      entry.DueDate,
			DaysUntilDue: entry.DaysUntilDue,
			Status:       string(entry.Status),
			ExecutionID:  entry.ExecutionID,
		})
	}
	return dtos
}

// ToReservationDTO converts a reservation aggregate to its DTO
func ToReservationDTO(reservation *domain.EquipmentReservation) *ReservationDTO {
	if reservation == nil {
		return nil
	}

	return &ReservationDTO{
		ID:           reservation.ID,
		EquipmentID:  reservation.EquipmentID,
		LaboratoryID: reservation.LaboratoryID,
		ReservedBy:   reservation.ReservedBy,
		Start:        reservation.Window.Start,
		End:          reservation.Window.End,
		Description:  reservation.Description,
		CreatedAt:    reservation.CreatedAt,
	}
}

// ToReservationDTOs converts a slice of reservations
func ToReservationDTOs(reservations []*domain.EquipmentReservation) []ReservationDTO {
	dtos := make([]ReservationDTO, 0, len(reservations))
	for _, reservation := range reservations {
		dtos = append(dtos, *ToReservationDTO(reservation))
	}
	return dtos
}

// ToProductDTO converts a product aggregate to its DTO
func ToProductDTO(product *domain.Product) *ProductDTO {
	if product == nil {
		return nil
	}

	return &ProductDTO{
		ID:           product.ID,
		LaboratoryID: product.LaboratoryID,
		Name:         product.Name,
		Quantity:     product.Quantity,
		Unit:         product.Unit,
		CreatedAt:    product.CreatedAt,
		UpdatedAt:    product.UpdatedAt,
	}
}
