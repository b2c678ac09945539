package application

import (
	"context"
	"fmt"
	"time"

	"github.com/labops-platform/routine-service/internal/domain"
	"github.com/labops-platform/routine-service/pkg/errors"
	"github.com/labops-platform/routine-service/pkg/kafka"
	"github.com/labops-platform/routine-service/pkg/labevents"
	"github.com/labops-platform/routine-service/pkg/logging"
)

// RoutineApplicationService handles routine definition and scheduling use cases
type RoutineApplicationService struct {
	routines     domain.RoutineRepository
	executions   domain.ExecutionRepository
	producer     *kafka.InstrumentedProducer
	eventFactory *labevents.EventFactory
	logger       *logging.Logger
}

// NewRoutineApplicationService creates a new RoutineApplicationService
func NewRoutineApplicationService(
	routines domain.RoutineRepository,
	executions domain.ExecutionRepository,
	producer *kafka.InstrumentedProducer,
	eventFactory *labevents.EventFactory,
	logger *logging.Logger,
) *RoutineApplicationService {
	return &RoutineApplicationService{
		routines:     routines,
		executions:   executions,
		producer:     producer,
		eventFactory: eventFactory,
		logger:       logger,
	}
}

// CreateRoutine creates a routine. Recurrence rules are validated here, at
// creation time, so expansion never encounters a malformed rule.
func (s *RoutineApplicationService) CreateRoutine(ctx context.Context, cmd CreateRoutineCommand) (*RoutineDTO, error) {
	routine, err := domain.NewRoutine(
		cmd.LaboratoryID,
		cmd.Name,
		cmd.Description,
		domain.ScheduleType(cmd.ScheduleType),
		ToRecurrenceRule(cmd.Recurrence),
		cmd.Deadline,
	)
	if err != nil {
		return nil, errors.MapDomainError(err)
	}

	for _, step := range cmd.Steps {
		routine.AddStep(step.Name, step.Description)
	}
	for _, material := range cmd.Materials {
		if err := routine.AddMaterial(material.ProductID, material.Quantity, material.Unit); err != nil {
			return nil, errors.ErrValidation(err.Error())
		}
	}
	for _, eq := range cmd.Equipment {
		duration := time.Duration(eq.EstimatedMinutes) * time.Minute
		if err := routine.AddEquipment(eq.EquipmentID, duration, eq.Required); err != nil {
			return nil, errors.ErrValidation(err.Error())
		}
	}

	if err := s.routines.Save(ctx, routine); err != nil {
		s.logger.Error("Failed to save routine", "name", cmd.Name, "error", err)
		return nil, fmt.Errorf("failed to save routine: %w", err)
	}

	s.publishRoutineEvents(ctx, routine)

	s.logger.Info("Created routine", "routineId", routine.ID, "laboratoryId", cmd.LaboratoryID, "scheduleType", cmd.ScheduleType)
	return ToRoutineDTO(routine), nil
}

// GetRoutine retrieves a routine by ID
func (s *RoutineApplicationService) GetRoutine(ctx context.Context, routineID string) (*RoutineDTO, error) {
	routine, err := s.routines.FindByID(ctx, routineID)
	if err != nil {
		s.logger.Error("Failed to get routine", "routineId", routineID, "error", err)
		return nil, fmt.Errorf("failed to get routine: %w", err)
	}
	if routine == nil {
		return nil, errors.ErrNotFoundWithID("routine", routineID)
	}

	return ToRoutineDTO(routine), nil
}

// ListRoutines lists all routines of a laboratory
func (s *RoutineApplicationService) ListRoutines(ctx context.Context, laboratoryID string) ([]RoutineDTO, error) {
	routines, err := s.routines.FindByLaboratory(ctx, laboratoryID)
	if err != nil {
		s.logger.Error("Failed to list routines", "laboratoryId", laboratoryID, "error", err)
		return nil, fmt.Errorf("failed to list routines: %w", err)
	}

	dtos := make([]RoutineDTO, 0, len(routines))
	for _, routine := range routines {
		dtos = append(dtos, *ToRoutineDTO(routine))
	}
	return dtos, nil
}

// ListUpcoming expands every non-template routine of the laboratory over
// [now, now+horizonDays] and returns the earliest due instance per routine,
// sorted by days until due. Instance status (pending, in_progress, overdue)
// is derived here on every call, never stored.
func (s *RoutineApplicationService) ListUpcoming(ctx context.Context, query ListUpcomingQuery) ([]UpcomingEntryDTO, error) {
	routines, err := s.routines.FindByLaboratory(ctx, query.LaboratoryID)
	if err != nil {
		s.logger.Error("Failed to list routines", "laboratoryId", query.LaboratoryID, "error", err)
		return nil, fmt.Errorf("failed to list routines: %w", err)
	}

	active := make(map[string]string)
	for _, routine := range routines {
		if routine.ScheduleType == domain.ScheduleTemplate {
			continue
		}
		execution, err := s.executions.FindActiveByRoutine(ctx, routine.ID)
		if err != nil {
			s.logger.Error("Failed to check active execution", "routineId", routine.ID, "error", err)
			return nil, fmt.Errorf("failed to check active execution: %w", err)
		}
		if execution != nil {
			active[routine.ID] = execution.ID
		}
	}

	entries, err := domain.BuildUpcoming(routines, active, time.Now().UTC(), query.HorizonDays)
	if err != nil {
		return nil, errors.MapDomainError(err)
	}

	return ToUpcomingEntryDTOs(entries), nil
}

func (s *RoutineApplicationService) publishRoutineEvents(ctx context.Context, routine *domain.Routine) {
	if s.producer == nil || s.eventFactory == nil {
		return
	}

	for _, event := range routine.GetDomainEvents() {
		cloudEvent := s.eventFactory.CreateEvent(ctx, event.EventType(), "routine/"+routine.ID, event)
		cloudEvent.LaboratoryID = routine.LaboratoryID
		cloudEvent.RoutineID = routine.ID
		if err := s.producer.PublishEvent(ctx, labevents.TopicRoutineEvents, cloudEvent); err != nil {
			s.logger.Error("Failed to publish routine event", "eventType", event.EventType(), "error", err)
		}
	}
	routine.ClearDomainEvents()
}
