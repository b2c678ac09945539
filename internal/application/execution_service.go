package application

import (
	"context"
	"fmt"

	"github.com/labops-platform/routine-service/internal/domain"
	"github.com/labops-platform/routine-service/pkg/api"
	"github.com/labops-platform/routine-service/pkg/errors"
	"github.com/labops-platform/routine-service/pkg/kafka"
	"github.com/labops-platform/routine-service/pkg/labevents"
	"github.com/labops-platform/routine-service/pkg/logging"
	"github.com/labops-platform/routine-service/pkg/metrics"
)

// ExecutionApplicationService drives the routine execution lifecycle:
// start, per-step completion, and the terminal complete or cancel
// transition. Completion applies material deductions atomically with the
// status change.
type ExecutionApplicationService struct {
	routines     domain.RoutineRepository
	executions   domain.ExecutionRepository
	producer     *kafka.InstrumentedProducer
	eventFactory *labevents.EventFactory
	metrics      *metrics.Metrics
	logger       *logging.Logger
}

// NewExecutionApplicationService creates a new ExecutionApplicationService
func NewExecutionApplicationService(
	routines domain.RoutineRepository,
	executions domain.ExecutionRepository,
	producer *kafka.InstrumentedProducer,
	eventFactory *labevents.EventFactory,
	m *metrics.Metrics,
	logger *logging.Logger,
) *ExecutionApplicationService {
	return &ExecutionApplicationService{
		routines:     routines,
		executions:   executions,
		producer:     producer,
		eventFactory: eventFactory,
		metrics:      m,
		logger:       logger,
	}
}

// StartExecution starts a run of the routine. The storage layer enforces
// the single-in-progress invariant atomically; a concurrent second start
// surfaces as ErrExecutionAlreadyActive.
func (s *ExecutionApplicationService) StartExecution(ctx context.Context, cmd StartExecutionCommand) (*ExecutionDTO, error) {
	routine, err := s.routines.FindByID(ctx, cmd.RoutineID)
	if err != nil {
		s.logger.Error("Failed to get routine", "routineId", cmd.RoutineID, "error", err)
		return nil, fmt.Errorf("failed to get routine: %w", err)
	}
	if routine == nil {
		return nil, errors.ErrNotFoundWithID("routine", cmd.RoutineID)
	}

	// Advisory pre-check; the unique constraint in storage remains the
	// arbiter when two starts race past this read.
	active, err := s.executions.FindActiveByRoutine(ctx, cmd.RoutineID)
	if err != nil {
		s.logger.Error("Failed to check active execution", "routineId", cmd.RoutineID, "error", err)
		return nil, fmt.Errorf("failed to check active execution: %w", err)
	}
	if active != nil {
		return nil, errors.ErrExecutionAlreadyActive(cmd.RoutineID)
	}

	execution := domain.NewRoutineExecution(routine, cmd.ExecutedBy)

	if err := s.executions.Create(ctx, execution); err != nil {
		if err == domain.ErrExecutionAlreadyActive {
			return nil, errors.ErrExecutionAlreadyActive(cmd.RoutineID)
		}
		s.logger.Error("Failed to create execution", "routineId", cmd.RoutineID, "error", err)
		return nil, fmt.Errorf("failed to create execution: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordExecutionStarted(routine.LaboratoryID)
	}
	s.publishStarted(ctx, execution)

	s.logger.Info("Started execution",
		"executionId", execution.ID,
		"routineId", cmd.RoutineID,
		"executedBy", cmd.ExecutedBy,
		"steps", len(execution.StepCompletions),
	)
	return ToExecutionDTO(execution), nil
}

// UpdateStepCompletion sets one step's completion flag. Setting the same
// value again is a no-op success.
func (s *ExecutionApplicationService) UpdateStepCompletion(ctx context.Context, cmd UpdateStepCommand) (*ExecutionDTO, error) {
	execution, err := s.executions.FindByID(ctx, cmd.ExecutionID)
	if err != nil {
		s.logger.Error("Failed to get execution", "executionId", cmd.ExecutionID, "error", err)
		return nil, fmt.Errorf("failed to get execution: %w", err)
	}
	if execution == nil {
		return nil, errors.ErrNotFoundWithID("execution", cmd.ExecutionID)
	}

	completed := cmd.Completed != nil && *cmd.Completed
	if err := execution.UpdateStepCompletion(cmd.StepID, completed, cmd.Notes); err != nil {
		switch err {
		case domain.ErrExecutionNotActive:
			return nil, errors.ErrExecutionNotActive(cmd.ExecutionID)
		case domain.ErrStepNotFound:
			return nil, errors.ErrStepNotFound(cmd.StepID)
		default:
			return nil, errors.MapDomainError(err)
		}
	}

	if err := s.executions.Update(ctx, execution); err != nil {
		s.logger.Error("Failed to save execution", "executionId", cmd.ExecutionID, "error", err)
		return nil, fmt.Errorf("failed to save execution: %w", err)
	}

	s.logger.Info("Updated step completion",
		"executionId", cmd.ExecutionID,
		"stepId", cmd.StepID,
		"completed", completed,
	)
	return ToExecutionDTO(execution), nil
}

// CompleteExecution transitions the execution to completed and applies the
// routine's material deductions. The transition and all deductions happen
// in one storage transaction: either the execution completes and stock is
// decremented, or neither occurs. Negative resulting stock is a warning,
// never a failure.
func (s *ExecutionApplicationService) CompleteExecution(ctx context.Context, cmd CompleteExecutionCommand) (*CompletionResultDTO, error) {
	execution, err := s.executions.FindByID(ctx, cmd.ExecutionID)
	if err != nil {
		s.logger.Error("Failed to get execution", "executionId", cmd.ExecutionID, "error", err)
		return nil, fmt.Errorf("failed to get execution: %w", err)
	}
	if execution == nil {
		return nil, errors.ErrNotFoundWithID("execution", cmd.ExecutionID)
	}

	routine, err := s.routines.FindByID(ctx, execution.RoutineID)
	if err != nil {
		s.logger.Error("Failed to get routine", "routineId", execution.RoutineID, "error", err)
		return nil, fmt.Errorf("failed to get routine: %w", err)
	}
	if routine == nil {
		return nil, errors.ErrNotFoundWithID("routine", execution.RoutineID)
	}

	if err := execution.Complete(routine); err != nil {
		if err == domain.ErrExecutionNotActive {
			return nil, errors.ErrExecutionNotActive(cmd.ExecutionID)
		}
		return nil, errors.MapDomainError(err)
	}

	stockLevels, err := s.executions.CompleteWithDeductions(ctx, execution)
	if err != nil {
		if err == domain.ErrExecutionNotActive {
			return nil, errors.ErrExecutionNotActive(cmd.ExecutionID)
		}
		s.logger.Error("Failed to complete execution", "executionId", cmd.ExecutionID, "error", err)
		return nil, fmt.Errorf("failed to complete execution: %w", err)
	}

	warnings := make([]string, 0)
	for _, level := range stockLevels {
		if level.Quantity < 0 {
			warnings = append(warnings, fmt.Sprintf("stock for %s is negative: %.2f %s", level.Name, level.Quantity, level.Unit))
			if s.metrics != nil {
				s.metrics.RecordNegativeStockWarning()
			}
		}
	}

	if s.metrics != nil {
		s.metrics.RecordExecutionCompleted(execution.LaboratoryID)
		for _, deduction := range execution.MaterialDeductions {
			s.metrics.RecordMaterialDeduction(deduction.Unit)
		}
	}
	s.publishCompleted(ctx, execution, stockLevels)

	s.logger.Info("Completed execution",
		"executionId", cmd.ExecutionID,
		"routineId", execution.RoutineID,
		"deductions", len(execution.MaterialDeductions),
		"warnings", len(warnings),
	)
	return &CompletionResultDTO{
		Execution:   ToExecutionDTO(execution),
		StockLevels: stockLevels,
		Warnings:    warnings,
	}, nil
}

// CancelExecution transitions the execution to cancelled. No stock is
// touched; step completions are retained for audit.
func (s *ExecutionApplicationService) CancelExecution(ctx context.Context, cmd CancelExecutionCommand) (*ExecutionDTO, error) {
	execution, err := s.executions.FindByID(ctx, cmd.ExecutionID)
	if err != nil {
		s.logger.Error("Failed to get execution", "executionId", cmd.ExecutionID, "error", err)
		return nil, fmt.Errorf("failed to get execution: %w", err)
	}
	if execution == nil {
		return nil, errors.ErrNotFoundWithID("execution", cmd.ExecutionID)
	}

	if err := execution.Cancel(cmd.Reason); err != nil {
		if err == domain.ErrExecutionNotActive {
			return nil, errors.ErrExecutionNotActive(cmd.ExecutionID)
		}
		return nil, errors.MapDomainError(err)
	}

	if err := s.executions.Update(ctx, execution); err != nil {
		s.logger.Error("Failed to save execution", "executionId", cmd.ExecutionID, "error", err)
		return nil, fmt.Errorf("failed to save execution: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordExecutionCancelled(execution.LaboratoryID)
	}
	s.publishCancelled(ctx, execution, cmd.Reason)

	s.logger.Info("Cancelled execution", "executionId", cmd.ExecutionID, "reason", cmd.Reason)
	return ToExecutionDTO(execution), nil
}

// GetExecution retrieves an execution by ID
func (s *ExecutionApplicationService) GetExecution(ctx context.Context, executionID string) (*ExecutionDTO, error) {
	execution, err := s.executions.FindByID(ctx, executionID)
	if err != nil {
		s.logger.Error("Failed to get execution", "executionId", executionID, "error", err)
		return nil, fmt.Errorf("failed to get execution: %w", err)
	}
	if execution == nil {
		return nil, errors.ErrNotFoundWithID("execution", executionID)
	}
	return ToExecutionDTO(execution), nil
}

// GetExecutionHistory lists past executions for a laboratory, newest
// first, optionally filtered to one routine
func (s *ExecutionApplicationService) GetExecutionHistory(ctx context.Context, query ExecutionHistoryQuery) (*api.PageResponse[ExecutionDTO], error) {
	page := api.PageRequest{Page: query.Page, PageSize: query.PageSize}
	if page.Page < 1 {
		page.Page = 1
	}
	if page.PageSize < 1 {
		page.PageSize = 20
	}

	executions, total, err := s.executions.FindByLaboratory(ctx, query.LaboratoryID, query.RoutineID, page.GetLimit(), page.GetOffset())
	if err != nil {
		s.logger.Error("Failed to list executions", "laboratoryId", query.LaboratoryID, "error", err)
		return nil, fmt.Errorf("failed to list executions: %w", err)
	}

	response := api.NewPageResponse(ToExecutionDTOs(executions), page.Page, page.PageSize, total)
	return &response, nil
}

func (s *ExecutionApplicationService) publishStarted(ctx context.Context, execution *domain.RoutineExecution) {
	if s.producer == nil || s.eventFactory == nil {
		return
	}

	event := s.eventFactory.CreateExecutionStartedEvent(ctx, labevents.ExecutionStartedData{
		ExecutionID:  execution.ID,
		RoutineID:    execution.RoutineID,
		LaboratoryID: execution.LaboratoryID,
		ExecutedBy:   execution.ExecutedBy,
		StepCount:    len(execution.StepCompletions),
		StartedAt:    execution.StartedAt,
	})
	if err := s.producer.PublishEvent(ctx, labevents.TopicRoutineEvents, event); err != nil {
		s.logger.Error("Failed to publish execution-started event", "executionId", execution.ID, "error", err)
	}
	execution.ClearDomainEvents()
}

func (s *ExecutionApplicationService) publishCompleted(ctx context.Context, execution *domain.RoutineExecution, stockLevels []domain.StockLevel) {
	if s.producer == nil || s.eventFactory == nil {
		return
	}

	deductions := make([]labevents.DeductionSnapshot, 0, len(execution.MaterialDeductions))
	for _, d := range execution.MaterialDeductions {
		deductions = append(deductions, labevents.DeductionSnapshot{
			ProductID: d.ProductID,
			Quantity:  d.Quantity,
			Unit:      d.Unit,
		})
	}

	completedAt := execution.StartedAt
	if execution.CompletedAt != nil {
		completedAt = *execution.CompletedAt
	}

	event := s.eventFactory.CreateExecutionCompletedEvent(ctx, labevents.ExecutionCompletedData{
		ExecutionID:    execution.ID,
		RoutineID:      execution.RoutineID,
		LaboratoryID:   execution.LaboratoryID,
		ExecutedBy:     execution.ExecutedBy,
		CompletedSteps: execution.CompletedStepCount(),
		TotalSteps:     len(execution.StepCompletions),
		Deductions:     deductions,
		CompletedAt:    completedAt,
	})
	if err := s.producer.PublishEvent(ctx, labevents.TopicRoutineEvents, event); err != nil {
		s.logger.Error("Failed to publish execution-completed event", "executionId", execution.ID, "error", err)
	}

	levelByProduct := make(map[string]domain.StockLevel, len(stockLevels))
	for _, level := range stockLevels {
		levelByProduct[level.ProductID] = level
	}

	for _, d := range execution.MaterialDeductions {
		level := levelByProduct[d.ProductID]
		stockEvent := s.eventFactory.CreateStockDeductedEvent(ctx, labevents.StockDeductedData{
			ProductID:    d.ProductID,
			LaboratoryID: execution.LaboratoryID,
			ExecutionID:  execution.ID,
			Quantity:     d.Quantity,
			Unit:         d.Unit,
			NewQuantity:  level.Quantity,
			DeductedAt:   completedAt,
		})
		if err := s.producer.PublishEvent(ctx, labevents.TopicInventoryEvents, stockEvent); err != nil {
			s.logger.Error("Failed to publish stock-deducted event", "productId", d.ProductID, "error", err)
		}

		if level.Quantity < 0 {
			alert := s.eventFactory.CreateNegativeStockAlertEvent(ctx, labevents.NegativeStockAlertData{
				ProductID:    d.ProductID,
				LaboratoryID: execution.LaboratoryID,
				Quantity:     level.Quantity,
				Unit:         d.Unit,
				AlertedAt:    completedAt,
			})
			if err := s.producer.PublishEvent(ctx, labevents.TopicInventoryEvents, alert); err != nil {
				s.logger.Error("Failed to publish negative-stock alert", "productId", d.ProductID, "error", err)
			}
		}
	}
	execution.ClearDomainEvents()
}

func (s *ExecutionApplicationService) publishCancelled(ctx context.Context, execution *domain.RoutineExecution, reason string) {
	if s.producer == nil || s.eventFactory == nil {
		return
	}

	cancelledAt := execution.StartedAt
	if execution.CancelledAt != nil {
		cancelledAt = *execution.CancelledAt
	}

	event := s.eventFactory.CreateExecutionCancelledEvent(ctx, labevents.ExecutionCancelledData{
		ExecutionID:  execution.ID,
		RoutineID:    execution.RoutineID,
		LaboratoryID: execution.LaboratoryID,
		Reason:       reason,
		CancelledAt:  cancelledAt,
	})
	if err := s.producer.PublishEvent(ctx, labevents.TopicRoutineEvents, event); err != nil {
		s.logger.Error("Failed to publish execution-cancelled event", "executionId", execution.ID, "error", err)
	}
	execution.ClearDomainEvents()
}
