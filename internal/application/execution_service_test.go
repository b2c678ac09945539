package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labops-platform/routine-service/internal/domain"
	apperrors "github.com/labops-platform/routine-service/pkg/errors"
)

func newTestRoutine(t *testing.T) *domain.Routine {
	t.Helper()
	rule := &domain.RecurrenceRule{
		Frequency: domain.FrequencyDaily,
		Interval:  1,
		StartDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	routine, err := domain.NewRoutine("lab-1", "Media Change", "", domain.ScheduleRecurring, rule, nil)
	require.NoError(t, err)
	routine.AddStep("Prepare buffer", "")
	routine.AddStep("Replace media", "")
	require.NoError(t, routine.AddMaterial("prod-1", 5, "mL"))
	routine.ClearDomainEvents()
	return routine
}

func newExecutionService(routines *fakeRoutineRepo, executions *fakeExecutionRepo) *ExecutionApplicationService {
	return NewExecutionApplicationService(routines, executions, nil, nil, nil, testLogger())
}

func TestExecutionApplicationService_StartExecution(t *testing.T) {
	routine := newTestRoutine(t)
	routines := &fakeRoutineRepo{routines: map[string]*domain.Routine{routine.ID: routine}}

	t.Run("starts execution with pending steps", func(t *testing.T) {
		executions := &fakeExecutionRepo{}
		svc := newExecutionService(routines, executions)

		dto, err := svc.StartExecution(context.Background(), StartExecutionCommand{
			RoutineID:  routine.ID,
			ExecutedBy: "user-1",
		})
		require.NoError(t, err)
		require.NotNil(t, dto)

		assert.Equal(t, string(domain.ExecutionInProgress), dto.Status)
		assert.Len(t, dto.StepCompletions, 2)
	})

	t.Run("unknown routine", func(t *testing.T) {
		svc := newExecutionService(routines, &fakeExecutionRepo{})

		_, err := svc.StartExecution(context.Background(), StartExecutionCommand{
			RoutineID:  "missing",
			ExecutedBy: "user-1",
		})
		require.Error(t, err)

		appErr, ok := apperrors.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperrors.CodeNotFound, appErr.Code)
	})

	t.Run("second start on active routine fails", func(t *testing.T) {
		executions := &fakeExecutionRepo{}
		svc := newExecutionService(routines, executions)

		_, err := svc.StartExecution(context.Background(), StartExecutionCommand{RoutineID: routine.ID, ExecutedBy: "user-1"})
		require.NoError(t, err)

		_, err = svc.StartExecution(context.Background(), StartExecutionCommand{RoutineID: routine.ID, ExecutedBy: "user-2"})
		require.Error(t, err)

		appErr, ok := apperrors.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperrors.CodeExecutionAlreadyActive, appErr.Code)
	})

	t.Run("active routine is rejected before any write", func(t *testing.T) {
		executions := &fakeExecutionRepo{}
		svc := newExecutionService(routines, executions)

		_, err := svc.StartExecution(context.Background(), StartExecutionCommand{RoutineID: routine.ID, ExecutedBy: "user-1"})
		require.NoError(t, err)

		executions.createErr = errors.New("insert must not be reached")
		_, err = svc.StartExecution(context.Background(), StartExecutionCommand{RoutineID: routine.ID, ExecutedBy: "user-2"})
		require.Error(t, err)

		appErr, ok := apperrors.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperrors.CodeExecutionAlreadyActive, appErr.Code)
	})

	t.Run("start succeeds again after terminal transition", func(t *testing.T) {
		executions := &fakeExecutionRepo{}
		svc := newExecutionService(routines, executions)

		first, err := svc.StartExecution(context.Background(), StartExecutionCommand{RoutineID: routine.ID, ExecutedBy: "user-1"})
		require.NoError(t, err)

		_, err = svc.CancelExecution(context.Background(), CancelExecutionCommand{ExecutionID: first.ID})
		require.NoError(t, err)

		_, err = svc.StartExecution(context.Background(), StartExecutionCommand{RoutineID: routine.ID, ExecutedBy: "user-2"})
		assert.NoError(t, err)
	})
}

func TestExecutionApplicationService_UpdateStepCompletion(t *testing.T) {
	routine := newTestRoutine(t)
	routines := &fakeRoutineRepo{routines: map[string]*domain.Routine{routine.ID: routine}}

	start := func(t *testing.T, svc *ExecutionApplicationService) *ExecutionDTO {
		t.Helper()
		dto, err := svc.StartExecution(context.Background(), StartExecutionCommand{RoutineID: routine.ID, ExecutedBy: "user-1"})
		require.NoError(t, err)
		return dto
	}

	completed := true

	t.Run("marks step completed", func(t *testing.T) {
		svc := newExecutionService(routines, &fakeExecutionRepo{})
		execution := start(t, svc)
		stepID := execution.StepCompletions[0].StepID

		dto, err := svc.UpdateStepCompletion(context.Background(), UpdateStepCommand{
			ExecutionID: execution.ID,
			StepID:      stepID,
			Completed:   &completed,
			Notes:       "done",
		})
		require.NoError(t, err)
		assert.True(t, dto.StepCompletions[0].Completed)
		assert.NotNil(t, dto.StepCompletions[0].CompletedAt)
	})

	t.Run("unknown step", func(t *testing.T) {
		svc := newExecutionService(routines, &fakeExecutionRepo{})
		execution := start(t, svc)

		_, err := svc.UpdateStepCompletion(context.Background(), UpdateStepCommand{
			ExecutionID: execution.ID,
			StepID:      "missing",
			Completed:   &completed,
		})
		require.Error(t, err)

		appErr, ok := apperrors.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperrors.CodeStepNotFound, appErr.Code)
	})

	t.Run("rejected after completion", func(t *testing.T) {
		executions := &fakeExecutionRepo{products: map[string]*domain.Product{
			"prod-1": {ID: "prod-1", Name: "Buffer", Quantity: 50, Unit: "mL"},
		}}
		svc := newExecutionService(routines, executions)
		execution := start(t, svc)

		_, err := svc.CompleteExecution(context.Background(), CompleteExecutionCommand{ExecutionID: execution.ID})
		require.NoError(t, err)

		_, err = svc.UpdateStepCompletion(context.Background(), UpdateStepCommand{
			ExecutionID: execution.ID,
			StepID:      execution.StepCompletions[0].StepID,
			Completed:   &completed,
		})
		require.Error(t, err)

		appErr, ok := apperrors.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperrors.CodeExecutionNotActive, appErr.Code)
	})
}

func TestExecutionApplicationService_CompleteExecution(t *testing.T) {
	routine := newTestRoutine(t)
	routines := &fakeRoutineRepo{routines: map[string]*domain.Routine{routine.ID: routine}}

	t.Run("applies deductions and returns stock levels", func(t *testing.T) {
		executions := &fakeExecutionRepo{products: map[string]*domain.Product{
			"prod-1": {ID: "prod-1", Name: "Buffer", Quantity: 12, Unit: "mL"},
		}}
		svc := newExecutionService(routines, executions)

		started, err := svc.StartExecution(context.Background(), StartExecutionCommand{RoutineID: routine.ID, ExecutedBy: "user-1"})
		require.NoError(t, err)

		result, err := svc.CompleteExecution(context.Background(), CompleteExecutionCommand{ExecutionID: started.ID})
		require.NoError(t, err)

		assert.Equal(t, string(domain.ExecutionCompleted), result.Execution.Status)
		require.Len(t, result.Execution.MaterialDeductions, 1)
		assert.Equal(t, 5.0, result.Execution.MaterialDeductions[0].Quantity)

		require.Len(t, result.StockLevels, 1)
		assert.Equal(t, 7.0, result.StockLevels[0].Quantity)
		assert.Empty(t, result.Warnings)
	})

	t.Run("negative stock is a warning, not an error", func(t *testing.T) {
		executions := &fakeExecutionRepo{products: map[string]*domain.Product{
			"prod-1": {ID: "prod-1", Name: "Buffer", Quantity: 3, Unit: "mL"},
		}}
		svc := newExecutionService(routines, executions)

		started, err := svc.StartExecution(context.Background(), StartExecutionCommand{RoutineID: routine.ID, ExecutedBy: "user-1"})
		require.NoError(t, err)

		result, err := svc.CompleteExecution(context.Background(), CompleteExecutionCommand{ExecutionID: started.ID})
		require.NoError(t, err)

		require.Len(t, result.StockLevels, 1)
		assert.Equal(t, -2.0, result.StockLevels[0].Quantity)
		require.Len(t, result.Warnings, 1)
		assert.Contains(t, result.Warnings[0], "negative")
	})

	t.Run("re-completing fails", func(t *testing.T) {
		executions := &fakeExecutionRepo{products: map[string]*domain.Product{
			"prod-1": {ID: "prod-1", Name: "Buffer", Quantity: 50, Unit: "mL"},
		}}
		svc := newExecutionService(routines, executions)

		started, err := svc.StartExecution(context.Background(), StartExecutionCommand{RoutineID: routine.ID, ExecutedBy: "user-1"})
		require.NoError(t, err)

		_, err = svc.CompleteExecution(context.Background(), CompleteExecutionCommand{ExecutionID: started.ID})
		require.NoError(t, err)

		_, err = svc.CompleteExecution(context.Background(), CompleteExecutionCommand{ExecutionID: started.ID})
		require.Error(t, err)

		appErr, ok := apperrors.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperrors.CodeExecutionNotActive, appErr.Code)
	})
}

func TestExecutionApplicationService_CancelExecution(t *testing.T) {
	routine := newTestRoutine(t)
	routines := &fakeRoutineRepo{routines: map[string]*domain.Routine{routine.ID: routine}}

	t.Run("cancel never touches stock", func(t *testing.T) {
		executions := &fakeExecutionRepo{products: map[string]*domain.Product{
			"prod-1": {ID: "prod-1", Name: "Buffer", Quantity: 12, Unit: "mL"},
		}}
		svc := newExecutionService(routines, executions)

		started, err := svc.StartExecution(context.Background(), StartExecutionCommand{RoutineID: routine.ID, ExecutedBy: "user-1"})
		require.NoError(t, err)

		dto, err := svc.CancelExecution(context.Background(), CancelExecutionCommand{ExecutionID: started.ID, Reason: "equipment failure"})
		require.NoError(t, err)

		assert.Equal(t, string(domain.ExecutionCancelled), dto.Status)
		assert.Empty(t, dto.MaterialDeductions)
		assert.Equal(t, 12.0, executions.products["prod-1"].Quantity)
	})

	t.Run("cancel on terminal execution fails", func(t *testing.T) {
		executions := &fakeExecutionRepo{}
		svc := newExecutionService(routines, executions)

		started, err := svc.StartExecution(context.Background(), StartExecutionCommand{RoutineID: routine.ID, ExecutedBy: "user-1"})
		require.NoError(t, err)

		_, err = svc.CancelExecution(context.Background(), CancelExecutionCommand{ExecutionID: started.ID})
		require.NoError(t, err)

		_, err = svc.CancelExecution(context.Background(), CancelExecutionCommand{ExecutionID: started.ID})
		require.Error(t, err)

		appErr, ok := apperrors.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperrors.CodeExecutionNotActive, appErr.Code)
	})
}

func TestExecutionApplicationService_GetExecutionHistory(t *testing.T) {
	routine := newTestRoutine(t)
	routines := &fakeRoutineRepo{routines: map[string]*domain.Routine{routine.ID: routine}}
	executions := &fakeExecutionRepo{}
	svc := newExecutionService(routines, executions)

	started, err := svc.StartExecution(context.Background(), StartExecutionCommand{RoutineID: routine.ID, ExecutedBy: "user-1"})
	require.NoError(t, err)
	_, err = svc.CancelExecution(context.Background(), CancelExecutionCommand{ExecutionID: started.ID})
	require.NoError(t, err)

	page, err := svc.GetExecutionHistory(context.Background(), ExecutionHistoryQuery{
		LaboratoryID: "lab-1",
		Page:         1,
		PageSize:     10,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Pagination.TotalItems)
	require.Len(t, page.Data, 1)
	assert.Equal(t, started.ID, page.Data[0].ID)

	page, err = svc.GetExecutionHistory(context.Background(), ExecutionHistoryQuery{
		LaboratoryID: "lab-1",
		RoutineID:    "other",
		Page:         1,
		PageSize:     10,
	})
	require.NoError(t, err)
	assert.Empty(t, page.Data)
}
