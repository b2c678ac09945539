package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labops-platform/routine-service/internal/domain"
	apperrors "github.com/labops-platform/routine-service/pkg/errors"
)

func newRoutineService(repo *fakeRoutineRepo) *RoutineApplicationService {
	return NewRoutineApplicationService(repo, &fakeExecutionRepo{}, nil, nil, testLogger())
}

func TestRoutineApplicationService_CreateRoutine(t *testing.T) {
	t.Run("creates recurring routine with steps and materials", func(t *testing.T) {
		repo := &fakeRoutineRepo{}
		svc := newRoutineService(repo)

		dto, err := svc.CreateRoutine(context.Background(), CreateRoutineCommand{
			LaboratoryID: "lab-1",
			Name:         "Media Change",
			ScheduleType: "recurring",
			Recurrence: &RecurrenceRuleRequest{
				Frequency: "daily",
				Interval:  2,
				StartDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
			},
			Steps:     []StepRequest{{Name: "Prepare buffer"}, {Name: "Replace media"}},
			Materials: []MaterialRequest{{ProductID: "prod-1", Quantity: 5, Unit: "mL"}},
			Equipment: []EquipmentRequest{{EquipmentID: "eq-1", EstimatedMinutes: 90, Required: true}},
		})
		require.NoError(t, err)
		require.NotNil(t, dto)

		assert.Len(t, dto.Steps, 2)
		assert.Len(t, dto.Materials, 1)
		require.Len(t, dto.Equipment, 1)
		assert.Equal(t, 90, dto.Equipment[0].EstimatedMinutes)
		assert.NotEmpty(t, dto.ID)
	})

	t.Run("rejects invalid recurrence at creation time", func(t *testing.T) {
		svc := newRoutineService(&fakeRoutineRepo{})

		_, err := svc.CreateRoutine(context.Background(), CreateRoutineCommand{
			LaboratoryID: "lab-1",
			Name:         "Media Change",
			ScheduleType: "recurring",
			Recurrence: &RecurrenceRuleRequest{
				Frequency: "weekly",
				Interval:  1,
				StartDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
			},
		})
		require.Error(t, err)

		appErr, ok := apperrors.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperrors.CodeValidationError, appErr.Code)
	})

	t.Run("rejects duplicate weekdays in recurrence", func(t *testing.T) {
		svc := newRoutineService(&fakeRoutineRepo{})

		_, err := svc.CreateRoutine(context.Background(), CreateRoutineCommand{
			LaboratoryID: "lab-1",
			Name:         "Media Change",
			ScheduleType: "recurring",
			Recurrence: &RecurrenceRuleRequest{
				Frequency:  "weekly",
				Interval:   1,
				DaysOfWeek: []int{1, 1},
				StartDate:  time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
			},
		})
		require.Error(t, err)

		appErr, ok := apperrors.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperrors.CodeValidationError, appErr.Code)
	})

	t.Run("rejects one-time routine without deadline", func(t *testing.T) {
		svc := newRoutineService(&fakeRoutineRepo{})

		_, err := svc.CreateRoutine(context.Background(), CreateRoutineCommand{
			LaboratoryID: "lab-1",
			Name:         "Calibration",
			ScheduleType: "one_time",
		})
		assert.Error(t, err)
	})
}

func TestRoutineApplicationService_GetRoutine(t *testing.T) {
	repo := &fakeRoutineRepo{}
	svc := newRoutineService(repo)

	created, err := svc.CreateRoutine(context.Background(), CreateRoutineCommand{
		LaboratoryID: "lab-1",
		Name:         "Media Change",
		ScheduleType: "template",
	})
	require.NoError(t, err)

	got, err := svc.GetRoutine(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = svc.GetRoutine(context.Background(), "missing")
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeNotFound, appErr.Code)
}

func TestRoutineApplicationService_ListUpcoming(t *testing.T) {
	repo := &fakeRoutineRepo{}
	svc := newRoutineService(repo)

	// Due every day starting well in the past
	_, err := svc.CreateRoutine(context.Background(), CreateRoutineCommand{
		LaboratoryID: "lab-1",
		Name:         "Media Change",
		ScheduleType: "recurring",
		Recurrence: &RecurrenceRuleRequest{
			Frequency: "daily",
			Interval:  1,
			StartDate: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		},
	})
	require.NoError(t, err)

	// Template must never appear
	_, err = svc.CreateRoutine(context.Background(), CreateRoutineCommand{
		LaboratoryID: "lab-1",
		Name:         "SOP Template",
		ScheduleType: "template",
	})
	require.NoError(t, err)

	entries, err := svc.ListUpcoming(context.Background(), ListUpcomingQuery{LaboratoryID: "lab-1", HorizonDays: 7})
	require.NoError(t, err)

	require.Len(t, entries, 1)
	assert.Equal(t, "Media Change", entries[0].RoutineName)
	assert.LessOrEqual(t, entries[0].DaysUntilDue, 7)
	assert.Equal(t, "pending", entries[0].Status)

	// A different laboratory sees nothing
	entries, err = svc.ListUpcoming(context.Background(), ListUpcomingQuery{LaboratoryID: "lab-2", HorizonDays: 7})
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRoutineApplicationService_ListUpcoming_ActiveExecution(t *testing.T) {
	repo := &fakeRoutineRepo{}
	execRepo := &fakeExecutionRepo{}
	svc := NewRoutineApplicationService(repo, execRepo, nil, nil, testLogger())

	created, err := svc.CreateRoutine(context.Background(), CreateRoutineCommand{
		LaboratoryID: "lab-1",
		Name:         "Media Change",
		ScheduleType: "recurring",
		Recurrence: &RecurrenceRuleRequest{
			Frequency: "daily",
			Interval:  1,
			StartDate: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		},
	})
	require.NoError(t, err)

	execution := domain.NewRoutineExecution(repo.routines[created.ID], "user-1")
	require.NoError(t, execRepo.Create(context.Background(), execution))

	entries, err := svc.ListUpcoming(context.Background(), ListUpcomingQuery{LaboratoryID: "lab-1", HorizonDays: 7})
	require.NoError(t, err)

	require.Len(t, entries, 1)
	assert.Equal(t, "in_progress", entries[0].Status)
	assert.Equal(t, execution.ID, entries[0].ExecutionID)
}
