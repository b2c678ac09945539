package domain

import (
	"testing"
	"time"
)

func newRecurringRoutine(t *testing.T, rule *RecurrenceRule) *Routine {
	t.Helper()
	routine, err := NewRoutine("lab-1", "Media Change", "", ScheduleRecurring, rule, nil)
	if err != nil {
		t.Fatalf("NewRoutine() error = %v, want nil", err)
	}
	return routine
}

func TestScheduleType_IsValid(t *testing.T) {
	tests := []struct {
		name         string
		scheduleType ScheduleType
		want         bool
	}{
		{"one_time is valid", ScheduleOneTime, true},
		{"recurring is valid", ScheduleRecurring, true},
		{"template is valid", ScheduleTemplate, true},
		{"unknown type is invalid", ScheduleType("weekly"), false},
		{"empty type is invalid", ScheduleType(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.scheduleType.IsValid(); got != tt.want {
				t.Errorf("ScheduleType.IsValid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewRoutine(t *testing.T) {
	t.Run("recurring routine requires a rule", func(t *testing.T) {
		_, err := NewRoutine("lab-1", "Media Change", "", ScheduleRecurring, nil, nil)
		if err != ErrMissingRecurrence {
			t.Errorf("NewRoutine() error = %v, want %v", err, ErrMissingRecurrence)
		}
	})

	t.Run("recurring routine rejects invalid rule at creation", func(t *testing.T) {
		rule := &RecurrenceRule{Frequency: FrequencyWeekly, Interval: 1, StartDate: day(2026, 1, 5)}
		_, err := NewRoutine("lab-1", "Media Change", "", ScheduleRecurring, rule, nil)
		if err == nil {
			t.Fatal("NewRoutine() error = nil, want validation error")
		}
	})

	t.Run("one-time routine requires a deadline", func(t *testing.T) {
		_, err := NewRoutine("lab-1", "Calibration", "", ScheduleOneTime, nil, nil)
		if err != ErrMissingDeadline {
			t.Errorf("NewRoutine() error = %v, want %v", err, ErrMissingDeadline)
		}
	})

	t.Run("rejects unknown schedule type", func(t *testing.T) {
		_, err := NewRoutine("lab-1", "Calibration", "", ScheduleType("adhoc"), nil, nil)
		if err != ErrInvalidScheduleType {
			t.Errorf("NewRoutine() error = %v, want %v", err, ErrInvalidScheduleType)
		}
	})

	t.Run("creates routine and emits event", func(t *testing.T) {
		rule := &RecurrenceRule{Frequency: FrequencyDaily, Interval: 1, StartDate: day(2026, 1, 1)}
		routine := newRecurringRoutine(t, rule)

		if routine.ID == "" {
			t.Error("ID is empty")
		}
		if routine.LaboratoryID != "lab-1" {
			t.Errorf("LaboratoryID = %v, want lab-1", routine.LaboratoryID)
		}
		if len(routine.GetDomainEvents()) != 1 {
			t.Fatalf("domain events = %d, want 1", len(routine.GetDomainEvents()))
		}
		if routine.GetDomainEvents()[0].EventType() != "lab.routine.created" {
			t.Errorf("event type = %v, want lab.routine.created", routine.GetDomainEvents()[0].EventType())
		}
	})
}

func TestRoutine_AddStepMaterialEquipment(t *testing.T) {
	rule := &RecurrenceRule{Frequency: FrequencyDaily, Interval: 1, StartDate: day(2026, 1, 1)}
	routine := newRecurringRoutine(t, rule)

	step1 := routine.AddStep("Prepare buffer", "")
	step2 := routine.AddStep("Replace media", "Use fresh stock")

	if step1.Order != 1 || step2.Order != 2 {
		t.Errorf("step orders = %d, %d, want 1, 2", step1.Order, step2.Order)
	}
	if routine.FindStep(step2.StepID) == nil {
		t.Error("FindStep() returned nil for existing step")
	}
	if routine.FindStep("missing") != nil {
		t.Error("FindStep() returned non-nil for unknown step")
	}

	if err := routine.AddMaterial("prod-1", 5, "mL"); err != nil {
		t.Errorf("AddMaterial() error = %v, want nil", err)
	}
	if err := routine.AddMaterial("prod-2", 0, "mL"); err != ErrInvalidQuantity {
		t.Errorf("AddMaterial() error = %v, want %v", err, ErrInvalidQuantity)
	}

	if err := routine.AddEquipment("eq-1", 2*time.Hour, true); err != nil {
		t.Errorf("AddEquipment() error = %v, want nil", err)
	}
	if err := routine.AddEquipment("eq-2", 0, false); err != ErrInvalidInterval {
		t.Errorf("AddEquipment() error = %v, want %v", err, ErrInvalidInterval)
	}
}

func TestRoutine_DueDates(t *testing.T) {
	t.Run("template produces no instances", func(t *testing.T) {
		routine, err := NewRoutine("lab-1", "SOP Template", "", ScheduleTemplate, nil, nil)
		if err != nil {
			t.Fatalf("NewRoutine() error = %v, want nil", err)
		}

		dates, err := routine.DueDates(day(2026, 1, 1), day(2026, 12, 31))
		if err != nil {
			t.Fatalf("DueDates() error = %v, want nil", err)
		}
		if len(dates) != 0 {
			t.Errorf("DueDates() = %v, want empty", dates)
		}
	})

	t.Run("one-time produces its deadline when in window", func(t *testing.T) {
		deadline := day(2026, 6, 15)
		routine, err := NewRoutine("lab-1", "Annual Calibration", "", ScheduleOneTime, nil, &deadline)
		if err != nil {
			t.Fatalf("NewRoutine() error = %v, want nil", err)
		}

		dates, err := routine.DueDates(day(2026, 6, 1), day(2026, 6, 30))
		if err != nil {
			t.Fatalf("DueDates() error = %v, want nil", err)
		}
		assertDates(t, dates, []time.Time{deadline})

		dates, err = routine.DueDates(day(2026, 7, 1), day(2026, 7, 31))
		if err != nil {
			t.Fatalf("DueDates() error = %v, want nil", err)
		}
		if len(dates) != 0 {
			t.Errorf("DueDates() outside window = %v, want empty", dates)
		}
	})

	t.Run("recurring delegates to the rule", func(t *testing.T) {
		rule := &RecurrenceRule{Frequency: FrequencyDaily, Interval: 7, StartDate: day(2026, 1, 1)}
		routine := newRecurringRoutine(t, rule)

		dates, err := routine.DueDates(day(2026, 1, 1), day(2026, 1, 21))
		if err != nil {
			t.Fatalf("DueDates() error = %v, want nil", err)
		}
		assertDates(t, dates, []time.Time{day(2026, 1, 1), day(2026, 1, 8), day(2026, 1, 15)})
	})
}

func TestRoutine_NextDue(t *testing.T) {
	rule := &RecurrenceRule{Frequency: FrequencyDaily, Interval: 10, StartDate: day(2026, 1, 1)}
	routine := newRecurringRoutine(t, rule)

	next, err := routine.NextDue(day(2026, 1, 2), 14*24*time.Hour)
	if err != nil {
		t.Fatalf("NextDue() error = %v, want nil", err)
	}
	if next == nil || !next.Equal(day(2026, 1, 11)) {
		t.Errorf("NextDue() = %v, want %v", next, day(2026, 1, 11))
	}

	next, err = routine.NextDue(day(2026, 1, 2), 5*24*time.Hour)
	if err != nil {
		t.Fatalf("NextDue() error = %v, want nil", err)
	}
	if next != nil {
		t.Errorf("NextDue() beyond horizon = %v, want nil", next)
	}
}
