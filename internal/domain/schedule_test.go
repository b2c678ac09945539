package domain

import (
	"testing"
	"time"
)

func TestDaysUntil(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		due  time.Time
		want int
	}{
		{"same instant", now, 0},
		{"later same day rounds up", now.Add(6 * time.Hour), 1},
		{"exactly three days", now.AddDate(0, 0, 3), 3},
		{"partial fourth day rounds up", now.AddDate(0, 0, 3).Add(time.Hour), 4},
		{"past due is negative", now.AddDate(0, 0, -2), -2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DaysUntil(now, tt.due); got != tt.want {
				t.Errorf("DaysUntil() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBuildUpcoming(t *testing.T) {
	now := day(2026, 3, 2) // a Monday

	daily := func(name string, interval int) *Routine {
		rule := &RecurrenceRule{Frequency: FrequencyDaily, Interval: interval, StartDate: day(2026, 3, 2)}
		routine, err := NewRoutine("lab-1", name, "", ScheduleRecurring, rule, nil)
		if err != nil {
			t.Fatalf("NewRoutine() error = %v", err)
		}
		return routine
	}

	t.Run("keeps earliest instance per routine sorted by days until due", func(t *testing.T) {
		farRule := &RecurrenceRule{Frequency: FrequencyDaily, Interval: 1, StartDate: day(2026, 3, 5)}
		far, err := NewRoutine("lab-1", "Autoclave Check", "", ScheduleRecurring, farRule, nil)
		if err != nil {
			t.Fatalf("NewRoutine() error = %v", err)
		}

		entries, err := BuildUpcoming([]*Routine{far, daily("Media Change", 1)}, nil, now, 7)
		if err != nil {
			t.Fatalf("BuildUpcoming() error = %v, want nil", err)
		}

		if len(entries) != 2 {
			t.Fatalf("entries = %d, want 2", len(entries))
		}
		if entries[0].RoutineName != "Media Change" || entries[0].DaysUntilDue != 0 {
			t.Errorf("entries[0] = %+v, want Media Change due today", entries[0])
		}
		if entries[1].RoutineName != "Autoclave Check" || entries[1].DaysUntilDue != 3 {
			t.Errorf("entries[1] = %+v, want Autoclave Check in 3 days", entries[1])
		}
	})

	t.Run("excludes routines beyond the horizon", func(t *testing.T) {
		rule := &RecurrenceRule{Frequency: FrequencyDaily, Interval: 1, StartDate: day(2026, 3, 12)}
		late, err := NewRoutine("lab-1", "Monthly Audit", "", ScheduleRecurring, rule, nil)
		if err != nil {
			t.Fatalf("NewRoutine() error = %v", err)
		}

		entries, err := BuildUpcoming([]*Routine{late}, nil, now, 7)
		if err != nil {
			t.Fatalf("BuildUpcoming() error = %v, want nil", err)
		}
		if len(entries) != 0 {
			t.Errorf("entries = %v, want none within 7-day horizon", entries)
		}
	})

	t.Run("excludes templates", func(t *testing.T) {
		template, err := NewRoutine("lab-1", "SOP Template", "", ScheduleTemplate, nil, nil)
		if err != nil {
			t.Fatalf("NewRoutine() error = %v", err)
		}

		entries, err := BuildUpcoming([]*Routine{template, daily("Media Change", 1)}, nil, now, 7)
		if err != nil {
			t.Fatalf("BuildUpcoming() error = %v, want nil", err)
		}
		if len(entries) != 1 {
			t.Errorf("entries = %d, want 1 (template excluded)", len(entries))
		}
	})

	t.Run("ties on days break by name", func(t *testing.T) {
		entries, err := BuildUpcoming([]*Routine{daily("Beta Wash", 1), daily("Alpha Prep", 1)}, nil, now, 7)
		if err != nil {
			t.Fatalf("BuildUpcoming() error = %v, want nil", err)
		}
		if len(entries) != 2 || entries[0].RoutineName != "Alpha Prep" {
			t.Errorf("entries = %+v, want Alpha Prep first", entries)
		}
	})

	t.Run("one-time routine uses its deadline", func(t *testing.T) {
		deadline := day(2026, 3, 6)
		oneTime, err := NewRoutine("lab-1", "Sensor Calibration", "", ScheduleOneTime, nil, &deadline)
		if err != nil {
			t.Fatalf("NewRoutine() error = %v", err)
		}

		entries, err := BuildUpcoming([]*Routine{oneTime}, nil, now, 7)
		if err != nil {
			t.Fatalf("BuildUpcoming() error = %v, want nil", err)
		}
		if len(entries) != 1 || entries[0].DaysUntilDue != 4 {
			t.Errorf("entries = %+v, want one entry due in 4 days", entries)
		}
	})

	t.Run("entries are pending by default", func(t *testing.T) {
		entries, err := BuildUpcoming([]*Routine{daily("Media Change", 1)}, nil, now, 7)
		if err != nil {
			t.Fatalf("BuildUpcoming() error = %v, want nil", err)
		}
		if len(entries) != 1 || entries[0].Status != ScheduledPending {
			t.Errorf("entries = %+v, want one pending entry", entries)
		}
		if entries[0].ExecutionID != "" {
			t.Errorf("ExecutionID = %q, want empty", entries[0].ExecutionID)
		}
	})

	t.Run("active execution marks the entry in_progress", func(t *testing.T) {
		routine := daily("Media Change", 1)
		active := map[string]string{routine.ID: "exec-42"}

		entries, err := BuildUpcoming([]*Routine{routine}, active, now, 7)
		if err != nil {
			t.Fatalf("BuildUpcoming() error = %v, want nil", err)
		}
		if len(entries) != 1 || entries[0].Status != ScheduledInProgress {
			t.Fatalf("entries = %+v, want one in_progress entry", entries)
		}
		if entries[0].ExecutionID != "exec-42" {
			t.Errorf("ExecutionID = %q, want exec-42", entries[0].ExecutionID)
		}
	})

	t.Run("missed one-time deadline stays visible as overdue", func(t *testing.T) {
		deadline := day(2026, 2, 26)
		missed, err := NewRoutine("lab-1", "Filter Replacement", "", ScheduleOneTime, nil, &deadline)
		if err != nil {
			t.Fatalf("NewRoutine() error = %v", err)
		}

		entries, err := BuildUpcoming([]*Routine{missed, daily("Media Change", 1)}, nil, now, 7)
		if err != nil {
			t.Fatalf("BuildUpcoming() error = %v, want nil", err)
		}
		if len(entries) != 2 {
			t.Fatalf("entries = %d, want 2", len(entries))
		}
		if entries[0].RoutineName != "Filter Replacement" || entries[0].Status != ScheduledOverdue {
			t.Errorf("entries[0] = %+v, want overdue Filter Replacement first", entries[0])
		}
		if entries[0].DaysUntilDue != -4 {
			t.Errorf("DaysUntilDue = %d, want -4", entries[0].DaysUntilDue)
		}
	})

	t.Run("missed recurring instances are not resurfaced", func(t *testing.T) {
		end := day(2026, 2, 20)
		rule := &RecurrenceRule{Frequency: FrequencyDaily, Interval: 1, StartDate: day(2026, 2, 1), EndDate: &end}
		ended, err := NewRoutine("lab-1", "Expired Protocol", "", ScheduleRecurring, rule, nil)
		if err != nil {
			t.Fatalf("NewRoutine() error = %v", err)
		}

		entries, err := BuildUpcoming([]*Routine{ended}, nil, now, 7)
		if err != nil {
			t.Fatalf("BuildUpcoming() error = %v, want nil", err)
		}
		if len(entries) != 0 {
			t.Errorf("entries = %+v, want none for an ended rule", entries)
		}
	})
}
