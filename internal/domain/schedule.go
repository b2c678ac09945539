package domain

import (
	"sort"
	"time"
)

// ScheduledStatus is the derived state of one due instance
type ScheduledStatus string

const (
	ScheduledPending    ScheduledStatus = "pending"
	ScheduledInProgress ScheduledStatus = "in_progress"
	ScheduledCompleted  ScheduledStatus = "completed"
	ScheduledOverdue    ScheduledStatus = "overdue"
	ScheduledSkipped    ScheduledStatus = "skipped"
)

// ScheduledRoutine is one materialized due instance of a routine. Instances
// are derived from the routine and its recurrence rule on every query; the
// routine plus rule is the source of truth, never stored instances.
type ScheduledRoutine struct {
	RoutineID   string          `json:"routineId"`
	RoutineName string          `json:"routineName"`
	DueDate     time.Time       `json:"dueDate"`
	Status      ScheduledStatus `json:"status"`
	ExecutionID string          `json:"executionId,omitempty"`
}

// UpcomingEntry is one row of the due-soon dashboard view
type UpcomingEntry struct {
	RoutineID    string          `json:"routineId"`
	RoutineName  string          `json:"routineName"`
	DueDate      time.Time       `json:"dueDate"`
	DaysUntilDue int             `json:"daysUntilDue"`
	Status       ScheduledStatus `json:"status"`
	ExecutionID  string          `json:"executionId,omitempty"`
}

// DaysUntil returns the number of whole days from now until due, rounding
// any partial day up. A due date earlier than now yields a negative count.
func DaysUntil(now, due time.Time) int {
	diff := due.Sub(now)
	days := diff / (24 * time.Hour)
	if diff%(24*time.Hour) > 0 {
		days++
	}
	return int(days)
}

// ScheduleWindow derives the earliest due instance per routine for the
// dashboard. Instances are pending by default; a routine with an active
// execution shows in_progress, and a one-time routine whose deadline has
// already passed stays visible as overdue. Status is computed on every
// read, never stored. active maps routine IDs to their in-progress
// execution ID.
func ScheduleWindow(routines []*Routine, active map[string]string, now time.Time, horizonDays int) ([]ScheduledRoutine, error) {
	horizon := time.Duration(horizonDays) * 24 * time.Hour
	today := dateOnly(now)

	instances := make([]ScheduledRoutine, 0)
	for _, routine := range routines {
		if routine.ScheduleType == ScheduleTemplate {
			continue
		}
		next, err := routine.NextDue(now, horizon)
		if err != nil {
			return nil, err
		}
		if next == nil {
			if routine.ScheduleType != ScheduleOneTime || routine.Deadline == nil {
				continue
			}
			missed := dateOnly(*routine.Deadline)
			if !missed.Before(today) {
				continue
			}
			next = &missed
		}

		instance := ScheduledRoutine{
			RoutineID:   routine.ID,
			RoutineName: routine.Name,
			DueDate:     *next,
			Status:      ScheduledPending,
		}
		if instance.DueDate.Before(today) {
			instance.Status = ScheduledOverdue
		}
		if executionID, ok := active[routine.ID]; ok {
			instance.Status = ScheduledInProgress
			instance.ExecutionID = executionID
		}
		instances = append(instances, instance)
	}
	return instances, nil
}

// BuildUpcoming keeps the earliest due instance per routine and sorts
// ascending by days until due, then by routine name. Overdue instances
// carry a negative day count and sort first.
func BuildUpcoming(routines []*Routine, active map[string]string, now time.Time, horizonDays int) ([]UpcomingEntry, error) {
	instances, err := ScheduleWindow(routines, active, now, horizonDays)
	if err != nil {
		return nil, err
	}

	entries := make([]UpcomingEntry, 0, len(instances))
	for _, instance := range instances {
		entries = append(entries, UpcomingEntry{
			RoutineID:    instance.RoutineID,
			RoutineName:  instance.RoutineName,
			DueDate:      instance.DueDate,
			DaysUntilDue: DaysUntil(now, instance.DueDate),
			Status:       instance.Status,
			ExecutionID:  instance.ExecutionID,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].DaysUntilDue != entries[j].DaysUntilDue {
			return entries[i].DaysUntilDue < entries[j].DaysUntilDue
		}
		return entries[i].RoutineName < entries[j].RoutineName
	})

	return entries, nil
}
