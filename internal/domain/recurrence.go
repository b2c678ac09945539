package domain

import (
	"fmt"
	"sort"
	"time"
)

// Frequency represents how often a recurring routine repeats
type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
)

// IsValid checks if the frequency is valid
func (f Frequency) IsValid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly:
		return true
	default:
		return false
	}
}

// RecurrenceRule describes how due dates repeat for a recurring routine.
// Weekly rules carry a non-empty day-of-week set, monthly rules a
// day-of-month; days of month past the end of a month clamp to its last day.
type RecurrenceRule struct {
	Frequency  Frequency      `bson:"frequency" json:"frequency"`
	Interval   int            `bson:"interval" json:"interval"`
	DaysOfWeek []time.Weekday `bson:"daysOfWeek,omitempty" json:"daysOfWeek,omitempty"`
	DayOfMonth int            `bson:"dayOfMonth,omitempty" json:"dayOfMonth,omitempty"`
	StartDate  time.Time      `bson:"startDate" json:"startDate"`
	EndDate    *time.Time     `bson:"endDate,omitempty" json:"endDate,omitempty"`
}

// Validate checks rule invariants. Rules are validated when the routine is
// created so expansion never sees a malformed rule.
func (r RecurrenceRule) Validate() error {
	if !r.Frequency.IsValid() {
		return fmt.Errorf("%w: unknown frequency %q", ErrInvalidRecurrenceRule, r.Frequency)
	}
	if r.Interval < 1 {
		return fmt.Errorf("%w: interval must be at least 1, got %d", ErrInvalidRecurrenceRule, r.Interval)
	}
	if r.StartDate.IsZero() {
		return fmt.Errorf("%w: start date is required", ErrInvalidRecurrenceRule)
	}
	if r.EndDate != nil && r.EndDate.Before(r.StartDate) {
		return fmt.Errorf("%w: end date precedes start date", ErrInvalidRecurrenceRule)
	}

	switch r.Frequency {
	case FrequencyWeekly:
		if len(r.DaysOfWeek) == 0 {
			return fmt.Errorf("%w: weekly rule requires at least one day of week", ErrInvalidRecurrenceRule)
		}
		seen := make(map[time.Weekday]bool, len(r.DaysOfWeek))
		for _, d := range r.DaysOfWeek {
			if d < time.Sunday || d > time.Saturday {
				return fmt.Errorf("%w: day of week %d out of range", ErrInvalidRecurrenceRule, d)
			}
			if seen[d] {
				return fmt.Errorf("%w: duplicate day of week %s", ErrInvalidRecurrenceRule, d)
			}
			seen[d] = true
		}
	case FrequencyMonthly:
		if r.DayOfMonth < 1 || r.DayOfMonth > 31 {
			return fmt.Errorf("%w: day of month must be 1-31, got %d", ErrInvalidRecurrenceRule, r.DayOfMonth)
		}
	}

	return nil
}

// Expand materializes the rule into concrete due dates within the window.
// The output is strictly ascending, bounded by [windowStart, windowEnd] and
// by the rule's end date. Expansion is a pure function of its inputs.
func (r RecurrenceRule) Expand(windowStart, windowEnd time.Time) ([]time.Time, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	if windowEnd.Before(windowStart) {
		return nil, ErrInvalidInterval
	}

	last := dateOnly(windowEnd)
	if r.EndDate != nil && r.EndDate.Before(last) {
		last = dateOnly(*r.EndDate)
	}

	switch r.Frequency {
	case FrequencyDaily:
		return r.expandDaily(dateOnly(windowStart), last), nil
	case FrequencyWeekly:
		return r.expandWeekly(dateOnly(windowStart), last), nil
	default:
		return r.expandMonthly(dateOnly(windowStart), last), nil
	}
}

func (r RecurrenceRule) expandDaily(windowStart, last time.Time) []time.Time {
	dates := make([]time.Time, 0)
	for d := dateOnly(r.StartDate); !d.After(last); d = d.AddDate(0, 0, r.Interval) {
		if !d.Before(windowStart) {
			dates = append(dates, d)
		}
	}
	return dates
}

func (r RecurrenceRule) expandWeekly(windowStart, last time.Time) []time.Time {
	days := make([]time.Weekday, len(r.DaysOfWeek))
	copy(days, r.DaysOfWeek)
	sort.Slice(days, func(i, j int) bool { return days[i] < days[j] })

	start := dateOnly(r.StartDate)
	// Cycle boundaries are anchored to the Sunday of the start date's week.
	weekStart := start.AddDate(0, 0, -int(start.Weekday()))

	dates := make([]time.Time, 0)
	for ws := weekStart; !ws.After(last); ws = ws.AddDate(0, 0, 7*r.Interval) {
		for _, day := range days {
			d := ws.AddDate(0, 0, int(day))
			if d.Before(start) || d.Before(windowStart) || d.After(last) {
				continue
			}
			dates = append(dates, d)
		}
	}
	return dates
}

func (r RecurrenceRule) expandMonthly(windowStart, last time.Time) []time.Time {
	start := dateOnly(r.StartDate)
	year, month := start.Year(), start.Month()

	dates := make([]time.Time, 0)
	for {
		monthStart := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
		if monthStart.After(last) {
			break
		}

		day := r.DayOfMonth
		if max := daysInMonth(year, month); day > max {
			day = max
		}
		d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
		if !d.Before(start) && !d.Before(windowStart) && !d.After(last) {
			dates = append(dates, d)
		}

		month += time.Month(r.Interval)
		for month > 12 {
			month -= 12
			year++
		}
	}
	return dates
}

// dateOnly truncates a timestamp to UTC midnight
func dateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
