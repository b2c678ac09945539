package domain

import "time"

// TimeRange is a half-open interval [Start, End). Two ranges that merely
// touch at a boundary do not overlap.
type TimeRange struct {
	Start time.Time `bson:"start" json:"start"`
	End   time.Time `bson:"end" json:"end"`
}

// NewTimeRange creates a validated time range
func NewTimeRange(start, end time.Time) (TimeRange, error) {
	if !start.Before(end) {
		return TimeRange{}, ErrInvalidInterval
	}
	return TimeRange{Start: start, End: end}, nil
}

// Validate checks that the range is well-formed
func (r TimeRange) Validate() error {
	if !r.Start.Before(r.End) {
		return ErrInvalidInterval
	}
	return nil
}

// Overlaps reports whether two half-open ranges intersect
func (r TimeRange) Overlaps(other TimeRange) bool {
	return r.Start.Before(other.End) && other.Start.Before(r.End)
}

// Contains reports whether t falls inside the range
func (r TimeRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && t.Before(r.End)
}

// Duration returns the length of the range
func (r TimeRange) Duration() time.Duration {
	return r.End.Sub(r.Start)
}

// Overlaps tests two half-open intervals for intersection. Malformed
// inputs (start not before end) are rejected.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) (bool, error) {
	a, err := NewTimeRange(aStart, aEnd)
	if err != nil {
		return false, err
	}
	b, err := NewTimeRange(bStart, bEnd)
	if err != nil {
		return false, err
	}
	return a.Overlaps(b), nil
}
