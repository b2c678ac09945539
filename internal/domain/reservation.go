package domain

import (
	"time"

	"github.com/google/uuid"
)

// ConflictPolicy controls whether overlapping equipment reservations are
// rejected or merely reported
type ConflictPolicy string

const (
	PolicyHard     ConflictPolicy = "hard"
	PolicyAdvisory ConflictPolicy = "advisory"
)

// IsValid checks if the conflict policy is valid
func (p ConflictPolicy) IsValid() bool {
	switch p {
	case PolicyHard, PolicyAdvisory:
		return true
	default:
		return false
	}
}

// EquipmentReservation is the aggregate root for one booking of a piece of
// equipment over a half-open time window
type EquipmentReservation struct {
	ID           string        `bson:"_id"`
	EquipmentID  string        `bson:"equipmentId"`
	LaboratoryID string        `bson:"laboratoryId"`
	ReservedBy   string        `bson:"reservedBy"`
	Window       TimeRange     `bson:"window"`
	Description  string        `bson:"description,omitempty"`
	CreatedAt    time.Time     `bson:"createdAt"`
	DomainEvents []DomainEvent `bson:"-"`
}

// NewEquipmentReservation creates a validated reservation
func NewEquipmentReservation(equipmentID, laboratoryID, reservedBy string, start, end time.Time, description string) (*EquipmentReservation, error) {
	window, err := NewTimeRange(start, end)
	if err != nil {
		return nil, err
	}

	reservation := &EquipmentReservation{
		ID:           uuid.New().String(),
		EquipmentID:  equipmentID,
		LaboratoryID: laboratoryID,
		ReservedBy:   reservedBy,
		Window:       window,
		Description:  description,
		CreatedAt:    time.Now(),
		DomainEvents: make([]DomainEvent, 0),
	}

	reservation.AddDomainEvent(&ReservationCreatedEvent{
		ReservationID: reservation.ID,
		EquipmentID:   equipmentID,
		LaboratoryID:  laboratoryID,
		ReservedBy:    reservedBy,
		WindowStart:   window.Start,
		WindowEnd:     window.End,
		CreatedAt:     reservation.CreatedAt,
	})

	return reservation, nil
}

// Overlaps reports whether two reservations collide
func (r *EquipmentReservation) Overlaps(other *EquipmentReservation) bool {
	return r.Window.Overlaps(other.Window)
}

// FindConflicts returns the reservations whose windows overlap the given
// window, skipping excludeID so a reservation can be edited in place
func FindConflicts(window TimeRange, existing []*EquipmentReservation, excludeID string) []*EquipmentReservation {
	conflicts := make([]*EquipmentReservation, 0)
	for _, reservation := range existing {
		if excludeID != "" && reservation.ID == excludeID {
			continue
		}
		if window.Overlaps(reservation.Window) {
			conflicts = append(conflicts, reservation)
		}
	}
	return conflicts
}

// AddDomainEvent adds a domain event
func (r *EquipmentReservation) AddDomainEvent(event DomainEvent) {
	r.DomainEvents = append(r.DomainEvents, event)
}

// ClearDomainEvents clears all domain events
func (r *EquipmentReservation) ClearDomainEvents() {
	r.DomainEvents = make([]DomainEvent, 0)
}

// GetDomainEvents returns all domain events
func (r *EquipmentReservation) GetDomainEvents() []DomainEvent {
	return r.DomainEvents
}
