package domain

import (
	"fmt"
	"time"
)

// AvailabilityCheck is the read-only result of asking whether a routine can
// run right now. It never mutates stock or reservations and is safe to
// recompute at any time.
type AvailabilityCheck struct {
	RoutineID          string              `json:"routineId"`
	CheckedAt          time.Time           `json:"checkedAt"`
	MaterialsAvailable bool                `json:"materialsAvailable"`
	EquipmentAvailable bool                `json:"equipmentAvailable"`
	MaterialIssues     []MaterialIssue     `json:"materialIssues"`
	EquipmentConflicts []EquipmentConflict `json:"equipmentConflicts"`
}

// MaterialIssue reports a material whose stock cannot cover the routine's
// requirement. A unit mismatch between routine and product is a data-entry
// error and is reported with available 0.
type MaterialIssue struct {
	ProductID   string  `json:"productId"`
	ProductName string  `json:"productName,omitempty"`
	Required    float64 `json:"required"`
	Available   float64 `json:"available"`
	Unit        string  `json:"unit"`
}

// EquipmentConflict reports an existing reservation overlapping the
// routine's candidate usage window. Conflicts on non-required equipment are
// informational and do not affect overall availability.
type EquipmentConflict struct {
	EquipmentID string    `json:"equipmentId"`
	Window      TimeRange `json:"window"`
	Description string    `json:"description,omitempty"`
	Required    bool      `json:"required"`
}

// CanStart reports whether both passes came back clean
func (c *AvailabilityCheck) CanStart() bool {
	return c.MaterialsAvailable && c.EquipmentAvailable
}

// EvaluateMaterials compares each required material against a stock
// snapshot. Missing products and unit mismatches surface as issues with
// available 0; no unit conversion is attempted.
func EvaluateMaterials(materials []RoutineMaterial, products map[string]*Product) []MaterialIssue {
	issues := make([]MaterialIssue, 0)
	for _, material := range materials {
		product, ok := products[material.ProductID]
		if !ok {
			issues = append(issues, MaterialIssue{
				ProductID: material.ProductID,
				Required:  material.Quantity,
				Available: 0,
				Unit:      material.Unit,
			})
			continue
		}
		if product.Unit != material.Unit {
			issues = append(issues, MaterialIssue{
				ProductID:   material.ProductID,
				ProductName: product.Name,
				Required:    material.Quantity,
				Available:   0,
				Unit:        material.Unit,
			})
			continue
		}
		if product.Quantity < material.Quantity {
			issues = append(issues, MaterialIssue{
				ProductID:   material.ProductID,
				ProductName: product.Name,
				Required:    material.Quantity,
				Available:   product.Quantity,
				Unit:        material.Unit,
			})
		}
	}
	return issues
}

// EvaluateEquipment checks each piece of equipment's candidate usage window
// [asOf, asOf+estimatedDuration) against the existing reservations for that
// equipment
func EvaluateEquipment(equipment []RoutineEquipment, asOf time.Time, reservations map[string][]*EquipmentReservation) []EquipmentConflict {
	conflicts := make([]EquipmentConflict, 0)
	for _, eq := range equipment {
		window := TimeRange{Start: asOf, End: asOf.Add(eq.EstimatedDuration)}
		for _, reservation := range reservations[eq.EquipmentID] {
			if !window.Overlaps(reservation.Window) {
				continue
			}
			conflicts = append(conflicts, EquipmentConflict{
				EquipmentID: eq.EquipmentID,
				Window:      reservation.Window,
				Description: fmt.Sprintf("reserved by %s", reservation.ReservedBy),
				Required:    eq.Required,
			})
		}
	}
	return conflicts
}

// NewAvailabilityCheck assembles the check result from both passes.
// Equipment availability considers required equipment only.
func NewAvailabilityCheck(routineID string, asOf time.Time, issues []MaterialIssue, conflicts []EquipmentConflict) *AvailabilityCheck {
	equipmentAvailable := true
	for _, conflict := range conflicts {
		if conflict.Required {
			equipmentAvailable = false
			break
		}
	}

	return &AvailabilityCheck{
		RoutineID:          routineID,
		CheckedAt:          asOf,
		MaterialsAvailable: len(issues) == 0,
		EquipmentAvailable: equipmentAvailable,
		MaterialIssues:     issues,
		EquipmentConflicts: conflicts,
	}
}
