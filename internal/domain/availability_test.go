package domain

import (
	"testing"
	"time"
)

func stockProduct(id, name string, quantity float64, unit string) *Product {
	return &Product{ID: id, LaboratoryID: "lab-1", Name: name, Quantity: quantity, Unit: unit}
}

func TestEvaluateMaterials(t *testing.T) {
	materials := []RoutineMaterial{
		{ProductID: "prod-1", Quantity: 20, Unit: "mL"},
		{ProductID: "prod-2", Quantity: 5, Unit: "g"},
	}

	t.Run("sufficient stock yields no issues", func(t *testing.T) {
		products := map[string]*Product{
			"prod-1": stockProduct("prod-1", "Buffer", 50, "mL"),
			"prod-2": stockProduct("prod-2", "Agar", 10, "g"),
		}

		issues := EvaluateMaterials(materials, products)
		if len(issues) != 0 {
			t.Errorf("issues = %v, want none", issues)
		}
	})

	t.Run("insufficient stock reports required vs available", func(t *testing.T) {
		products := map[string]*Product{
			"prod-1": stockProduct("prod-1", "Buffer", 10, "mL"),
			"prod-2": stockProduct("prod-2", "Agar", 10, "g"),
		}

		issues := EvaluateMaterials(materials, products)
		if len(issues) != 1 {
			t.Fatalf("issues = %d, want 1", len(issues))
		}
		if issues[0].Required != 20 || issues[0].Available != 10 {
			t.Errorf("issue = %+v, want required 20 available 10", issues[0])
		}
	})

	t.Run("missing product reports available zero", func(t *testing.T) {
		issues := EvaluateMaterials(materials, map[string]*Product{
			"prod-2": stockProduct("prod-2", "Agar", 10, "g"),
		})
		if len(issues) != 1 {
			t.Fatalf("issues = %d, want 1", len(issues))
		}
		if issues[0].ProductID != "prod-1" || issues[0].Available != 0 {
			t.Errorf("issue = %+v, want prod-1 available 0", issues[0])
		}
	})

	t.Run("unit mismatch reports available zero", func(t *testing.T) {
		products := map[string]*Product{
			"prod-1": stockProduct("prod-1", "Buffer", 500, "L"),
			"prod-2": stockProduct("prod-2", "Agar", 10, "g"),
		}

		issues := EvaluateMaterials(materials, products)
		if len(issues) != 1 {
			t.Fatalf("issues = %d, want 1", len(issues))
		}
		if issues[0].Available != 0 {
			t.Errorf("mismatched unit available = %v, want 0", issues[0].Available)
		}
	})
}

func TestEvaluateEquipment(t *testing.T) {
	asOf := at(9, 0)
	equipment := []RoutineEquipment{
		{EquipmentID: "eq-1", EstimatedDuration: 2 * time.Hour, Required: true},
		{EquipmentID: "eq-2", EstimatedDuration: time.Hour, Required: false},
	}

	reservation := func(id, equipmentID string, start, end time.Time) *EquipmentReservation {
		return &EquipmentReservation{
			ID:          id,
			EquipmentID: equipmentID,
			ReservedBy:  "user-2",
			Window:      TimeRange{Start: start, End: end},
		}
	}

	t.Run("no reservations means no conflicts", func(t *testing.T) {
		conflicts := EvaluateEquipment(equipment, asOf, map[string][]*EquipmentReservation{})
		if len(conflicts) != 0 {
			t.Errorf("conflicts = %v, want none", conflicts)
		}
	})

	t.Run("overlapping reservation conflicts", func(t *testing.T) {
		reservations := map[string][]*EquipmentReservation{
			"eq-1": {reservation("res-1", "eq-1", at(10, 0), at(12, 0))},
		}

		conflicts := EvaluateEquipment(equipment, asOf, reservations)
		if len(conflicts) != 1 {
			t.Fatalf("conflicts = %d, want 1", len(conflicts))
		}
		if !conflicts[0].Required {
			t.Error("conflict on required equipment not flagged required")
		}
	})

	t.Run("touching reservation does not conflict", func(t *testing.T) {
		reservations := map[string][]*EquipmentReservation{
			"eq-1": {reservation("res-1", "eq-1", at(11, 0), at(12, 0))},
		}

		conflicts := EvaluateEquipment(equipment, asOf, reservations)
		if len(conflicts) != 0 {
			t.Errorf("conflicts = %v, want none for touching window", conflicts)
		}
	})
}

func TestNewAvailabilityCheck(t *testing.T) {
	asOf := at(9, 0)

	t.Run("clean passes can start", func(t *testing.T) {
		check := NewAvailabilityCheck("routine-1", asOf, nil, nil)
		if !check.MaterialsAvailable || !check.EquipmentAvailable || !check.CanStart() {
			t.Errorf("check = %+v, want fully available", check)
		}
	})

	t.Run("material issue blocks materials", func(t *testing.T) {
		check := NewAvailabilityCheck("routine-1", asOf, []MaterialIssue{{ProductID: "prod-1", Required: 20, Available: 10}}, nil)
		if check.MaterialsAvailable {
			t.Error("MaterialsAvailable = true, want false")
		}
		if check.CanStart() {
			t.Error("CanStart() = true, want false")
		}
	})

	t.Run("non-required conflict is informational", func(t *testing.T) {
		conflicts := []EquipmentConflict{{EquipmentID: "eq-2", Required: false}}
		check := NewAvailabilityCheck("routine-1", asOf, nil, conflicts)
		if !check.EquipmentAvailable {
			t.Error("EquipmentAvailable = false, want true for non-required conflict")
		}
		if len(check.EquipmentConflicts) != 1 {
			t.Error("informational conflict dropped from result")
		}
	})

	t.Run("required conflict blocks equipment", func(t *testing.T) {
		conflicts := []EquipmentConflict{{EquipmentID: "eq-1", Required: true}}
		check := NewAvailabilityCheck("routine-1", asOf, nil, conflicts)
		if check.EquipmentAvailable {
			t.Error("EquipmentAvailable = true, want false")
		}
	})
}
