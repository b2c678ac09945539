package application

import (
	"context"
	"fmt"
	"time"

	"github.com/labops-platform/routine-service/internal/domain"
	"github.com/labops-platform/routine-service/pkg/errors"
	"github.com/labops-platform/routine-service/pkg/logging"
	"github.com/labops-platform/routine-service/pkg/metrics"
)

// AvailabilityService answers whether a routine can run right now. The
// check is read-only: it never mutates stock or reservations, so callers
// may re-check at any time, including immediately before starting.
type AvailabilityService struct {
	routines     domain.RoutineRepository
	products     domain.ProductRepository
	reservations domain.ReservationRepository
	metrics      *metrics.Metrics
	logger       *logging.Logger
}

// NewAvailabilityService creates a new AvailabilityService
func NewAvailabilityService(
	routines domain.RoutineRepository,
	products domain.ProductRepository,
	reservations domain.ReservationRepository,
	m *metrics.Metrics,
	logger *logging.Logger,
) *AvailabilityService {
	return &AvailabilityService{
		routines:     routines,
		products:     products,
		reservations: reservations,
		metrics:      m,
		logger:       logger,
	}
}

// Check evaluates material stock and equipment availability for a routine
// as of now
func (s *AvailabilityService) Check(ctx context.Context, routineID string) (*AvailabilityDTO, error) {
	routine, err := s.routines.FindByID(ctx, routineID)
	if err != nil {
		s.logger.Error("Failed to get routine", "routineId", routineID, "error", err)
		return nil, fmt.Errorf("failed to get routine: %w", err)
	}
	if routine == nil {
		return nil, errors.ErrNotFoundWithID("routine", routineID)
	}

	asOf := time.Now().UTC()

	productIDs := make([]string, 0, len(routine.Materials))
	for _, material := range routine.Materials {
		productIDs = append(productIDs, material.ProductID)
	}
	products, err := s.products.FindByIDs(ctx, productIDs)
	if err != nil {
		s.logger.Error("Failed to load products", "routineId", routineID, "error", err)
		return nil, fmt.Errorf("failed to load products: %w", err)
	}

	equipmentIDs := make([]string, 0, len(routine.Equipment))
	longest := time.Duration(0)
	for _, eq := range routine.Equipment {
		equipmentIDs = append(equipmentIDs, eq.EquipmentID)
		if eq.EstimatedDuration > longest {
			longest = eq.EstimatedDuration
		}
	}

	reservationsByEquipment := make(map[string][]*domain.EquipmentReservation)
	if len(equipmentIDs) > 0 {
		rangeHint := domain.TimeRange{Start: asOf, End: asOf.Add(longest)}
		reservationsByEquipment, err = s.reservations.FindByEquipmentIDs(ctx, equipmentIDs, rangeHint)
		if err != nil {
			s.logger.Error("Failed to load reservations", "routineId", routineID, "error", err)
			return nil, fmt.Errorf("failed to load reservations: %w", err)
		}
	}

	issues := domain.EvaluateMaterials(routine.Materials, products)
	conflicts := domain.EvaluateEquipment(routine.Equipment, asOf, reservationsByEquipment)
	check := domain.NewAvailabilityCheck(routineID, asOf, issues, conflicts)

	if s.metrics != nil {
		s.metrics.RecordAvailabilityCheck(check.CanStart())
		for range conflicts {
			s.metrics.RecordEquipmentConflict()
		}
	}

	s.logger.Info("Availability check",
		"routineId", routineID,
		"materialsAvailable", check.MaterialsAvailable,
		"equipmentAvailable", check.EquipmentAvailable,
		"issues", len(issues),
		"conflicts", len(conflicts),
	)

	return ToAvailabilityDTO(check), nil
}
