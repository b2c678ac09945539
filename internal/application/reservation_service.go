package application

import (
	"context"
	"fmt"

	"github.com/labops-platform/routine-service/internal/domain"
	"github.com/labops-platform/routine-service/pkg/errors"
	"github.com/labops-platform/routine-service/pkg/kafka"
	"github.com/labops-platform/routine-service/pkg/labevents"
	"github.com/labops-platform/routine-service/pkg/logging"
	"github.com/labops-platform/routine-service/pkg/metrics"
)

// ReservationApplicationService handles equipment booking. The conflict
// policy is configurable: under the hard policy an overlapping reservation
// is rejected, under the advisory policy it is created and the conflicts
// are reported back to the caller.
type ReservationApplicationService struct {
	reservations domain.ReservationRepository
	policy       domain.ConflictPolicy
	producer     *kafka.InstrumentedProducer
	eventFactory *labevents.EventFactory
	metrics      *metrics.Metrics
	logger       *logging.Logger
}

// NewReservationApplicationService creates a new ReservationApplicationService
func NewReservationApplicationService(
	reservations domain.ReservationRepository,
	policy domain.ConflictPolicy,
	producer *kafka.InstrumentedProducer,
	eventFactory *labevents.EventFactory,
	m *metrics.Metrics,
	logger *logging.Logger,
) *ReservationApplicationService {
	if !policy.IsValid() {
		policy = domain.PolicyAdvisory
	}
	return &ReservationApplicationService{
		reservations: reservations,
		policy:       policy,
		producer:     producer,
		eventFactory: eventFactory,
		metrics:      m,
		logger:       logger,
	}
}

// CreateReservation books equipment over a window, checking existing
// reservations for overlap. ExcludeReservationID lets a caller re-book an
// edited reservation against everything but itself.
func (s *ReservationApplicationService) CreateReservation(ctx context.Context, cmd CreateReservationCommand) (*ReservationResultDTO, error) {
	reservation, err := domain.NewEquipmentReservation(cmd.EquipmentID, cmd.LaboratoryID, cmd.ReservedBy, cmd.Start, cmd.End, cmd.Description)
	if err != nil {
		if err == domain.ErrInvalidInterval {
			return nil, errors.ErrInvalidInterval("")
		}
		return nil, errors.MapDomainError(err)
	}

	existing, err := s.reservations.FindByEquipment(ctx, cmd.EquipmentID, reservation.Window)
	if err != nil {
		s.logger.Error("Failed to load reservations", "equipmentId", cmd.EquipmentID, "error", err)
		return nil, fmt.Errorf("failed to load reservations: %w", err)
	}

	conflicts := domain.FindConflicts(reservation.Window, existing, cmd.ExcludeReservationID)
	if len(conflicts) > 0 {
		if s.metrics != nil {
			s.metrics.RecordEquipmentConflict()
		}
		if s.policy == domain.PolicyHard {
			s.logger.Warn("Rejected conflicting reservation",
				"equipmentId", cmd.EquipmentID,
				"conflicts", len(conflicts),
			)
			return nil, errors.ErrEquipmentConflict(cmd.EquipmentID)
		}
	}

	if err := s.reservations.Save(ctx, reservation); err != nil {
		s.logger.Error("Failed to save reservation", "equipmentId", cmd.EquipmentID, "error", err)
		return nil, fmt.Errorf("failed to save reservation: %w", err)
	}

	s.publishCreated(ctx, reservation)

	s.logger.Info("Created reservation",
		"reservationId", reservation.ID,
		"equipmentId", cmd.EquipmentID,
		"conflicts", len(conflicts),
	)
	return &ReservationResultDTO{
		Reservation: ToReservationDTO(reservation),
		Conflicts:   ToReservationDTOs(conflicts),
	}, nil
}

// ListReservations lists reservations for a piece of equipment within a window
func (s *ReservationApplicationService) ListReservations(ctx context.Context, equipmentID string, rangeHint domain.TimeRange) ([]ReservationDTO, error) {
	reservations, err := s.reservations.FindByEquipment(ctx, equipmentID, rangeHint)
	if err != nil {
		s.logger.Error("Failed to list reservations", "equipmentId", equipmentID, "error", err)
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}
	return ToReservationDTOs(reservations), nil
}

func (s *ReservationApplicationService) publishCreated(ctx context.Context, reservation *domain.EquipmentReservation) {
	if s.producer == nil || s.eventFactory == nil {
		return
	}

	event := s.eventFactory.CreateReservationCreatedEvent(ctx, labevents.ReservationCreatedData{
		ReservationID: reservation.ID,
		EquipmentID:   reservation.EquipmentID,
		LaboratoryID:  reservation.LaboratoryID,
		ReservedBy:    reservation.ReservedBy,
		WindowStart:   reservation.Window.Start,
		WindowEnd:     reservation.Window.End,
	})
	if err := s.producer.PublishEvent(ctx, labevents.TopicEquipmentEvents, event); err != nil {
		s.logger.Error("Failed to publish reservation-created event", "reservationId", reservation.ID, "error", err)
	}
	reservation.ClearDomainEvents()
}
