package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/labops-platform/routine-service/internal/application"
	"github.com/labops-platform/routine-service/internal/domain"
	"github.com/labops-platform/routine-service/pkg/logging"
	"github.com/labops-platform/routine-service/pkg/middleware"
)

const defaultReservationWindow = 7 * 24 * time.Hour

// ReservationHandlers contains handlers for equipment reservations
type ReservationHandlers struct {
	reservations *application.ReservationApplicationService
	logger       *logging.Logger
}

// NewReservationHandlers creates a new ReservationHandlers
func NewReservationHandlers(reservations *application.ReservationApplicationService, logger *logging.Logger) *ReservationHandlers {
	return &ReservationHandlers{
		reservations: reservations,
		logger:       logger,
	}
}

// RegisterRoutes registers reservation routes on the router
func (h *ReservationHandlers) RegisterRoutes(router *gin.RouterGroup) {
	equipment := router.Group("/equipment/:equipmentId/reservations")
	{
		equipment.POST("", h.CreateReservation)
		equipment.GET("", h.ListReservations)
	}
}

// CreateReservation handles booking equipment over a window
func (h *ReservationHandlers) CreateReservation(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	var cmd application.CreateReservationCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd.EquipmentID = c.Param("equipmentId")

	result, err := h.reservations.CreateReservation(c.Request.Context(), cmd)
	if err != nil {
		responder.RespondWithError(err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// ListReservations handles listing reservations within a window
func (h *ReservationHandlers) ListReservations(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	from := time.Now().UTC()
	if raw := c.Query("from"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			responder.RespondBadRequest("from must be RFC3339")
			return
		}
		from = parsed
	}

	to := from.Add(defaultReservationWindow)
	if raw := c.Query("to"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			responder.RespondBadRequest("to must be RFC3339")
			return
		}
		to = parsed
	}
	if !to.After(from) {
		responder.RespondBadRequest("to must be after from")
		return
	}

	reservations, err := h.reservations.ListReservations(
		c.Request.Context(),
		c.Param("equipmentId"),
		domain.TimeRange{Start: from, End: to},
	)
	if err != nil {
		responder.RespondWithError(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": reservations})
}
