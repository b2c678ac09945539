package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/labops-platform/routine-service/internal/application"
	"github.com/labops-platform/routine-service/pkg/logging"
	"github.com/labops-platform/routine-service/pkg/middleware"
)

// RoutineHandlers contains handlers for routine definition and planning
// operations
type RoutineHandlers struct {
	routines       *application.RoutineApplicationService
	availability   *application.AvailabilityService
	logger         *logging.Logger
	defaultHorizon int
}

// NewRoutineHandlers creates a new RoutineHandlers
func NewRoutineHandlers(
	routines *application.RoutineApplicationService,
	availability *application.AvailabilityService,
	defaultHorizon int,
	logger *logging.Logger,
) *RoutineHandlers {
	return &RoutineHandlers{
		routines:       routines,
		availability:   availability,
		logger:         logger,
		defaultHorizon: defaultHorizon,
	}
}

// RegisterRoutes registers routine routes on the router
func (h *RoutineHandlers) RegisterRoutes(router *gin.RouterGroup) {
	routines := router.Group("/routines")
	{
		routines.POST("", h.CreateRoutine)
		routines.GET("", h.ListRoutines)
		routines.GET("/upcoming", h.ListUpcoming)
		routines.GET("/:routineId", h.GetRoutine)
		routines.GET("/:routineId/availability", h.CheckAvailability)
	}
}

// CreateRoutine handles routine creation
func (h *RoutineHandlers) CreateRoutine(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	var cmd application.CreateRoutineCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	routine, err := h.routines.CreateRoutine(c.Request.Context(), cmd)
	if err != nil {
		responder.RespondWithError(err)
		return
	}

	c.JSON(http.StatusCreated, routine)
}

// GetRoutine handles getting a routine by ID
func (h *RoutineHandlers) GetRoutine(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	routine, err := h.routines.GetRoutine(c.Request.Context(), c.Param("routineId"))
	if err != nil {
		responder.RespondWithError(err)
		return
	}

	c.JSON(http.StatusOK, routine)
}

// ListRoutines handles listing routines for a laboratory
func (h *RoutineHandlers) ListRoutines(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	laboratoryID := c.Query("laboratoryId")
	if laboratoryID == "" {
		laboratoryID = middleware.GetLaboratoryID(c)
	}
	if laboratoryID == "" {
		responder.RespondBadRequest("laboratoryId is required")
		return
	}

	routines, err := h.routines.ListRoutines(c.Request.Context(), laboratoryID)
	if err != nil {
		responder.RespondWithError(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": routines})
}

// ListUpcoming handles the upcoming-work view
func (h *RoutineHandlers) ListUpcoming(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	laboratoryID := c.Query("laboratoryId")
	if laboratoryID == "" {
		laboratoryID = middleware.GetLaboratoryID(c)
	}
	if laboratoryID == "" {
		responder.RespondBadRequest("laboratoryId is required")
		return
	}

	horizonDays := h.defaultHorizon
	if raw := c.Query("horizonDays"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			responder.RespondBadRequest("horizonDays must be a positive integer")
			return
		}
		horizonDays = parsed
	}

	entries, err := h.routines.ListUpcoming(c.Request.Context(), application.ListUpcomingQuery{
		LaboratoryID: laboratoryID,
		HorizonDays:  horizonDays,
	})
	if err != nil {
		responder.RespondWithError(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": entries, "horizonDays": horizonDays})
}

// CheckAvailability handles a pre-start availability check
func (h *RoutineHandlers) CheckAvailability(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	check, err := h.availability.Check(c.Request.Context(), c.Param("routineId"))
	if err != nil {
		responder.RespondWithError(err)
		return
	}

	c.JSON(http.StatusOK, check)
}
