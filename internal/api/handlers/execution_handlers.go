package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/labops-platform/routine-service/internal/application"
	"github.com/labops-platform/routine-service/pkg/api"
	"github.com/labops-platform/routine-service/pkg/logging"
	"github.com/labops-platform/routine-service/pkg/middleware"
)

// ExecutionHandlers contains handlers for the execution lifecycle
type ExecutionHandlers struct {
	executions *application.ExecutionApplicationService
	logger     *logging.Logger
}

// NewExecutionHandlers creates a new ExecutionHandlers
func NewExecutionHandlers(executions *application.ExecutionApplicationService, logger *logging.Logger) *ExecutionHandlers {
	return &ExecutionHandlers{
		executions: executions,
		logger:     logger,
	}
}

// RegisterRoutes registers execution routes on the router
func (h *ExecutionHandlers) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/routines/:routineId/executions", h.StartExecution)

	executions := router.Group("/executions")
	{
		executions.GET("", h.ListExecutions)
		executions.GET("/:executionId", h.GetExecution)
		executions.PATCH("/:executionId/steps/:stepId", h.UpdateStep)
		executions.POST("/:executionId/complete", h.CompleteExecution)
		executions.POST("/:executionId/cancel", h.CancelExecution)
	}
}

// StartExecution handles starting an execution of a routine
func (h *ExecutionHandlers) StartExecution(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	var cmd application.StartExecutionCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd.RoutineID = c.Param("routineId")

	execution, err := h.executions.StartExecution(c.Request.Context(), cmd)
	if err != nil {
		responder.RespondWithError(err)
		return
	}

	c.JSON(http.StatusCreated, execution)
}

// GetExecution handles getting an execution by ID
func (h *ExecutionHandlers) GetExecution(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	execution, err := h.executions.GetExecution(c.Request.Context(), c.Param("executionId"))
	if err != nil {
		responder.RespondWithError(err)
		return
	}

	c.JSON(http.StatusOK, execution)
}

// ListExecutions handles the paginated execution history
func (h *ExecutionHandlers) ListExecutions(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	laboratoryID := c.Query("laboratoryId")
	if laboratoryID == "" {
		laboratoryID = middleware.GetLaboratoryID(c)
	}
	if laboratoryID == "" {
		responder.RespondBadRequest("laboratoryId is required")
		return
	}

	page := api.ParsePagination(c)

	history, err := h.executions.GetExecutionHistory(c.Request.Context(), application.ExecutionHistoryQuery{
		LaboratoryID: laboratoryID,
		RoutineID:    c.Query("routineId"),
		Page:         page.Page,
		PageSize:     page.PageSize,
	})
	if err != nil {
		responder.RespondWithError(err)
		return
	}

	c.JSON(http.StatusOK, history)
}

// UpdateStep handles marking a step complete or incomplete
func (h *ExecutionHandlers) UpdateStep(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	var cmd application.UpdateStepCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd.ExecutionID = c.Param("executionId")
	cmd.StepID = c.Param("stepId")

	execution, err := h.executions.UpdateStepCompletion(c.Request.Context(), cmd)
	if err != nil {
		responder.RespondWithError(err)
		return
	}

	c.JSON(http.StatusOK, execution)
}

// CompleteExecution handles completing an execution and deducting materials
func (h *ExecutionHandlers) CompleteExecution(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	result, err := h.executions.CompleteExecution(c.Request.Context(), application.CompleteExecutionCommand{
		ExecutionID: c.Param("executionId"),
	})
	if err != nil {
		responder.RespondWithError(err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// CancelExecution handles cancelling an execution without deductions
func (h *ExecutionHandlers) CancelExecution(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	var cmd application.CancelExecutionCommand
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&cmd); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	cmd.ExecutionID = c.Param("executionId")

	execution, err := h.executions.CancelExecution(c.Request.Context(), cmd)
	if err != nil {
		responder.RespondWithError(err)
		return
	}

	c.JSON(http.StatusOK, execution)
}
