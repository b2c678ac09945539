package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/labops-platform/routine-service/internal/application"
	"github.com/labops-platform/routine-service/pkg/logging"
	"github.com/labops-platform/routine-service/pkg/middleware"
)

// ProductHandlers contains handlers for the stock registry
type ProductHandlers struct {
	products *application.ProductApplicationService
	logger   *logging.Logger
}

// NewProductHandlers creates a new ProductHandlers
func NewProductHandlers(products *application.ProductApplicationService, logger *logging.Logger) *ProductHandlers {
	return &ProductHandlers{
		products: products,
		logger:   logger,
	}
}

// RegisterRoutes registers product routes on the router
func (h *ProductHandlers) RegisterRoutes(router *gin.RouterGroup) {
	products := router.Group("/products")
	{
		products.POST("", h.CreateProduct)
		products.GET("/:productId", h.GetProduct)
		products.POST("/:productId/receive", h.ReceiveStock)
	}
}

// CreateProduct handles registering a stock item
func (h *ProductHandlers) CreateProduct(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	var cmd application.CreateProductCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	product, err := h.products.CreateProduct(c.Request.Context(), cmd)
	if err != nil {
		responder.RespondWithError(err)
		return
	}

	c.JSON(http.StatusCreated, product)
}

// GetProduct handles getting a product by ID
func (h *ProductHandlers) GetProduct(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	product, err := h.products.GetProduct(c.Request.Context(), c.Param("productId"))
	if err != nil {
		responder.RespondWithError(err)
		return
	}

	c.JSON(http.StatusOK, product)
}

// ReceiveStock handles adding stock to a product
func (h *ProductHandlers) ReceiveStock(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	var cmd application.ReceiveStockCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd.ProductID = c.Param("productId")

	product, err := h.products.ReceiveStock(c.Request.Context(), cmd)
	if err != nil {
		responder.RespondWithError(err)
		return
	}

	c.JSON(http.StatusOK, product)
}
