package application

import (
	"context"
	"fmt"

	"github.com/labops-platform/routine-service/internal/domain"
	"github.com/labops-platform/routine-service/pkg/errors"
	"github.com/labops-platform/routine-service/pkg/logging"
)

// ProductApplicationService handles the stock registry the engine reads
// from and deducts against
type ProductApplicationService struct {
	products domain.ProductRepository
	logger   *logging.Logger
}

// NewProductApplicationService creates a new ProductApplicationService
func NewProductApplicationService(products domain.ProductRepository, logger *logging.Logger) *ProductApplicationService {
	return &ProductApplicationService{
		products: products,
		logger:   logger,
	}
}

// CreateProduct registers a stock item
func (s *ProductApplicationService) CreateProduct(ctx context.Context, cmd CreateProductCommand) (*ProductDTO, error) {
	product, err := domain.NewProduct(cmd.LaboratoryID, cmd.Name, cmd.Quantity, cmd.Unit)
	if err != nil {
		return nil, errors.ErrValidation(err.Error())
	}

	if err := s.products.Save(ctx, product); err != nil {
		s.logger.Error("Failed to save product", "name", cmd.Name, "error", err)
		return nil, fmt.Errorf("failed to save product: %w", err)
	}

	s.logger.Info("Created product", "productId", product.ID, "laboratoryId", cmd.LaboratoryID)
	return ToProductDTO(product), nil
}

// GetProduct retrieves a product by ID
func (s *ProductApplicationService) GetProduct(ctx context.Context, productID string) (*ProductDTO, error) {
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		s.logger.Error("Failed to get product", "productId", productID, "error", err)
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil {
		return nil, errors.ErrNotFoundWithID("product", productID)
	}

	return ToProductDTO(product), nil
}

// ReceiveStock adds stock to a product
func (s *ProductApplicationService) ReceiveStock(ctx context.Context, cmd ReceiveStockCommand) (*ProductDTO, error) {
	if cmd.Quantity <= 0 {
		return nil, errors.ErrValidation("quantity must be positive")
	}

	product, err := s.products.IncrementQuantity(ctx, cmd.ProductID, cmd.Quantity)
	if err != nil {
		if err == domain.ErrProductNotFound {
			return nil, errors.ErrNotFoundWithID("product", cmd.ProductID)
		}
		s.logger.Error("Failed to receive stock", "productId", cmd.ProductID, "error", err)
		return nil, fmt.Errorf("failed to receive stock: %w", err)
	}

	s.logger.Info("Received stock", "productId", cmd.ProductID, "quantity", cmd.Quantity, "newQuantity", product.Quantity)
	return ToProductDTO(product), nil
}
