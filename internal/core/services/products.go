// internal/core/services/products.go
package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/ammerola/stockledger/internal/core/domain"
	"github.com/ammerola/stockledger/internal/core/ports"
)

// ProductService handles product business logic
type ProductService struct {
	store  ports.Store
	engine *ReconciliationEngine
	logger *slog.Logger
}

// Statically assert that *ProductService implements ports.ProductService.
var _ ports.ProductService = (*ProductService)(nil)

// NewProductService creates a new product service
func NewProductService(store ports.Store, engine *ReconciliationEngine, logger *slog.Logger) *ProductService {
	return &ProductService{
		store:  store,
		engine: engine,
		logger: logger.With(slog.String("service", "products")),
	}
}

// Create stores a product and, when an initial quantity or identifiers are
// given, records an INITIAL_STOCK movement in the same transaction.
func (s *ProductService) Create(ctx context.Context, req ports.CreateProductRequest) (*ports.ProductCreated, error) {
	product := req.Product
	if err := product.Validate(); err != nil {
		return nil, err
	}
	product.PrepareForStorage()

	result := &ports.ProductCreated{Product: &product}
	err := s.store.Transaction(ctx, func(ctx context.Context, repos ports.Repositories) error {
		if product.SKU != "" {
			existing, err := repos.Products.FindByIdentity(ctx, product.WarehouseID, product.ClientID, product.SKU, product.Name)
			if err != nil {
				return fmt.Errorf("failed to check product sku: %w", err)
			}
			if existing != nil {
				return domain.NewValidationError("product with sku %q already exists", product.SKU)
			}
		}

		if err := repos.Products.Create(ctx, &product); err != nil {
			return fmt.Errorf("failed to create product: %w", err)
		}

		if req.InitialQuantity == 0 && len(req.Identifiers) == 0 {
			return nil
		}

		opening := domain.InitialStock{
			MovementLine: domain.MovementLine{
				Key:         product.Key(),
				Quantity:    req.InitialQuantity,
				Identifiers: req.Identifiers,
				Notes:       "initial stock",
				CreatedBy:   req.CreatedBy,
			},
			UnitCost: product.UnitCost,
		}
		if product.Type == domain.ProductSerialized && opening.Quantity == 0 {
			opening.Quantity = len(req.Identifiers)
		}

		var err error
		result.InitialStock, err = s.engine.apply(ctx, repos, opening, nil)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "product created",
		slog.String("product_id", product.ID.String()),
		slog.String("type", string(product.Type)),
		slog.Bool("initial_stock", result.InitialStock != nil))

	return result, nil
}

// Get retrieves a product by ID
func (s *ProductService) Get(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	product, err := s.store.Repositories().Products.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil {
		return nil, domain.NewNotFoundError("product", id.String())
	}
	return product, nil
}

// List returns a page of products
func (s *ProductService) List(ctx context.Context, filter ports.ProductFilter) (*ports.Page[*domain.Product], error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 || filter.PageSize > 100 {
		filter.PageSize = 50
	}

	products, total, err := s.store.Repositories().Products.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return ports.NewPage(products, filter.Page, filter.PageSize, total), nil
}

// Delete removes a product with its snapshot, identifiers and ledger history.
func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) error {
	var product *domain.Product
	err := s.store.Transaction(ctx, func(ctx context.Context, repos ports.Repositories) error {
		var err error
		product, err = repos.Products.FindByID(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to get product: %w", err)
		}
		if product == nil {
			return domain.NewNotFoundError("product", id.String())
		}
		if err := repos.Products.Delete(ctx, id); err != nil {
			return fmt.Errorf("failed to delete product: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.engine.invalidate(ctx, product.Key())
	s.logger.InfoContext(ctx, "product deleted", slog.String("product_id", id.String()))
	return nil
}
