// internal/handlers/products.go
package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ammerola/stockledger/internal/core/domain"
	"github.com/ammerola/stockledger/internal/core/ports"
)

// ProductHandler handles product HTTP requests
type ProductHandler struct {
	responder
	service ports.ProductService
}

// NewProductHandler creates a new product handler
func NewProductHandler(service ports.ProductService, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{
		responder: responder{logger: logger.With(slog.String("handler", "products"))},
		service:   service,
	}
}

// CreateProduct handles POST /api/v1/products
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var body CreateProductBody
	if err := decodeJSON(r, &body); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req, err := body.ToRequest()
	if err != nil {
		h.respondServiceError(ctx, w, err, "create product")
		return
	}

	created, err := h.service.Create(ctx, req)
	if err != nil {
		h.respondServiceError(ctx, w, err, "create product")
		return
	}

	h.logger.InfoContext(ctx, "product created",
		slog.String("product_id", created.Product.ID.String()),
		slog.String("type", string(created.Product.Type)))

	h.respondJSON(w, http.StatusCreated, created)
}

// ListProducts handles GET /api/v1/products
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	filter, err := parseProductFilter(r)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	page, err := h.service.List(ctx, filter)
	if err != nil {
		h.respondServiceError(ctx, w, err, "list products")
		return
	}

	h.respondJSON(w, http.StatusOK, page)
}

// GetProduct handles GET /api/v1/products/{id}
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := pathUUID(r, "id")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid product ID format")
		return
	}

	product, err := h.service.Get(ctx, id)
	if err != nil {
		h.respondServiceError(ctx, w, err, "get product")
		return
	}

	h.respondJSON(w, http.StatusOK, product)
}

// DeleteProduct handles DELETE /api/v1/products/{id}
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := pathUUID(r, "id")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid product ID format")
		return
	}

	if err := h.service.Delete(ctx, id); err != nil {
		h.respondServiceError(ctx, w, err, "delete product")
		return
	}

	h.logger.InfoContext(ctx, "product deleted", slog.String("product_id", id.String()))

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"message":    "Product deleted successfully",
		"product_id": id,
	})
}

func parseProductFilter(r *http.Request) (ports.ProductFilter, error) {
	var filter ports.ProductFilter
	var err error

	if filter.WarehouseID, err = queryUUID(r, "warehouse_id"); err != nil {
		return filter, err
	}
	if filter.ClientID, err = queryUUID(r, "client_id"); err != nil {
		return filter, err
	}
	if t := r.URL.Query().Get("type"); t != "" {
		if filter.Type, err = domain.ParseProductType(t); err != nil {
			return filter, err
		}
	}
	filter.Search = strings.TrimSpace(r.URL.Query().Get("search"))
	filter.Page, filter.PageSize = pagination(r, 50, 100)
	return filter, nil
}

// CreateProductBody is the request body for creating a product
type CreateProductBody struct {
	WarehouseID     uuid.UUID        `json:"warehouse_id"`
	ClientID        uuid.UUID        `json:"client_id"`
	Name            string           `json:"name"`
	SKU             string           `json:"sku,omitempty"`
	Type            string           `json:"type,omitempty"`
	UnitCost        *decimal.Decimal `json:"unit_cost,omitempty"`
	InitialQuantity int              `json:"initial_quantity,omitempty"`
	Identifiers     []string         `json:"identifiers,omitempty"`
	CreatedBy       string           `json:"created_by,omitempty"`
}

// ToRequest converts the body to a service request
func (b *CreateProductBody) ToRequest() (ports.CreateProductRequest, error) {
	productType, err := domain.ParseProductType(b.Type)
	if err != nil {
		return ports.CreateProductRequest{}, err
	}
	if b.InitialQuantity < 0 {
		return ports.CreateProductRequest{}, domain.NewValidationError("initial_quantity cannot be negative")
	}

	return ports.CreateProductRequest{
		Product: domain.Product{
			WarehouseID: b.WarehouseID,
			ClientID:    b.ClientID,
			Name:        strings.TrimSpace(b.Name),
			SKU:         strings.TrimSpace(b.SKU),
			Type:        productType,
			UnitCost:    b.UnitCost,
		},
		InitialQuantity: b.InitialQuantity,
		Identifiers:     b.Identifiers,
		CreatedBy:       b.CreatedBy,
	}, nil
}
