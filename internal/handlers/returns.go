// internal/handlers/returns.go
package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/ammerola/stockledger/internal/core/domain"
	"github.com/ammerola/stockledger/internal/core/ports"
)

// ReturnHandler handles the return inspection workflow
type ReturnHandler struct {
	responder
	service ports.ReturnService
}

// NewReturnHandler creates a new return handler
func NewReturnHandler(service ports.ReturnService, logger *slog.Logger) *ReturnHandler {
	return &ReturnHandler{
		responder: responder{logger: logger.With(slog.String("handler", "returns"))},
		service:   service,
	}
}

// CreateReturn handles POST /api/v1/returns
func (h *ReturnHandler) CreateReturn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var body CreateReturnBody
	if err := decodeJSON(r, &body); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ret := body.ToDomain()
	if err := h.service.Create(ctx, ret); err != nil {
		h.respondServiceError(ctx, w, err, "create return")
		return
	}

	h.logger.InfoContext(ctx, "return created",
		slog.String("return_id", ret.ID.String()),
		slog.Int("quantity", ret.Quantity))

	h.respondJSON(w, http.StatusCreated, ret)
}

// GetReturn handles GET /api/v1/returns/{id}
func (h *ReturnHandler) GetReturn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := pathUUID(r, "id")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid return ID format")
		return
	}

	ret, err := h.service.Get(ctx, id)
	if err != nil {
		h.respondServiceError(ctx, w, err, "get return")
		return
	}

	h.respondJSON(w, http.StatusOK, ret)
}

// ReceiveReturn handles POST /api/v1/returns/{id}/receive
func (h *ReturnHandler) ReceiveReturn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := pathUUID(r, "id")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid return ID format")
		return
	}

	ret, err := h.service.Receive(ctx, id)
	if err != nil {
		h.respondServiceError(ctx, w, err, "receive return")
		return
	}

	h.respondJSON(w, http.StatusOK, ret)
}

// InspectReturn handles POST /api/v1/returns/{id}/inspect
func (h *ReturnHandler) InspectReturn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := pathUUID(r, "id")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid return ID format")
		return
	}

	var req ports.InspectRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.service.Inspect(ctx, id, req)
	if err != nil {
		h.respondServiceError(ctx, w, err, "inspect return")
		return
	}

	h.logger.InfoContext(ctx, "return inspected",
		slog.String("return_id", id.String()),
		slog.String("status", string(result.Return.Status)),
		slog.Bool("restocked", result.Restock != nil))

	h.respondJSON(w, http.StatusOK, result)
}

// CreateReturnBody is the request body for opening a return
type CreateReturnBody struct {
	WarehouseID uuid.UUID `json:"warehouse_id"`
	ClientID    uuid.UUID `json:"client_id"`
	ProductID   uuid.UUID `json:"product_id"`
	Quantity    int       `json:"quantity"`
	Identifiers []string  `json:"identifiers,omitempty"`
	Reason      string    `json:"reason"`
}

// ToDomain converts the body to a return request
func (b *CreateReturnBody) ToDomain() *domain.ReturnRequest {
	return &domain.ReturnRequest{
		WarehouseID: b.WarehouseID,
		ClientID:    b.ClientID,
		ProductID:   b.ProductID,
		Quantity:    b.Quantity,
		Identifiers: b.Identifiers,
		Reason:      strings.TrimSpace(b.Reason),
	}
}
