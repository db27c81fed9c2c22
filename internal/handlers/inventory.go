// internal/handlers/inventory.go
package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/ammerola/stockledger/internal/core/domain"
	"github.com/ammerola/stockledger/internal/core/ports"
)

// InventoryHandler handles movements, transfers and snapshot requests
type InventoryHandler struct {
	responder
	movements ports.MovementService
	tasks     ports.TaskQueue
}

// NewInventoryHandler creates a new inventory handler
func NewInventoryHandler(movements ports.MovementService, tasks ports.TaskQueue, logger *slog.Logger) *InventoryHandler {
	return &InventoryHandler{
		responder: responder{logger: logger.With(slog.String("handler", "inventory"))},
		movements: movements,
		tasks:     tasks,
	}
}

// ApplyMovement handles POST /api/v1/movements
func (h *InventoryHandler) ApplyMovement(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req domain.MovementRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	movement, err := req.ToMovement()
	if err != nil {
		h.respondServiceError(ctx, w, err, "apply movement")
		return
	}

	result, err := h.movements.ApplyMovement(ctx, movement)
	if err != nil {
		h.respondServiceError(ctx, w, err, "apply movement")
		return
	}

	h.logger.InfoContext(ctx, "movement applied",
		slog.String("entry_id", result.Entry.ID.String()),
		slog.String("subtype", string(result.Entry.MovementSubtype)),
		slog.Int("quantity", result.Entry.Quantity))

	h.respondJSON(w, http.StatusCreated, result)
}

// Transfer handles POST /api/v1/transfers
func (h *InventoryHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req ports.TransferRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.movements.Transfer(ctx, req)
	if err != nil {
		h.respondServiceError(ctx, w, err, "transfer stock")
		return
	}

	h.logger.InfoContext(ctx, "transfer applied",
		slog.String("reference_id", result.ReferenceID.String()),
		slog.Int("quantity", req.Quantity))

	h.respondJSON(w, http.StatusCreated, result)
}

// ListSnapshots handles GET /api/v1/snapshots
func (h *InventoryHandler) ListSnapshots(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	filter, err := parseSnapshotFilter(r)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	views, err := h.movements.ListSnapshots(ctx, filter)
	if err != nil {
		h.respondServiceError(ctx, w, err, "list snapshots")
		return
	}
	if views == nil {
		views = []ports.SnapshotView{}
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"items": views,
		"count": len(views),
	})
}

// GetSnapshot handles GET /api/v1/snapshots/{productId}
func (h *InventoryHandler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	key, err := snapshotKey(r)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	snap, err := h.movements.GetSnapshot(ctx, key)
	if err != nil {
		h.respondServiceError(ctx, w, err, "get snapshot")
		return
	}

	h.respondJSON(w, http.StatusOK, snap)
}

// Reconcile handles POST /api/v1/snapshots/{productId}/reconcile. With
// async=true the replay runs on the worker.
func (h *InventoryHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	key, err := snapshotKey(r)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if async, _ := strconv.ParseBool(r.URL.Query().Get("async")); async {
		if err := h.tasks.EnqueueReconcile(ctx, &key); err != nil {
			h.respondServiceError(ctx, w, err, "queue reconcile")
			return
		}
		h.respondJSON(w, http.StatusAccepted, map[string]interface{}{
			"message": "Reconcile queued",
			"key":     key,
		})
		return
	}

	result, err := h.movements.Reconcile(ctx, key)
	if err != nil {
		h.respondServiceError(ctx, w, err, "reconcile snapshot")
		return
	}

	if result.Repaired {
		h.logger.WarnContext(ctx, "snapshot repaired from ledger",
			slog.String("product_id", key.ProductID.String()),
			slog.String("warehouse_id", key.WarehouseID.String()))
	}

	h.respondJSON(w, http.StatusOK, result)
}

// DeleteLedgerEntry handles DELETE /api/v1/ledger/{id}
func (h *InventoryHandler) DeleteLedgerEntry(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := pathUUID(r, "id")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid ledger entry ID format")
		return
	}

	snap, err := h.movements.DeleteEntry(ctx, id)
	if err != nil {
		h.respondServiceError(ctx, w, err, "delete ledger entry")
		return
	}

	h.logger.InfoContext(ctx, "ledger entry deleted", slog.String("entry_id", id.String()))

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"message":  "Ledger entry deleted",
		"entry_id": id,
		"snapshot": snap,
	})
}

func parseSnapshotFilter(r *http.Request) (ports.SnapshotFilter, error) {
	var filter ports.SnapshotFilter
	var err error

	if filter.WarehouseID, err = queryUUID(r, "warehouse_id"); err != nil {
		return filter, err
	}
	if filter.ClientID, err = queryUUID(r, "client_id"); err != nil {
		return filter, err
	}
	if filter.ProductID, err = queryUUID(r, "product_id"); err != nil {
		return filter, err
	}
	filter.InStockOnly, _ = strconv.ParseBool(r.URL.Query().Get("in_stock"))
	return filter, nil
}
