// internal/handlers/ledger.go
package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/ammerola/stockledger/internal/core/domain"
	"github.com/ammerola/stockledger/internal/core/ports"
)

// LedgerHandler serves ledger history and the serial number registry
type LedgerHandler struct {
	responder
	ledger      ports.LedgerService
	identifiers ports.IdentifierService
}

// NewLedgerHandler creates a new ledger handler
func NewLedgerHandler(ledger ports.LedgerService, identifiers ports.IdentifierService, logger *slog.Logger) *LedgerHandler {
	return &LedgerHandler{
		responder:   responder{logger: logger.With(slog.String("handler", "ledger"))},
		ledger:      ledger,
		identifiers: identifiers,
	}
}

// QueryLedger handles GET /api/v1/ledger
func (h *LedgerHandler) QueryLedger(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	q, err := parseLedgerQuery(r)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	page, err := h.ledger.Query(ctx, q)
	if err != nil {
		h.respondServiceError(ctx, w, err, "query ledger")
		return
	}

	h.respondJSON(w, http.StatusOK, page)
}

// GetLedgerEntry handles GET /api/v1/ledger/{id}
func (h *LedgerHandler) GetLedgerEntry(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := pathUUID(r, "id")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid ledger entry ID format")
		return
	}

	entry, err := h.ledger.Get(ctx, id)
	if err != nil {
		h.respondServiceError(ctx, w, err, "get ledger entry")
		return
	}

	h.respondJSON(w, http.StatusOK, entry)
}

// CheckIdentifiers handles POST /api/v1/identifiers/check
func (h *LedgerHandler) CheckIdentifiers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CheckIdentifiersRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	conflicts, err := h.identifiers.CheckBulk(ctx, req.WarehouseID, req.Serials)
	if err != nil {
		h.respondServiceError(ctx, w, err, "check identifiers")
		return
	}
	if conflicts == nil {
		conflicts = []domain.IdentifierConflict{}
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"available": len(conflicts) == 0,
		"checked":   len(req.Serials),
		"conflicts": conflicts,
	})
}

// GetIdentifier handles GET /api/v1/identifiers/{serial}
func (h *LedgerHandler) GetIdentifier(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	serial := strings.TrimSpace(r.PathValue("serial"))
	warehouseID, err := queryUUID(r, "warehouse_id")
	if err != nil || warehouseID == nil {
		h.respondError(w, http.StatusBadRequest, "warehouse_id is required")
		return
	}

	id, err := h.identifiers.Lookup(ctx, *warehouseID, serial)
	if err != nil {
		if errors.Is(err, domain.ErrUnknownIdentifier) {
			h.respondError(w, http.StatusNotFound, "Identifier not found")
			return
		}
		h.respondServiceError(ctx, w, err, "look up identifier")
		return
	}

	h.respondJSON(w, http.StatusOK, id)
}

func parseLedgerQuery(r *http.Request) (ports.LedgerQuery, error) {
	var q ports.LedgerQuery
	var err error

	if q.WarehouseID, err = queryUUID(r, "warehouse_id"); err != nil {
		return q, err
	}
	if q.ClientID, err = queryUUID(r, "client_id"); err != nil {
		return q, err
	}
	if q.ProductID, err = queryUUID(r, "product_id"); err != nil {
		return q, err
	}
	if q.From, err = queryTime(r, "from"); err != nil {
		return q, err
	}
	if q.To, err = queryTime(r, "to"); err != nil {
		return q, err
	}
	q.Subtype = domain.MovementSubtype(strings.ToUpper(r.URL.Query().Get("subtype")))
	q.Page, q.PageSize = pagination(r, 50, 500)
	return q, nil
}

// CheckIdentifiersRequest is the body of a bulk identifier check
type CheckIdentifiersRequest struct {
	WarehouseID uuid.UUID `json:"warehouse_id"`
	Serials     []string  `json:"serials"`
}
