// internal/handlers/respond.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ammerola/stockledger/internal/core/domain"
)

// ErrorResponse is the JSON body of every failed request
type ErrorResponse struct {
	Error       string   `json:"error"`
	Kind        string   `json:"kind,omitempty"`
	Identifiers []string `json:"identifiers,omitempty"`
}

// responder holds the JSON helpers shared by the handlers
type responder struct {
	logger *slog.Logger
}

func (h responder) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode JSON response",
			slog.String("error", err.Error()))
	}
}

func (h responder) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, ErrorResponse{Error: message})
}

// respondServiceError writes err with the status code of its inventory error kind.
func (h responder) respondServiceError(ctx context.Context, w http.ResponseWriter, err error, action string) {
	var invErr *domain.InventoryError
	if !errors.As(err, &invErr) {
		h.logger.ErrorContext(ctx, "failed to "+action,
			slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "Failed to "+action)
		return
	}

	status := StatusForKind(invErr.Kind)
	h.logger.WarnContext(ctx, "request rejected",
		slog.String("action", action),
		slog.String("kind", string(invErr.Kind)),
		slog.String("error", err.Error()))
	h.respondJSON(w, status, ErrorResponse{
		Error:       invErr.Error(),
		Kind:        string(invErr.Kind),
		Identifiers: invErr.Identifiers,
	})
}

// StatusForKind maps an inventory error kind onto an HTTP status code
func StatusForKind(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindDuplicateIdentifier, domain.KindInvalidIdentifierState, domain.KindInvalidTransition:
		return http.StatusConflict
	case domain.KindInsufficientStock, domain.KindQuantityIdentifierMismatch,
		domain.KindMultiBarcodeBatch, domain.KindUnknownIdentifier:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func decodeJSON(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s format", name)
	}
	return id, nil
}

// queryUUID returns nil when the parameter is absent.
func queryUUID(r *http.Request, name string) (*uuid.UUID, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s format", name)
	}
	return &id, nil
}

func queryTime(r *http.Request, name string) (*time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, fmt.Errorf("%s must be an RFC3339 timestamp", name)
	}
	return &t, nil
}

// pagination reads page and limit, capping limit at maxLimit
func pagination(r *http.Request, defaultLimit, maxLimit int) (int, int) {
	page, limit := 1, defaultLimit

	if p, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && p > 0 {
		page = p
	}
	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 {
		limit = l
		if limit > maxLimit {
			limit = maxLimit
		}
	}
	return page, limit
}

// snapshotKey reads the key of a snapshot route: productId from the path,
// warehouse_id and client_id from the query.
func snapshotKey(r *http.Request) (domain.SnapshotKey, error) {
	productID, err := pathUUID(r, "productId")
	if err != nil {
		return domain.SnapshotKey{}, err
	}
	warehouseID, err := queryUUID(r, "warehouse_id")
	if err != nil {
		return domain.SnapshotKey{}, err
	}
	clientID, err := queryUUID(r, "client_id")
	if err != nil {
		return domain.SnapshotKey{}, err
	}
	if warehouseID == nil || clientID == nil {
		return domain.SnapshotKey{}, errors.New("warehouse_id and client_id are required")
	}
	return domain.SnapshotKey{WarehouseID: *warehouseID, ProductID: productID, ClientID: *clientID}, nil
}
