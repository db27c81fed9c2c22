// internal/handlers/dashboard.go
package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	redis_a "github.com/ammerola/stockledger/internal/adapters/redis_adapter"
	"github.com/ammerola/stockledger/internal/core/domain"
	"github.com/ammerola/stockledger/internal/core/ports"
)

// DashboardHandler serves stock totals built from the snapshots
type DashboardHandler struct {
	responder
	movements ports.MovementService
	cache     ports.CacheRepository
	ttl       time.Duration
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(movements ports.MovementService, cache ports.CacheRepository, ttl time.Duration, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{
		responder: responder{logger: logger.With(slog.String("handler", "dashboard"))},
		movements: movements,
		cache:     cache,
		ttl:       ttl,
	}
}

// GetDashboard handles GET /api/v1/dashboard
func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	filter, err := parseSnapshotFilter(r)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	cacheKey := redis_a.BuildKey(redis_a.PrefixDashboard, idOrAll(filter.WarehouseID), idOrAll(filter.ClientID))

	var dashboard DashboardData
	err = h.cache.Get(ctx, cacheKey, &dashboard)
	if err == nil {
		w.Header().Set("X-Cache", "HIT")
		h.respondJSON(w, http.StatusOK, dashboard)
		return
	}
	if !errors.Is(err, ports.ErrCacheMiss) {
		h.logger.WarnContext(ctx, "dashboard cache read failed",
			slog.String("error", err.Error()))
	}

	loaded, err := h.loadDashboard(ctx, filter)
	if err != nil {
		h.respondServiceError(ctx, w, err, "load dashboard")
		return
	}

	if err := h.cache.SetWithTTL(ctx, cacheKey, loaded, h.ttl); err != nil {
		h.logger.WarnContext(ctx, "failed to cache dashboard",
			slog.String("error", err.Error()))
	}

	w.Header().Set("X-Cache", "MISS")
	h.respondJSON(w, http.StatusOK, loaded)
}

func (h *DashboardHandler) loadDashboard(ctx context.Context, filter ports.SnapshotFilter) (*DashboardData, error) {
	views, err := h.movements.ListSnapshots(ctx, filter)
	if err != nil {
		return nil, err
	}
	return Summarize(views), nil
}

// Summarize totals a set of snapshots per product type.
func Summarize(views []ports.SnapshotView) *DashboardData {
	data := &DashboardData{
		Timestamp: time.Now().UTC(),
		ByType:    make(map[domain.ProductType]*StockTotals),
	}

	for _, v := range views {
		add := func(t *StockTotals) {
			t.Products++
			t.Quantity += v.Quantity
			t.Available += v.AvailableQty
			t.Damaged += v.DamagedQty
			t.Value = t.Value.Add(v.UnitCost.Mul(decimal.NewFromInt(int64(v.AvailableQty))))
			if v.AvailableQty == 0 {
				t.OutOfStock++
			}
		}

		add(&data.Summary)
		totals, ok := data.ByType[v.ProductType]
		if !ok {
			totals = &StockTotals{}
			data.ByType[v.ProductType] = totals
		}
		add(totals)
	}
	return data
}

func idOrAll(id *uuid.UUID) string {
	if id == nil {
		return "all"
	}
	return id.String()
}

// DashboardData is the dashboard response
type DashboardData struct {
	Summary   StockTotals                         `json:"summary"`
	ByType    map[domain.ProductType]*StockTotals `json:"by_type"`
	Timestamp time.Time                           `json:"timestamp"`
}

// StockTotals sums snapshot quantities. Value prices available units at the
// snapshot unit cost.
type StockTotals struct {
	Products   int             `json:"products"`
	Quantity   int             `json:"quantity"`
	Available  int             `json:"available"`
	Damaged    int             `json:"damaged"`
	OutOfStock int             `json:"out_of_stock"`
	Value      decimal.Decimal `json:"value"`
}
