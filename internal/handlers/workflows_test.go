// internal/handlers/workflows_test.go
package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ammerola/stockledger/internal/core/domain"
	"github.com/ammerola/stockledger/internal/core/ports"
	"github.com/ammerola/stockledger/internal/handlers"
	"github.com/ammerola/stockledger/test/helpers"
	"github.com/ammerola/stockledger/test/mocks"
)

func TestReturnHandler_InspectReturn(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name           string
		body           string
		setupMocks     func(*mocks.MockReturnService)
		expectedStatus int
	}{
		{
			name: "approved_with_restock",
			body: `{"outcome":"APPROVED","condition":"DAMAGED","inspected_by":"qa-1"}`,
			setupMocks: func(m *mocks.MockReturnService) {
				m.EXPECT().Inspect(gomock.Any(), id, ports.InspectRequest{Outcome: "APPROVED", Condition: "DAMAGED", InspectedBy: "qa-1"}).
					Return(&ports.InspectResult{
						Return:  &domain.ReturnRequest{ID: id, Status: domain.ReturnApproved},
						Restock: &ports.MovementResult{Snapshot: &domain.InventorySnapshot{Quantity: 7, AvailableQty: 5, DamagedQty: 2}},
					}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "already_inspected",
			body: `{"outcome":"REJECTED","inspected_by":"qa-1"}`,
			setupMocks: func(m *mocks.MockReturnService) {
				m.EXPECT().Inspect(gomock.Any(), id, gomock.Any()).
					Return(nil, domain.NewInvalidTransitionError("APPROVED", "REJECTED"))
			},
			expectedStatus: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			service := mocks.NewMockReturnService(ctrl)
			tt.setupMocks(service)
			handler := handlers.NewReturnHandler(service, helpers.TestLogger())

			req := httptest.NewRequest(http.MethodPost, "/api/v1/returns/"+id.String()+"/inspect", bytes.NewBufferString(tt.body))
			req.SetPathValue("id", id.String())
			w := httptest.NewRecorder()

			handler.InspectReturn(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestReturnHandler_CreateReturn(t *testing.T) {
	ctrl := gomock.NewController(t)
	service := mocks.NewMockReturnService(ctrl)
	handler := handlers.NewReturnHandler(service, helpers.TestLogger())

	product := helpers.CreateTestProduct()
	service.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, r *domain.ReturnRequest) error {
			assert.Equal(t, product.ID, r.ProductID)
			assert.Equal(t, "wrong size", r.Reason)
			r.ID = uuid.New()
			r.Status = domain.ReturnRequested
			return nil
		})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/returns", jsonBody(t, map[string]interface{}{
		"warehouse_id": product.WarehouseID,
		"client_id":    product.ClientID,
		"product_id":   product.ID,
		"quantity":     1,
		"reason":       " wrong size ",
	}))
	w := httptest.NewRecorder()

	handler.CreateReturn(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	var created domain.ReturnRequest
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, domain.ReturnRequested, created.Status)
}

func TestScanHandler(t *testing.T) {
	id := uuid.New()

	t.Run("second_barcode_is_rejected", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		service := mocks.NewMockScanService(ctrl)
		handler := handlers.NewScanHandler(service, helpers.TestLogger())

		service.EXPECT().Scan(gomock.Any(), id, "BC-2").
			Return(nil, domain.NewMultiBarcodeBatchError("BC-1", "BC-2"))

		req := httptest.NewRequest(http.MethodPost, "/api/v1/scan-sessions/"+id.String()+"/scan", bytes.NewBufferString(`{"code":"BC-2"}`))
		req.SetPathValue("id", id.String())
		w := httptest.NewRecorder()

		handler.Scan(w, req)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, string(domain.KindMultiBarcodeBatch), decodeError(t, w.Body.Bytes()).Kind)
	})

	t.Run("commit_without_body", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		service := mocks.NewMockScanService(ctrl)
		handler := handlers.NewScanHandler(service, helpers.TestLogger())

		service.EXPECT().Commit(gomock.Any(), id, "").Return(&ports.MovementResult{
			Entry:    &domain.LedgerEntry{ID: uuid.New(), Quantity: 12, BatchCode: "BC-1"},
			Snapshot: &domain.InventorySnapshot{Quantity: 12, AvailableQty: 12},
		}, nil)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/scan-sessions/"+id.String()+"/commit", http.NoBody)
		req.SetPathValue("id", id.String())
		w := httptest.NewRecorder()

		handler.Commit(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("close_unknown_session", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		service := mocks.NewMockScanService(ctrl)
		handler := handlers.NewScanHandler(service, helpers.TestLogger())

		service.EXPECT().Close(gomock.Any(), id).Return(domain.NewNotFoundError("scan session", id.String()))

		req := httptest.NewRequest(http.MethodDelete, "/api/v1/scan-sessions/"+id.String(), nil)
		req.SetPathValue("id", id.String())
		w := httptest.NewRecorder()

		handler.CloseSession(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
