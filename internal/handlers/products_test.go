// internal/handlers/products_test.go
package handlers_test

import (
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

func TestProductHandler_CreateProduct(t *testing.T) {
	warehouseID, clientID := uuid.New(), uuid.New()

	tests := []struct {
		name           string
		body           map[string]interface{}
		setupMocks     func(*mocks.MockProductService)
		expectedStatus int
	}{
		{
			name: "creates_serialized_product_with_opening_stock",
			body: map[string]interface{}{
				"warehouse_id":     warehouseID,
				"client_id":        clientID,
				"name":             "  Phone ",
				"type":             "serialized",
				"initial_quantity": 2,
				"identifiers":      []string{"IMEI-1", "IMEI-2"},
			},
			setupMocks: func(m *mocks.MockProductService) {
				m.EXPECT().Create(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, req ports.CreateProductRequest) (*ports.ProductCreated, error) {
						assert.Equal(t, "Phone", req.Product.Name)
						assert.Equal(t, domain.ProductSerialized, req.Product.Type)
						assert.Equal(t, 2, req.InitialQuantity)
						p := req.Product
						p.ID = uuid.New()
						return &ports.ProductCreated{Product: &p}, nil
					})
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "unknown_type",
			body:           map[string]interface{}{"warehouse_id": warehouseID, "client_id": clientID, "name": "Phone", "type": "kit"},
			setupMocks:     func(m *mocks.MockProductService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "mismatched_opening_identifiers",
			body: map[string]interface{}{
				"warehouse_id": warehouseID, "client_id": clientID, "name": "Phone",
				"type": "SERIALIZED", "initial_quantity": 3, "identifiers": []string{"IMEI-1"},
			},
			setupMocks: func(m *mocks.MockProductService) {
				m.EXPECT().Create(gomock.Any(), gomock.Any()).
					Return(nil, domain.NewQuantityIdentifierMismatchError(3, 1))
			},
			expectedStatus: http.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			service := mocks.NewMockProductService(ctrl)
			tt.setupMocks(service)
			handler := handlers.NewProductHandler(service, helpers.TestLogger())

			req := httptest.NewRequest(http.MethodPost, "/api/v1/products", jsonBody(t, tt.body))
			w := httptest.NewRecorder()

			handler.CreateProduct(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestProductHandler_ListProducts(t *testing.T) {
	ctrl := gomock.NewController(t)
	service := mocks.NewMockProductService(ctrl)
	handler := handlers.NewProductHandler(service, helpers.TestLogger())

	warehouseID := uuid.New()
	product := helpers.CreateTestProduct()
	service.EXPECT().
		List(gomock.Any(), ports.ProductFilter{
			WarehouseID: &warehouseID,
			Type:        domain.ProductBatch,
			Search:      "cable",
			Page:        2,
			PageSize:    100,
		}).
		Return(ports.NewPage([]*domain.Product{product}, 2, 100, 101), nil)

	req := httptest.NewRequest(http.MethodGet,
		"/api/v1/products?warehouse_id="+warehouseID.String()+"&type=batch&search=cable&page=2&limit=500", nil)
	w := httptest.NewRecorder()

	handler.ListProducts(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var page ports.Page[domain.Product]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Items, 1)
	assert.Equal(t, product.ID, page.Items[0].ID)
}

func TestProductHandler_GetAndDelete(t *testing.T) {
	ctrl := gomock.NewController(t)
	service := mocks.NewMockProductService(ctrl)
	handler := handlers.NewProductHandler(service, helpers.TestLogger())

	id := uuid.New()
	service.EXPECT().Get(gomock.Any(), id).Return(nil, domain.NewNotFoundError("product", id.String()))
	service.EXPECT().Delete(gomock.Any(), id).Return(nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/"+id.String(), nil)
	req.SetPathValue("id", id.String())
	w := httptest.NewRecorder()
	handler.GetProduct(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)

	req = httptest.NewRequest(http.MethodDelete, "/api/v1/products/"+id.String(), nil)
	req.SetPathValue("id", id.String())
	w = httptest.NewRecorder()
	handler.DeleteProduct(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
