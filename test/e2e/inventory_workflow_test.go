//go:build e2e
// +build e2e

package e2e_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/ammerola/stockledger/internal/adapters/db"
	redis_a "github.com/ammerola/stockledger/internal/adapters/redis_adapter"
	"github.com/ammerola/stockledger/internal/adapters/storage"
	"github.com/ammerola/stockledger/internal/core/domain"
	"github.com/ammerola/stockledger/internal/core/ports"
	"github.com/ammerola/stockledger/internal/core/services"
	"github.com/ammerola/stockledger/internal/handlers"
	"github.com/ammerola/stockledger/internal/handlers/middleware"
	"github.com/ammerola/stockledger/test/helpers"
)

// queuedTasks records work handed to the worker; the suite runs it inline
type queuedTasks struct {
	imports    []uuid.UUID
	exports    []ports.ExportRequest
	reconciles int
}

func (q *queuedTasks) EnqueueImport(_ context.Context, jobID uuid.UUID, _ string) error {
	q.imports = append(q.imports, jobID)
	return nil
}

func (q *queuedTasks) EnqueueExport(_ context.Context, req ports.ExportRequest) error {
	q.exports = append(q.exports, req)
	return nil
}

func (q *queuedTasks) EnqueueReconcile(context.Context, *domain.SnapshotKey) error {
	q.reconciles++
	return nil
}

type InventoryE2ESuite struct {
	suite.Suite
	server    *httptest.Server
	client    *http.Client
	baseURL   string
	testDB    *helpers.TestDB
	testRedis *helpers.TestRedis
	tasks     *queuedTasks

	warehouseID uuid.UUID
	clientID    uuid.UUID
}

func (s *InventoryE2ESuite) SetupSuite() {
	s.testDB = helpers.SetupTestDB(s.T())
	s.testRedis = helpers.SetupTestRedis(s.T())
	s.tasks = &queuedTasks{}

	s.server = s.startTestServer()
	s.client = &http.Client{Timeout: 10 * time.Second}
	s.baseURL = s.server.URL + "/api/v1"
}

func (s *InventoryE2ESuite) TearDownSuite() {
	s.server.Close()
}

func (s *InventoryE2ESuite) SetupTest() {
	helpers.TruncateAllTables(s.T(), s.testDB.PgxPool)
	s.testRedis.Server.FlushAll()
	s.warehouseID = uuid.New()
	s.clientID = uuid.New()
}

func (s *InventoryE2ESuite) TestSerializedLifecycle() {
	product := s.createProduct("Phone", "SERIALIZED")
	serials := helpers.Serials("IMEI", 5)

	// Stock-in five serials
	resp := s.makeRequest("POST", "/movements", s.movement(product, "IN", "STOCK_IN", 5, serials))
	s.Equal(http.StatusCreated, resp.StatusCode)
	var stocked ports.MovementResult
	s.decodeResponse(resp, &stocked)
	s.Equal(5, stocked.Snapshot.Quantity)
	s.Equal(5, stocked.Snapshot.AvailableQty)

	resp = s.makeRequest("POST", "/identifiers/check", map[string]interface{}{
		"warehouse_id": s.warehouseID,
		"serials":      []string{serials[0], "IMEI-NEW"},
	})
	var check struct {
		Available bool                        `json:"available"`
		Conflicts []domain.IdentifierConflict `json:"conflicts"`
	}
	s.decodeResponse(resp, &check)
	s.False(check.Available)
	s.Len(check.Conflicts, 1)

	// Dispatch three of them
	resp = s.makeRequest("POST", "/movements", s.movement(product, "OUT", "DISPATCH", 3, serials[:3]))
	s.Equal(http.StatusCreated, resp.StatusCode)
	var dispatched ports.MovementResult
	s.decodeResponse(resp, &dispatched)
	s.Equal(2, dispatched.Snapshot.Quantity)
	s.Equal(2, dispatched.Snapshot.AvailableQty)

	resp = s.makeRequest("GET", fmt.Sprintf("/identifiers/%s?warehouse_id=%s", serials[0], s.warehouseID), nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	var identifier domain.Identifier
	s.decodeResponse(resp, &identifier)
	s.Equal(domain.IdentifierDispatched, identifier.Status)

	// A dispatched serial cannot leave twice
	resp = s.makeRequest("POST", "/movements", s.movement(product, "OUT", "DISPATCH", 1, serials[:1]))
	s.Equal(http.StatusConflict, resp.StatusCode)
	s.Equal(string(domain.KindInvalidIdentifierState), s.errorKind(resp))

	// Reusing an in-stock serial on another product writes nothing
	other := s.createProduct("Tablet", "SERIALIZED")
	reuse := append([]string{serials[4]}, helpers.Serials("TAB", 4)...)
	resp = s.makeRequest("POST", "/movements", s.movement(other, "IN", "STOCK_IN", 5, reuse))
	s.Equal(http.StatusConflict, resp.StatusCode)
	s.Equal(string(domain.KindDuplicateIdentifier), s.errorKind(resp))

	resp = s.makeRequest("GET", fmt.Sprintf("/identifiers/TAB-001?warehouse_id=%s", s.warehouseID), nil)
	s.Equal(http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	// Ledger history and a clean reconcile
	resp = s.makeRequest("GET", fmt.Sprintf("/ledger?product_id=%s", product.ID), nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	var history ports.Page[domain.LedgerEntryView]
	s.decodeResponse(resp, &history)
	s.Equal(int64(2), history.TotalCount)

	resp = s.makeRequest("POST", s.snapshotPath(product, "/reconcile"), nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	var reconciled ports.ReconcileResult
	s.decodeResponse(resp, &reconciled)
	s.False(reconciled.Repaired)
	s.Equal(2, reconciled.Derived.Quantity)
}

func (s *InventoryE2ESuite) TestDamagedReturnRestock() {
	product := s.createProduct("Mug", "STANDARD")

	resp := s.makeRequest("POST", "/movements", s.movement(product, "IN", "STOCK_IN", 10, nil))
	s.Equal(http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = s.makeRequest("POST", "/returns", map[string]interface{}{
		"warehouse_id": s.warehouseID,
		"client_id":    s.clientID,
		"product_id":   product.ID,
		"quantity":     2,
		"reason":       "chipped in transit",
	})
	s.Equal(http.StatusCreated, resp.StatusCode)
	var ret domain.ReturnRequest
	s.decodeResponse(resp, &ret)

	resp = s.makeRequest("POST", fmt.Sprintf("/returns/%s/inspect", ret.ID), map[string]interface{}{
		"outcome":      "APPROVED",
		"condition":    "DAMAGED",
		"inspected_by": "qa",
	})
	s.Equal(http.StatusOK, resp.StatusCode)
	var inspected ports.InspectResult
	s.decodeResponse(resp, &inspected)
	s.Require().NotNil(inspected.Restock)

	resp = s.makeRequest("GET", s.snapshotPath(product, ""), nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	var snap domain.InventorySnapshot
	s.decodeResponse(resp, &snap)
	s.Equal(12, snap.Quantity)
	s.Equal(2, snap.DamagedQty)
	s.Equal(10, snap.AvailableQty)

	// An inspected return is final
	resp = s.makeRequest("POST", fmt.Sprintf("/returns/%s/inspect", ret.ID), map[string]interface{}{
		"outcome":      "REJECTED",
		"inspected_by": "qa",
	})
	s.Equal(http.StatusConflict, resp.StatusCode)
	resp.Body.Close()
}

func (s *InventoryE2ESuite) TestCSVImportPartialSuccess() {
	product := s.createProduct("Phone", "SERIALIZED")
	resp := s.makeRequest("POST", "/movements", s.movement(product, "IN", "STOCK_IN", 1, []string{"TAKEN-1"}))
	s.Equal(http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Write([]string{"Product Name", "Product Type", "Barcode or Serials"})
	for i := 1; i <= 10; i++ {
		serial := fmt.Sprintf("IMP-%02d", i)
		if i == 4 {
			serial = "TAKEN-1"
		}
		w.Write([]string{"Imported Phone", "SERIALIZED", serial})
	}
	w.Flush()

	resp = s.upload("/import/csv", "stock.csv", buf.Bytes(), map[string]string{"sync": "true"})
	s.Equal(http.StatusOK, resp.StatusCode)
	var report domain.ImportReport
	s.decodeResponse(resp, &report)
	s.Equal(10, report.Total)
	s.Equal(9, report.Succeeded)
	s.Equal(1, report.Failed)
	for _, row := range report.Rows {
		if row.Status != domain.RowCommitted {
			s.Equal(5, row.Line)
			s.Equal(domain.KindDuplicateIdentifier, row.ErrorKind)
		}
	}

	// Async uploads are stored and queued
	resp = s.upload("/import/csv", "later.csv", buf.Bytes(), nil)
	s.Equal(http.StatusAccepted, resp.StatusCode)
	var queued map[string]interface{}
	s.decodeResponse(resp, &queued)
	s.Len(s.tasks.imports, 1)

	resp = s.makeRequest("GET", fmt.Sprintf("/import/status/%s", queued["job_id"]), nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	var job domain.ImportJob
	s.decodeResponse(resp, &job)
	s.Equal(domain.JobQueued, job.Status)

	// Export reflects the imported stock
	resp = s.makeRequest("GET", fmt.Sprintf("/export/csv?warehouse_id=%s&in_stock=true", s.warehouseID), nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	defer resp.Body.Close()
	records, err := csv.NewReader(resp.Body).ReadAll()
	s.Require().NoError(err)
	s.Equal("Product Name", records[0][0])
	s.Len(records, 3)
}

func (s *InventoryE2ESuite) TestBatchScanSession() {
	product := s.createProduct("Cable", "BATCH")

	resp := s.makeRequest("POST", "/scan-sessions", map[string]interface{}{
		"warehouse_id": s.warehouseID,
		"client_id":    s.clientID,
		"product_id":   product.ID,
	})
	s.Equal(http.StatusCreated, resp.StatusCode)
	var session domain.ScanSession
	s.decodeResponse(resp, &session)

	for i := 0; i < 2; i++ {
		resp = s.makeRequest("POST", fmt.Sprintf("/scan-sessions/%s/scan", session.ID), map[string]string{"code": "BC-100"})
		s.Equal(http.StatusOK, resp.StatusCode)
		resp.Body.Close()
	}

	resp = s.makeRequest("POST", fmt.Sprintf("/scan-sessions/%s/scan", session.ID), map[string]string{"code": "BC-200"})
	s.Equal(http.StatusUnprocessableEntity, resp.StatusCode)
	s.Equal(string(domain.KindMultiBarcodeBatch), s.errorKind(resp))

	resp = s.makeRequest("POST", fmt.Sprintf("/scan-sessions/%s/commit", session.ID), nil)
	s.Equal(http.StatusCreated, resp.StatusCode)
	var committed ports.MovementResult
	s.decodeResponse(resp, &committed)
	s.Equal(2, committed.Snapshot.Quantity)
	s.Equal("BC-100", committed.Entry.BatchCode)

	resp = s.makeRequest("GET", "/dashboard?warehouse_id="+s.warehouseID.String(), nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal("MISS", resp.Header.Get("X-Cache"))
	var dashboard handlers.DashboardData
	s.decodeResponse(resp, &dashboard)
	s.Equal(2, dashboard.Summary.Available)
}

// Helper methods

func (s *InventoryE2ESuite) startTestServer() *httptest.Server {
	logger := helpers.TestLogger()
	cfg := helpers.LoadTestConfig()

	files, err := storage.NewLocalStorage(s.T().TempDir(), logger)
	s.Require().NoError(err)

	cache := redis_a.NewCache(s.testRedis.Client, cfg.Redis.TTL, logger)
	store := db.NewStore(s.testDB.Database, logger)
	registry := services.NewIdentifierRegistry(store, logger)
	engine := services.NewReconciliationEngine(store, registry,
		redis_a.NewSnapshotCache(cache, cfg.Ledger.SnapshotCacheTTL), logger)

	router := &handlers.Router{
		Products:  handlers.NewProductHandler(services.NewProductService(store, engine, logger), logger),
		Inventory: handlers.NewInventoryHandler(engine, s.tasks, logger),
		Ledger:    handlers.NewLedgerHandler(services.NewLedgerService(store, logger), registry, logger),
		Returns:   handlers.NewReturnHandler(services.NewReturnService(store, engine, logger), logger),
		Scans: handlers.NewScanHandler(services.NewScanService(store,
			redis_a.NewScanSessionStore(cache, cfg.Ledger.ScanSessionTTL), engine, logger), logger),
		Imports: handlers.NewImportHandler(services.NewImportService(store, engine, registry, logger),
			files, s.tasks, 1<<20, cfg.Ledger.ImportMaxRows, logger),
		Exports: handlers.NewExportHandler(engine, s.tasks,
			redis_a.NewExportStatusStore(cache, cfg.FileProcessing.ExportURLExpiry), logger),
		Dashboard: handlers.NewDashboardHandler(engine, cache, cfg.Ledger.DashboardCacheTTL, logger),
	}

	mux := http.NewServeMux()
	router.Register(mux)
	return httptest.NewServer(middleware.RequestID(mux))
}

func (s *InventoryE2ESuite) createProduct(name, productType string) *domain.Product {
	resp := s.makeRequest("POST", "/products", map[string]interface{}{
		"warehouse_id": s.warehouseID,
		"client_id":    s.clientID,
		"name":         name,
		"type":         productType,
		"unit_cost":    "10.00",
	})
	s.Require().Equal(http.StatusCreated, resp.StatusCode)

	var created ports.ProductCreated
	s.decodeResponse(resp, &created)
	return created.Product
}

func (s *InventoryE2ESuite) movement(p *domain.Product, movementType, subtype string, quantity int, identifiers []string) map[string]interface{} {
	return map[string]interface{}{
		"warehouse_id":  p.WarehouseID,
		"client_id":     p.ClientID,
		"product_id":    p.ID,
		"movement_type": movementType,
		"subtype":       subtype,
		"quantity":      quantity,
		"identifiers":   identifiers,
		"created_by":    "e2e",
	}
}

func (s *InventoryE2ESuite) snapshotPath(p *domain.Product, suffix string) string {
	return fmt.Sprintf("/snapshots/%s%s?warehouse_id=%s&client_id=%s", p.ID, suffix, p.WarehouseID, p.ClientID)
}

func (s *InventoryE2ESuite) upload(path, filename string, content []byte, fields map[string]string) *http.Response {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	s.NoError(writer.WriteField("warehouse_id", s.warehouseID.String()))
	s.NoError(writer.WriteField("client_id", s.clientID.String()))
	for k, v := range fields {
		s.NoError(writer.WriteField(k, v))
	}
	part, err := writer.CreateFormFile("file", filename)
	s.NoError(err)
	_, err = io.Copy(part, bytes.NewReader(content))
	s.NoError(err)
	s.NoError(writer.Close())

	req, err := http.NewRequest("POST", s.baseURL+path, body)
	s.NoError(err)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := s.client.Do(req)
	s.Require().NoError(err)
	return resp
}

func (s *InventoryE2ESuite) makeRequest(method, path string, body interface{}) *http.Response {
	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		s.NoError(err)
		reqBody = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequest(method, s.baseURL+path, reqBody)
	s.NoError(err)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Actor", "e2e")

	resp, err := s.client.Do(req)
	s.Require().NoError(err)

	return resp
}

func (s *InventoryE2ESuite) decodeResponse(resp *http.Response, v interface{}) {
	defer resp.Body.Close()
	err := json.NewDecoder(resp.Body).Decode(v)
	s.NoError(err)
}

func (s *InventoryE2ESuite) errorKind(resp *http.Response) string {
	var body handlers.ErrorResponse
	s.decodeResponse(resp, &body)
	return strings.TrimSpace(body.Kind)
}

func TestInventoryE2ESuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping E2E tests in short mode")
	}
	suite.Run(t, new(InventoryE2ESuite))
}
