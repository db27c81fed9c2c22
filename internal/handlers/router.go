// internal/handlers/router.go
package handlers

import "net/http"

const apiV1 = "/api/v1"

// Router groups the API handlers. Health is optional.
type Router struct {
	Health    *HealthHandler
	Products  *ProductHandler
	Inventory *InventoryHandler
	Ledger    *LedgerHandler
	Returns   *ReturnHandler
	Scans     *ScanHandler
	Imports   *ImportHandler
	Exports   *ExportHandler
	Dashboard *DashboardHandler
}

// Register mounts every route on mux using method-specific patterns
func (rt *Router) Register(mux *http.ServeMux) {
	if rt.Health != nil {
		mux.HandleFunc("GET /health", rt.Health.Health)
		mux.HandleFunc("GET /health/live", rt.Health.Liveness)
		mux.HandleFunc("GET /health/ready", rt.Health.Readiness)
	}

	// Products
	mux.HandleFunc("POST "+apiV1+"/products", rt.Products.CreateProduct)
	mux.HandleFunc("GET "+apiV1+"/products", rt.Products.ListProducts)
	mux.HandleFunc("GET "+apiV1+"/products/{id}", rt.Products.GetProduct)
	mux.HandleFunc("DELETE "+apiV1+"/products/{id}", rt.Products.DeleteProduct)

	// Movements and snapshots
	mux.HandleFunc("POST "+apiV1+"/movements", rt.Inventory.ApplyMovement)
	mux.HandleFunc("POST "+apiV1+"/transfers", rt.Inventory.Transfer)
	mux.HandleFunc("GET "+apiV1+"/snapshots", rt.Inventory.ListSnapshots)
	mux.HandleFunc("GET "+apiV1+"/snapshots/{productId}", rt.Inventory.GetSnapshot)
	mux.HandleFunc("POST "+apiV1+"/snapshots/{productId}/reconcile", rt.Inventory.Reconcile)

	// Ledger and identifiers
	mux.HandleFunc("GET "+apiV1+"/ledger", rt.Ledger.QueryLedger)
	mux.HandleFunc("GET "+apiV1+"/ledger/{id}", rt.Ledger.GetLedgerEntry)
	mux.HandleFunc("DELETE "+apiV1+"/ledger/{id}", rt.Inventory.DeleteLedgerEntry)
	mux.HandleFunc("POST "+apiV1+"/identifiers/check", rt.Ledger.CheckIdentifiers)
	mux.HandleFunc("GET "+apiV1+"/identifiers/{serial}", rt.Ledger.GetIdentifier)

	// Returns
	mux.HandleFunc("POST "+apiV1+"/returns", rt.Returns.CreateReturn)
	mux.HandleFunc("GET "+apiV1+"/returns/{id}", rt.Returns.GetReturn)
	mux.HandleFunc("POST "+apiV1+"/returns/{id}/receive", rt.Returns.ReceiveReturn)
	mux.HandleFunc("POST "+apiV1+"/returns/{id}/inspect", rt.Returns.InspectReturn)

	// Batch scan sessions
	mux.HandleFunc("POST "+apiV1+"/scan-sessions", rt.Scans.OpenSession)
	mux.HandleFunc("POST "+apiV1+"/scan-sessions/{id}/scan", rt.Scans.Scan)
	mux.HandleFunc("POST "+apiV1+"/scan-sessions/{id}/commit", rt.Scans.Commit)
	mux.HandleFunc("DELETE "+apiV1+"/scan-sessions/{id}", rt.Scans.CloseSession)

	// Import
	mux.HandleFunc("POST "+apiV1+"/import/csv", rt.Imports.ImportCSV)
	mux.HandleFunc("POST "+apiV1+"/import/excel", rt.Imports.ImportExcel)
	mux.HandleFunc("POST "+apiV1+"/import/pdf", rt.Imports.ImportPDF)
	mux.HandleFunc("GET "+apiV1+"/import/status/{jobId}", rt.Imports.ImportStatus)

	// Export
	mux.HandleFunc("GET "+apiV1+"/export/csv", rt.Exports.ExportCSV)
	mux.HandleFunc("GET "+apiV1+"/export/excel", rt.Exports.ExportExcel)
	mux.HandleFunc("POST "+apiV1+"/export/async", rt.Exports.ExportAsync)
	mux.HandleFunc("GET "+apiV1+"/export/status/{id}", rt.Exports.ExportStatus)

	mux.HandleFunc("GET "+apiV1+"/dashboard", rt.Dashboard.GetDashboard)
}
