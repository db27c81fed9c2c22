// test/benchmarks/helpers.go
package benchmarks

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/google/uuid"

	"github.com/ammerola/stockledger/internal/adapters/memory"
	"github.com/ammerola/stockledger/internal/core/domain"
	"github.com/ammerola/stockledger/internal/core/services"
)

// benchEnv wires the services over the in-memory store
type benchEnv struct {
	store    *memory.Store
	registry *services.IdentifierRegistry
	engine   *services.ReconciliationEngine
	imports  *services.ImportService
}

func newBenchEnv() *benchEnv {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := memory.NewStore()
	registry := services.NewIdentifierRegistry(store, logger)
	engine := services.NewReconciliationEngine(store, registry, nil, logger)
	return &benchEnv{
		store:    store,
		registry: registry,
		engine:   engine,
		imports:  services.NewImportService(store, engine, registry, logger),
	}
}

// product stores a product and returns it
func (e *benchEnv) product(productType domain.ProductType, name string) (*domain.Product, error) {
	p := &domain.Product{
		WarehouseID: uuid.New(),
		ClientID:    uuid.New(),
		Name:        name,
		Type:        productType,
	}
	p.PrepareForStorage()
	if err := e.store.Repositories().Products.Create(context.Background(), p); err != nil {
		return nil, err
	}
	return p, nil
}

// ledgerHistory builds n alternating stock-in and dispatch entries for key
func ledgerHistory(key domain.SnapshotKey, n int) []domain.LedgerEntry {
	entries := make([]domain.LedgerEntry, n)
	for i := range entries {
		entries[i] = domain.LedgerEntry{
			ID:              uuid.New(),
			Sequence:        int64(i + 1),
			WarehouseID:     key.WarehouseID,
			ProductID:       key.ProductID,
			ClientID:        key.ClientID,
			MovementType:    domain.MovementIn,
			MovementSubtype: domain.SubtypeStockIn,
			Quantity:        2,
		}
		if i%2 == 1 {
			entries[i].MovementType = domain.MovementOut
			entries[i].MovementSubtype = domain.SubtypeDispatch
			entries[i].Quantity = 1
		}
	}
	return entries
}

// createImportCSV renders n serialized rows with one serial each
func createImportCSV(n int) []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Write([]string{"Product Name", "SKU", "Unit Cost", "Quantity", "Product Type", "Barcode or Serials"})
	for i := 0; i < n; i++ {
		w.Write([]string{
			fmt.Sprintf("Handset %d", i%10),
			fmt.Sprintf("HS-%03d", i%10),
			"$199.00",
			"1",
			"SERIALIZED",
			"SN-" + strconv.Itoa(i),
		})
	}
	w.Flush()
	return buf.Bytes()
}

// createManifestLines simulates the extracted text of a packing manifest
func createManifestLines(numItems int) []string {
	lines := []string{
		"ACME SUPPLY CO - PACKING MANIFEST",
		"PO 4471 SHIP DATE 2026-03-02",
		"SKU DESCRIPTION QTY",
	}

	descriptions := []string{
		"USB-C charging cable 1m",
		"Noise cancelling headphones",
		"Stainless travel mug",
		"Bluetooth speaker mini",
		"Laptop sleeve 13 inch",
	}

	for i := 0; i < numItems; i++ {
		lines = append(lines, fmt.Sprintf("SKU-%04d   %s   %d", i+1, descriptions[i%len(descriptions)], 1+i%5))
		switch i % 3 {
		case 0:
			lines = append(lines, fmt.Sprintf("S/N: A%04d, B%04d", i, i))
		case 1:
			lines = append(lines, fmt.Sprintf("LOT: L%04d", i))
		}
	}
	return append(lines, "TOTAL UNITS "+strconv.Itoa(numItems*3))
}
