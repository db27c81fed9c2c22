// internal/core/domain/scan_session.go
package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ScanSessionStatus is the state of a batch scan session
type ScanSessionStatus string

// Scan session status constants
const (
	SessionOpen      ScanSessionStatus = "OPEN"
	SessionCommitted ScanSessionStatus = "COMMITTED"
	SessionClosed    ScanSessionStatus = "CLOSED"
)

// ScanSession accumulates repeated scans of one batch barcode. Sessions are
// advisory and may be abandoned; nothing is written to the ledger until commit.
type ScanSession struct {
	ID          uuid.UUID         `json:"id"`
	WarehouseID uuid.UUID         `json:"warehouse_id"`
	ProductID   uuid.UUID         `json:"product_id"`
	ClientID    uuid.UUID         `json:"client_id"`
	Direction   MovementType      `json:"direction"`
	Barcode     string            `json:"barcode,omitempty"`
	Count       int               `json:"count"`
	Status      ScanSessionStatus `json:"status"`
	CreatedBy   string            `json:"created_by,omitempty"`
	OpenedAt    time.Time         `json:"opened_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// NewScanSession opens a session for a BATCH product.
func NewScanSession(key SnapshotKey, direction MovementType, createdBy string) *ScanSession {
	now := time.Now().UTC()
	if direction == "" {
		direction = MovementIn
	}
	return &ScanSession{
		ID:          uuid.New(),
		WarehouseID: key.WarehouseID,
		ProductID:   key.ProductID,
		ClientID:    key.ClientID,
		Direction:   direction,
		Status:      SessionOpen,
		CreatedBy:   createdBy,
		OpenedAt:    now,
		UpdatedAt:   now,
	}
}

// Key returns the snapshot key of the scanned product.
func (s *ScanSession) Key() SnapshotKey {
	return SnapshotKey{WarehouseID: s.WarehouseID, ProductID: s.ProductID, ClientID: s.ClientID}
}

// Scan counts one scan. The first code fixes the session barcode; any other
// code is rejected before anything is written.
func (s *ScanSession) Scan(code string) error {
	if s.Status != SessionOpen {
		return NewInvalidTransitionError(string(s.Status), "SCAN")
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return NewValidationError("barcode is required")
	}
	if s.Barcode == "" {
		s.Barcode = code
	} else if s.Barcode != code {
		return NewMultiBarcodeBatchError(s.Barcode, code)
	}
	s.Count++
	s.UpdatedAt = time.Now().UTC()
	return nil
}

// Scans returns the scanned values, one per scan.
func (s *ScanSession) Scans() []string {
	out := make([]string, s.Count)
	for i := range out {
		out[i] = s.Barcode
	}
	return out
}

// Finish moves an open session to a final status.
func (s *ScanSession) Finish(status ScanSessionStatus) error {
	if s.Status != SessionOpen {
		return NewInvalidTransitionError(string(s.Status), string(status))
	}
	s.Status = status
	s.UpdatedAt = time.Now().UTC()
	return nil
}
