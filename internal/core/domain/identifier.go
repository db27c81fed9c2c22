// internal/core/domain/identifier.go
package domain

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// IdentifierStatus is the lifecycle state of a serialized unit
type IdentifierStatus string

// Identifier status constants
const (
	IdentifierInStock     IdentifierStatus = "IN_STOCK"
	IdentifierDispatched  IdentifierStatus = "DISPATCHED"
	IdentifierTransferred IdentifierStatus = "TRANSFERRED"
)

// Identifier tracks one serial number within a warehouse
type Identifier struct {
	WarehouseID  uuid.UUID        `json:"warehouse_id"`
	ProductID    uuid.UUID        `json:"product_id"`
	ClientID     uuid.UUID        `json:"client_id"`
	SerialNumber string           `json:"serial_number"`
	Status       IdentifierStatus `json:"status"`
	LastLedgerID uuid.UUID        `json:"last_ledger_id"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// CanTransition reports whether a serial may move from one status to another
// as part of a movement with the given subtype.
func CanTransition(from, to IdentifierStatus, subtype MovementSubtype) bool {
	switch {
	case from == IdentifierInStock && to == IdentifierDispatched:
		return true
	case from == IdentifierInStock && to == IdentifierTransferred:
		return subtype == SubtypeTransfer
	case from == IdentifierDispatched && to == IdentifierInStock:
		return subtype == SubtypeReturn
	case from == IdentifierTransferred && to == IdentifierInStock:
		return subtype == SubtypeTransfer
	default:
		return false
	}
}

// IdentifierConflict describes why a serial cannot be registered.
type IdentifierConflict struct {
	SerialNumber string            `json:"serial_number"`
	Reason       string            `json:"reason"`
	ProductID    *uuid.UUID        `json:"product_id,omitempty"`
	Status       *IdentifierStatus `json:"status,omitempty"`
}

// Conflict reasons
const (
	ConflictRegistered = "already_registered"
	ConflictRepeated   = "repeated_in_request"
)

var identifierSeparator = regexp.MustCompile(`[,;\s\n]+`)

// SplitIdentifiers splits a raw barcode/serial cell into individual values.
func SplitIdentifiers(raw string) []string {
	parts := identifierSeparator.Split(strings.TrimSpace(raw), -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// DistinctIdentifiers returns values in first-seen order and the values seen more than once.
func DistinctIdentifiers(values []string) (distinct []string, repeated []string) {
	seen := make(map[string]int, len(values))
	for _, v := range values {
		seen[v]++
		switch seen[v] {
		case 1:
			distinct = append(distinct, v)
		case 2:
			repeated = append(repeated, v)
		}
	}
	return distinct, repeated
}
