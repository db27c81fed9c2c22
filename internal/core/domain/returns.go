// internal/core/domain/returns.go
package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ReturnStatus is the inspection state of a return request
type ReturnStatus string

// Return status constants
const (
	ReturnRequested   ReturnStatus = "REQUESTED"
	ReturnReceived    ReturnStatus = "RECEIVED"
	ReturnApproved    ReturnStatus = "APPROVED"
	ReturnRejected    ReturnStatus = "REJECTED"
	ReturnQuarantined ReturnStatus = "QUARANTINED"
	ReturnRepair      ReturnStatus = "REPAIR"
	ReturnWrittenOff  ReturnStatus = "WRITTEN_OFF"
)

// IsTerminal reports whether the status is an inspection outcome.
func (s ReturnStatus) IsTerminal() bool {
	switch s {
	case ReturnApproved, ReturnRejected, ReturnQuarantined, ReturnRepair, ReturnWrittenOff:
		return true
	}
	return false
}

// ParseReturnOutcome normalizes an inspection outcome.
func ParseReturnOutcome(s string) (ReturnStatus, error) {
	status := ReturnStatus(strings.ToUpper(strings.TrimSpace(s)))
	if !status.IsTerminal() {
		return "", NewValidationError("unknown inspection outcome %q", s)
	}
	return status, nil
}

// ReturnRequest tracks units coming back from a client's customer
type ReturnRequest struct {
	ID              uuid.UUID      `json:"id"`
	WarehouseID     uuid.UUID      `json:"warehouse_id"`
	ClientID        uuid.UUID      `json:"client_id"`
	ProductID       uuid.UUID      `json:"product_id"`
	Quantity        int            `json:"quantity"`
	Identifiers     []string       `json:"identifiers,omitempty"`
	Reason          string         `json:"reason"`
	Status          ReturnStatus   `json:"status"`
	Condition       *ItemCondition `json:"condition,omitempty"`
	InspectionNotes string         `json:"inspection_notes,omitempty"`
	InspectedBy     string         `json:"inspected_by,omitempty"`
	InspectedAt     *time.Time     `json:"inspected_at,omitempty"`
	ReceivedAt      *time.Time     `json:"received_at,omitempty"`
	LedgerEntryID   *uuid.UUID     `json:"ledger_entry_id,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// Validate performs domain validation on the return request
func (r *ReturnRequest) Validate() error {
	if r.WarehouseID == uuid.Nil || r.ClientID == uuid.Nil || r.ProductID == uuid.Nil {
		return NewValidationError("warehouse_id, client_id and product_id are required")
	}
	if r.Quantity < 1 {
		return NewValidationError("quantity must be at least 1")
	}
	if strings.TrimSpace(r.Reason) == "" {
		return NewValidationError("reason is required")
	}
	return nil
}

// PrepareForStorage sets the id, timestamps and the initial status. A request
// created with a receipt time starts as RECEIVED.
func (r *ReturnRequest) PrepareForStorage() {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	now := time.Now().UTC()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	r.UpdatedAt = now
	if r.ReceivedAt != nil {
		r.Status = ReturnReceived
	} else {
		r.Status = ReturnRequested
	}
}

// Key returns the snapshot key the return restocks into.
func (r *ReturnRequest) Key() SnapshotKey {
	return SnapshotKey{WarehouseID: r.WarehouseID, ProductID: r.ProductID, ClientID: r.ClientID}
}

// Receive marks the goods as physically received.
func (r *ReturnRequest) Receive(at time.Time) error {
	if r.Status != ReturnRequested {
		return NewInvalidTransitionError(string(r.Status), string(ReturnReceived))
	}
	r.Status = ReturnReceived
	r.ReceivedAt = &at
	r.UpdatedAt = at
	return nil
}

// Inspect records the inspection outcome. Inspecting a return that already has
// an outcome is rejected so an approval can never restock twice.
func (r *ReturnRequest) Inspect(outcome ReturnStatus, condition ItemCondition, notes, inspector string, at time.Time) error {
	if r.Status.IsTerminal() {
		return NewInvalidTransitionError(string(r.Status), string(outcome))
	}
	if !outcome.IsTerminal() {
		return NewInvalidTransitionError(string(r.Status), string(outcome))
	}
	if condition == "" {
		condition = ConditionGood
	}
	r.Status = outcome
	r.Condition = &condition
	r.InspectionNotes = notes
	r.InspectedBy = inspector
	r.InspectedAt = &at
	r.UpdatedAt = at
	return nil
}

// RestockMovement is the IN/RETURN movement an approved return applies.
func (r *ReturnRequest) RestockMovement() Return {
	condition := ConditionGood
	if r.Condition != nil {
		condition = *r.Condition
	}
	return Return{
		MovementLine: MovementLine{
			Key:         r.Key(),
			Quantity:    r.Quantity,
			Identifiers: r.Identifiers,
			Notes:       "return " + r.ID.String() + ": " + r.Reason,
			CreatedBy:   r.InspectedBy,
		},
		ItemCondition: condition,
		ReturnID:      r.ID,
	}
}
