// internal/core/domain/errors.go
package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies inventory errors so callers can react to a specific failure.
type ErrorKind string

// Error kinds
const (
	KindInsufficientStock          ErrorKind = "insufficient_stock"
	KindDuplicateIdentifier        ErrorKind = "duplicate_identifier"
	KindInvalidIdentifierState     ErrorKind = "invalid_identifier_state"
	KindQuantityIdentifierMismatch ErrorKind = "quantity_identifier_mismatch"
	KindMultiBarcodeBatch          ErrorKind = "multi_barcode_batch"
	KindUnknownIdentifier          ErrorKind = "unknown_identifier"
	KindInvalidTransition          ErrorKind = "invalid_transition"
	KindNotFound                   ErrorKind = "not_found"
	KindValidation                 ErrorKind = "validation"
)

// InventoryError is the error type returned by the ledger model.
type InventoryError struct {
	Kind        ErrorKind
	Message     string
	Identifiers []string
}

func (e *InventoryError) Error() string {
	if len(e.Identifiers) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Message, strings.Join(e.Identifiers, ", "))
}

// Is matches any InventoryError of the same kind.
func (e *InventoryError) Is(target error) bool {
	t, ok := target.(*InventoryError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Sentinels for errors.Is checks
var (
	ErrInsufficientStock          = &InventoryError{Kind: KindInsufficientStock, Message: "insufficient stock available"}
	ErrDuplicateIdentifier        = &InventoryError{Kind: KindDuplicateIdentifier, Message: "identifier already registered"}
	ErrInvalidIdentifierState     = &InventoryError{Kind: KindInvalidIdentifierState, Message: "identifier is not in the expected state"}
	ErrQuantityIdentifierMismatch = &InventoryError{Kind: KindQuantityIdentifierMismatch, Message: "identifier count does not match quantity"}
	ErrMultiBarcodeBatch          = &InventoryError{Kind: KindMultiBarcodeBatch, Message: "multi-barcode batch not allowed"}
	ErrUnknownIdentifier          = &InventoryError{Kind: KindUnknownIdentifier, Message: "identifier not found"}
	ErrInvalidTransition          = &InventoryError{Kind: KindInvalidTransition, Message: "transition not allowed"}
	ErrNotFound                   = &InventoryError{Kind: KindNotFound, Message: "not found"}
	ErrValidation                 = &InventoryError{Kind: KindValidation, Message: "validation failed"}
)

// NewInsufficientStockError reports an OUT movement larger than the available quantity.
func NewInsufficientStockError(requested, available int) *InventoryError {
	return &InventoryError{
		Kind:    KindInsufficientStock,
		Message: fmt.Sprintf("insufficient stock: requested %d, available %d", requested, available),
	}
}

// NewDuplicateIdentifierError lists every identifier that is already taken.
func NewDuplicateIdentifierError(serials ...string) *InventoryError {
	return &InventoryError{
		Kind:        KindDuplicateIdentifier,
		Message:     "identifier already registered",
		Identifiers: serials,
	}
}

// NewInvalidIdentifierStateError lists identifiers that are not in the expected status.
func NewInvalidIdentifierStateError(expected IdentifierStatus, serials ...string) *InventoryError {
	return &InventoryError{
		Kind:        KindInvalidIdentifierState,
		Message:     fmt.Sprintf("identifier not %s", expected),
		Identifiers: serials,
	}
}

// NewQuantityIdentifierMismatchError reports a quantity that disagrees with the identifier count.
func NewQuantityIdentifierMismatchError(quantity, identifiers int) *InventoryError {
	return &InventoryError{
		Kind:    KindQuantityIdentifierMismatch,
		Message: fmt.Sprintf("quantity %d does not match %d identifiers", quantity, identifiers),
	}
}

// NewMultiBarcodeBatchError reports a second distinct code in a batch movement.
func NewMultiBarcodeBatchError(codes ...string) *InventoryError {
	return &InventoryError{
		Kind:        KindMultiBarcodeBatch,
		Message:     "multi-barcode batch not allowed",
		Identifiers: codes,
	}
}

// NewUnknownIdentifierError lists identifiers with no registry row.
func NewUnknownIdentifierError(serials ...string) *InventoryError {
	return &InventoryError{
		Kind:        KindUnknownIdentifier,
		Message:     "identifier not found",
		Identifiers: serials,
	}
}

// NewInvalidTransitionError reports a lifecycle transition that is not permitted.
func NewInvalidTransitionError(from, to string) *InventoryError {
	return &InventoryError{
		Kind:    KindInvalidTransition,
		Message: fmt.Sprintf("cannot transition from %s to %s", from, to),
	}
}

// NewAlreadyAppliedError reports a second movement recorded under a reference
// that already has one.
func NewAlreadyAppliedError(ref string) *InventoryError {
	return &InventoryError{
		Kind:    KindInvalidTransition,
		Message: fmt.Sprintf("movement %s already applied", ref),
	}
}

// NewNotFoundError reports a missing entity.
func NewNotFoundError(entity, id string) *InventoryError {
	return &InventoryError{
		Kind:    KindNotFound,
		Message: fmt.Sprintf("%s not found: %s", entity, id),
	}
}

// NewValidationError reports bad input.
func NewValidationError(format string, args ...interface{}) *InventoryError {
	return &InventoryError{
		Kind:    KindValidation,
		Message: fmt.Sprintf(format, args...),
	}
}

// KindOf returns the kind of an inventory error, or an empty kind for anything else.
func KindOf(err error) ErrorKind {
	var invErr *InventoryError
	if errors.As(err, &invErr) {
		return invErr.Kind
	}
	return ""
}
