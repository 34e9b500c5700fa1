package reconcile

import (
	"errors"
	"fmt"
)

// Precondition failures. All are detected before any mutation; the store is
// untouched when one of these is returned.
var (
	ErrInvalidQuantity   = errors.New("quantity must be greater than zero")
	ErrLineNotFound      = errors.New("order line not found")
	ErrDeliveryNotFound  = errors.New("delivery not found")
	ErrDuplicateDelivery = errors.New("duplicate delivery request")
)

// ErrStoreUnavailable wraps transport and timeout errors from the record
// store. The caller decides whether to retry; the service never retries on its
// own to avoid double-spending quantity.
var ErrStoreUnavailable = errors.New("record store unavailable")

// InsufficientQuantityError reports that a delivery asked for more than the
// line has left. Remaining is included so the caller can retry with a valid
// amount.
type InsufficientQuantityError struct {
	LineID    uint
	Remaining int
	Requested int
}

func (e *InsufficientQuantityError) Error() string {
	return fmt.Sprintf("insufficient quantity on line %d: %d available, %d requested", e.LineID, e.Remaining, e.Requested)
}

// ReconciliationFailedError means the line update failed after the delivery
// insert, and the compensating delete succeeded. Net effect is zero; the
// operation is safe to retry.
type ReconciliationFailedError struct {
	LineID uint
	Cause  error
}

func (e *ReconciliationFailedError) Error() string {
	return fmt.Sprintf("delivery reconciliation failed for line %d, no changes applied: %v", e.LineID, e.Cause)
}

func (e *ReconciliationFailedError) Unwrap() error { return e.Cause }

// CompensationFailedError means the line update failed AND the compensating
// delete failed: a delivery row exists whose quantity was never taken off the
// line. Manual reconciliation is required; the ledger audit will flag the line.
type CompensationFailedError struct {
	DeliveryID uint
	LineID     uint
	UpdateErr  error
	DeleteErr  error
}

func (e *CompensationFailedError) Error() string {
	return fmt.Sprintf("compensation failed: delivery %d recorded but line %d was not decremented (update: %v, compensating delete: %v); manual reconciliation required",
		e.DeliveryID, e.LineID, e.UpdateErr, e.DeleteErr)
}

// QuantityRestoreFailedError means a delivery was deleted but the quantity
// restore on its line failed. The delivery is not re-created: re-inserting a
// deleted record changes its identity and timestamp and is not a safe
// compensation. Manual correction may be needed.
type QuantityRestoreFailedError struct {
	DeliveryID uint
	LineID     uint
	Quantity   int
	Cause      error
}

func (e *QuantityRestoreFailedError) Error() string {
	return fmt.Sprintf("delivery %d removed but %d units were not restored to line %d: %v; manual correction may be needed",
		e.DeliveryID, e.Quantity, e.LineID, e.Cause)
}

func (e *QuantityRestoreFailedError) Unwrap() error { return e.Cause }

func storeErr(err error) error {
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}
