package inventory

import (
	"errors"
	"fmt"
)

// Domain errors for the inventory aggregates.
var (
	ErrAdSpaceNotFound       = errors.New("adspace does not exist")
	ErrAdNotFound            = errors.New("no such ad")
	ErrInvalidParent         = errors.New("adspace does not exist for this ad")
	ErrInvalidImagePayload   = errors.New("invalid image payload")
	ErrInvalidAttributeValue = errors.New("unsupported attribute value")
)

// StoreError wraps a failure from the item or blob store so callers see one
// taxonomy member instead of backend-specific error shapes.
type StoreError struct {
	Op    string
	Table string
	Err   error
}

func (e *StoreError) Error() string {
	if e.Table != "" {
		return fmt.Sprintf("store %s on %s: %v", e.Op, e.Table, e.Err)
	}
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// NewStoreError builds a StoreError for the given operation.
func NewStoreError(op, table string, err error) *StoreError {
	return &StoreError{Op: op, Table: table, Err: err}
}

// PartialDeleteError reports a cascade delete that removed the AdSpace but
// failed before its Ads were cleaned up. The Ads are orphaned until retried.
type PartialDeleteError struct {
	AdSpaceID string
	Err       error
}

func (e *PartialDeleteError) Error() string {
	return fmt.Sprintf("adspace %s deleted but ad cleanup failed: %v", e.AdSpaceID, e.Err)
}

func (e *PartialDeleteError) Unwrap() error { return e.Err }
