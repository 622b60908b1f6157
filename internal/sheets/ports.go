package sheets

import (
	"context"
	"fmt"

	"presupuesto/internal/dataset"
)

// Ports for the tabular storage collaborators. Load is a single attempt:
// callers halt and surface the error rather than retrying silently. Replace
// has full clear-and-rewrite semantics; the caller serializes the whole
// canonical set, derived columns included, before handing it over.
type (
	TableLoader interface {
		LoadTable(ctx context.Context) (dataset.RawTable, error)
	}

	TableReplacer interface {
		ReplaceTable(ctx context.Context, t dataset.RawTable) error
	}
)

// StorageError wraps a load/save collaborator failure. It is fatal to the
// action that triggered it: a failed load halts the session's processing, a
// failed save leaves the in-memory data unpersisted.
type StorageError struct {
	Op  string // "load" or "save"
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
