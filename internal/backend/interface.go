package backend

import (
	"context"

	"presupuesto/internal/sheets"
)

// Backend is the unified storage surface the dashboard talks to.
type Backend interface {
	sheets.TableLoader
	sheets.TableReplacer
}

// CleanupFunc releases backend resources.
type CleanupFunc func() error

// BackendResult pairs a backend with its optional cleanup.
type BackendResult struct {
	Backend Backend
	Cleanup CleanupFunc
}

// Factory creates backends from configuration.
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds backend creation settings.
type Config struct {
	Type BackendType

	// SQLite
	SQLiteDBPath string

	// Google Sheets (credentials come from the environment)
	GoogleSpreadsheetID string
	GoogleSheetName     string

	// Memory
	SeedCSVPath string
}

// BackendType selects the storage implementation.
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	SheetsBackend BackendType = "sheets"
	MemoryBackend BackendType = "memory"
)

func (bt BackendType) String() string {
	return string(bt)
}

// IsValid reports whether the backend type is known.
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, SheetsBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
