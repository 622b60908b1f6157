// Package memory is an in-memory table store for tests and local
// development, optionally seeded from a CSV file.
package memory

import (
	"context"
	"encoding/csv"
	"os"
	"sync"

	"presupuesto/internal/dataset"
	ports "presupuesto/internal/sheets"
)

type Store struct {
	mu    sync.Mutex
	table dataset.RawTable
}

var (
	_ ports.TableLoader   = (*Store)(nil)
	_ ports.TableReplacer = (*Store)(nil)
)

func New(t dataset.RawTable) *Store {
	return &Store{table: t.Clone()}
}

// NewFromCSV seeds the store from a CSV file; a missing or unreadable file
// yields an empty store rather than an error, mirroring an empty sheet.
func NewFromCSV(path string) *Store {
	f, err := os.Open(path)
	if err != nil {
		return &Store{}
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil || len(rows) == 0 {
		return &Store{}
	}
	t := dataset.RawTable{Header: rows[0], Rows: rows[1:]}
	return New(t)
}

// LoadTable returns a snapshot copy of the stored table.
func (s *Store) LoadTable(_ context.Context) (dataset.RawTable, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.table.Clone(), nil
}

// ReplaceTable swaps the stored table for a copy of the given one.
func (s *Store) ReplaceTable(_ context.Context, t dataset.RawTable) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.table = t.Clone()
	return nil
}
