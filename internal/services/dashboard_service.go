// Package services orchestrates the dashboard session: loading raw tables
// through the pipeline into an immutable snapshot, answering report queries
// over it, and writing edits back through the same validation chain.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"presupuesto/internal/backend"
	"presupuesto/internal/config"
	"presupuesto/internal/core"
	"presupuesto/internal/dataset"
	"presupuesto/internal/report"
)

// DatasetPublisher notifies downstream consumers that the canonical set was
// rewritten. Publishing is best-effort: a broker failure never fails a save.
type DatasetPublisher interface {
	PublishDatasetReplaced(ctx context.Context, rows int, source string) error
}

// DashboardService holds the session's canonical snapshot. One operation
// runs at a time: queries take a read lock over the immutable record slice,
// mutations swap the whole slice under the write lock. Records are never
// edited in place.
type DashboardService struct {
	mu        sync.RWMutex
	backend   backend.Backend
	publisher DatasetPublisher
	taxRateBP int64
	locale    core.MonthLocale
	synonyms  map[string]string

	records []core.Record
	drops   dataset.DropReport
	budget  config.BudgetTable
}

func NewDashboardService(b backend.Backend, publisher DatasetPublisher, taxRateBP int64, locale core.MonthLocale) *DashboardService {
	return &DashboardService{
		backend:   b,
		publisher: publisher,
		taxRateBP: taxRateBP,
		locale:    locale,
		synonyms:  dataset.DefaultSynonyms,
		budget: config.BudgetTable{
			Categories:  map[string]core.Money{},
			MonthlyCaps: map[int]core.Money{},
		},
	}
}

// Reload pulls the raw table from storage and rebuilds the snapshot through
// normalize, coerce, and derive. A storage or schema failure halts the
// reload and leaves the previous snapshot untouched.
func (s *DashboardService) Reload(ctx context.Context) (dataset.DropReport, error) {
	raw, err := s.backend.LoadTable(ctx)
	if err != nil {
		return dataset.DropReport{}, err
	}
	records, drops, err := dataset.BuildRecords(raw, s.synonyms, s.taxRateBP, s.locale)
	if err != nil {
		return drops, err
	}

	s.mu.Lock()
	s.records = records
	s.drops = drops
	s.mu.Unlock()

	slog.InfoContext(ctx, "Dataset reloaded",
		"rows_in", drops.Input,
		"rows_kept", drops.Kept(),
		"rows_dropped", drops.Dropped)
	return drops, nil
}

// Records returns a copy of the canonical snapshot.
func (s *DashboardService) Records() []core.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.Record(nil), s.records...)
}

// DropReport returns the accounting from the last reload.
func (s *DashboardService) DropReport() dataset.DropReport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.drops
}

// Summary aggregates the filtered snapshot.
func (s *DashboardService) Summary(f report.Filter) report.Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return report.Summarize(s.records, f, s.locale)
}

// MonthComparison contrasts the given current month with the previous one.
func (s *DashboardService) MonthComparison(f report.Filter, currentMonth int) report.MonthComparison {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return report.CompareMonths(s.records, f, currentMonth, s.locale)
}

// SetBudget replaces the session's budget table.
func (s *DashboardService) SetBudget(table config.BudgetTable) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.budget = table
}

// BudgetReport joins filtered actuals against the session budget.
func (s *DashboardService) BudgetReport(f report.Filter) report.BudgetReport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	summary := report.Summarize(s.records, f, s.locale)
	return report.CompareBudget(summary.ByCategory, s.budget.Categories)
}

// MonthCapReport joins filtered per-month actuals against the configured caps.
func (s *DashboardService) MonthCapReport(f report.Filter) []report.MonthCapRow {
	s.mu.RLock()
	defer s.mu.RUnlock()
	summary := report.Summarize(s.records, f, s.locale)
	return report.CompareMonthCaps(summary.ByMonth, s.budget.MonthlyCaps, s.locale)
}

// AddRecord validates and derives the record, appends it to the snapshot,
// and persists the whole set. The record goes through the same chain as
// loaded rows; an invalid record is rejected before anything changes.
func (s *DashboardService) AddRecord(ctx context.Context, rec core.Record) error {
	if err := rec.Validate(); err != nil {
		return fmt.Errorf("validate record: %w", err)
	}
	derived := dataset.ApplyDerived([]dataset.Row{{Record: rec}}, s.taxRateBP, s.locale)

	s.mu.Lock()
	next := append(append([]core.Record(nil), s.records...), derived[0])
	s.mu.Unlock()

	return s.persist(ctx, next, "add")
}

// UpdateRecord replaces the record at index after re-validating it.
func (s *DashboardService) UpdateRecord(ctx context.Context, index int, rec core.Record) error {
	if err := rec.Validate(); err != nil {
		return fmt.Errorf("validate record: %w", err)
	}
	derived := dataset.ApplyDerived([]dataset.Row{{Record: rec}}, s.taxRateBP, s.locale)

	s.mu.Lock()
	if index < 0 || index >= len(s.records) {
		s.mu.Unlock()
		return fmt.Errorf("record index %d out of range (have %d)", index, len(s.records))
	}
	next := append([]core.Record(nil), s.records...)
	next[index] = derived[0]
	s.mu.Unlock()

	return s.persist(ctx, next, "update")
}

// Save persists the current snapshot unchanged (used after budget edits that
// the caller wants written alongside the data).
func (s *DashboardService) Save(ctx context.Context) error {
	s.mu.RLock()
	next := append([]core.Record(nil), s.records...)
	s.mu.RUnlock()
	return s.persist(ctx, next, "save")
}

// persist serializes the full canonical set, derived columns included, and
// hands it to the backend's full-replace write. On success the in-memory
// snapshot is swapped; on failure it stays as it was and the caller reports
// the unsaved edit.
func (s *DashboardService) persist(ctx context.Context, records []core.Record, source string) error {
	table := dataset.TableFromRecords(records)
	if err := s.backend.ReplaceTable(ctx, table); err != nil {
		return err
	}

	s.mu.Lock()
	s.records = records
	s.mu.Unlock()

	if s.publisher != nil {
		if err := s.publisher.PublishDatasetReplaced(ctx, len(records), source); err != nil {
			slog.WarnContext(ctx, "Dataset publish failed, sheet sync deferred", "error", err)
		}
	}
	return nil
}
