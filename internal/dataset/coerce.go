package dataset

import (
	"fmt"
	"strings"
	"time"

	"presupuesto/internal/core"
)

// RequiredColumns must all be present, by canonical name, before any row
// coercion starts.
var RequiredColumns = []string{ColDate, ColCategory, ColConcept, ColAmount, ColStatus}

// Row is a coerced row awaiting derivation. HasTax and HasTotal record
// whether the source supplied explicit derived values; derivation recomputes
// anything the source did not provide.
type Row struct {
	Record   core.Record
	HasTax   bool
	HasTotal bool
}

// Layouts tried by ParseDate, most specific first. Day-first forms match the
// Spanish source data; ISO forms match file imports.
var dateLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"2-1-2006",
	"02/01/06",
	"2 Jan 2006",
	"Jan 2, 2006",
	"January 2, 2006",
}

// ParseDate parses a date cell permissively against the known layouts.
func ParseDate(s string) (core.Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return core.Date{}, core.ErrInvalidDate
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return core.NewDate(t.Year(), int(t.Month()), t.Day()), nil
		}
	}
	return core.Date{}, core.ErrInvalidDate
}

// Affirmative sentinels accepted for the TaxApplies column.
var affirmatives = map[string]struct{}{
	"TRUE": {}, "YES": {}, "SI": {}, "SÍ": {}, "X": {}, "1": {}, "APLICA": {},
}

func parseAffirmative(s string) bool {
	_, ok := affirmatives[core.NormalizeKey(s)]
	return ok
}

// CoerceRows validates the normalized table against the required column set
// and coerces every row independently into a typed Row.
//
// A missing required column is fatal and returns a *SchemaError. Rows whose
// date or amount fail to parse are dropped, not kept with nulls: downstream
// aggregation needs a valid month and amount, and undated rows would
// silently corrupt month buckets. Rows failing record validation (empty
// category, concept, or status) are dropped under the same accounting. Every
// drop is counted and given a reason in the DropReport.
func CoerceRows(t RawTable) ([]Row, DropReport, error) {
	var missing []string
	for _, col := range RequiredColumns {
		if t.ColumnIndex(col) < 0 {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, DropReport{}, &SchemaError{
			Missing: missing,
			Present: append([]string(nil), t.Header...),
		}
	}

	var (
		dateCol   = t.ColumnIndex(ColDate)
		catCol    = t.ColumnIndex(ColCategory)
		subCol    = t.ColumnIndex(ColSubcategory)
		conCol    = t.ColumnIndex(ColConcept)
		amtCol    = t.ColumnIndex(ColAmount)
		statCol   = t.ColumnIndex(ColStatus)
		taxAppCol = t.ColumnIndex(ColTaxApplies)
		taxCol    = t.ColumnIndex(ColTaxAmount)
		totCol    = t.ColumnIndex(ColTotal)
	)

	report := DropReport{Input: len(t.Rows)}
	rows := make([]Row, 0, len(t.Rows))
	for i, raw := range t.Rows {
		date, err := ParseDate(t.Cell(raw, dateCol))
		if err != nil {
			report.drop(i, fmt.Sprintf("unparseable date %q", t.Cell(raw, dateCol)))
			continue
		}
		cents, err := core.ParseSignedDecimalToCents(t.Cell(raw, amtCol))
		if err != nil {
			report.drop(i, fmt.Sprintf("unparseable amount %q", t.Cell(raw, amtCol)))
			continue
		}

		rec := core.Record{
			Date:        date,
			Category:    strings.TrimSpace(t.Cell(raw, catCol)),
			Subcategory: strings.TrimSpace(t.Cell(raw, subCol)),
			Concept:     strings.TrimSpace(t.Cell(raw, conCol)),
			Amount:      core.Money{Cents: cents},
			Status:      core.ParseStatus(t.Cell(raw, statCol)),
		}
		if taxAppCol >= 0 {
			rec.TaxApplies = parseAffirmative(t.Cell(raw, taxAppCol))
		}

		row := Row{Record: rec}
		if taxCol >= 0 {
			if v, err := core.ParseSignedDecimalToCents(t.Cell(raw, taxCol)); err == nil {
				row.Record.Tax = core.Money{Cents: v}
				row.HasTax = true
			}
		}
		if totCol >= 0 {
			if v, err := core.ParseSignedDecimalToCents(t.Cell(raw, totCol)); err == nil {
				row.Record.Total = core.Money{Cents: v}
				row.HasTotal = true
			}
		}

		if err := row.Record.Validate(); err != nil {
			report.drop(i, err.Error())
			continue
		}
		rows = append(rows, row)
	}
	return rows, report, nil
}

func (r *DropReport) drop(rowIdx int, reason string) {
	r.Dropped++
	r.Reasons = append(r.Reasons, fmt.Sprintf("row %d: %s", rowIdx+1, reason))
}

// RowsFromRecords re-wraps already-canonical records for another derivation
// pass, marking their derived fields as source-provided. Used when edited
// records re-enter the pipeline.
func RowsFromRecords(records []core.Record) []Row {
	rows := make([]Row, len(records))
	for i, rec := range records {
		rows[i] = Row{Record: rec, HasTax: true, HasTotal: true}
	}
	return rows
}
