// Package dataset implements the normalization pipeline that turns raw
// tabular input into canonical expense records: schema normalization, type
// coercion with drop accounting, and derived-field computation. Each stage is
// a pure function over its input; nothing mutates upstream data.
package dataset

import (
	"strconv"
	"strings"

	"presupuesto/internal/core"
)

// Canonical column names after schema normalization.
const (
	ColDate        = "Date"
	ColCategory    = "Category"
	ColSubcategory = "Subcategory"
	ColConcept     = "Concept"
	ColAmount      = "Amount"
	ColTaxApplies  = "TaxApplies"
	ColTaxAmount   = "TaxAmount"
	ColTotal       = "TotalWithTax"
	ColStatus      = "Status"
	ColMonthNumber = "MonthNumber"
	ColMonthLabel  = "MonthLabel"
	ColYear        = "Year"
)

// RawTable is an ordered tabular payload as handed over by a storage
// collaborator: a header row plus string cells. Rows may be ragged; missing
// trailing cells read as "".
type RawTable struct {
	Header []string
	Rows   [][]string
}

// ColumnIndex returns the position of a canonical column, or -1.
func (t RawTable) ColumnIndex(name string) int {
	for i, h := range t.Header {
		if h == name {
			return i
		}
	}
	return -1
}

// Cell returns row[col] or "" when the row is shorter than the header.
func (t RawTable) Cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return row[col]
}

// Clone returns a deep copy, so adapters can hand out snapshots without
// sharing backing arrays.
func (t RawTable) Clone() RawTable {
	out := RawTable{Header: append([]string(nil), t.Header...)}
	out.Rows = make([][]string, len(t.Rows))
	for i, r := range t.Rows {
		out.Rows[i] = append([]string(nil), r...)
	}
	return out
}

// canonicalHeader is the column order used when serializing records back to
// tabular form, derived columns included (the save contract is full-replace
// of the whole canonical set).
var canonicalHeader = []string{
	ColDate, ColCategory, ColSubcategory, ColConcept, ColAmount,
	ColTaxApplies, ColTaxAmount, ColTotal, ColStatus,
	ColMonthNumber, ColMonthLabel, ColYear,
}

// TableFromRecords serializes canonical records into a RawTable with all
// cells stringified, ready for a full-replace write to storage.
func TableFromRecords(records []core.Record) RawTable {
	t := RawTable{Header: append([]string(nil), canonicalHeader...)}
	t.Rows = make([][]string, 0, len(records))
	for _, r := range records {
		t.Rows = append(t.Rows, []string{
			r.Date.ISO(),
			r.Category,
			r.Subcategory,
			r.Concept,
			r.Amount.Decimal(),
			strconv.FormatBool(r.TaxApplies),
			r.Tax.Decimal(),
			r.Total.Decimal(),
			r.Status.Label,
			strconv.Itoa(r.Month()),
			r.MonthLabel,
			strconv.Itoa(r.Date.Year()),
		})
	}
	return t
}

// foldHeader is the case-insensitive form used for synonym lookups and
// duplicate detection.
func foldHeader(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
