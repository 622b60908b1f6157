package dataset

import "presupuesto/internal/core"

// DefaultTaxRateBP is the fixed tax surcharge in basis points (16%).
const DefaultTaxRateBP int64 = 1600

// ApplyDerived completes each coerced row into a canonical record.
//
// Tax is taken from the source when the row supplied one; otherwise it is
// computed as amount x rate when TaxApplies, else zero. The total is never
// trusted when it disagrees with amount + tax: a stale derived column is
// recomputed from the authoritative inputs, so the stored pair is always
// arithmetically consistent. Month labels are always recomputed from the
// date. The whole pass is idempotent: re-deriving already-derived records
// reproduces the same values.
func ApplyDerived(rows []Row, taxRateBP int64, locale core.MonthLocale) []core.Record {
	records := make([]core.Record, 0, len(rows))
	for _, row := range rows {
		rec := row.Record
		if !row.HasTax {
			if rec.TaxApplies {
				rec.Tax = rec.Amount.TaxAt(taxRateBP)
			} else {
				rec.Tax = core.Money{}
			}
		}
		if want := rec.Amount.Add(rec.Tax); !row.HasTotal || rec.Total != want {
			rec.Total = want
		}
		rec.MonthLabel = core.MonthName(rec.Month(), locale)
		records = append(records, rec)
	}
	return records
}

// BuildRecords runs the full pipeline over a raw table: schema
// normalization, coercion with drop accounting, then derivation. This is the
// one entry point storage loads go through.
func BuildRecords(t RawTable, synonyms map[string]string, taxRateBP int64, locale core.MonthLocale) ([]core.Record, DropReport, error) {
	normalized := NormalizeSchema(t, synonyms)
	rows, report, err := CoerceRows(normalized)
	if err != nil {
		return nil, report, err
	}
	return ApplyDerived(rows, taxRateBP, locale), report, nil
}
