package report

import (
	"sort"

	"presupuesto/internal/core"
)

// BudgetRow compares one category's actual spend against its budget.
type BudgetRow struct {
	Category string
	Budget   core.Money
	Actual   core.Money
	Diff     core.Money // actual - budget; positive means overspend
}

// BudgetReport is the budget-vs-actual table for the union of categories
// seen in aggregates or named in the budget.
type BudgetReport struct {
	Rows []BudgetRow
}

// CompareBudget joins aggregated actuals against a caller-supplied budget
// mapping. Categories with spend but no budget entry are included with a
// zero budget rather than skipped: a missing allowance reads as "no
// allowance", and excluding the row would hide the overspend entirely.
// Budget-only categories appear with zero actual. Matching is
// case-normalized on the category name.
func CompareBudget(byCategory []CategoryTotal, budget map[string]core.Money) BudgetReport {
	normBudget := make(map[string]core.Money, len(budget))
	budgetNames := make(map[string]string, len(budget))
	for name, amount := range budget {
		key := core.NormalizeKey(name)
		normBudget[key] = amount
		budgetNames[key] = name
	}

	var rows []BudgetRow
	seen := make(map[string]struct{}, len(byCategory))
	for _, ct := range byCategory {
		key := core.NormalizeKey(ct.Category)
		seen[key] = struct{}{}
		b := normBudget[key]
		rows = append(rows, BudgetRow{
			Category: ct.Category,
			Budget:   b,
			Actual:   ct.Amount,
			Diff:     core.Money{Cents: ct.Amount.Cents - b.Cents},
		})
	}

	// Budget entries with no spend this period, appended alphabetically.
	var rest []BudgetRow
	for key, b := range normBudget {
		if _, ok := seen[key]; ok {
			continue
		}
		rest = append(rest, BudgetRow{
			Category: budgetNames[key],
			Budget:   b,
			Diff:     core.Money{Cents: -b.Cents},
		})
	}
	sort.Slice(rest, func(i, j int) bool { return rest[i].Category < rest[j].Category })
	rows = append(rows, rest...)

	return BudgetReport{Rows: rows}
}

// Alerts returns the rows where actual spend exceeds the budget.
func (r BudgetReport) Alerts() []BudgetRow {
	var out []BudgetRow
	for _, row := range r.Rows {
		if row.Diff.Cents > 0 {
			out = append(out, row)
		}
	}
	return out
}

// MonthCapRow compares one calendar month's actual spend against its
// configured cap.
type MonthCapRow struct {
	Month  int
	Label  string
	Cap    core.Money
	Actual core.Money
	Diff   core.Money
}

// CompareMonthCaps joins per-month actuals against the configured
// monthly-cap table, with the same always-include policy as CompareBudget.
// Rows come out in calendar order.
func CompareMonthCaps(byMonth []MonthTotal, caps map[int]core.Money, locale core.MonthLocale) []MonthCapRow {
	actuals := make(map[int]MonthTotal, len(byMonth))
	for _, mt := range byMonth {
		actuals[mt.Month] = mt
	}
	var rows []MonthCapRow
	for m := 1; m <= 12; m++ {
		mt, hasActual := actuals[m]
		capAmount, hasCap := caps[m]
		if !hasActual && !hasCap {
			continue
		}
		rows = append(rows, MonthCapRow{
			Month:  m,
			Label:  core.MonthName(m, locale),
			Cap:    capAmount,
			Actual: mt.Amount,
			Diff:   core.Money{Cents: mt.Amount.Cents - capAmount.Cents},
		})
	}
	return rows
}
