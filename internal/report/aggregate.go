// Package report computes aggregates and comparisons over canonical expense
// records. Every function here is pure: the same records and filter always
// produce identical output, and nothing is cached or mutated between calls.
package report

import (
	"sort"

	"presupuesto/internal/core"
)

// Filter restricts records by month, year, category, and status. A nil slice
// means no restriction on that dimension; a non-nil slice is a plain
// membership test over its values. Category values are case-normalized
// before matching; status values go through the status vocabulary, so
// "PAID" and "PAGADO" select the same rows.
type Filter struct {
	Months     []int
	Years      []int
	Categories []string
	Statuses   []string
}

// Match reports whether the record passes every active dimension.
func (f Filter) Match(r core.Record) bool {
	if f.Months != nil && !containsInt(f.Months, r.Month()) {
		return false
	}
	if f.Years != nil && !containsInt(f.Years, r.Date.Year()) {
		return false
	}
	if f.Categories != nil && !containsKey(f.Categories, r.Category) {
		return false
	}
	if f.Statuses != nil && !matchStatus(f.Statuses, r.Status) {
		return false
	}
	return true
}

// matchStatus matches filter values against the constrained code, so any
// spelling of a recognized vocabulary selects the whole group. Unrecognized
// filter values fall back to a label comparison, which is how OTHER rows are
// selected individually.
func matchStatus(set []string, s core.Status) bool {
	for _, v := range set {
		want := core.ParseStatus(v)
		if want.Code == core.StatusOther {
			if want.Label == s.Label {
				return true
			}
			continue
		}
		if want.Code == s.Code {
			return true
		}
	}
	return false
}

func containsInt(set []int, v int) bool {
	for _, m := range set {
		if m == v {
			return true
		}
	}
	return false
}

func containsKey(set []string, v string) bool {
	key := core.NormalizeKey(v)
	for _, s := range set {
		if core.NormalizeKey(s) == key {
			return true
		}
	}
	return false
}

// CategoryTotal is one category's summed amount. Category carries the
// first-seen spelling; grouping itself is case-normalized.
type CategoryTotal struct {
	Category string
	Amount   core.Money
}

// MonthTotal is one calendar month's summed amount.
type MonthTotal struct {
	Month  int
	Label  string
	Amount core.Money
}

// Summary holds the aggregates behind the dashboard KPIs and charts. An
// empty filtered set yields zero sums and empty slices, never an error.
type Summary struct {
	Count        int
	TotalAmount  core.Money
	TotalTax     core.Money
	TotalWithTax core.Money
	ByCategory   []CategoryTotal // descending by amount
	ByMonth      []MonthTotal    // ascending by month, calendar order
	PaidTotal    core.Money
	PendingTotal core.Money
}

// Summarize aggregates the filtered record set.
func Summarize(records []core.Record, f Filter, locale core.MonthLocale) Summary {
	var s Summary
	catSums := map[string]int64{}
	catNames := map[string]string{}
	var catOrder []string
	monthSums := map[int]int64{}

	for _, r := range records {
		if !f.Match(r) {
			continue
		}
		s.Count++
		s.TotalAmount = s.TotalAmount.Add(r.Amount)
		s.TotalTax = s.TotalTax.Add(r.Tax)
		s.TotalWithTax = s.TotalWithTax.Add(r.Total)

		key := core.NormalizeKey(r.Category)
		if _, seen := catSums[key]; !seen {
			catOrder = append(catOrder, key)
			catNames[key] = r.Category
		}
		catSums[key] += r.Amount.Cents
		monthSums[r.Month()] += r.Amount.Cents

		if r.Status.IsPaid() {
			s.PaidTotal = s.PaidTotal.Add(r.Amount)
		} else {
			s.PendingTotal = s.PendingTotal.Add(r.Amount)
		}
	}

	s.ByCategory = make([]CategoryTotal, 0, len(catOrder))
	for _, key := range catOrder {
		s.ByCategory = append(s.ByCategory, CategoryTotal{
			Category: catNames[key],
			Amount:   core.Money{Cents: catSums[key]},
		})
	}
	// Descending by amount for display; ties keep first-seen order.
	sort.SliceStable(s.ByCategory, func(i, j int) bool {
		return s.ByCategory[i].Amount.Cents > s.ByCategory[j].Amount.Cents
	})

	s.ByMonth = make([]MonthTotal, 0, len(monthSums))
	for m := 1; m <= 12; m++ {
		if cents, ok := monthSums[m]; ok {
			s.ByMonth = append(s.ByMonth, MonthTotal{
				Month:  m,
				Label:  core.MonthName(m, locale),
				Amount: core.Money{Cents: cents},
			})
		}
	}
	return s
}

// MonthComparison contrasts the current calendar month against the previous
// one. The current month is an injected reference, never read from the
// clock, so the computation stays deterministic under test.
type MonthComparison struct {
	CurrentMonth  int
	PreviousMonth int
	CurrentLabel  string
	PreviousLabel string
	CurrentTotal  core.Money
	PreviousTotal core.Money
	Delta         core.Money
}

// CompareMonths computes the month-over-month delta over the filtered set.
// The previous month wraps from January back to December.
func CompareMonths(records []core.Record, f Filter, currentMonth int, locale core.MonthLocale) MonthComparison {
	prev := currentMonth - 1
	if prev < 1 {
		prev = 12
	}
	cmp := MonthComparison{
		CurrentMonth:  currentMonth,
		PreviousMonth: prev,
		CurrentLabel:  core.MonthName(currentMonth, locale),
		PreviousLabel: core.MonthName(prev, locale),
	}
	for _, r := range records {
		if !f.Match(r) {
			continue
		}
		switch r.Month() {
		case currentMonth:
			cmp.CurrentTotal = cmp.CurrentTotal.Add(r.Amount)
		case prev:
			cmp.PreviousTotal = cmp.PreviousTotal.Add(r.Amount)
		}
	}
	cmp.Delta = core.Money{Cents: cmp.CurrentTotal.Cents - cmp.PreviousTotal.Cents}
	return cmp
}
