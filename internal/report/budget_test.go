package report

import (
	"testing"

	"presupuesto/internal/core"
)

func TestCompareBudget(t *testing.T) {
	actuals := []CategoryTotal{
		{Category: "Renta", Amount: core.Money{Cents: 100000}},
		{Category: "Comida", Amount: core.Money{Cents: 20000}},
	}
	budget := map[string]core.Money{
		"Renta": {Cents: 80000},
		"Luz":   {Cents: 35000}, // budgeted, no spend
	}
	rep := CompareBudget(actuals, budget)
	if len(rep.Rows) != 3 {
		t.Fatalf("expected 3 rows, got %v", rep.Rows)
	}

	renta := rep.Rows[0]
	if renta.Category != "Renta" || renta.Diff.Cents != 20000 {
		t.Fatalf("expected Renta over by 20000, got %+v", renta)
	}
	// A category with spend but no budget entry gets a zero budget, never
	// gets skipped.
	comida := rep.Rows[1]
	if comida.Budget.Cents != 0 || comida.Diff.Cents != 20000 {
		t.Fatalf("unbudgeted spend must show against zero, got %+v", comida)
	}
	// Budget-only categories trail with zero actual.
	luz := rep.Rows[2]
	if luz.Category != "Luz" || luz.Actual.Cents != 0 || luz.Diff.Cents != -35000 {
		t.Fatalf("budget-only row wrong: %+v", luz)
	}
}

func TestCompareBudgetCaseInsensitiveMatch(t *testing.T) {
	actuals := []CategoryTotal{{Category: "RENTA", Amount: core.Money{Cents: 50000}}}
	budget := map[string]core.Money{"renta": {Cents: 80000}}
	rep := CompareBudget(actuals, budget)
	if len(rep.Rows) != 1 {
		t.Fatalf("case variants must match as one row, got %v", rep.Rows)
	}
	if rep.Rows[0].Diff.Cents != -30000 {
		t.Fatalf("expected -30000, got %d", rep.Rows[0].Diff.Cents)
	}
}

func TestBudgetAlerts(t *testing.T) {
	actuals := []CategoryTotal{
		{Category: "Renta", Amount: core.Money{Cents: 100000}},
		{Category: "Comida", Amount: core.Money{Cents: 20000}},
		{Category: "Luz", Amount: core.Money{Cents: 10000}},
	}
	budget := map[string]core.Money{
		"Renta":  {Cents: 80000},  // over
		"Comida": {Cents: 20000},  // exactly at budget, no alert
		"Luz":    {Cents: 15000},  // under
	}
	alerts := CompareBudget(actuals, budget).Alerts()
	if len(alerts) != 1 || alerts[0].Category != "Renta" {
		t.Fatalf("expected only Renta to alert, got %v", alerts)
	}
}

func TestCompareBudgetEmpty(t *testing.T) {
	rep := CompareBudget(nil, nil)
	if len(rep.Rows) != 0 || len(rep.Alerts()) != 0 {
		t.Fatalf("expected empty report, got %v", rep.Rows)
	}
}

func TestCompareMonthCaps(t *testing.T) {
	byMonth := []MonthTotal{
		{Month: 1, Label: "Enero", Amount: core.Money{Cents: 250000}},
		{Month: 3, Label: "Marzo", Amount: core.Money{Cents: 90000}},
	}
	caps := map[int]core.Money{
		1: {Cents: 200000},
		2: {Cents: 150000}, // capped, no spend
	}
	rows := CompareMonthCaps(byMonth, caps, core.LocaleES)
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %v", rows)
	}
	if rows[0].Month != 1 || rows[1].Month != 2 || rows[2].Month != 3 {
		t.Fatalf("expected calendar order, got %v", rows)
	}
	if rows[0].Diff.Cents != 50000 {
		t.Fatalf("January over by 50000, got %d", rows[0].Diff.Cents)
	}
	if rows[1].Actual.Cents != 0 || rows[1].Diff.Cents != -150000 {
		t.Fatalf("cap-only month wrong: %+v", rows[1])
	}
	if rows[2].Cap.Cents != 0 || rows[2].Diff.Cents != 90000 {
		t.Fatalf("uncapped month must show against zero, got %+v", rows[2])
	}
	if rows[1].Label != "Febrero" {
		t.Fatalf("expected localized label, got %q", rows[1].Label)
	}
}
