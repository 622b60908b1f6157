package dataset

import (
	"reflect"
	"testing"

	"presupuesto/internal/core"
)

func TestApplyDerivedComputesTaxAndTotal(t *testing.T) {
	rows := []Row{
		{Record: core.Record{
			Date: core.NewDate(2025, 1, 15), Category: "Renta", Concept: "Depto",
			Amount: core.Money{Cents: 10000}, TaxApplies: true,
			Status: core.ParseStatus("PAGADO"),
		}},
		{Record: core.Record{
			Date: core.NewDate(2025, 2, 1), Category: "Comida", Concept: "Super",
			Amount: core.Money{Cents: 5000},
			Status: core.ParseStatus("PENDIENTE"),
		}},
	}
	out := ApplyDerived(rows, DefaultTaxRateBP, core.LocaleES)

	if out[0].Tax.Cents != 1600 || out[0].Total.Cents != 11600 {
		t.Fatalf("taxed row: expected 1600/11600, got %d/%d", out[0].Tax.Cents, out[0].Total.Cents)
	}
	if out[0].MonthLabel != "Enero" {
		t.Fatalf("expected Enero, got %q", out[0].MonthLabel)
	}
	if out[1].Tax.Cents != 0 || out[1].Total.Cents != 5000 {
		t.Fatalf("untaxed row: expected 0/5000, got %d/%d", out[1].Tax.Cents, out[1].Total.Cents)
	}
	if out[1].MonthLabel != "Febrero" {
		t.Fatalf("expected Febrero, got %q", out[1].MonthLabel)
	}
}

func TestApplyDerivedRespectsSourceTax(t *testing.T) {
	rows := []Row{{
		Record: core.Record{
			Date: core.NewDate(2025, 1, 15), Category: "Renta", Concept: "Depto",
			Amount: core.Money{Cents: 10000}, TaxApplies: true,
			Tax:    core.Money{Cents: 1234}, // source says so, not 16%
			Status: core.ParseStatus("PAGADO"),
		},
		HasTax: true,
	}}
	out := ApplyDerived(rows, DefaultTaxRateBP, core.LocaleES)
	if out[0].Tax.Cents != 1234 {
		t.Fatalf("source-provided tax must survive, got %d", out[0].Tax.Cents)
	}
	if out[0].Total.Cents != 11234 {
		t.Fatalf("total must be amount+tax, got %d", out[0].Total.Cents)
	}
}

func TestApplyDerivedFixesStaleTotal(t *testing.T) {
	rows := []Row{{
		Record: core.Record{
			Date: core.NewDate(2025, 1, 15), Category: "Renta", Concept: "Depto",
			Amount: core.Money{Cents: 10000},
			Tax:    core.Money{Cents: 1600},
			Total:  core.Money{Cents: 99999}, // disagrees with amount+tax
			Status: core.ParseStatus("PAGADO"),
		},
		HasTax:   true,
		HasTotal: true,
	}}
	out := ApplyDerived(rows, DefaultTaxRateBP, core.LocaleES)
	if out[0].Total.Cents != 11600 {
		t.Fatalf("stale total must be recomputed, got %d", out[0].Total.Cents)
	}
}

func TestApplyDerivedIdempotent(t *testing.T) {
	raw := RawTable{
		Header: []string{"Fecha de Pago", "Banco", "Concepto", "Monto", "Status", "Aplica IVA"},
		Rows: [][]string{
			{"2025-01-15", "BBVA", "Renta depto", "800.00", "PAGADO", "SI"},
			{"2025-02-10", "Santander", "Super", "-120,50", "PENDIENTE", ""},
		},
	}
	once, _, err := BuildRecords(raw, nil, DefaultTaxRateBP, core.LocaleES)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	twice := ApplyDerived(RowsFromRecords(once), DefaultTaxRateBP, core.LocaleES)
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("derivation must be idempotent:\nonce:  %+v\ntwice: %+v", once, twice)
	}
}

func TestApplyDerivedNegativeTax(t *testing.T) {
	rows := []Row{{Record: core.Record{
		Date: core.NewDate(2025, 3, 1), Category: "Renta", Concept: "Reembolso",
		Amount: core.Money{Cents: -10000}, TaxApplies: true,
		Status: core.ParseStatus("PAGADO"),
	}}}
	out := ApplyDerived(rows, DefaultTaxRateBP, core.LocaleES)
	if out[0].Tax.Cents != -1600 || out[0].Total.Cents != -11600 {
		t.Fatalf("refund tax must mirror the charge, got %d/%d", out[0].Tax.Cents, out[0].Total.Cents)
	}
}

func TestBuildRecordsEndToEnd(t *testing.T) {
	raw := RawTable{
		Header: []string{"Fecha de Pago", "Banco", "Concepto", "Monto", "Status"},
		Rows: [][]string{
			{"2025-01-15", "BBVA", "Renta depto", "800.00", "PAGADO"},
			{"no-date", "BBVA", "Basura", "1.00", "PAGADO"},
		},
	}
	records, report, err := BuildRecords(raw, nil, DefaultTaxRateBP, core.LocaleES)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 1 || report.Dropped != 1 {
		t.Fatalf("expected 1 record, 1 dropped; got %d/%d", len(records), report.Dropped)
	}
	r := records[0]
	if r.Category != "BBVA" || r.Amount.Cents != 80000 || r.MonthLabel != "Enero" {
		t.Fatalf("unexpected record: %+v", r)
	}
	if r.Status.Code != core.StatusPaid {
		t.Fatalf("expected PAID, got %s", r.Status.Code)
	}
}

func TestTableFromRecordsRoundTrip(t *testing.T) {
	raw := RawTable{
		Header: []string{"Fecha de Pago", "Banco", "Concepto", "Monto", "Status", "Aplica IVA"},
		Rows: [][]string{
			{"2025-01-15", "BBVA", "Renta depto", "800.00", "PAGADO", "SI"},
		},
	}
	records, _, err := BuildRecords(raw, nil, DefaultTaxRateBP, core.LocaleES)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	table := TableFromRecords(records)
	again, report, err := BuildRecords(table, nil, DefaultTaxRateBP, core.LocaleES)
	if err != nil || report.Dropped != 0 {
		t.Fatalf("serialized table must reload cleanly (err=%v dropped=%d)", err, report.Dropped)
	}
	if !reflect.DeepEqual(records, again) {
		t.Fatalf("round trip changed records:\nbefore: %+v\nafter:  %+v", records, again)
	}
}
