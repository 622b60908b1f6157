package export

import (
	"bytes"
	"encoding/csv"
	"testing"

	"presupuesto/internal/core"
)

func TestCSV(t *testing.T) {
	records := []core.Record{
		{
			Date:       core.NewDate(2025, 1, 15),
			Category:   "Renta",
			Concept:    "Depto",
			Amount:     core.Money{Cents: 80000},
			Tax:        core.Money{Cents: 12800},
			Total:      core.Money{Cents: 92800},
			TaxApplies: true,
			Status:     core.ParseStatus("PAGADO"),
			MonthLabel: "Enero",
		},
	}
	payload, err := CSV(records)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rows, err := csv.NewReader(bytes.NewReader(payload)).ReadAll()
	if err != nil {
		t.Fatalf("payload must be valid CSV: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected header plus one row, got %d", len(rows))
	}
	if rows[0][0] != "Date" || len(rows[0]) != 12 {
		t.Fatalf("unexpected header: %v", rows[0])
	}
	data := rows[1]
	if data[0] != "2025-01-15" || data[4] != "800.00" || data[7] != "928.00" {
		t.Fatalf("unexpected row: %v", data)
	}
	if data[8] != "PAGADO" || data[10] != "Enero" {
		t.Fatalf("unexpected status or month label: %v", data)
	}
}

func TestCSVEmpty(t *testing.T) {
	payload, err := CSV(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rows, err := csv.NewReader(bytes.NewReader(payload)).ReadAll()
	if err != nil || len(rows) != 1 {
		t.Fatalf("expected header-only payload, got %v (err=%v)", rows, err)
	}
}
