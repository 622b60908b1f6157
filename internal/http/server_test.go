package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"presupuesto/internal/core"
	"presupuesto/internal/dataset"
	"presupuesto/internal/services"
	"presupuesto/internal/sheets/memory"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	store := memory.New(dataset.RawTable{
		Header: []string{"Fecha de Pago", "Banco", "Concepto", "Monto", "Status", "Aplica IVA"},
		Rows: [][]string{
			{"2025-01-15", "Renta", "Depto", "800.00", "PAGADO", ""},
			{"2025-02-01", "Comida", "Super", "120.50", "PENDIENTE", ""},
			{"basura", "Comida", "Mala fila", "1.00", "PAGADO", ""},
		},
	})
	svc := services.NewDashboardService(store, nil, dataset.DefaultTaxRateBP, core.LocaleES)
	if _, err := svc.Reload(context.Background()); err != nil {
		t.Fatalf("reload: %v", err)
	}
	srv := NewServer(":0", svc)
	t.Cleanup(srv.Stop)
	return srv
}

func doRequest(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t)
	for _, path := range []string{"/healthz", "/readyz"} {
		rr := doRequest(t, srv, http.MethodGet, path, "")
		if rr.Code != 200 {
			t.Fatalf("%s status=%d", path, rr.Code)
		}
	}
}

func TestSummaryEndpoint(t *testing.T) {
	srv := newTestServer(t)
	rr := doRequest(t, srv, http.MethodGet, "/api/summary", "")
	if rr.Code != 200 {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
	var resp struct {
		Count       int `json:"count"`
		TotalAmount struct {
			Cents int64 `json:"cents"`
		} `json:"total_amount"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Count != 2 || resp.TotalAmount.Cents != 92050 {
		t.Fatalf("unexpected summary: %+v", resp)
	}

	// Month filter narrows the set.
	rr = doRequest(t, srv, http.MethodGet, "/api/summary?months=1", "")
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Count != 1 || resp.TotalAmount.Cents != 80000 {
		t.Fatalf("unexpected filtered summary: %+v", resp)
	}

	// Year filter: seed data is all 2025, so another year is empty.
	rr = doRequest(t, srv, http.MethodGet, "/api/summary?years=2024", "")
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Count != 0 || resp.TotalAmount.Cents != 0 {
		t.Fatalf("unexpected year-filtered summary: %+v", resp)
	}

	// Bad filter values.
	for _, path := range []string{"/api/summary?months=13", "/api/summary?years=x"} {
		rr = doRequest(t, srv, http.MethodGet, path, "")
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("%s expected 400, got %d", path, rr.Code)
		}
	}
}

func TestSaveEndpoint(t *testing.T) {
	srv := newTestServer(t)
	rr := doRequest(t, srv, http.MethodPost, "/api/save", "")
	if rr.Code != 200 {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
	var resp map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["status"] != "saved" {
		t.Fatalf("unexpected body: %v", resp)
	}

	rr = doRequest(t, srv, http.MethodGet, "/api/save", "")
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rr.Code)
	}
}

func TestMonthComparisonEndpoint(t *testing.T) {
	srv := newTestServer(t)
	rr := doRequest(t, srv, http.MethodGet, "/api/months/comparison?current=2", "")
	if rr.Code != 200 {
		t.Fatalf("status=%d", rr.Code)
	}
	var resp struct {
		CurrentMonth int `json:"current_month"`
		Delta        struct {
			Cents int64 `json:"cents"`
		} `json:"delta"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.CurrentMonth != 2 || resp.Delta.Cents != 12050-80000 {
		t.Fatalf("unexpected comparison: %+v", resp)
	}
}

func TestBudgetEndpoints(t *testing.T) {
	srv := newTestServer(t)
	rr := doRequest(t, srv, http.MethodPost, "/api/budget",
		`{"categories":{"Renta":"1000.00"},"monthly_caps":{"1":"500.00"}}`)
	if rr.Code != 200 {
		t.Fatalf("set budget status=%d body=%s", rr.Code, rr.Body.String())
	}

	rr = doRequest(t, srv, http.MethodGet, "/api/budget/report", "")
	if rr.Code != 200 {
		t.Fatalf("report status=%d", rr.Code)
	}
	var rep struct {
		Rows []struct {
			Category string `json:"category"`
			Over     bool   `json:"over"`
		} `json:"rows"`
		Alerts int `json:"alerts"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &rep); err != nil {
		t.Fatalf("decode: %v", err)
	}
	// Renta 800 under 1000; Comida 120.50 against no budget alerts.
	if len(rep.Rows) != 2 || rep.Alerts != 1 {
		t.Fatalf("unexpected report: %+v", rep)
	}

	rr = doRequest(t, srv, http.MethodGet, "/api/budget/caps", "")
	if rr.Code != 200 {
		t.Fatalf("caps status=%d", rr.Code)
	}

	// Bad budget amount.
	rr = doRequest(t, srv, http.MethodPost, "/api/budget", `{"categories":{"Renta":"abc"}}`)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rr.Code)
	}
}

func TestRecordsEndpoints(t *testing.T) {
	srv := newTestServer(t)

	rr := doRequest(t, srv, http.MethodGet, "/api/records", "")
	if rr.Code != 200 {
		t.Fatalf("list status=%d", rr.Code)
	}
	var list struct {
		Records []struct {
			Date   string `json:"date"`
			Status string `json:"status"`
		} `json:"records"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(list.Records) != 2 || list.Records[0].Date != "2025-01-15" {
		t.Fatalf("unexpected records: %+v", list.Records)
	}

	// Add a record.
	rr = doRequest(t, srv, http.MethodPost, "/api/records",
		`{"date":"2025-03-05","category":"Luz","concept":"CFE","amount":"350,75","tax_applies":true,"status":"PENDIENTE"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("add status=%d body=%s", rr.Code, rr.Body.String())
	}

	// Invalid record.
	rr = doRequest(t, srv, http.MethodPost, "/api/records",
		`{"date":"garbage","category":"Luz","concept":"CFE","amount":"1","status":"PENDIENTE"}`)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rr.Code)
	}

	// Update the added record.
	rr = doRequest(t, srv, http.MethodPut, "/api/records/2",
		`{"date":"2025-03-05","category":"Luz","concept":"CFE marzo","amount":"350.75","status":"PAGADO"}`)
	if rr.Code != 200 {
		t.Fatalf("update status=%d body=%s", rr.Code, rr.Body.String())
	}

	// Out-of-range index.
	rr = doRequest(t, srv, http.MethodPut, "/api/records/99",
		`{"date":"2025-03-05","category":"Luz","concept":"x","amount":"1","status":"PAGADO"}`)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 for out-of-range index, got %d", rr.Code)
	}

	// Wrong method on collection.
	rr = doRequest(t, srv, http.MethodDelete, "/api/records", "")
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rr.Code)
	}
}

func TestReloadEndpoint(t *testing.T) {
	srv := newTestServer(t)
	rr := doRequest(t, srv, http.MethodPost, "/api/reload", "")
	if rr.Code != 200 {
		t.Fatalf("status=%d", rr.Code)
	}
	var resp struct {
		RowsIn      int      `json:"rows_in"`
		RowsKept    int      `json:"rows_kept"`
		RowsDropped int      `json:"rows_dropped"`
		DropReasons []string `json:"drop_reasons"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.RowsIn != 3 || resp.RowsKept != 2 || resp.RowsDropped != 1 {
		t.Fatalf("unexpected accounting: %+v", resp)
	}
	if len(resp.DropReasons) != 1 || !strings.Contains(resp.DropReasons[0], "date") {
		t.Fatalf("unexpected reasons: %v", resp.DropReasons)
	}
}

func TestExportEndpoint(t *testing.T) {
	srv := newTestServer(t)
	rr := doRequest(t, srv, http.MethodGet, "/api/export.csv", "")
	if rr.Code != 200 {
		t.Fatalf("status=%d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Fatalf("unexpected content type %q", ct)
	}
	lines := strings.Split(strings.TrimSpace(rr.Body.String()), "\n")
	if len(lines) != 3 { // header + 2 records
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
}

func TestSecurityHeaders(t *testing.T) {
	srv := newTestServer(t)
	rr := doRequest(t, srv, http.MethodGet, "/api/summary", "")
	if rr.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Fatal("missing nosniff header")
	}
	if rr.Header().Get("X-Frame-Options") != "DENY" {
		t.Fatal("missing frame options header")
	}
}
