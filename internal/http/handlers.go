package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"presupuesto/internal/config"
	"presupuesto/internal/core"
	"presupuesto/internal/dataset"
	"presupuesto/internal/export"
	"presupuesto/internal/report"
	"presupuesto/internal/sheets"
)

// moneyView renders an amount both as raw cents and as a decimal string so
// clients can pick whichever they chart with.
type moneyView struct {
	Cents   int64  `json:"cents"`
	Decimal string `json:"decimal"`
}

func viewMoney(m core.Money) moneyView {
	return moneyView{Cents: m.Cents, Decimal: m.Decimal()}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writePipelineError maps pipeline failures onto responses: a schema problem
// is the client's data (422, with the missing/present lists for display), a
// storage problem is upstream (502).
func writePipelineError(w http.ResponseWriter, err error) {
	var schemaErr *dataset.SchemaError
	if errors.As(err, &schemaErr) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":           "required columns missing",
			"missing_columns": schemaErr.Missing,
			"present_columns": schemaErr.Present,
		})
		return
	}
	var storageErr *sheets.StorageError
	if errors.As(err, &storageErr) {
		writeJSON(w, http.StatusBadGateway, map[string]any{
			"error": storageErr.Error(),
			"op":    storageErr.Op,
		})
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error())
}

// parseFilter reads months, years, categories, and statuses query params. An
// absent param means no restriction on that dimension.
func parseFilter(r *http.Request) (report.Filter, error) {
	var f report.Filter
	if v := strings.TrimSpace(r.URL.Query().Get("months")); v != "" {
		for _, part := range strings.Split(v, ",") {
			m, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil || m < 1 || m > 12 {
				return f, errors.New("months must be a comma-separated list of 1-12")
			}
			f.Months = append(f.Months, m)
		}
	}
	if v := strings.TrimSpace(r.URL.Query().Get("years")); v != "" {
		for _, part := range strings.Split(v, ",") {
			y, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil || y < 1 {
				return f, errors.New("years must be a comma-separated list of calendar years")
			}
			f.Years = append(f.Years, y)
		}
	}
	if v := strings.TrimSpace(r.URL.Query().Get("categories")); v != "" {
		f.Categories = splitTrimmed(v)
	}
	if v := strings.TrimSpace(r.URL.Query().Get("statuses")); v != "" {
		f.Statuses = splitTrimmed(v)
	}
	return f, nil
}

func splitTrimmed(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	f, err := parseFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	summary := s.svc.Summary(f)

	type categoryView struct {
		Category string    `json:"category"`
		Amount   moneyView `json:"amount"`
	}
	type monthView struct {
		Month  int       `json:"month"`
		Label  string    `json:"label"`
		Amount moneyView `json:"amount"`
	}
	resp := struct {
		Count        int            `json:"count"`
		TotalAmount  moneyView      `json:"total_amount"`
		TotalTax     moneyView      `json:"total_tax"`
		TotalWithTax moneyView      `json:"total_with_tax"`
		ByCategory   []categoryView `json:"by_category"`
		ByMonth      []monthView    `json:"by_month"`
		PaidTotal    moneyView      `json:"paid_total"`
		PendingTotal moneyView      `json:"pending_total"`
	}{
		Count:        summary.Count,
		TotalAmount:  viewMoney(summary.TotalAmount),
		TotalTax:     viewMoney(summary.TotalTax),
		TotalWithTax: viewMoney(summary.TotalWithTax),
		ByCategory:   []categoryView{},
		ByMonth:      []monthView{},
		PaidTotal:    viewMoney(summary.PaidTotal),
		PendingTotal: viewMoney(summary.PendingTotal),
	}
	for _, ct := range summary.ByCategory {
		resp.ByCategory = append(resp.ByCategory, categoryView{Category: ct.Category, Amount: viewMoney(ct.Amount)})
	}
	for _, mt := range summary.ByMonth {
		resp.ByMonth = append(resp.ByMonth, monthView{Month: mt.Month, Label: mt.Label, Amount: viewMoney(mt.Amount)})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleMonthComparison(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	f, err := parseFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	// The reference month comes from the request when given, so the
	// comparison is reproducible; the clock is only the fallback.
	current := int(time.Now().Month())
	if v := strings.TrimSpace(r.URL.Query().Get("current")); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil || m < 1 || m > 12 {
			writeError(w, http.StatusBadRequest, "current must be a month 1-12")
			return
		}
		current = m
	}
	cmp := s.svc.MonthComparison(f, current)
	writeJSON(w, http.StatusOK, struct {
		CurrentMonth  int       `json:"current_month"`
		CurrentLabel  string    `json:"current_label"`
		PreviousMonth int       `json:"previous_month"`
		PreviousLabel string    `json:"previous_label"`
		CurrentTotal  moneyView `json:"current_total"`
		PreviousTotal moneyView `json:"previous_total"`
		Delta         moneyView `json:"delta"`
	}{
		CurrentMonth:  cmp.CurrentMonth,
		CurrentLabel:  cmp.CurrentLabel,
		PreviousMonth: cmp.PreviousMonth,
		PreviousLabel: cmp.PreviousLabel,
		CurrentTotal:  viewMoney(cmp.CurrentTotal),
		PreviousTotal: viewMoney(cmp.PreviousTotal),
		Delta:         viewMoney(cmp.Delta),
	})
}

type budgetRowView struct {
	Category string    `json:"category"`
	Budget   moneyView `json:"budget"`
	Actual   moneyView `json:"actual"`
	Diff     moneyView `json:"diff"`
	Over     bool      `json:"over"`
}

func (s *Server) handleBudgetReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	f, err := parseFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	rep := s.svc.BudgetReport(f)
	rows := make([]budgetRowView, 0, len(rep.Rows))
	for _, row := range rep.Rows {
		rows = append(rows, budgetRowView{
			Category: row.Category,
			Budget:   viewMoney(row.Budget),
			Actual:   viewMoney(row.Actual),
			Diff:     viewMoney(row.Diff),
			Over:     row.Diff.Cents > 0,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"rows":   rows,
		"alerts": len(rep.Alerts()),
	})
}

func (s *Server) handleMonthCaps(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	f, err := parseFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	type capRowView struct {
		Month  int       `json:"month"`
		Label  string    `json:"label"`
		Cap    moneyView `json:"cap"`
		Actual moneyView `json:"actual"`
		Diff   moneyView `json:"diff"`
	}
	rows := s.svc.MonthCapReport(f)
	out := make([]capRowView, 0, len(rows))
	for _, row := range rows {
		out = append(out, capRowView{
			Month:  row.Month,
			Label:  row.Label,
			Cap:    viewMoney(row.Cap),
			Actual: viewMoney(row.Actual),
			Diff:   viewMoney(row.Diff),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"rows": out})
}

// handleSetBudget replaces the session budget table. Amounts arrive as
// decimal strings and go through the same money parser as ingested cells.
func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var body struct {
		Categories  map[string]string `json:"categories"`
		MonthlyCaps map[string]string `json:"monthly_caps"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	table := config.BudgetTable{
		Categories:  map[string]core.Money{},
		MonthlyCaps: map[int]core.Money{},
	}
	for name, amount := range body.Categories {
		cents, err := core.ParseSignedDecimalToCents(amount)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "invalid budget amount for "+name)
			return
		}
		table.Categories[name] = core.Money{Cents: cents}
	}
	for key, amount := range body.MonthlyCaps {
		month, err := strconv.Atoi(key)
		if err != nil || month < 1 || month > 12 {
			writeError(w, http.StatusUnprocessableEntity, "invalid monthly cap month "+key)
			return
		}
		cents, err := core.ParseSignedDecimalToCents(amount)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "invalid monthly cap amount for month "+key)
			return
		}
		table.MonthlyCaps[month] = core.Money{Cents: cents}
	}
	s.svc.SetBudget(table)
	writeJSON(w, http.StatusOK, map[string]any{
		"categories":   len(table.Categories),
		"monthly_caps": len(table.MonthlyCaps),
	})
}

type recordInput struct {
	Date        string `json:"date"`
	Category    string `json:"category"`
	Subcategory string `json:"subcategory"`
	Concept     string `json:"concept"`
	Amount      string `json:"amount"`
	TaxApplies  bool   `json:"tax_applies"`
	Status      string `json:"status"`
}

func (in recordInput) toRecord() (core.Record, error) {
	date, err := dataset.ParseDate(in.Date)
	if err != nil {
		return core.Record{}, err
	}
	cents, err := core.ParseSignedDecimalToCents(in.Amount)
	if err != nil {
		return core.Record{}, err
	}
	return core.Record{
		Date:        date,
		Category:    strings.TrimSpace(in.Category),
		Subcategory: strings.TrimSpace(in.Subcategory),
		Concept:     strings.TrimSpace(in.Concept),
		Amount:      core.Money{Cents: cents},
		TaxApplies:  in.TaxApplies,
		Status:      core.ParseStatus(in.Status),
	}, nil
}

type recordView struct {
	Index       int       `json:"index"`
	Date        string    `json:"date"`
	Category    string    `json:"category"`
	Subcategory string    `json:"subcategory,omitempty"`
	Concept     string    `json:"concept"`
	Amount      moneyView `json:"amount"`
	TaxApplies  bool      `json:"tax_applies"`
	Tax         moneyView `json:"tax"`
	Total       moneyView `json:"total"`
	Status      string    `json:"status"`
	MonthNumber int       `json:"month_number"`
	MonthLabel  string    `json:"month_label"`
}

func viewRecord(i int, rec core.Record) recordView {
	return recordView{
		Index:       i,
		Date:        rec.Date.ISO(),
		Category:    rec.Category,
		Subcategory: rec.Subcategory,
		Concept:     rec.Concept,
		Amount:      viewMoney(rec.Amount),
		TaxApplies:  rec.TaxApplies,
		Tax:         viewMoney(rec.Tax),
		Total:       viewMoney(rec.Total),
		Status:      rec.Status.Label,
		MonthNumber: rec.Month(),
		MonthLabel:  rec.MonthLabel,
	}
}

func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		records := s.svc.Records()
		views := make([]recordView, 0, len(records))
		for i, rec := range records {
			views = append(views, viewRecord(i, rec))
		}
		writeJSON(w, http.StatusOK, map[string]any{"records": views})
	case http.MethodPost:
		var in recordInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		rec, err := in.toRecord()
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		if err := s.svc.AddRecord(r.Context(), rec); err != nil {
			slog.ErrorContext(r.Context(), "Add record failed", "error", err)
			writePipelineError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"status": "created"})
	default:
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleUpdateRecord(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		w.Header().Set("Allow", "PUT")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	idxStr := strings.TrimPrefix(r.URL.Path, "/api/records/")
	index, err := strconv.Atoi(idxStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "record index must be an integer")
		return
	}
	var in recordInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	rec, err := in.toRecord()
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := s.svc.UpdateRecord(r.Context(), index, rec); err != nil {
		slog.ErrorContext(r.Context(), "Update record failed", "error", err, "index", index)
		writePipelineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// handleSave re-persists the current snapshot unchanged, for callers that
// changed only session state (like the budget) and want the dataset written.
func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := s.svc.Save(r.Context()); err != nil {
		slog.ErrorContext(r.Context(), "Save failed", "error", err)
		writePipelineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	drops, err := s.svc.Reload(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Reload failed", "error", err)
		writePipelineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"rows_in":      drops.Input,
		"rows_kept":    drops.Kept(),
		"rows_dropped": drops.Dropped,
		"drop_reasons": drops.Reasons,
	})
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	payload, err := export.CSV(s.svc.Records())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="presupuesto.csv"`)
	_, _ = w.Write(payload)
}
