// Package google adapts a Google Sheets spreadsheet to the tabular storage
// ports. The sheet's first row is the header; save is a clear-then-rewrite
// of the whole sheet, matching the dashboard's full-replace contract.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"presupuesto/internal/dataset"
	ports "presupuesto/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

// Ensure interface conformance
var (
	_ ports.TableLoader   = (*Client)(nil)
	_ ports.TableReplacer = (*Client)(nil)
)

// NewFromEnv creates a Sheets client from environment variables.
// Required: GOOGLE_SPREADSHEET_ID.
// Optional: GOOGLE_SHEET_NAME (default "Presupuesto").
// Credentials: GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or
// GOOGLE_APPLICATION_CREDENTIALS.
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	sheetName := strings.TrimSpace(os.Getenv("GOOGLE_SHEET_NAME"))
	if sheetName == "" {
		sheetName = "Presupuesto"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}, nil
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error
	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// LoadTable reads the whole sheet and returns it as a raw table. The first
// row is the header; every cell comes back as a trimmed string. Connection
// or auth failures surface as a StorageError and the caller halts.
func (c *Client) LoadTable(ctx context.Context) (dataset.RawTable, error) {
	if c.svc == nil {
		return dataset.RawTable{}, &ports.StorageError{Op: "load", Err: errors.New("sheets service not initialized")}
	}
	rng := fmt.Sprintf("%s!A:Z", c.sheetName)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return dataset.RawTable{}, &ports.StorageError{Op: "load", Err: fmt.Errorf("read %s: %w", rng, err)}
	}
	if len(resp.Values) == 0 {
		return dataset.RawTable{}, nil
	}

	t := dataset.RawTable{Header: toStrings(resp.Values[0])}
	t.Rows = make([][]string, 0, len(resp.Values)-1)
	for _, row := range resp.Values[1:] {
		t.Rows = append(t.Rows, toStrings(row))
	}
	slog.DebugContext(ctx, "Loaded sheet table", "sheet", c.sheetName, "columns", len(t.Header), "rows", len(t.Rows))
	return t, nil
}

// ReplaceTable clears the sheet and rewrites header plus rows as strings.
// There is no diffing and no append: the sheet afterwards holds exactly the
// given table. A concurrent writer using the same pattern can still clobber
// this write; the collaborator owns serialization if that matters.
func (c *Client) ReplaceTable(ctx context.Context, t dataset.RawTable) error {
	if c.svc == nil {
		return &ports.StorageError{Op: "save", Err: errors.New("sheets service not initialized")}
	}
	rng := fmt.Sprintf("%s!A:Z", c.sheetName)
	if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, rng, &gsheet.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return &ports.StorageError{Op: "save", Err: fmt.Errorf("clear %s: %w", rng, err)}
	}

	values := make([][]any, 0, len(t.Rows)+1)
	values = append(values, toAnys(t.Header))
	for _, row := range t.Rows {
		values = append(values, toAnys(row))
	}
	vr := &gsheet.ValueRange{Values: values}
	writeRng := fmt.Sprintf("%s!A1", c.sheetName)
	_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, writeRng, vr).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return &ports.StorageError{Op: "save", Err: fmt.Errorf("update %s: %w", writeRng, err)}
	}
	slog.InfoContext(ctx, "Replaced sheet table", "sheet", c.sheetName, "rows", len(t.Rows))
	return nil
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func toAnys(in []string) []any {
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}
