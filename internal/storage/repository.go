// Package storage persists the canonical record table in SQLite so the
// dashboard can run without a reachable spreadsheet. The table mirrors the
// serialized canonical columns; writes are full-replace inside one
// transaction.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"presupuesto/internal/dataset"
	ports "presupuesto/internal/sheets"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

var (
	_ ports.TableLoader   = (*SQLiteRepository)(nil)
	_ ports.TableReplacer = (*SQLiteRepository)(nil)
)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// recordColumns maps canonical table columns to sqlite columns, in the order
// both LoadTable and ReplaceTable use.
var recordColumns = []struct {
	canonical string
	column    string
}{
	{dataset.ColDate, "date"},
	{dataset.ColCategory, "category"},
	{dataset.ColSubcategory, "subcategory"},
	{dataset.ColConcept, "concept"},
	{dataset.ColAmount, "amount"},
	{dataset.ColTaxApplies, "tax_applies"},
	{dataset.ColTaxAmount, "tax_amount"},
	{dataset.ColTotal, "total_with_tax"},
	{dataset.ColStatus, "status"},
	{dataset.ColMonthNumber, "month_number"},
	{dataset.ColMonthLabel, "month_label"},
	{dataset.ColYear, "year"},
}

// LoadTable reads the stored snapshot back as a canonical raw table.
func (r *SQLiteRepository) LoadTable(ctx context.Context) (dataset.RawTable, error) {
	query := "SELECT "
	for i, c := range recordColumns {
		if i > 0 {
			query += ", "
		}
		query += c.column
	}
	query += " FROM records ORDER BY id"

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return dataset.RawTable{}, &ports.StorageError{Op: "load", Err: fmt.Errorf("query records: %w", err)}
	}
	defer rows.Close()

	t := dataset.RawTable{Header: make([]string, len(recordColumns))}
	for i, c := range recordColumns {
		t.Header[i] = c.canonical
	}
	for rows.Next() {
		cells := make([]string, len(recordColumns))
		dest := make([]any, len(recordColumns))
		for i := range cells {
			dest[i] = &cells[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return dataset.RawTable{}, &ports.StorageError{Op: "load", Err: fmt.Errorf("scan record: %w", err)}
		}
		t.Rows = append(t.Rows, cells)
	}
	if err := rows.Err(); err != nil {
		return dataset.RawTable{}, &ports.StorageError{Op: "load", Err: fmt.Errorf("iterate records: %w", err)}
	}
	return t, nil
}

// ReplaceTable swaps the snapshot for the given table in one transaction:
// delete everything, insert every row. Columns are matched by canonical
// header name; unknown columns are ignored, missing ones stored empty.
func (r *SQLiteRepository) ReplaceTable(ctx context.Context, t dataset.RawTable) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return &ports.StorageError{Op: "save", Err: fmt.Errorf("begin tx: %w", err)}
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM records"); err != nil {
		return &ports.StorageError{Op: "save", Err: fmt.Errorf("clear records: %w", err)}
	}

	insert := "INSERT INTO records ("
	placeholders := ""
	for i, c := range recordColumns {
		if i > 0 {
			insert += ", "
			placeholders += ", "
		}
		insert += c.column
		placeholders += "?"
	}
	insert += ") VALUES (" + placeholders + ")"

	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		return &ports.StorageError{Op: "save", Err: fmt.Errorf("prepare insert: %w", err)}
	}
	defer stmt.Close()

	colIdx := make([]int, len(recordColumns))
	for i, c := range recordColumns {
		colIdx[i] = t.ColumnIndex(c.canonical)
	}
	for _, row := range t.Rows {
		args := make([]any, len(recordColumns))
		for i, idx := range colIdx {
			args[i] = t.Cell(row, idx)
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return &ports.StorageError{Op: "save", Err: fmt.Errorf("insert record: %w", err)}
		}
	}

	if err := tx.Commit(); err != nil {
		return &ports.StorageError{Op: "save", Err: fmt.Errorf("commit: %w", err)}
	}
	slog.InfoContext(ctx, "Replaced records snapshot", "rows", len(t.Rows))
	return nil
}
