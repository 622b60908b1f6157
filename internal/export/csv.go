// Package export encodes record sets as byte payloads for download. Pure
// format wrapping: no state, no side effects on the snapshot.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"presupuesto/internal/core"
	"presupuesto/internal/dataset"
)

// CSV serializes the given records, canonical columns and derived fields
// included, as a CSV payload.
func CSV(records []core.Record) ([]byte, error) {
	table := dataset.TableFromRecords(records)

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(table.Header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	for _, row := range table.Rows {
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
