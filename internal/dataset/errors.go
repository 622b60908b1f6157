package dataset

import (
	"fmt"
	"strings"
)

// SchemaError reports required canonical columns missing after
// normalization. It is fatal to the load that produced it: no partial
// processing continues, and both the missing list and the columns actually
// received are surfaced for diagnostic display.
type SchemaError struct {
	Missing []string
	Present []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("missing required columns: %s (received: %s)",
		strings.Join(e.Missing, ", "), strings.Join(e.Present, ", "))
}

// DropReport accounts for rows excluded during coercion. Dropping is a
// documented cleaning rule, not an error: processing continues with the
// remaining rows and the caller surfaces the count.
type DropReport struct {
	Input   int
	Dropped int
	Reasons []string
}

// Kept returns the number of rows that survived coercion.
func (r DropReport) Kept() int {
	return r.Input - r.Dropped
}
