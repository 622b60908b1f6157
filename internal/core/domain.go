package core

import (
	"errors"
	"strings"
	"time"
)

const (
	StatusPaid    StatusCode = "PAID"
	StatusPending StatusCode = "PENDING"
	StatusOther   StatusCode = "OTHER"
)

type (
	// StatusCode is the constrained payment status: PAID, PENDING, or OTHER.
	StatusCode string

	// Status keeps the constrained code together with the normalized label,
	// so unrecognized status vocabularies survive round-trips.
	Status struct {
		Code  StatusCode
		Label string
	}

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Record is a canonical expense record: normalized, coerced, and with
	// derived fields applied. Once built it is treated as immutable; edits
	// re-enter the validation chain.
	Record struct {
		Date        Date
		Category    string
		Subcategory string
		Concept     string
		Amount      Money
		TaxApplies  bool
		Tax         Money
		Total       Money
		Status      Status
		MonthLabel  string
	}
)

var (
	ErrInvalidDate   = errors.New("invalid date")
	ErrEmptyCategory = errors.New("empty category")
	ErrEmptyConcept  = errors.New("empty concept")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrEmptyStatus   = errors.New("empty status")
)

// Recognized status vocabularies across the data sources this dashboard ingests.
var (
	paidLabels    = map[string]struct{}{"PAID": {}, "PAGADO": {}, "PAGADA": {}}
	pendingLabels = map[string]struct{}{"PENDING": {}, "PENDIENTE": {}}
)

// ParseStatus normalizes a raw status cell into a Status. The label is
// uppercased and trimmed; any non-empty value is accepted, unknown
// vocabularies map to StatusOther with the label preserved.
func ParseStatus(raw string) Status {
	label := strings.ToUpper(strings.TrimSpace(raw))
	switch {
	case label == "":
		return Status{}
	case hasLabel(paidLabels, label):
		return Status{Code: StatusPaid, Label: label}
	case hasLabel(pendingLabels, label):
		return Status{Code: StatusPending, Label: label}
	default:
		return Status{Code: StatusOther, Label: label}
	}
}

func hasLabel(set map[string]struct{}, label string) bool {
	_, ok := set[label]
	return ok
}

// IsPaid reports whether the record counts toward the paid split.
func (s Status) IsPaid() bool {
	return s.Code == StatusPaid
}

func (s Status) Validate() error {
	if s.Label == "" || s.Code == "" {
		return ErrEmptyStatus
	}
	return nil
}

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// Day returns the day of the month.
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the calendar month as 1-12.
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the calendar year.
func (d Date) Year() int {
	return d.Time.Year()
}

// ISO formats the date as YYYY-MM-DD for serialization.
func (d Date) ISO() string {
	return d.Time.Format("2006-01-02")
}

// Month returns the record's calendar month, always derived from the date so
// the two can never disagree.
func (r Record) Month() int {
	return r.Date.Month()
}

func (r Record) Validate() error {
	if err := r.Date.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(r.Category) == "" {
		return ErrEmptyCategory
	}
	if strings.TrimSpace(r.Concept) == "" {
		return ErrEmptyConcept
	}
	if len(r.Concept) > 200 {
		return errors.New("concept too long (max 200 characters)")
	}
	return r.Status.Validate()
}

// NormalizeKey uppercases and trims a grouping label. Category and status
// comparisons go through this so "Renta" and "RENTA" land in one group.
func NormalizeKey(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
