package domain

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// DateLayout is the only date format accepted from users and sent to the API.
const DateLayout = "2006-01-02"

const (
	MinDue = 1
	MaxDue = 31
)

// InvoiceStatus mirrors the invoice states of the invoicing service.
type InvoiceStatus string

const (
	StatusOpen          InvoiceStatus = "open"
	StatusSent          InvoiceStatus = "sent"
	StatusOverdue       InvoiceStatus = "overdue"
	StatusPaid          InvoiceStatus = "paid"
	StatusCancelled     InvoiceStatus = "cancelled"
	StatusUncollectible InvoiceStatus = "uncollectible"
)

// UnpaidStatuses lists, in query order, the states an invoice can still be paid from.
func UnpaidStatuses() []InvoiceStatus {
	return []InvoiceStatus{StatusOpen, StatusSent, StatusOverdue}
}

// ParseStatus accepts a known status name, case-insensitively.
func ParseStatus(s string) (InvoiceStatus, error) {
	st := InvoiceStatus(strings.ToLower(strings.TrimSpace(s)))
	switch st {
	case StatusOpen, StatusSent, StatusOverdue, StatusPaid, StatusCancelled, StatusUncollectible:
		return st, nil
	default:
		return "", fmt.Errorf("unknown invoice status %q: %w", s, ErrInvalidInput)
	}
}

// Invoice is an issued invoice as reported by the invoicing service.
type Invoice struct {
	ID          int64         `json:"id"`
	Number      string        `json:"number"`
	SubjectID   int64         `json:"subject_id"`
	SubjectName string        `json:"subject_name,omitempty"`
	Status      InvoiceStatus `json:"status"`
	IssuedOn    string        `json:"issued_on"`
	Due         int           `json:"due"`
	Total       float64       `json:"total"`
	Currency    string        `json:"currency,omitempty"`
	PDFURL      string        `json:"pdf_url,omitempty"`
}

// LineDraft is one invoice line before it is issued.
type LineDraft struct {
	Name      string  `json:"name"`
	Quantity  float64 `json:"quantity"`
	UnitName  string  `json:"unit_name"`
	UnitPrice float64 `json:"unit_price"`
}

// NewLineDraft builds a line whose name carries the billing month of the issue date.
func NewLineDraft(description string, issuedOn time.Time, quantity float64, unitName string, unitPrice float64) LineDraft {
	return LineDraft{
		Name:      LineName(description, issuedOn),
		Quantity:  quantity,
		UnitName:  strings.TrimSpace(unitName),
		UnitPrice: unitPrice,
	}
}

// LineName appends " za MM/YYYY" to the description.
func LineName(description string, issuedOn time.Time) string {
	return fmt.Sprintf("%s za %s", description, issuedOn.Format("01/2006"))
}

// Total is displayed to the user only; the service computes its own totals.
func (l LineDraft) Total() float64 {
	return l.Quantity * l.UnitPrice
}

// InvoiceDraft is everything needed to issue an invoice for one subject.
type InvoiceDraft struct {
	SubjectID int64
	IssuedOn  time.Time
	Due       int
	Lines     []LineDraft
}

// Total sums all line totals.
func (d InvoiceDraft) Total() float64 {
	var sum float64
	for _, l := range d.Lines {
		sum += l.Total()
	}
	return sum
}

// Validate rejects drafts the service would refuse.
func (d InvoiceDraft) Validate() error {
	err := validation.ValidateStruct(&d,
		validation.Field(&d.SubjectID, validation.Required),
		validation.Field(&d.IssuedOn, validation.Required),
		validation.Field(&d.Due, validation.Required, validation.Min(MinDue), validation.Max(MaxDue)),
		validation.Field(&d.Lines, validation.Required.Error("at least one item is required")),
	)
	if err != nil {
		return &OpError{Op: "invoice.validate", Kind: KindInvalidInput, Err: err}
	}

	for i, l := range d.Lines {
		if strings.TrimSpace(l.Name) == "" {
			return invalidLine(i, "name is required")
		}
		if err := ValidateQuantity(l.Quantity); err != nil {
			return invalidLine(i, err.Error())
		}
		if err := ValidateUnitPrice(l.UnitPrice); err != nil {
			return invalidLine(i, err.Error())
		}
	}
	return nil
}

// ValidateQuantity accepts a finite, positive count of units.
func ValidateQuantity(v float64) error {
	if !finite(v) {
		return errors.New("quantity must be a finite number")
	}
	if v <= 0 {
		return errors.New("quantity must be positive")
	}
	return nil
}

// ValidateUnitPrice accepts a finite price that is not negative.
func ValidateUnitPrice(v float64) error {
	if !finite(v) {
		return errors.New("unit price must be a finite number")
	}
	if v < 0 {
		return errors.New("unit price must not be negative")
	}
	return nil
}

// ValidateDue accepts a whole number of days between MinDue and MaxDue.
func ValidateDue(v float64) error {
	if !finite(v) || v != math.Trunc(v) {
		return errors.New("due must be a whole number of days")
	}
	if v < MinDue || v > MaxDue {
		return fmt.Errorf("due must be between %d and %d days", MinDue, MaxDue)
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func invalidLine(i int, msg string) error {
	return &OpError{
		Op:   "invoice.validate",
		Kind: KindInvalidInput,
		Err:  fmt.Errorf("lines[%d]: %s: %w", i, msg, ErrInvalidInput),
	}
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, &OpError{
			Op:   "date.parse",
			Kind: KindInvalidInput,
			Err:  fmt.Errorf("invalid date %q, use YYYY-MM-DD: %w", s, ErrInvalidInput),
		}
	}
	return t, nil
}
