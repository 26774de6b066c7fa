package domain

import "time"

// JournalAction names what happened to an invoice.
type JournalAction string

const (
	ActionIssued JournalAction = "issued"
	ActionSent   JournalAction = "sent"
	ActionPaid   JournalAction = "paid"
)

// JournalEntry is a local record of one action taken on an invoice.
type JournalEntry struct {
	ID            string            `json:"id"`
	Action        JournalAction     `json:"action"`
	InvoiceID     int64             `json:"invoice_id"`
	InvoiceNumber string            `json:"invoice_number"`
	SubjectID     int64             `json:"subject_id"`
	SubjectName   string            `json:"subject_name,omitempty"`
	At            time.Time         `json:"at"`
	Details       map[string]string `json:"details,omitempty"`
}

// JournalRef is an index line pointing at a stored entry.
type JournalRef struct {
	ID            string        `json:"id"`
	File          string        `json:"file"`
	Action        JournalAction `json:"action"`
	InvoiceNumber string        `json:"invoice_number"`
	At            time.Time     `json:"at"`
}
