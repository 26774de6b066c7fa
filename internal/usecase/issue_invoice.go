package usecase

import (
	"context"
	"io"
	"log/slog"
	"strconv"

	"github.com/michalnik/money-collector/internal/domain"
	"github.com/michalnik/money-collector/internal/ports"
)

type IssueInvoice struct {
	api     ports.Invoicing
	journal ports.Journal
	log     *slog.Logger
}

func NewIssueInvoice(api ports.Invoicing, journal ports.Journal, log *slog.Logger) *IssueInvoice {
	if log == nil {
		log = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &IssueInvoice{api: api, journal: journal, log: log}
}

func (uc *IssueInvoice) Execute(ctx context.Context, subject domain.Subject, draft domain.InvoiceDraft) (domain.Invoice, error) {
	draft.SubjectID = subject.ID
	if err := draft.Validate(); err != nil {
		return domain.Invoice{}, err
	}

	inv, err := uc.api.CreateInvoice(ctx, draft)
	if err != nil {
		return domain.Invoice{}, err
	}
	if inv.SubjectName == "" {
		inv.SubjectName = subject.Name
	}

	uc.log.Info("invoice.issued", "invoice_id", inv.ID, "number", inv.Number, "subject_id", subject.ID)
	record(uc.journal, uc.log, domain.JournalEntry{
		Action:        domain.ActionIssued,
		InvoiceID:     inv.ID,
		InvoiceNumber: inv.Number,
		SubjectID:     subject.ID,
		SubjectName:   subject.Name,
		Details: map[string]string{
			"issued_on": draft.IssuedOn.Format(domain.DateLayout),
			"due":       strconv.Itoa(draft.Due),
			"lines":     strconv.Itoa(len(draft.Lines)),
			"total":     strconv.FormatFloat(draft.Total(), 'f', 2, 64),
		},
	})
	return inv, nil
}

// record journals an entry. The remote action already happened, so a
// journal failure is only logged.
func record(j ports.Journal, log *slog.Logger, e domain.JournalEntry) {
	if j == nil {
		return
	}
	if _, err := j.Record(e); err != nil {
		log.Warn("journal.record_failed", "action", e.Action, "invoice_id", e.InvoiceID, "err", err)
	}
}
