package usecase

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/michalnik/money-collector/internal/domain"
	"github.com/michalnik/money-collector/internal/ports"
)

type PayInvoices struct {
	api     ports.Invoicing
	journal ports.Journal
	log     *slog.Logger
}

func NewPayInvoices(api ports.Invoicing, journal ports.Journal, log *slog.Logger) *PayInvoices {
	if log == nil {
		log = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &PayInvoices{api: api, journal: journal, log: log}
}

// Candidates returns open, sent and overdue invoices in that order, each once.
func (uc *PayInvoices) Candidates(ctx context.Context, subjectID int64) ([]domain.Invoice, error) {
	var out []domain.Invoice
	seen := map[int64]bool{}
	for _, st := range domain.UnpaidStatuses() {
		invs, err := uc.api.ListInvoices(ctx, subjectID, st)
		if err != nil {
			return nil, err
		}
		for _, inv := range invs {
			if seen[inv.ID] {
				continue
			}
			seen[inv.ID] = true
			out = append(out, inv)
		}
	}
	return out, nil
}

// Payment marks one invoice paid on a day.
type Payment struct {
	Invoice domain.Invoice
	PaidOn  time.Time
}

// Execute records the payments in order and stops at the first failure,
// returning the ones already recorded.
func (uc *PayInvoices) Execute(ctx context.Context, subject domain.Subject, payments []Payment) ([]Payment, error) {
	var done []Payment
	for _, p := range payments {
		if err := uc.api.RecordPayment(ctx, p.Invoice.ID, p.PaidOn); err != nil {
			return done, err
		}
		done = append(done, p)

		uc.log.Info("invoice.paid", "invoice_id", p.Invoice.ID, "number", p.Invoice.Number, "paid_on", p.PaidOn.Format(domain.DateLayout))
		record(uc.journal, uc.log, domain.JournalEntry{
			Action:        domain.ActionPaid,
			InvoiceID:     p.Invoice.ID,
			InvoiceNumber: p.Invoice.Number,
			SubjectID:     subject.ID,
			SubjectName:   subject.Name,
			Details:       map[string]string{"paid_on": p.PaidOn.Format(domain.DateLayout)},
		})
	}
	return done, nil
}
