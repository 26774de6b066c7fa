package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/michalnik/money-collector/internal/app/money"
	"github.com/michalnik/money-collector/internal/domain"
	"github.com/michalnik/money-collector/internal/ports"
)

// Session is the interactive money collection: pick a client, then
// optionally issue, send and pay invoices for it.
type Session struct {
	selectClient *SelectClient
	issue        *IssueInvoice
	send         *SendInvoices
	pay          *PayInvoices

	prompt   ports.Prompter
	defaults domain.DefaultsConfig
	log      *slog.Logger
}

type SessionDeps struct {
	API     ports.Invoicing
	Mailer  ports.Mailer
	Journal ports.Journal
	Prompt  ports.Prompter
	Config  domain.Config
	Log     *slog.Logger
}

func NewSession(d SessionDeps) *Session {
	log := d.Log
	if log == nil {
		log = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &Session{
		selectClient: NewSelectClient(d.API, d.Prompt),
		issue:        NewIssueInvoice(d.API, d.Journal, log),
		send:         NewSendInvoices(d.API, d.Mailer, d.Journal, d.Config.Email, log),
		pay:          NewPayInvoices(d.API, d.Journal, log),
		prompt:       d.Prompt,
		defaults:     d.Config.Defaults,
		log:          log,
	}
}

func (s *Session) Run(ctx context.Context) error {
	subject, err := s.selectClient.Execute(ctx)
	if errors.Is(err, domain.ErrNoClients) {
		s.prompt.Say("You have no clients to invoice.")
		return nil
	}
	if err != nil {
		return err
	}
	s.log.Info("session.client_selected", "subject_id", subject.ID)

	steps := []struct {
		question string
		def      bool
		run      func(context.Context, domain.Subject) error
	}{
		{"Create invoice?", true, s.createInvoice},
		{"Send issued invoices?", false, s.sendInvoices},
		{"Pay unpaid invoices?", true, s.payInvoices},
	}
	for _, st := range steps {
		ok, err := s.prompt.Confirm(st.question, st.def)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		if err := st.run(ctx, subject); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) createInvoice(ctx context.Context, subject domain.Subject) error {
	issuedOn, err := s.prompt.Date("Enter an invoice issued date (YYYY-MM-DD):")
	if err != nil {
		return err
	}
	due, err := s.prompt.Number(ports.NumberPrompt{
		Message:  "Enter a due of the issued invoice:",
		Validate: domain.ValidateDue,
	})
	if err != nil {
		return err
	}

	draft := domain.InvoiceDraft{SubjectID: subject.ID, IssuedOn: issuedOn, Due: int(due)}
	for {
		more, err := s.prompt.Confirm("Add another item?", true)
		if err != nil {
			return err
		}
		if !more {
			break
		}
		line, err := s.askLine(issuedOn)
		if err != nil {
			return err
		}
		draft.Lines = append(draft.Lines, line)
		s.prompt.Say("Item description: %s", line.Name)
		s.prompt.Say("Total item price is: %s", money.Format(line.Total(), ""))
	}

	if len(draft.Lines) == 0 {
		s.prompt.Say("No items, nothing to issue.")
		return nil
	}
	s.prompt.Say("Invoice total: %s", money.Format(draft.Total(), ""))

	ok, err := s.prompt.Confirm("Issue invoice?", true)
	if err != nil || !ok {
		return err
	}
	inv, err := s.issue.Execute(ctx, subject, draft)
	if err != nil {
		return err
	}
	s.prompt.Say("Invoice %s was issued.", inv.Number)
	return nil
}

func (s *Session) askLine(issuedOn time.Time) (domain.LineDraft, error) {
	quantity, err := s.prompt.Number(ports.NumberPrompt{
		Message:  "Enter count of units:",
		Validate: domain.ValidateQuantity,
	})
	if err != nil {
		return domain.LineDraft{}, err
	}
	unit, err := s.prompt.Text(ports.TextPrompt{
		Message:     "Enter name of unit:",
		Suggestions: s.defaults.UnitNames,
	})
	if err != nil {
		return domain.LineDraft{}, err
	}
	price, err := s.prompt.Number(ports.NumberPrompt{
		Message:  "Enter unit price:",
		Validate: domain.ValidateUnitPrice,
	})
	if err != nil {
		return domain.LineDraft{}, err
	}
	desc, err := s.prompt.Text(ports.TextPrompt{
		Message: "Enter item description:",
		Default: s.defaults.ItemDescription,
	})
	if err != nil {
		return domain.LineDraft{}, err
	}
	return domain.NewLineDraft(desc, issuedOn, quantity, unit, price), nil
}

func (s *Session) sendInvoices(ctx context.Context, subject domain.Subject) error {
	candidates, err := s.send.Candidates(ctx, subject.ID)
	if err != nil {
		return err
	}
	if len(candidates) == 0 {
		s.prompt.Say("No invoices to send.")
		return nil
	}

	selected, err := s.pick("Select invoices to send:", candidates)
	if err != nil || len(selected) == 0 {
		return err
	}

	res, err := s.send.Execute(ctx, subject, selected)
	for _, inv := range res.Sent {
		s.prompt.Say("Invoice %s was sent to %s.", inv.Number, subject.Email)
	}
	if err != nil {
		return fmt.Errorf("%d of %d invoices sent: %w", len(res.Sent), len(selected), err)
	}
	return nil
}

func (s *Session) payInvoices(ctx context.Context, subject domain.Subject) error {
	candidates, err := s.pay.Candidates(ctx, subject.ID)
	if err != nil {
		return err
	}
	if len(candidates) == 0 {
		s.prompt.Say("No invoices to pay.")
		return nil
	}

	selected, err := s.pick("Select invoices to pay:", candidates)
	if err != nil || len(selected) == 0 {
		return err
	}

	payments := make([]Payment, 0, len(selected))
	for _, inv := range selected {
		paidOn, err := s.prompt.Date(fmt.Sprintf("Enter an invoice %s paid date (YYYY-MM-DD):", inv.Number))
		if err != nil {
			return err
		}
		payments = append(payments, Payment{Invoice: inv, PaidOn: paidOn})
	}

	done, err := s.pay.Execute(ctx, subject, payments)
	for _, p := range done {
		s.prompt.Say("Invoice %s was paid at %s!", p.Invoice.Number, p.PaidOn.Format(domain.DateLayout))
	}
	return err
}

// pick keeps the order of invoices, not the order of selection.
func (s *Session) pick(message string, invoices []domain.Invoice) ([]domain.Invoice, error) {
	choices := make([]ports.Choice, 0, len(invoices))
	for _, inv := range invoices {
		choices = append(choices, ports.Choice{Label: InvoiceLabel(inv), Value: inv.ID})
	}
	ids, err := s.prompt.MultiSelect(message, choices)
	if err != nil {
		return nil, err
	}

	want := make(map[int64]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []domain.Invoice
	for _, inv := range invoices {
		if want[inv.ID] {
			out = append(out, inv)
		}
	}
	return out, nil
}

// InvoiceLabel is how invoices are listed in pickers.
func InvoiceLabel(inv domain.Invoice) string {
	return fmt.Sprintf("%s  %s  (%s)", inv.Number, money.Format(inv.Total, inv.Currency), inv.Status)
}
