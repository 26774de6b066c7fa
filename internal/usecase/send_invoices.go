package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/michalnik/money-collector/internal/app/money"
	"github.com/michalnik/money-collector/internal/app/template"
	"github.com/michalnik/money-collector/internal/domain"
	"github.com/michalnik/money-collector/internal/ports"
)

// PDFFilename is the attachment name clients see.
const PDFFilename = "invoice.pdf"

type SendInvoices struct {
	api     ports.Invoicing
	mailer  ports.Mailer
	journal ports.Journal
	email   domain.EmailConfig
	log     *slog.Logger
}

func NewSendInvoices(api ports.Invoicing, mailer ports.Mailer, journal ports.Journal, email domain.EmailConfig, log *slog.Logger) *SendInvoices {
	if log == nil {
		log = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &SendInvoices{api: api, mailer: mailer, journal: journal, email: email, log: log}
}

// Candidates lists invoices that were issued but not sent yet.
func (uc *SendInvoices) Candidates(ctx context.Context, subjectID int64) ([]domain.Invoice, error) {
	return uc.api.ListInvoices(ctx, subjectID, domain.StatusOpen)
}

// SendResult lists the invoices that were mailed and marked sent, in order.
type SendResult struct {
	Sent []domain.Invoice
}

// Execute mails every invoice to the subject and marks it sent. It stops at
// the first failure; Sent then holds what was already done.
func (uc *SendInvoices) Execute(ctx context.Context, subject domain.Subject, invoices []domain.Invoice) (SendResult, error) {
	var res SendResult
	if len(invoices) == 0 {
		return res, nil
	}
	if strings.TrimSpace(subject.Email) == "" {
		return res, &domain.OpError{
			Op:   "usecase.send_invoices",
			Kind: domain.KindInvalidInput,
			Err:  fmt.Errorf("client %q has no email address: %w", subject.Name, domain.ErrInvalidInput),
		}
	}

	user, err := uc.api.CurrentUser(ctx)
	if err != nil {
		return res, err
	}

	for _, inv := range invoices {
		if err := uc.sendOne(ctx, subject, user, inv); err != nil {
			return res, err
		}
		res.Sent = append(res.Sent, inv)
	}
	return res, nil
}

func (uc *SendInvoices) sendOne(ctx context.Context, subject domain.Subject, user domain.User, inv domain.Invoice) error {
	pdf, err := uc.api.DownloadPDF(ctx, inv.ID)
	if err != nil {
		return err
	}

	vars := MailVars(subject, user, inv)
	subj, err := template.Render(uc.email.Subject, vars)
	if err != nil {
		return err
	}
	body, err := template.Render(uc.email.Body, vars)
	if err != nil {
		return err
	}

	cc := uc.email.CopyTo()
	mail := ports.Mail{
		To:      subject.Email,
		Cc:      cc,
		Subject: subj,
		Body:    body,
		Attachments: []ports.Attachment{
			{Filename: PDFFilename, ContentType: "application/pdf", Data: pdf},
		},
	}
	if err := uc.mailer.Send(ctx, mail); err != nil {
		return err
	}
	if err := uc.api.MarkAsSent(ctx, inv.ID); err != nil {
		return err
	}

	uc.log.Info("invoice.sent", "invoice_id", inv.ID, "number", inv.Number, "to", subject.Email)
	record(uc.journal, uc.log, domain.JournalEntry{
		Action:        domain.ActionSent,
		InvoiceID:     inv.ID,
		InvoiceNumber: inv.Number,
		SubjectID:     subject.ID,
		SubjectName:   subject.Name,
		Details: map[string]string{
			"to":        subject.Email,
			"cc":        cc,
			"subject":   subj,
			"pdf_bytes": strconv.Itoa(len(pdf)),
		},
	})
	return nil
}

// MailVars are the placeholders available to subject and body templates.
func MailVars(subject domain.Subject, user domain.User, inv domain.Invoice) domain.Vars {
	return domain.Vars{
		"number":    inv.Number,
		"full_name": user.FullName,
		"client":    subject.Name,
		"total":     money.Format(inv.Total, inv.Currency),
		"due":       strconv.Itoa(inv.Due),
	}
}
