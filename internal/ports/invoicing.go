package ports

import (
	"context"
	"time"

	"github.com/michalnik/money-collector/internal/domain"
)

// Invoicing is the remote invoicing service (the system of record).
type Invoicing interface {
	ListSubjects(ctx context.Context) ([]domain.Subject, error)
	CurrentUser(ctx context.Context) (domain.User, error)

	CreateInvoice(ctx context.Context, draft domain.InvoiceDraft) (domain.Invoice, error)
	ListInvoices(ctx context.Context, subjectID int64, status domain.InvoiceStatus) ([]domain.Invoice, error)
	GetInvoice(ctx context.Context, invoiceID int64) (domain.Invoice, error)
	DownloadPDF(ctx context.Context, invoiceID int64) ([]byte, error)

	MarkAsSent(ctx context.Context, invoiceID int64) error
	RecordPayment(ctx context.Context, invoiceID int64, paidOn time.Time) error
}
