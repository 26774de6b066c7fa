package fakturoid

import (
	"github.com/michalnik/money-collector/internal/domain"
)

func mapSubject(s subjectDTO) domain.Subject {
	return domain.Subject{
		ID:             s.ID,
		Name:           s.Name,
		Email:          s.Email,
		RegistrationNo: s.RegistrationNo,
	}
}

func mapInvoice(in invoiceDTO) domain.Invoice {
	return domain.Invoice{
		ID:          in.ID,
		Number:      in.Number,
		SubjectID:   in.SubjectID,
		SubjectName: in.ClientName,
		Status:      domain.InvoiceStatus(in.Status),
		IssuedOn:    in.IssuedOn,
		Due:         in.Due,
		Total:       float64(in.Total),
		Currency:    in.Currency,
		PDFURL:      in.URLs.PDF,
	}
}

func mapDraft(d domain.InvoiceDraft) createInvoiceRequest {
	lines := make([]lineDTO, 0, len(d.Lines))
	for _, l := range d.Lines {
		lines = append(lines, lineDTO{
			Name:      l.Name,
			Quantity:  l.Quantity,
			UnitName:  l.UnitName,
			UnitPrice: l.UnitPrice,
		})
	}
	return createInvoiceRequest{
		SubjectID: d.SubjectID,
		IssuedOn:  d.IssuedOn.Format(domain.DateLayout),
		Due:       d.Due,
		Lines:     lines,
	}
}
