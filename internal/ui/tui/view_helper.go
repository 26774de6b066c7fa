package tui

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/michalnik/money-collector/internal/app/money"
	"github.com/michalnik/money-collector/internal/domain"
)

func clampString(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))

	n := 0
	for _, r := range s {
		if n >= maxLen {
			break
		}
		b.WriteRune(r)
		n++
	}
	return b.String() + "…"
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("63"))).
		Headers(headers...)
}

// RenderSubjects lists clients for `clients list`.
func RenderSubjects(subjects []domain.Subject) string {
	if len(subjects) == 0 {
		return "No clients."
	}
	t := newTable("ID", "NAME", "EMAIL", "REG. NO")
	for _, s := range subjects {
		t.Row(strconv.FormatInt(s.ID, 10), clampString(s.Name, 40), s.Email, s.RegistrationNo)
	}
	return t.String()
}

// RenderInvoices lists invoices for `invoices list`.
func RenderInvoices(invoices []domain.Invoice) string {
	if len(invoices) == 0 {
		return "No invoices."
	}
	t := newTable("ID", "NUMBER", "CLIENT", "ISSUED", "DUE", "TOTAL", "STATUS")
	for _, inv := range invoices {
		t.Row(
			strconv.FormatInt(inv.ID, 10),
			inv.Number,
			clampString(inv.SubjectName, 30),
			inv.IssuedOn,
			strconv.Itoa(inv.Due),
			money.Format(inv.Total, inv.Currency),
			string(inv.Status),
		)
	}
	return t.String()
}

// RenderJournal lists journal index lines, oldest first.
func RenderJournal(refs []domain.JournalRef) string {
	if len(refs) == 0 {
		return "Journal is empty."
	}
	t := newTable("WHEN", "ACTION", "INVOICE", "FILE")
	for _, r := range refs {
		t.Row(r.At.Local().Format("2006-01-02 15:04"), string(r.Action), r.InvoiceNumber, r.File)
	}
	return t.String()
}

// RenderDraft summarizes an invoice draft before it is issued.
func RenderDraft(d domain.InvoiceDraft) string {
	t := newTable("ITEM", "QTY", "UNIT", "UNIT PRICE", "TOTAL")
	for _, l := range d.Lines {
		t.Row(
			clampString(l.Name, 60),
			strconv.FormatFloat(l.Quantity, 'f', -1, 64),
			l.UnitName,
			money.Format(l.UnitPrice, ""),
			money.Format(l.Total(), ""),
		)
	}
	return "Issued on " + d.IssuedOn.Format(domain.DateLayout) +
		", due in " + strconv.Itoa(d.Due) + " days\n" +
		t.String() + "\nTotal: " + money.Format(d.Total(), "")
}
