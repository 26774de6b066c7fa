package fakturoid

import (
	"fmt"
	"net/url"
)

const (
	pathToken = "/oauth/token"
	pathUser  = "/user.json"
)

func (c *Client) accountPath(format string, args ...any) string {
	return "/accounts/" + url.PathEscape(c.cfg.Account) + fmt.Sprintf(format, args...)
}

func (c *Client) subjectsPath() string { return c.accountPath("/subjects.json") }
func (c *Client) invoicesPath() string { return c.accountPath("/invoices.json") }

func (c *Client) invoicePath(id int64) string {
	return c.accountPath("/invoices/%d.json", id)
}

func (c *Client) fireInvoicePath(id int64) string {
	return c.accountPath("/invoices/%d/fire.json", id)
}

func (c *Client) paymentsPath(id int64) string {
	return c.accountPath("/invoices/%d/payments.json", id)
}

func (c *Client) downloadPDFPath(id int64) string {
	return c.accountPath("/invoices/%d/download.pdf", id)
}
