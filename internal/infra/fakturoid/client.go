// Package fakturoid talks to the Fakturoid v3 API.
package fakturoid

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/michalnik/money-collector/internal/domain"
	"github.com/michalnik/money-collector/internal/infra/httpclient"
	"github.com/michalnik/money-collector/internal/ports"
)

// pageSize is the fixed number of records the API returns per list page.
const pageSize = 40

// Tokens are refreshed this long before they expire.
const tokenLeeway = 60 * time.Second

type Client struct {
	cfg  domain.FakturoidConfig
	exec *httpclient.Executor
	log  *slog.Logger
	now  func() time.Time

	pdfAttempts int
	pdfWait     time.Duration

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

type Option func(*Client)

func WithExecutor(e *httpclient.Executor) Option {
	return func(c *Client) { c.exec = e }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithNow is useful for tests.
func WithNow(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// WithPDFRetry sets how often a PDF that is still being generated is polled.
func WithPDFRetry(attempts int, wait time.Duration) Option {
	return func(c *Client) {
		c.pdfAttempts = attempts
		c.pdfWait = wait
	}
}

func New(cfg domain.FakturoidConfig, opts ...Option) *Client {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = domain.DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	c := &Client{
		cfg:         cfg,
		log:         slog.New(slog.NewJSONHandler(io.Discard, nil)),
		now:         time.Now,
		pdfAttempts: 5,
		pdfWait:     2 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.exec == nil {
		c.exec = httpclient.NewExecutor(httpclient.DefaultConfig())
	}
	return c
}

var _ ports.Invoicing = (*Client)(nil)

func (c *Client) baseHeaders() map[string]string {
	return map[string]string{
		"User-Agent": c.cfg.UserAgent(),
		"Accept":     "application/json",
	}
}

// authenticate exchanges the client credentials for a bearer token.
func (c *Client) authenticate(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && (c.expiresAt.IsZero() || c.now().Before(c.expiresAt)) {
		return c.token, nil
	}

	spec := httpclient.RequestSpec{
		Method:        http.MethodPost,
		URL:           c.cfg.BaseURL + pathToken,
		Headers:       c.baseHeaders(),
		JSON:          tokenRequest{GrantType: "client_credentials"},
		BasicUser:     c.cfg.ClientID,
		BasicPassword: c.cfg.ClientSecret,
	}
	req, err := httpclient.BuildRequest(ctx, spec)
	if err != nil {
		return "", err
	}

	resp, err := c.exec.Do(ctx, req)
	if err != nil {
		return "", transportError("fakturoid.authenticate", pathToken, err)
	}
	if resp.Status < 200 || resp.Status > 299 {
		return "", statusError("fakturoid.authenticate", pathToken, resp)
	}

	var tr tokenResponse
	if err := json.Unmarshal(resp.BodyBytes, &tr); err != nil || tr.AccessToken == "" {
		if err == nil {
			err = errors.New("empty access_token")
		}
		return "", &domain.OpError{Op: "fakturoid.authenticate", Kind: domain.KindAuth, Path: pathToken, Err: err}
	}

	c.token = tr.AccessToken
	c.expiresAt = time.Time{}
	if tr.ExpiresIn > 0 {
		c.expiresAt = c.now().Add(time.Duration(tr.ExpiresIn)*time.Second - tokenLeeway)
	}
	c.log.Debug("fakturoid.authenticated", "expires_in", tr.ExpiresIn)
	return c.token, nil
}

func (c *Client) dropToken(stale string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token == stale {
		c.token = ""
		c.expiresAt = time.Time{}
	}
}

// do performs an authenticated call. A 401 drops the cached token and retries once.
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body any) (httpclient.ResponseData, error) {
	for attempt := 0; ; attempt++ {
		token, err := c.authenticate(ctx)
		if err != nil {
			return httpclient.ResponseData{}, err
		}

		headers := c.baseHeaders()
		headers["Authorization"] = "Bearer " + token

		req, err := httpclient.BuildRequest(ctx, httpclient.RequestSpec{
			Method:  method,
			URL:     c.cfg.BaseURL + path,
			Headers: headers,
			Query:   query,
			JSON:    body,
		})
		if err != nil {
			return httpclient.ResponseData{}, err
		}

		resp, err := c.exec.Do(ctx, req)
		if err != nil {
			return resp, transportError(op, path, err)
		}

		c.log.Debug("fakturoid.request",
			"method", method,
			"path", path,
			"status", resp.Status,
			"duration_ms", resp.Duration.Milliseconds(),
		)

		if resp.Status == http.StatusUnauthorized && attempt == 0 {
			c.dropToken(token)
			continue
		}
		if resp.Status < 200 || resp.Status > 299 {
			return resp, statusError(op, path, resp)
		}
		return resp, nil
	}
}

func (c *Client) getJSON(ctx context.Context, op, path string, query url.Values, out any) error {
	resp, err := c.do(ctx, op, http.MethodGet, path, query, nil)
	if err != nil {
		return err
	}
	return decode(op, path, resp, out)
}

func decode(op, path string, resp httpclient.ResponseData, out any) error {
	if resp.Status == http.StatusNoContent || len(resp.BodyBytes) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.BodyBytes, out); err != nil {
		return &domain.OpError{Op: op, Kind: domain.KindRemote, Path: path, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// listAll walks pages until one comes back short.
func listAll[T any](ctx context.Context, c *Client, op, path string, query url.Values) ([]T, error) {
	var all []T
	for page := 1; ; page++ {
		q := url.Values{}
		for k, v := range query {
			q[k] = append([]string(nil), v...)
		}
		q.Set("page", strconv.Itoa(page))

		var batch []T
		if err := c.getJSON(ctx, op, path, q, &batch); err != nil {
			return nil, err
		}
		all = append(all, batch...)
		if len(batch) < pageSize {
			return all, nil
		}
	}
}

func (c *Client) CurrentUser(ctx context.Context) (domain.User, error) {
	var u userDTO
	if err := c.getJSON(ctx, "fakturoid.current_user", pathUser, nil, &u); err != nil {
		return domain.User{}, err
	}
	return domain.User{FullName: u.FullName, Email: u.Email}, nil
}

func (c *Client) ListSubjects(ctx context.Context) ([]domain.Subject, error) {
	dtos, err := listAll[subjectDTO](ctx, c, "fakturoid.list_subjects", c.subjectsPath(), nil)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Subject, 0, len(dtos))
	for _, s := range dtos {
		out = append(out, mapSubject(s))
	}
	return out, nil
}

func (c *Client) CreateInvoice(ctx context.Context, draft domain.InvoiceDraft) (domain.Invoice, error) {
	const op = "fakturoid.create_invoice"
	path := c.invoicesPath()

	resp, err := c.do(ctx, op, http.MethodPost, path, nil, mapDraft(draft))
	if err != nil {
		return domain.Invoice{}, err
	}

	var dto invoiceDTO
	if err := decode(op, path, resp, &dto); err != nil {
		return domain.Invoice{}, err
	}
	return mapInvoice(dto), nil
}

func (c *Client) ListInvoices(ctx context.Context, subjectID int64, status domain.InvoiceStatus) ([]domain.Invoice, error) {
	q := url.Values{}
	if subjectID > 0 {
		q.Set("subject_id", strconv.FormatInt(subjectID, 10))
	}
	if status != "" {
		q.Set("status", string(status))
	}

	dtos, err := listAll[invoiceDTO](ctx, c, "fakturoid.list_invoices", c.invoicesPath(), q)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Invoice, 0, len(dtos))
	for _, d := range dtos {
		out = append(out, mapInvoice(d))
	}
	return out, nil
}

func (c *Client) GetInvoice(ctx context.Context, invoiceID int64) (domain.Invoice, error) {
	var dto invoiceDTO
	if err := c.getJSON(ctx, "fakturoid.get_invoice", c.invoicePath(invoiceID), nil, &dto); err != nil {
		return domain.Invoice{}, err
	}
	return mapInvoice(dto), nil
}

// DownloadPDF fetches the invoice PDF. The API answers 204 while the PDF is
// still being generated, so the call is repeated a few times.
func (c *Client) DownloadPDF(ctx context.Context, invoiceID int64) ([]byte, error) {
	const op = "fakturoid.download_pdf"
	path := c.downloadPDFPath(invoiceID)

	attempts := c.pdfAttempts
	if attempts < 1 {
		attempts = 1
	}
	for i := 0; i < attempts; i++ {
		resp, err := c.do(ctx, op, http.MethodGet, path, nil, nil)
		if err != nil {
			return nil, err
		}
		if resp.Status != http.StatusNoContent && len(resp.BodyBytes) > 0 {
			if resp.Truncated {
				return nil, &domain.OpError{Op: op, Kind: domain.KindRemote, Path: path, Err: errors.New("pdf exceeds size limit")}
			}
			return resp.BodyBytes, nil
		}

		if i == attempts-1 || c.pdfWait <= 0 {
			continue
		}
		timer := time.NewTimer(c.pdfWait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, &domain.OpError{Op: op, Kind: domain.KindCancelled, Path: path, Err: ctx.Err()}
		case <-timer.C:
		}
	}

	return nil, &domain.OpError{
		Op:   op,
		Kind: domain.KindRemote,
		Path: path,
		Err:  fmt.Errorf("pdf of invoice %d is not ready yet", invoiceID),
	}
}

func (c *Client) MarkAsSent(ctx context.Context, invoiceID int64) error {
	_, err := c.do(ctx, "fakturoid.mark_as_sent", http.MethodPost, c.fireInvoicePath(invoiceID), nil, fireRequest{Event: "mark_as_sent"})
	return err
}

func (c *Client) RecordPayment(ctx context.Context, invoiceID int64, paidOn time.Time) error {
	_, err := c.do(ctx, "fakturoid.record_payment", http.MethodPost, c.paymentsPath(invoiceID), nil, paymentRequest{PaidOn: paidOn.Format(domain.DateLayout)})
	return err
}
