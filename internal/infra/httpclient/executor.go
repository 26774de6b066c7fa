package httpclient

import (
	"context"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// ResponseData captures the response details and duration.
type ResponseData struct {
	Status    int
	Headers   http.Header
	BodyBytes []byte
	Truncated bool
	Duration  time.Duration
}

// Executor executes HTTP requests with throttling and timing.
type Executor struct {
	client       *http.Client
	timeout      time.Duration
	limiter      *rate.Limiter
	maxBodyBytes int64
}

// ExecutorOption allows configuring an Executor.
type ExecutorOption func(*Executor)

// WithTimeout sets the default timeout applied to requests.
func WithTimeout(timeout time.Duration) ExecutorOption {
	return func(e *Executor) { e.timeout = timeout }
}

// WithClient sets a custom HTTP client.
func WithClient(client *http.Client) ExecutorOption {
	return func(e *Executor) { e.client = client }
}

// WithRateLimit allows perMinute requests with the given burst. perMinute <= 0 disables throttling.
func WithRateLimit(perMinute, burst int) ExecutorOption {
	return func(e *Executor) { e.limiter = newLimiter(perMinute, burst) }
}

// WithMaxBodyBytes bounds how much of each response body is kept.
func WithMaxBodyBytes(n int64) ExecutorOption {
	return func(e *Executor) { e.maxBodyBytes = n }
}

// NewExecutor builds an Executor from cfg; options override it.
func NewExecutor(cfg Config, opts ...ExecutorOption) *Executor {
	e := &Executor{
		client:       New(cfg),
		timeout:      cfg.Timeout,
		limiter:      newLimiter(cfg.RequestsPerMinute, cfg.Burst),
		maxBodyBytes: cfg.MaxBodyBytes,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func newLimiter(perMinute, burst int) *rate.Limiter {
	if perMinute <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(float64(perMinute)/60.0), burst)
}

// Do waits for the rate limiter, executes the request and returns response data plus duration.
func (e *Executor) Do(ctx context.Context, req *http.Request) (ResponseData, error) {
	if e.limiter != nil {
		if err := e.limiter.Wait(ctx); err != nil {
			return ResponseData{}, err
		}
	}

	start := time.Now()
	ctxWithTimeout := ctx
	cancel := func() {}
	if e.timeout > 0 {
		ctxWithTimeout, cancel = context.WithTimeout(ctx, e.timeout)
	}
	defer cancel()

	resp, err := e.client.Do(req.WithContext(ctxWithTimeout))
	duration := time.Since(start)
	if err != nil {
		return ResponseData{Duration: duration}, err
	}
	defer resp.Body.Close()

	body, truncated, err := readBounded(resp.Body, e.maxBodyBytes)
	if err != nil {
		return ResponseData{Status: resp.StatusCode, Duration: time.Since(start)}, err
	}

	return ResponseData{
		Status:    resp.StatusCode,
		Headers:   resp.Header.Clone(),
		BodyBytes: body,
		Truncated: truncated,
		Duration:  time.Since(start),
	}, nil
}

func readBounded(r io.Reader, maxBytes int64) ([]byte, bool, error) {
	if maxBytes <= 0 {
		b, err := io.ReadAll(r)
		return b, false, err
	}
	lim := io.LimitReader(r, maxBytes+1)
	b, err := io.ReadAll(lim)
	if err != nil {
		return nil, false, err
	}
	if int64(len(b)) > maxBytes {
		return b[:maxBytes], true, nil
	}
	return b, false, nil
}
