package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/michalnik/money-collector/internal/domain"
)

// RequestSpec describes a single API call.
type RequestSpec struct {
	Method  string
	URL     string
	Headers map[string]string
	Query   url.Values

	// JSON, when set, is marshalled as the request body.
	JSON any

	// BasicAuth, when set, is sent as "user:password".
	BasicUser     string
	BasicPassword string
}

// BuildRequest builds an HTTP request from a RequestSpec.
func BuildRequest(ctx context.Context, spec RequestSpec) (*http.Request, error) {
	if strings.TrimSpace(spec.URL) == "" {
		return nil, &domain.OpError{
			Op:   "httpclient.build",
			Kind: domain.KindInvalidConfig,
			Err:  fmt.Errorf("empty url: %w", domain.ErrInvalidConfig),
		}
	}

	u, err := url.Parse(spec.URL)
	if err != nil {
		return nil, &domain.OpError{
			Op:   "httpclient.build",
			Kind: domain.KindInvalidConfig,
			Path: spec.URL,
			Err:  err,
		}
	}
	if len(spec.Query) > 0 {
		q := u.Query()
		for k, vs := range spec.Query {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}

	bodyReader := bytes.NewReader(nil)
	contentType := ""

	if spec.JSON != nil {
		payload, err := json.Marshal(spec.JSON)
		if err != nil {
			return nil, &domain.OpError{
				Op:   "httpclient.build",
				Kind: domain.KindInvalidInput,
				Path: spec.URL,
				Err:  err,
			}
		}
		bodyReader = bytes.NewReader(payload)
		contentType = "application/json"
	}

	method := strings.ToUpper(strings.TrimSpace(spec.Method))
	if method == "" {
		method = http.MethodGet
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), bodyReader)
	if err != nil {
		return nil, &domain.OpError{
			Op:   "httpclient.build",
			Kind: domain.KindInvalidConfig,
			Path: spec.URL,
			Err:  err,
		}
	}

	for k, v := range spec.Headers {
		req.Header.Set(k, v)
	}

	if contentType != "" && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", contentType)
	}

	if spec.BasicUser != "" || spec.BasicPassword != "" {
		req.SetBasicAuth(spec.BasicUser, spec.BasicPassword)
	}

	return req, nil
}
