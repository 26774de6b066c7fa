package fakturoid

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/michalnik/money-collector/internal/domain"
	"github.com/michalnik/money-collector/internal/infra/httpclient"
)

const maxErrorBody = 512

// statusError maps a non-2xx response to a classified OpError.
func statusError(op, path string, resp httpclient.ResponseData) error {
	body := strings.TrimSpace(string(resp.BodyBytes))
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody] + "…"
	}

	return &domain.OpError{
		Op:   op,
		Kind: kindForStatus(resp.Status),
		Path: path,
		Err:  &domain.APIError{Status: resp.Status, Body: body},
	}
}

func kindForStatus(status int) domain.ErrorKind {
	switch status {
	case http.StatusNotFound:
		return domain.KindNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		return domain.KindAuth
	case http.StatusUnprocessableEntity, http.StatusBadRequest:
		return domain.KindInvalidInput
	case http.StatusTooManyRequests:
		return domain.KindRateLimited
	default:
		return domain.KindRemote
	}
}

func transportError(op, path string, err error) error {
	kind := domain.KindExecution
	if errors.Is(err, context.Canceled) {
		kind = domain.KindCancelled
	}
	return &domain.OpError{Op: op, Kind: kind, Path: path, Err: err}
}
