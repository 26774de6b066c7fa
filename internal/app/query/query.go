// Package query filters JSON command output with JSONPath expressions.
package query

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PaesslerAG/jsonpath"

	"github.com/michalnik/money-collector/internal/domain"
)

// Apply evaluates expr against body and returns one string per matched value.
//
// Policy:
// - If body is not JSON -> error.
// - A match that is an array yields one line per element.
// - Scalars are printed as-is, objects as compact JSON.
func Apply(body []byte, expr string) ([]string, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, &domain.OpError{
			Op:   "query.apply",
			Kind: domain.KindInvalidInput,
			Err:  fmt.Errorf("empty jsonpath expression: %w", domain.ErrInvalidInput),
		}
	}

	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, &domain.OpError{
			Op:   "query.apply",
			Kind: domain.KindExecution,
			Err:  fmt.Errorf("output is not valid JSON: %w", err),
		}
	}

	val, err := jsonpath.Get(expr, doc)
	if err != nil {
		return nil, &domain.OpError{
			Op:   "query.apply",
			Kind: domain.KindInvalidInput,
			Err:  fmt.Errorf("jsonpath %s: %w", expr, err),
		}
	}

	if arr, ok := val.([]any); ok {
		out := make([]string, 0, len(arr))
		for _, v := range arr {
			s, err := toString(v)
			if err != nil {
				return nil, err
			}
			out = append(out, s)
		}
		return out, nil
	}

	s, err := toString(val)
	if err != nil {
		return nil, err
	}
	return []string{s}, nil
}

func toString(v any) (string, error) {
	switch t := v.(type) {
	case nil:
		return "null", nil
	case string:
		return t, nil
	case float64:
		// JSON numbers decode as float64; print ids without exponent.
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t)), nil
		}
		return fmt.Sprint(t), nil
	case bool:
		return fmt.Sprint(t), nil
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
}
