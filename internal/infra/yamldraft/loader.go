// Package yamldraft loads invoice drafts from YAML files.
//
//	issued_on: 2024-03-01
//	due: 14
//	lines:
//	  - description: "Softwarové inženýrství v rámci projektu: Acme"
//	    quantity: 160
//	    unit_name: hod
//	    unit_price: 1200
package yamldraft

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/michalnik/money-collector/internal/domain"
	"github.com/michalnik/money-collector/internal/ports"
)

type Loader struct {
	defaults domain.DefaultsConfig
	now      func() time.Time
}

type Option func(*Loader)

// WithNow sets the clock used when issued_on is omitted.
func WithNow(now func() time.Time) Option {
	return func(l *Loader) { l.now = now }
}

func NewLoader(defaults domain.DefaultsConfig, opts ...Option) *Loader {
	l := &Loader{defaults: defaults, now: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

var _ ports.DraftLoader = (*Loader)(nil)

func (l *Loader) LoadDraft(path string) (domain.InvoiceDraft, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		kind := domain.KindExecution
		if errors.Is(err, fs.ErrNotExist) {
			kind = domain.KindNotFound
		}
		return domain.InvoiceDraft{}, &domain.OpError{Op: "yamldraft.load", Kind: kind, Path: path, Err: err}
	}

	var yd yamlDraft
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&yd); err != nil && !errors.Is(err, io.EOF) {
		return domain.InvoiceDraft{}, &domain.OpError{Op: "yamldraft.load", Kind: domain.KindInvalidInput, Path: path, Err: err}
	}

	return l.mapDraft(path, yd)
}

func (l *Loader) mapDraft(path string, yd yamlDraft) (domain.InvoiceDraft, error) {
	issuedOn := l.now()
	issuedOn = time.Date(issuedOn.Year(), issuedOn.Month(), issuedOn.Day(), 0, 0, 0, 0, time.UTC)
	if strings.TrimSpace(yd.IssuedOn) != "" {
		t, err := domain.ParseDate(yd.IssuedOn)
		if err != nil {
			return domain.InvoiceDraft{}, invalidField(path, "issued_on", err.Error())
		}
		issuedOn = t
	}

	due := yd.Due
	if due == 0 {
		due = l.defaults.Due
	}

	if len(yd.Lines) == 0 {
		return domain.InvoiceDraft{}, invalidField(path, "lines", "at least one line is required")
	}

	draft := domain.InvoiceDraft{
		IssuedOn: issuedOn,
		Due:      due,
		Lines:    make([]domain.LineDraft, 0, len(yd.Lines)),
	}
	for i, yl := range yd.Lines {
		field := fmt.Sprintf("lines[%d]", i)
		if yl.Quantity == nil {
			return domain.InvoiceDraft{}, invalidField(path, field+".quantity", "quantity is required")
		}
		if yl.UnitPrice == nil {
			return domain.InvoiceDraft{}, invalidField(path, field+".unit_price", "unit_price is required")
		}

		desc := yl.Description
		if strings.TrimSpace(desc) == "" {
			desc = l.defaults.ItemDescription
		}
		unit := yl.UnitName
		if strings.TrimSpace(unit) == "" && len(l.defaults.UnitNames) > 0 {
			unit = l.defaults.UnitNames[0]
		}

		draft.Lines = append(draft.Lines, domain.NewLineDraft(desc, issuedOn, *yl.Quantity, unit, *yl.UnitPrice))
	}
	return draft, nil
}

func invalidField(path, field, msg string) error {
	return &domain.OpError{
		Op:   "yamldraft.map",
		Kind: domain.KindInvalidInput,
		Path: path,
		Err:  fmt.Errorf("%s: %s: %w", field, msg, domain.ErrInvalidInput),
	}
}
