// Package journal keeps a local, append-only record of invoice actions.
package journal

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/michalnik/money-collector/internal/domain"
	"github.com/michalnik/money-collector/internal/ports"
)

const (
	dirName   = "journal"
	indexName = "index.jsonl"
	maskValue = "********"
)

type Store struct {
	dir   string
	now   func() time.Time
	newID func() string
}

type Option func(*Store)

// WithNow is useful for tests.
func WithNow(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDs replaces uuid generation.
func WithIDs(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

// NewStore keeps entries in <root>/journal.
func NewStore(root string, opts ...Option) *Store {
	s := &Store{
		dir:   filepath.Join(root, dirName),
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ ports.Journal = (*Store)(nil)

func (s *Store) Dir() string { return s.dir }

func (s *Store) Record(entry domain.JournalEntry) (string, error) {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return "", &domain.OpError{Op: "journal.mkdir", Kind: domain.KindExecution, Path: s.dir, Err: err}
	}

	if entry.At.IsZero() {
		entry.At = s.now()
	}
	entry.At = entry.At.UTC()
	if entry.ID == "" {
		entry.ID = s.newID()
	}
	entry.Details = maskDetails(entry.Details)

	slug := slugify(entry.InvoiceNumber)
	if slug == "" {
		slug = fmt.Sprintf("invoice-%d", entry.InvoiceID)
	}
	filename := fmt.Sprintf("%s_%s_%s.json", entry.At.Format("20060102T150405Z"), entry.Action, slug)
	path := filepath.Join(s.dir, filename)

	b, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return "", &domain.OpError{Op: "journal.marshal", Kind: domain.KindExecution, Path: path, Err: err}
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return "", &domain.OpError{Op: "journal.write", Kind: domain.KindExecution, Path: tmp, Err: err}
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", &domain.OpError{Op: "journal.rename", Kind: domain.KindExecution, Path: path, Err: err}
	}

	ref := domain.JournalRef{
		ID:            entry.ID,
		File:          filename,
		Action:        entry.Action,
		InvoiceNumber: entry.InvoiceNumber,
		At:            entry.At,
	}
	if err := s.appendIndex(ref); err != nil {
		return entry.ID, &domain.OpError{Op: "journal.index", Kind: domain.KindExecution, Path: s.indexPath(), Err: err}
	}
	return entry.ID, nil
}

// List returns index entries oldest first. Lines that do not parse are skipped.
func (s *Store) List() ([]domain.JournalRef, error) {
	b, err := os.ReadFile(s.indexPath())
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, &domain.OpError{Op: "journal.list", Kind: domain.KindExecution, Path: s.indexPath(), Err: err}
	}

	var out []domain.JournalRef
	sc := bufio.NewScanner(bytes.NewReader(b))
	for sc.Scan() {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		var ref domain.JournalRef
		if err := json.Unmarshal(line, &ref); err != nil {
			continue
		}
		out = append(out, ref)
	}
	if err := sc.Err(); err != nil {
		return out, &domain.OpError{Op: "journal.list", Kind: domain.KindExecution, Path: s.indexPath(), Err: err}
	}
	return out, nil
}

// Entry loads a stored entry by its index reference.
func (s *Store) Entry(ref domain.JournalRef) (domain.JournalEntry, error) {
	path := filepath.Join(s.dir, filepath.Base(ref.File))
	b, err := os.ReadFile(path)
	if err != nil {
		kind := domain.KindExecution
		if errors.Is(err, fs.ErrNotExist) {
			kind = domain.KindNotFound
		}
		return domain.JournalEntry{}, &domain.OpError{Op: "journal.entry", Kind: kind, Path: path, Err: err}
	}
	var e domain.JournalEntry
	if err := json.Unmarshal(b, &e); err != nil {
		return domain.JournalEntry{}, &domain.OpError{Op: "journal.entry", Kind: domain.KindExecution, Path: path, Err: err}
	}
	return e, nil
}

func (s *Store) indexPath() string {
	return filepath.Join(s.dir, indexName)
}

func (s *Store) appendIndex(ref domain.JournalRef) error {
	line, err := json.Marshal(ref)
	if err != nil {
		return err
	}
	f, err := os.OpenFile(s.indexPath(), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.Write(append(line, '\n'))
	return err
}

// maskDetails returns a masked copy (does NOT mutate the input).
func maskDetails(in map[string]string) map[string]string {
	if in == nil {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		if isSensitiveKey(k) {
			v = maskValue
		}
		out[k] = v
	}
	return out
}

func isSensitiveKey(k string) bool {
	kk := strings.ToLower(k)
	return strings.Contains(kk, "token") ||
		strings.Contains(kk, "secret") ||
		strings.Contains(kk, "password")
}

// slugify produces a safe filename component.
func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))

	var b strings.Builder
	b.Grow(len(s))

	lastDash := true
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			lastDash = false
			continue
		}
		if !lastDash {
			b.WriteByte('-')
			lastDash = true
		}
	}
	return strings.TrimRight(b.String(), "-")
}
