package usecase

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/michalnik/money-collector/internal/domain"
	"github.com/michalnik/money-collector/internal/ports"
)

type fakeAPI struct {
	subjects    []domain.Subject
	byStatus    map[domain.InvoiceStatus][]domain.Invoice
	user        domain.User
	created     []domain.InvoiceDraft
	createdInv  domain.Invoice
	sent        []int64
	paid        map[int64]time.Time
	failPDF     map[int64]error
	failPayment map[int64]error
	listCalls   []domain.InvoiceStatus
	userCalls   int
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		byStatus:    map[domain.InvoiceStatus][]domain.Invoice{},
		paid:        map[int64]time.Time{},
		failPDF:     map[int64]error{},
		failPayment: map[int64]error{},
		user:        domain.User{FullName: "Jan Novák", Email: "jan@example.com"},
	}
}

var _ ports.Invoicing = (*fakeAPI)(nil)

func (f *fakeAPI) ListSubjects(context.Context) ([]domain.Subject, error) { return f.subjects, nil }

func (f *fakeAPI) CurrentUser(context.Context) (domain.User, error) {
	f.userCalls++
	return f.user, nil
}

func (f *fakeAPI) CreateInvoice(_ context.Context, d domain.InvoiceDraft) (domain.Invoice, error) {
	f.created = append(f.created, d)
	return f.createdInv, nil
}

func (f *fakeAPI) ListInvoices(_ context.Context, _ int64, st domain.InvoiceStatus) ([]domain.Invoice, error) {
	f.listCalls = append(f.listCalls, st)
	return f.byStatus[st], nil
}

func (f *fakeAPI) GetInvoice(_ context.Context, id int64) (domain.Invoice, error) {
	for _, invs := range f.byStatus {
		for _, inv := range invs {
			if inv.ID == id {
				return inv, nil
			}
		}
	}
	return domain.Invoice{}, &domain.OpError{Op: "fake.get_invoice", Kind: domain.KindNotFound, Err: domain.ErrNotFound}
}

func (f *fakeAPI) DownloadPDF(_ context.Context, id int64) ([]byte, error) {
	if err := f.failPDF[id]; err != nil {
		return nil, err
	}
	return []byte(fmt.Sprintf("%%PDF-%d", id)), nil
}

func (f *fakeAPI) MarkAsSent(_ context.Context, id int64) error {
	f.sent = append(f.sent, id)
	return nil
}

func (f *fakeAPI) RecordPayment(_ context.Context, id int64, paidOn time.Time) error {
	if err := f.failPayment[id]; err != nil {
		return err
	}
	f.paid[id] = paidOn
	return nil
}

type fakeMailer struct {
	mails []ports.Mail
	err   error
}

func (m *fakeMailer) Send(_ context.Context, mail ports.Mail) error {
	if m.err != nil {
		return m.err
	}
	m.mails = append(m.mails, mail)
	return nil
}

type fakeJournal struct {
	mu      sync.Mutex
	entries []domain.JournalEntry
}

func (j *fakeJournal) Record(e domain.JournalEntry) (string, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, e)
	return fmt.Sprintf("j-%d", len(j.entries)), nil
}

func (j *fakeJournal) List() ([]domain.JournalRef, error) { return nil, nil }

type fakeStore struct {
	saved *domain.Config
}

func (s *fakeStore) Exists() bool { return s.saved != nil }

func (s *fakeStore) Load() (domain.Config, error) { return *s.saved, nil }

func (s *fakeStore) Save(cfg domain.Config) error {
	s.saved = &cfg
	return nil
}

func (s *fakeStore) Path() string { return "/tmp/config.ini" }

// scriptedPrompter answers prompts from a queue and records what was asked.
type scriptedPrompter struct {
	t       *testing.T
	answers []any
	asked   []string
	said    []string
	// rejected collects validation errors of answers that were asked again.
	rejected []string
}

func script(t *testing.T, answers ...any) *scriptedPrompter {
	return &scriptedPrompter{t: t, answers: answers}
}

func (p *scriptedPrompter) next(message string) any {
	p.t.Helper()
	p.asked = append(p.asked, message)
	if len(p.answers) == 0 {
		p.t.Fatalf("unexpected prompt %q", message)
	}
	a := p.answers[0]
	p.answers = p.answers[1:]
	if err, ok := a.(error); ok {
		return err
	}
	return a
}

func (p *scriptedPrompter) Select(message string, _ []ports.Choice) (int64, error) {
	switch a := p.next(message).(type) {
	case error:
		return 0, a
	case int64:
		return a, nil
	default:
		p.t.Fatalf("prompt %q: want int64 answer, got %T", message, a)
		return 0, nil
	}
}

func (p *scriptedPrompter) MultiSelect(message string, _ []ports.Choice) ([]int64, error) {
	switch a := p.next(message).(type) {
	case error:
		return nil, a
	case []int64:
		return a, nil
	default:
		p.t.Fatalf("prompt %q: want []int64 answer, got %T", message, a)
		return nil, nil
	}
}

func (p *scriptedPrompter) Confirm(message string, _ bool) (bool, error) {
	switch a := p.next(message).(type) {
	case error:
		return false, a
	case bool:
		return a, nil
	default:
		p.t.Fatalf("prompt %q: want bool answer, got %T", message, a)
		return false, nil
	}
}

func (p *scriptedPrompter) Text(tp ports.TextPrompt) (string, error) {
	switch a := p.next(tp.Message).(type) {
	case error:
		return "", a
	case string:
		if tp.Validate != nil {
			if err := tp.Validate(a); err != nil {
				return "", err
			}
		}
		if tp.Filter != nil {
			a = tp.Filter(a)
		}
		return a, nil
	default:
		p.t.Fatalf("prompt %q: want string answer, got %T", tp.Message, a)
		return "", nil
	}
}

// Number asks again after an answer fails validation, like the terminal prompt.
func (p *scriptedPrompter) Number(np ports.NumberPrompt) (float64, error) {
	for {
		var v float64
		switch a := p.next(np.Message).(type) {
		case error:
			return 0, a
		case float64:
			v = a
		case int:
			v = float64(a)
		default:
			p.t.Fatalf("prompt %q: want number answer, got %T", np.Message, a)
			return 0, nil
		}
		if np.Validate != nil {
			if err := np.Validate(v); err != nil {
				p.rejected = append(p.rejected, err.Error())
				continue
			}
		}
		return v, nil
	}
}

func (p *scriptedPrompter) Date(message string) (time.Time, error) {
	switch a := p.next(message).(type) {
	case error:
		return time.Time{}, a
	case string:
		return domain.ParseDate(a)
	default:
		p.t.Fatalf("prompt %q: want date string answer, got %T", message, a)
		return time.Time{}, nil
	}
}

func (p *scriptedPrompter) Say(format string, args ...any) {
	p.said = append(p.said, fmt.Sprintf(format, args...))
}
