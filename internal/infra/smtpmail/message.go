package smtpmail

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/wneessen/go-mail"

	"github.com/michalnik/money-collector/internal/domain"
	"github.com/michalnik/money-collector/internal/ports"
)

// Compose turns a rendered mail into a message sent from the SMTP user: the
// Markdown body as text/plain with an HTML alternative, then the attachments.
func (s *Sender) Compose(m ports.Mail) (*mail.Msg, error) {
	to := splitAddresses(m.To)
	if len(to) == 0 {
		return nil, &domain.OpError{
			Op:   "smtpmail.compose",
			Kind: domain.KindInvalidInput,
			Err:  fmt.Errorf("mail has no recipient: %w", domain.ErrInvalidInput),
		}
	}

	html, err := s.md.Document(m.Body)
	if err != nil {
		return nil, &domain.OpError{Op: "smtpmail.compose", Kind: domain.KindExecution, Err: err}
	}

	msg := mail.NewMsg()
	if err := msg.From(s.cfg.SMTPUser); err != nil {
		return nil, &domain.OpError{Op: "smtpmail.compose", Kind: domain.KindInvalidConfig, Path: "smtp_user", Err: err}
	}
	if err := msg.To(to...); err != nil {
		return nil, invalidAddress(err)
	}
	if cc := splitAddresses(m.Cc); len(cc) > 0 {
		if err := msg.Cc(cc...); err != nil {
			return nil, invalidAddress(err)
		}
	}
	msg.Subject(m.Subject)
	msg.SetDateWithValue(s.now())
	msg.SetMessageIDWithValue(uuid.NewString() + "@" + hostOf(s.cfg.SMTPUser, s.cfg.SMTPServer))

	msg.SetBodyString(mail.TypeTextPlain, m.Body)
	msg.AddAlternativeString(mail.TypeTextHTML, html)

	for _, a := range m.Attachments {
		ct := a.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		err := msg.AttachReader(a.Filename, bytes.NewReader(a.Data),
			mail.WithFileContentType(mail.ContentType(ct)))
		if err != nil {
			return nil, &domain.OpError{Op: "smtpmail.attach", Kind: domain.KindExecution, Path: a.Filename, Err: err}
		}
	}
	return msg, nil
}

func invalidAddress(err error) error {
	return &domain.OpError{
		Op:   "smtpmail.compose",
		Kind: domain.KindInvalidInput,
		Err:  fmt.Errorf("%v: %w", err, domain.ErrInvalidInput),
	}
}

func splitAddresses(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func hostOf(addr, fallback string) string {
	if i := strings.LastIndex(addr, "@"); i >= 0 && i < len(addr)-1 {
		return addr[i+1:]
	}
	return fallback
}
