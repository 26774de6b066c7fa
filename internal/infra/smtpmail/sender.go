// Package smtpmail sends invoice mails over SMTP with implicit TLS.
package smtpmail

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/textproto"
	"strconv"
	"strings"
	"time"

	"github.com/wneessen/go-mail"

	"github.com/michalnik/money-collector/internal/domain"
	"github.com/michalnik/money-collector/internal/infra/markdown"
	"github.com/michalnik/money-collector/internal/ports"
)

const dialTimeout = 15 * time.Second

// DialFunc opens the connection to the SMTP server.
type DialFunc func(ctx context.Context, network, addr string) (net.Conn, error)

type Sender struct {
	cfg  domain.EmailConfig
	md   *markdown.Renderer
	dial DialFunc
	now  func() time.Time
	log  *slog.Logger
}

type Option func(*Sender)

// WithDialer replaces the implicit TLS connection, e.g. with a plain one for
// tests. The dialer is then responsible for transport security.
func WithDialer(d DialFunc) Option {
	return func(s *Sender) { s.dial = d }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Sender) { s.log = l }
}

// WithNow is useful for tests.
func WithNow(now func() time.Time) Option {
	return func(s *Sender) { s.now = now }
}

func New(cfg domain.EmailConfig, md *markdown.Renderer, opts ...Option) *Sender {
	s := &Sender{
		cfg: cfg,
		md:  md,
		now: time.Now,
		log: slog.New(slog.NewJSONHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.md == nil {
		s.md = markdown.NewRenderer()
	}
	return s
}

var _ ports.Mailer = (*Sender)(nil)

func (s *Sender) clientOptions() []mail.Option {
	opts := []mail.Option{
		mail.WithPort(s.cfg.SMTPPort),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(s.cfg.SMTPUser),
		mail.WithPassword(s.cfg.SMTPPassword),
		mail.WithTimeout(dialTimeout),
	}
	if s.dial != nil {
		return append(opts,
			mail.WithDialContextFunc(mail.DialContextFunc(s.dial)),
			mail.WithTLSPolicy(mail.NoTLS),
		)
	}
	return append(opts, mail.WithSSL())
}

// Send composes and delivers m to every To and Cc address.
func (s *Sender) Send(ctx context.Context, m ports.Mail) error {
	msg, err := s.Compose(m)
	if err != nil {
		return err
	}

	addr := net.JoinHostPort(s.cfg.SMTPServer, strconv.Itoa(s.cfg.SMTPPort))
	c, err := mail.NewClient(s.cfg.SMTPServer, s.clientOptions()...)
	if err != nil {
		return &domain.OpError{Op: "smtpmail.client", Kind: domain.KindInvalidConfig, Path: addr, Err: err}
	}

	if err := c.DialWithContext(ctx); err != nil {
		_ = c.Close()
		if isAuthError(err) {
			return &domain.OpError{Op: "smtpmail.auth", Kind: domain.KindAuth, Path: addr, Err: err}
		}
		return &domain.OpError{Op: "smtpmail.dial", Kind: domain.KindExecution, Path: addr, Err: err}
	}
	if err := c.Send(msg); err != nil {
		_ = c.Close()
		return &domain.OpError{Op: "smtpmail.send", Kind: domain.KindRemote, Path: addr, Err: err}
	}
	if err := c.Close(); err != nil {
		return &domain.OpError{Op: "smtpmail.quit", Kind: domain.KindRemote, Path: addr, Err: err}
	}

	s.log.Info("mail.sent",
		"to", m.To,
		"cc", m.Cc,
		"subject", m.Subject,
		"attachments", len(m.Attachments),
	)
	return nil
}

// isAuthError reports whether the server refused the login.
func isAuthError(err error) bool {
	var te *textproto.Error
	if errors.As(err, &te) {
		switch te.Code {
		case 530, 534, 535, 538:
			return true
		}
	}
	return strings.Contains(err.Error(), "SMTP AUTH")
}
