package smtpmail

import (
	"context"
	"encoding/base64"
	"errors"
	"mime"
	"net"
	netmail "net/mail"
	"net/textproto"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/michalnik/money-collector/internal/domain"
	"github.com/michalnik/money-collector/internal/infra/markdown"
	"github.com/michalnik/money-collector/internal/ports"
)

type fakeSMTP struct {
	ln         net.Listener
	rejectAuth bool

	mu    sync.Mutex
	auth  string
	from  string
	rcpts []string
	data  string
	done  chan struct{}
}

func startFakeSMTP(t *testing.T, rejectAuth bool) *fakeSMTP {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	f := &fakeSMTP{ln: ln, rejectAuth: rejectAuth, done: make(chan struct{})}
	t.Cleanup(func() { _ = ln.Close() })
	go f.serve()
	return f
}

func (f *fakeSMTP) port() int {
	return f.ln.Addr().(*net.TCPAddr).Port
}

func (f *fakeSMTP) serve() {
	defer close(f.done)
	conn, err := f.ln.Accept()
	if err != nil {
		return
	}
	defer conn.Close()

	tc := textproto.NewConn(conn)
	reply := func(s string) { _ = tc.PrintfLine("%s", s) }
	reply("220 localhost ESMTP fake")

	for {
		line, err := tc.ReadLine()
		if err != nil {
			return
		}
		verb := strings.ToUpper(strings.SplitN(line, " ", 2)[0])
		switch verb {
		case "EHLO", "HELO":
			reply("250-localhost")
			reply("250 AUTH PLAIN")
		case "AUTH":
			f.mu.Lock()
			f.auth = line
			f.mu.Unlock()
			if f.rejectAuth {
				reply("535 5.7.8 bad credentials")
				continue
			}
			reply("235 2.7.0 ok")
		case "MAIL":
			f.mu.Lock()
			f.from = line
			f.mu.Unlock()
			reply("250 ok")
		case "RCPT":
			f.mu.Lock()
			f.rcpts = append(f.rcpts, line)
			f.mu.Unlock()
			reply("250 ok")
		case "DATA":
			reply("354 go ahead")
			b, err := tc.ReadDotBytes()
			if err != nil {
				return
			}
			f.mu.Lock()
			f.data = string(b)
			f.mu.Unlock()
			reply("250 queued")
		case "NOOP", "RSET":
			reply("250 ok")
		case "QUIT":
			reply("221 bye")
			return
		default:
			reply("502 not implemented")
		}
	}
}

func plainDialer(ctx context.Context, network, addr string) (net.Conn, error) {
	var d net.Dialer
	return d.DialContext(ctx, network, addr)
}

func testEmailConfig(port int) domain.EmailConfig {
	return domain.EmailConfig{
		SMTPUser:     "me@example.com",
		SMTPPassword: "pw",
		SMTPServer:   "localhost",
		SMTPPort:     port,
	}
}

func TestSenderSendDeliversMessage(t *testing.T) {
	srv := startFakeSMTP(t, false)

	fixed := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	s := New(testEmailConfig(srv.port()), markdown.NewRenderer(),
		WithDialer(func(ctx context.Context, network, _ string) (net.Conn, error) {
			return plainDialer(ctx, network, "127.0.0.1:"+strconv.Itoa(srv.port()))
		}),
		WithNow(func() time.Time { return fixed }),
	)

	err := s.Send(context.Background(), ports.Mail{
		To:          "client@example.com",
		Cc:          "me@example.com",
		Subject:     "Faktura č. MM2024-0007",
		Body:        "Hezký den,\n\n**děkuji**",
		Attachments: []ports.Attachment{{Filename: "invoice.pdf", ContentType: "application/pdf", Data: []byte("%PDF")}},
	})
	require.NoError(t, err)
	<-srv.done

	srv.mu.Lock()
	defer srv.mu.Unlock()

	creds := strings.TrimPrefix(srv.auth, "AUTH PLAIN ")
	decoded, err := base64.StdEncoding.DecodeString(creds)
	require.NoError(t, err)
	assert.Equal(t, "\x00me@example.com\x00pw", string(decoded))

	assert.Contains(t, srv.from, "<me@example.com>")
	require.Len(t, srv.rcpts, 2)
	assert.Contains(t, srv.rcpts[0], "<client@example.com>")
	assert.Contains(t, srv.rcpts[1], "<me@example.com>")

	parsed, err := netmail.ReadMessage(strings.NewReader(srv.data))
	require.NoError(t, err)
	assert.Equal(t, []string{"client@example.com"}, addresses(t, parsed.Header, "To"))
	assert.Equal(t, []string{"me@example.com"}, addresses(t, parsed.Header, "Cc"))
	assert.Contains(t, srv.data, "invoice.pdf")
	assert.Contains(t, srv.data, fixed.Format(time.RFC1123Z))
}

func TestSenderSendAuthFailure(t *testing.T) {
	srv := startFakeSMTP(t, true)
	s := New(testEmailConfig(srv.port()), nil,
		WithDialer(func(ctx context.Context, network, _ string) (net.Conn, error) {
			return plainDialer(ctx, network, "127.0.0.1:"+strconv.Itoa(srv.port()))
		}),
	)

	err := s.Send(context.Background(), ports.Mail{To: "client@example.com", Subject: "x", Body: "y"})
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindAuth))
}

func TestSenderSendDialFailure(t *testing.T) {
	s := New(testEmailConfig(1), nil,
		WithDialer(func(context.Context, string, string) (net.Conn, error) {
			return nil, &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}
		}),
	)
	err := s.Send(context.Background(), ports.Mail{To: "client@example.com", Subject: "x", Body: "y"})
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindExecution))
}

func TestComposeRequiresRecipient(t *testing.T) {
	s := New(testEmailConfig(465), nil)
	_, err := s.Compose(ports.Mail{To: "  ", Subject: "x", Body: "y"})
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindInvalidInput))
}

func TestComposeRendersMarkdownAlternative(t *testing.T) {
	s := New(testEmailConfig(465), nil)
	msg, err := s.Compose(ports.Mail{To: "a@example.com, b@example.com", Subject: "x", Body: "**tučně**"})
	require.NoError(t, err)

	rcpts, err := msg.GetRecipients()
	require.NoError(t, err)
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, rcpts)

	parsed := render(t, msg)
	_, params, err := mime.ParseMediaType(parsed.Header.Get("Content-Type"))
	require.NoError(t, err)
	parts := walk(t, parsed.Body, params["boundary"])
	require.Len(t, parts, 2)
	assert.Equal(t, "**tučně**", string(parts[0].body))
	assert.Contains(t, string(parts[1].body), "<strong>tučně</strong>")
}
