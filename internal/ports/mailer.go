package ports

import "context"

// Attachment is a file sent along with a mail.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Mail is a rendered message ready to be sent.
type Mail struct {
	To      string
	Cc      string
	Subject string
	// Body is Markdown; senders may deliver it as text and HTML alternatives.
	Body        string
	Attachments []Attachment
}

// Mailer delivers mails.
type Mailer interface {
	Send(ctx context.Context, m Mail) error
}
