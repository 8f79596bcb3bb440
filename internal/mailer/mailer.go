package mailer

import (
	"context"
	"time"

	"github.com/mdouchement/bluewiki/internal/model"
	"github.com/pkg/errors"
	"github.com/wneessen/go-mail"
)

type (
	// A Mailer sends emails.
	Mailer interface {
		Send(ctx context.Context, server SMTP, message Message) error
	}

	// SMTP holds the parameters of an SMTP server.
	SMTP struct {
		Host     string
		Port     int
		Username string
		Password string
	}

	// A Message is an email.
	Message struct {
		From    string
		To      string
		Subject string
		Text    string
		HTML    string
	}

	smtpMailer struct {
		timeout time.Duration
	}
)

// FromSetting returns the SMTP server configured in the given settings.
func FromSetting(setting *model.Setting) SMTP {
	return SMTP{
		Host:     setting.SMTPServer,
		Port:     setting.SMTPPort,
		Username: setting.SMTPEmail,
		Password: setting.SMTPPassword,
	}
}

// New returns a Mailer sending emails through SMTP.
func New() Mailer {
	return &smtpMailer{
		timeout: 15 * time.Second,
	}
}

// Send sends the message using the given SMTP server.
// Port 465 uses implicit TLS, other ports upgrade the connection with STARTTLS when available.
func (m *smtpMailer) Send(ctx context.Context, server SMTP, message Message) error {
	msg := mail.NewMsg()
	if err := msg.From(message.From); err != nil {
		return errors.Wrap(err, "invalid sender")
	}
	if err := msg.To(message.To); err != nil {
		return errors.Wrap(err, "invalid recipient")
	}
	msg.Subject(message.Subject)
	msg.SetBodyString(mail.TypeTextPlain, message.Text)
	if message.HTML != "" {
		msg.AddAlternativeString(mail.TypeTextHTML, message.HTML)
	}

	port := server.Port
	if port == 0 {
		port = 587
	}

	options := []mail.Option{
		mail.WithPort(port),
		mail.WithTimeout(m.timeout),
	}
	if port == 465 {
		options = append(options, mail.WithSSL())
	} else {
		options = append(options, mail.WithTLSPolicy(mail.TLSOpportunistic))
	}
	if server.Password != "" {
		options = append(options,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(server.Username),
			mail.WithPassword(server.Password),
		)
	}

	client, err := mail.NewClient(server.Host, options...)
	if err != nil {
		return errors.Wrap(err, "could not create SMTP client")
	}

	return errors.Wrap(client.DialAndSendWithContext(ctx, msg), "could not send email")
}
