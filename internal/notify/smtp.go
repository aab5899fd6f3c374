package notify

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/wneessen/go-mail"
)

// SMTPMailer relays messages through an SMTP server, upgrading to TLS when
// the server offers STARTTLS.
type SMTPMailer struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Timeout  time.Duration
}

// client builds a fresh go-mail client per send; a client holds one
// connection and is not safe for concurrent use.
func (m *SMTPMailer) client() (*mail.Client, error) {
	opts := []mail.Option{mail.WithTLSPolicy(mail.TLSOpportunistic)}
	if m.Port > 0 {
		opts = append(opts, mail.WithPort(m.Port))
	}
	if m.Timeout > 0 {
		opts = append(opts, mail.WithTimeout(m.Timeout))
	}
	if m.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.Username),
			mail.WithPassword(m.Password),
		)
	}
	c, err := mail.NewClient(m.Host, opts...)
	return c, errors.Wrapf(err, "failed create smtp client for %s", m.Host)
}

func (m *SMTPMailer) message(msg Message) (*mail.Msg, error) {
	if len(msg.To) == 0 {
		return nil, errors.New("message has no recipients")
	}
	mm := mail.NewMsg()
	if err := mm.From(m.From); err != nil {
		return nil, errors.Wrapf(err, "invalid sender %q", m.From)
	}
	if err := mm.To(msg.To...); err != nil {
		return nil, errors.Wrapf(err, "invalid recipients %v", msg.To)
	}
	mm.Subject(msg.Subject)
	mm.SetMessageID()
	mm.SetDate()
	mm.SetBodyString(mail.TypeTextPlain, msg.Text)
	if msg.HTML != "" {
		mm.AddAlternativeString(mail.TypeTextHTML, msg.HTML)
	}
	return mm, nil
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	mm, err := m.message(msg)
	if err != nil {
		return err
	}
	c, err := m.client()
	if err != nil {
		return err
	}
	if m.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.Timeout)
		defer cancel()
	}
	return errors.Wrapf(c.DialAndSendWithContext(ctx, mm), "failed send %q to %v", msg.Subject, msg.To)
}
