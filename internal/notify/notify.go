package notify

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/tunga-io/tunga/internal/conf"
)

type Message struct {
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Text    string   `json:"text"`
	HTML    string   `json:"html"`
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// LogMailer writes messages to the log instead of delivering them.
type LogMailer struct{}

func (LogMailer) Send(ctx context.Context, msg Message) error {
	log.WithFields(log.Fields{
		"to":      strings.Join(msg.To, ","),
		"subject": msg.Subject,
	}).Infof("mail:\n%s", msg.Text)
	return nil
}

// Limited throttles an inner mailer to a token-bucket rate.
type Limited struct {
	Mailer  Mailer
	Limiter *rate.Limiter
}

func (l *Limited) Send(ctx context.Context, msg Message) error {
	if err := l.Limiter.Wait(ctx); err != nil {
		return errors.WithStack(err)
	}
	return l.Mailer.Send(ctx, msg)
}

// New builds the mailer selected by c.Transport.
func New(c conf.Mail) (Mailer, error) {
	var m Mailer
	switch c.Transport {
	case "", "log":
		m = LogMailer{}
	case "smtp":
		if c.Host == "" {
			return nil, errors.New("mail.host is required for the smtp transport")
		}
		m = &SMTPMailer{
			Host:     c.Host,
			Port:     c.Port,
			Username: c.Username,
			Password: c.Password,
			From:     c.From,
			Timeout:  c.Timeout.Std(),
		}
	default:
		return nil, errors.Errorf("unknown mail transport %q", c.Transport)
	}
	if c.RatePerSecond > 0 {
		burst := c.Burst
		if burst < 1 {
			burst = 1
		}
		m = &Limited{Mailer: m, Limiter: rate.NewLimiter(rate.Limit(c.RatePerSecond), burst)}
	}
	return m, nil
}
