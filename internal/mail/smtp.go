package mail

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	gomail "github.com/wneessen/go-mail"
)

// SMTPConfig configures an SMTPMailer.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	// ImplicitTLS dials straight into TLS. Port 465 implies it.
	ImplicitTLS bool
}

// SMTPMailer sends mail through an SMTP relay. Bodies are quoted-printable,
// so long rendered lines are soft-wrapped well under the SMTP line limit.
type SMTPMailer struct {
	cfg SMTPConfig
	now func() time.Time
}

// NewSMTPMailer builds a mailer. Host and From are required.
func NewSMTPMailer(cfg SMTPConfig) (*SMTPMailer, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("mail: smtp host is required")
	}
	if cfg.From == "" {
		return nil, fmt.Errorf("mail: from address is required")
	}
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	if cfg.Port == 465 {
		cfg.ImplicitTLS = true
	}
	return &SMTPMailer{cfg: cfg, now: time.Now}, nil
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	to := cleanRecipients(msg.To)
	if len(to) == 0 {
		return errNoRecipients
	}
	cc := cleanRecipients(msg.CC, to...)

	out, err := m.message(to, cc, msg)
	if err != nil {
		return err
	}
	client, err := gomail.NewClient(m.cfg.Host, m.clientOptions()...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, out); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

func (m *SMTPMailer) clientOptions() []gomail.Option {
	opts := []gomail.Option{gomail.WithPort(m.cfg.Port)}
	if m.cfg.ImplicitTLS {
		opts = append(opts, gomail.WithSSL())
	} else {
		opts = append(opts, gomail.WithTLSPolicy(gomail.TLSOpportunistic))
	}
	if m.cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(m.cfg.Username),
			gomail.WithPassword(m.cfg.Password),
		)
	}
	return opts
}

func (m *SMTPMailer) message(to, cc []string, msg Message) (*gomail.Msg, error) {
	out := gomail.NewMsg(gomail.WithEncoding(gomail.EncodingQP), gomail.WithCharset(gomail.CharsetUTF8))
	if err := out.From(m.cfg.From); err != nil {
		return nil, fmt.Errorf("mail from %q: %w", m.cfg.From, err)
	}
	if err := out.To(to...); err != nil {
		return nil, fmt.Errorf("mail to: %w", err)
	}
	if len(cc) > 0 {
		if err := out.Cc(cc...); err != nil {
			return nil, fmt.Errorf("mail cc: %w", err)
		}
	}
	out.Subject(msg.Subject)
	out.SetDateWithValue(m.now())
	out.SetMessageIDWithValue(uuid.NewString() + "@" + m.cfg.Host)
	out.SetBodyString(gomail.TypeTextHTML, msg.HTML)
	return out, nil
}

// build renders the message exactly as it is handed to the relay.
func (m *SMTPMailer) build(to, cc []string, msg Message) ([]byte, error) {
	out, err := m.message(to, cc, msg)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if _, err := out.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("mail render: %w", err)
	}
	return buf.Bytes(), nil
}
