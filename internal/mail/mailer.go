package mail

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
)

// Message is one outbound HTML email.
type Message struct {
	To      []string
	CC      []string
	Subject string
	HTML    string
}

// Mailer delivers messages.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

var errNoRecipients = errors.New("mail: message has no recipients")

// LogMailer writes messages to the log instead of sending them.
type LogMailer struct {
	logger *zap.Logger
}

// NewLogMailer returns a mailer for development environments.
func NewLogMailer(logger *zap.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Send(_ context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return errNoRecipients
	}
	m.logger.Info("mail (log driver)",
		zap.Strings("to", msg.To),
		zap.Strings("cc", msg.CC),
		zap.String("subject", msg.Subject),
		zap.Int("html_bytes", len(msg.HTML)),
	)
	return nil
}

// cleanRecipients lowercases, trims and deduplicates addresses, dropping any in exclude.
func cleanRecipients(in []string, exclude ...string) []string {
	seen := map[string]struct{}{}
	for _, e := range exclude {
		seen[strings.ToLower(strings.TrimSpace(e))] = struct{}{}
	}
	out := []string{}
	for _, addr := range in {
		addr = strings.ToLower(strings.TrimSpace(addr))
		if addr == "" {
			continue
		}
		if _, dup := seen[addr]; dup {
			continue
		}
		seen[addr] = struct{}{}
		out = append(out, addr)
	}
	return out
}
