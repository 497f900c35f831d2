package mail

import (
	"bytes"
	"context"
	"io"
	"mime/quotedprintable"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRendererEscapesAndIncludesDetails(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	html, err := r.Render(Page{
		Title:      "SPOT: New MEP Ticket (SR-20250101-001)",
		Paragraphs: []string{"A ticket was raised by <script>x</script>"},
		Details:    []Detail{{Label: "Location", Value: "PEPPL"}},
		ActionURL:  "https://spot.example.com",
	})
	require.NoError(t, err)

	assert.Contains(t, html, "SR-20250101-001")
	assert.Contains(t, html, "PEPPL")
	assert.Contains(t, html, "Open SPOT")
	assert.Contains(t, html, "https://spot.example.com")
	assert.NotContains(t, html, "<script>")
}

func TestRendererOmitsEmptySections(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	html, err := r.Render(Page{Title: "SPOT Login OTP", Paragraphs: []string{"Your code is 012345"}})
	require.NoError(t, err)
	assert.NotContains(t, html, "<a href")
	assert.Equal(t, 1, strings.Count(html, "<table width=\"600\""))
}

func TestCleanRecipients(t *testing.T) {
	got := cleanRecipients([]string{" A@x.com", "a@x.com", "", "b@x.com", "C@x.com"}, "c@x.com")
	assert.Equal(t, []string{"a@x.com", "b@x.com"}, got)
}

func TestSMTPMailerBuildHeaders(t *testing.T) {
	m, err := NewSMTPMailer(SMTPConfig{Host: "smtp.example.com", From: "spot@example.com"})
	require.NoError(t, err)
	m.now = func() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC) }

	out, err := m.build([]string{"a@x.com"}, []string{"b@x.com"}, Message{Subject: "Hi", HTML: "<p>body</p>"})
	require.NoError(t, err)
	raw := string(out)
	assert.Regexp(t, `(?m)^From: .*spot@example\.com`, raw)
	assert.Regexp(t, `(?m)^To: .*a@x\.com`, raw)
	assert.Regexp(t, `(?m)^Cc: .*b@x\.com`, raw)
	assert.Contains(t, raw, "Subject: Hi")
	assert.Contains(t, raw, "Content-Type: text/html")
	assert.Contains(t, raw, "Content-Transfer-Encoding: quoted-printable")
	assert.Contains(t, raw, "<p>body</p>")
	assert.Equal(t, 587, m.cfg.Port)
	assert.False(t, m.cfg.ImplicitTLS)
}

func TestSMTPMailerWrapsLongLines(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)
	long := strings.Repeat("pump room leak near panel B ", 110)
	html, err := r.Render(Page{
		Title:   "SPOT: New MEP Ticket (SR-20250101-001)",
		Details: []Detail{{Label: "Message", Value: long}},
	})
	require.NoError(t, err)

	m, err := NewSMTPMailer(SMTPConfig{Host: "smtp.example.com", From: "spot@example.com"})
	require.NoError(t, err)
	out, err := m.build([]string{"a@x.com"}, nil, Message{Subject: "New ticket", HTML: html})
	require.NoError(t, err)

	for i, line := range strings.Split(string(out), "\r\n") {
		assert.LessOrEqual(t, len(line), 998, "line %d", i)
	}

	sep := bytes.Index(out, []byte("\r\n\r\n"))
	require.Positive(t, sep)
	body, err := io.ReadAll(quotedprintable.NewReader(bytes.NewReader(out[sep+4:])))
	require.NoError(t, err)
	assert.Contains(t, string(body), strings.TrimSpace(long))
}

func TestSMTPMailerImplicitTLSOnPort465(t *testing.T) {
	m, err := NewSMTPMailer(SMTPConfig{Host: "smtp.example.com", Port: 465, From: "spot@example.com"})
	require.NoError(t, err)
	assert.True(t, m.cfg.ImplicitTLS)
	assert.Len(t, m.clientOptions(), 2)
}

func TestNewSMTPMailerRequiresHost(t *testing.T) {
	_, err := NewSMTPMailer(SMTPConfig{From: "spot@example.com"})
	assert.Error(t, err)
}

func TestLogMailerRejectsEmptyRecipients(t *testing.T) {
	m := NewLogMailer(zap.NewNop())
	assert.Error(t, m.Send(context.Background(), Message{Subject: "x"}))
	assert.NoError(t, m.Send(context.Background(), Message{To: []string{"a@x.com"}, Subject: "x"}))
}
