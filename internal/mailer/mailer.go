// Package mailer delivers HTML messages. Callers decide when and to whom.
package mailer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Message is a single outgoing email.
type Message struct {
	From    string
	To      string
	Subject string
	HTML    string
}

func (m Message) validate() error {
	if m.From == "" || m.To == "" {
		return errors.New("mailer: from and to are required")
	}
	if strings.ContainsAny(m.To+m.From+m.Subject, "\r\n") {
		return errors.New("mailer: header values must not contain line breaks")
	}
	return nil
}

// Mailer sends a message and reports whether the transport accepted it.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPMailer sends through an SMTP relay with PLAIN auth.
type SMTPMailer struct {
	addr string
	auth smtp.Auth
	now  func() time.Time
}

func NewSMTPMailer(host string, port int, username, password string) *SMTPMailer {
	var auth smtp.Auth
	if username != "" {
		auth = smtp.PlainAuth("", username, password, host)
	}
	return &SMTPMailer{
		addr: net.JoinHostPort(host, strconv.Itoa(port)),
		auth: auth,
		now:  time.Now,
	}
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if err := msg.validate(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	body := buildMIME(msg, m.now())
	if err := smtp.SendMail(m.addr, m.auth, msg.From, []string{msg.To}, body); err != nil {
		return fmt.Errorf("smtp send to %s: %w", msg.To, err)
	}
	return nil
}

func buildMIME(msg Message, at time.Time) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "From: %s\r\n", msg.From)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	fmt.Fprintf(&b, "Date: %s\r\n", at.Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n\r\n")
	b.WriteString(msg.HTML)
	return b.Bytes()
}

// LogMailer only logs messages. It is used when no SMTP relay is configured.
type LogMailer struct {
	log *zap.SugaredLogger
}

func NewLogMailer(log *zap.SugaredLogger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) Send(_ context.Context, msg Message) error {
	if err := msg.validate(); err != nil {
		return err
	}
	m.log.Infow("mail not sent, no SMTP relay configured",
		"to", msg.To,
		"subject", msg.Subject,
		"bytes", len(msg.HTML),
	)
	return nil
}

var clientUpdateTmpl = template.Must(template.New("client-update").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: sans-serif; line-height: 1.5;">
<h2>Progress update: {{.WorkflowName}}</h2>
{{range .Paragraphs}}<p>{{.}}</p>
{{end}}<p style="color:#888;font-size:12px;">Sent automatically on {{.SentOn}}.</p>
</body>
</html>`))

// RenderClientUpdate wraps a plain-text summary in the client update email.
// The summary is escaped; blank lines separate paragraphs.
func RenderClientUpdate(workflowName, summary string, sentAt time.Time) (string, error) {
	var paragraphs []string
	for _, p := range strings.Split(strings.ReplaceAll(summary, "\r\n", "\n"), "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			paragraphs = append(paragraphs, p)
		}
	}

	var b bytes.Buffer
	err := clientUpdateTmpl.Execute(&b, struct {
		WorkflowName string
		Paragraphs   []string
		SentOn       string
	}{workflowName, paragraphs, sentAt.Format("January 2, 2006")})
	if err != nil {
		return "", err
	}
	return b.String(), nil
}

// ClientUpdateSubject is the subject line for automated client updates.
func ClientUpdateSubject(workflowName string) string {
	return fmt.Sprintf("Progress update: %s", workflowName)
}
