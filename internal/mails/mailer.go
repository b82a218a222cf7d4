package mails

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"strings"
	"time"

	"github.com/go-mail/mail/v2"
)

//go:embed "templates"
var templateFS embed.FS

const defaultBackoff = 500 * time.Millisecond

// Dialer delivers messages, *mail.Dialer is the SMTP implementation.
type Dialer interface {
	DialAndSend(msgs ...*mail.Message) error
}

// Mailer renders the embedded templates and sends them over SMTP. Every
// template file defines the "subject", "plainBody" and "htmlBody" blocks.
type Mailer struct {
	dialer    Dialer
	sender    string
	attempts  int
	backoff   time.Duration
	templates map[string]*template.Template
}

func New(host string, port int, timeout time.Duration, username, password, sender string, retriesCount int) *Mailer {
	dialer := mail.NewDialer(host, port, username, password)
	dialer.Timeout = timeout
	return newMailer(dialer, sender, retriesCount)
}

func newMailer(dialer Dialer, sender string, attempts int) *Mailer {
	if attempts < 1 {
		attempts = 1
	}
	return &Mailer{
		dialer:    dialer,
		sender:    sender,
		attempts:  attempts,
		backoff:   defaultBackoff,
		templates: mustLoadTemplates(),
	}
}

// mustLoadTemplates parses each file on its own, the block names repeat
// across files.
func mustLoadTemplates() map[string]*template.Template {
	paths, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		panic(err)
	}
	templates := make(map[string]*template.Template, len(paths))
	for _, p := range paths {
		templates[path.Base(p)] = template.Must(template.ParseFS(templateFS, p))
	}
	return templates
}

type email struct {
	subject   string
	plainBody string
	htmlBody  string
}

func (m *Mailer) render(tmplName string, data any) (email, error) {
	tmpl, ok := m.templates[tmplName]
	if !ok {
		return email{}, fmt.Errorf("mails: unknown template %q", tmplName)
	}
	exec := func(block string) (string, error) {
		var sb strings.Builder
		if err := tmpl.ExecuteTemplate(&sb, block, data); err != nil {
			return "", fmt.Errorf("mails: rendering %s of %q: %w", block, tmplName, err)
		}
		return strings.TrimSpace(sb.String()), nil
	}
	var (
		e   email
		err error
	)
	if e.subject, err = exec("subject"); err != nil {
		return email{}, err
	}
	if e.plainBody, err = exec("plainBody"); err != nil {
		return email{}, err
	}
	if e.htmlBody, err = exec("htmlBody"); err != nil {
		return email{}, err
	}
	return e, nil
}

func (m *Mailer) message(recipient string, e email) *mail.Message {
	msg := mail.NewMessage()
	msg.SetHeader("From", m.sender)
	msg.SetHeader("To", recipient)
	msg.SetHeader("Subject", e.subject)
	msg.SetBody("text/plain", e.plainBody)
	msg.AddAlternative("text/html", e.htmlBody)
	return msg
}

// Send renders tmplName with data and delivers it to recipient. Delivery is
// attempted up to the configured count, waiting a little longer each time.
func (m *Mailer) Send(recipient string, tmplName string, data any) error {
	e, err := m.render(tmplName, data)
	if err != nil {
		return err
	}
	msg := m.message(recipient, e)
	for attempt := 1; ; attempt++ {
		err = m.dialer.DialAndSend(msg)
		if err == nil {
			return nil
		}
		if attempt == m.attempts {
			return fmt.Errorf("mails: sending %q to %s failed after %d attempts: %w", tmplName, recipient, attempt, err)
		}
		time.Sleep(time.Duration(attempt) * m.backoff)
	}
}
