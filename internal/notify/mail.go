package notify

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"gopkg.in/gomail.v2"

	"khidmaBack/internal/i18n"
)

// Mailer delivers one transactional email.
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

type SMTPMailer struct {
	dialer   *gomail.Dialer
	from     string
	fromName string
}

func NewSMTPMailer(host string, port int, username, password, from, fromName string) *SMTPMailer {
	return &SMTPMailer{
		dialer:   gomail.NewDialer(host, port, username, password),
		from:     from,
		fromName: fromName,
	}
}

func (m *SMTPMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", m.from, m.fromName)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}

// NoopMailer drops mail when SMTP is not configured.
type NoopMailer struct{}

func (NoopMailer) Send(context.Context, string, string, string) error { return nil }

var layout = template.Must(template.New("mail").Parse(`<!DOCTYPE html>
<html lang="{{.Lang}}" dir="{{.Dir}}">
<body style="font-family: Tahoma, Arial, sans-serif; text-align: {{.Align}};">
<h2>{{.Subject}}</h2>
<p>{{.Body}}</p>
{{if .Link}}<p><a href="{{.Link}}">{{.Link}}</a></p>{{end}}
</body>
</html>`))

// RenderHTML wraps a translated message in the mail layout with the
// reading direction of lang.
func RenderHTML(lang, subject, body, link string) (string, error) {
	data := struct {
		Lang, Dir, Align, Subject, Body, Link string
	}{Lang: lang, Dir: "rtl", Align: "right", Subject: subject, Body: body, Link: link}
	if lang == i18n.English {
		data.Dir, data.Align = "ltr", "left"
	}

	var buf bytes.Buffer
	if err := layout.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
