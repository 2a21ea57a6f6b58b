package services

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"html/template"
	"net"
	"net/smtp"
	"strings"
	"sync"
	texttemplate "text/template"
	"time"

	"fitbook/pkg/config"

	"go.uber.org/zap"
)

// SMTPNotifier sends transactional mail through an SMTP relay. The relay API
// key is used as the SMTP password.
type SMTPNotifier struct {
	cfg     config.MailConfig
	appName string
	html    *template.Template
	text    *texttemplate.Template
	dial    func(ctx context.Context, addr string) (net.Conn, error)
}

func NewSMTPNotifier(cfg config.MailConfig, appName string) *SMTPNotifier {
	d := &net.Dialer{Timeout: 10 * time.Second}
	return &SMTPNotifier{
		cfg:     cfg,
		appName: appName,
		html:    template.Must(template.New("html").Parse(htmlBodyTemplate)),
		text:    texttemplate.Must(texttemplate.New("text").Parse(textBodyTemplate)),
		dial: func(ctx context.Context, addr string) (net.Conn, error) {
			return d.DialContext(ctx, "tcp", addr)
		},
	}
}

func (s *SMTPNotifier) Notify(ctx context.Context, msg Message) error {
	html, text, err := s.render(mailView{
		Subject:  msg.Subject,
		Body:     msg.Body,
		LinkURL:  msg.CTAURL,
		LinkText: msg.CTAText,
		Brand:    s.appName,
		Year:     time.Now().Year(),
	})
	if err != nil {
		return err
	}
	return s.send(ctx, msg.To, msg.Subject, html, text)
}

// mailView feeds both the html and plain-text bodies.
type mailView struct {
	Subject  string
	Body     string
	LinkURL  string
	LinkText string
	Brand    string
	Year     int
}

const htmlBodyTemplate = `<!doctype html>
<html>
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width,initial-scale=1">
<title>{{.Subject}}</title>
</head>
<body style="margin:0;background:#f4f6f8;font-family:Helvetica,Arial,sans-serif;color:#1f2933">
<table role="presentation" width="100%" cellpadding="0" cellspacing="0">
<tr><td align="center" style="padding:32px 12px">
<table role="presentation" width="560" cellpadding="0" cellspacing="0" style="background:#ffffff;border-radius:8px">
<tr><td style="padding:20px 28px;border-bottom:3px solid #16a34a;font-size:20px;font-weight:bold">{{.Brand}}</td></tr>
<tr><td style="padding:28px">
<h2 style="margin:0 0 12px;font-size:20px">{{.Subject}}</h2>
<p style="margin:0 0 20px;line-height:1.6">{{.Body}}</p>
{{- if .LinkURL}}
<p style="margin:0 0 20px"><a href="{{.LinkURL}}" style="background:#16a34a;color:#ffffff;padding:12px 22px;border-radius:6px;text-decoration:none">{{.LinkText}}</a></p>
<p style="margin:0;font-size:12px;color:#6b7280">Or open {{.LinkURL}}</p>
{{- end}}
</td></tr>
<tr><td style="padding:16px 28px;font-size:12px;color:#9ca3af">{{.Brand}} {{.Year}}</td></tr>
</table>
</td></tr>
</table>
</body>
</html>`

const textBodyTemplate = `{{.Subject}}

{{.Body}}
{{if .LinkURL}}
{{.LinkText}}: {{.LinkURL}}
{{end}}
-- 
{{.Brand}} {{.Year}}
`

func (s *SMTPNotifier) render(data mailView) (string, string, error) {
	var hb, tb bytes.Buffer
	if err := s.html.Execute(&hb, data); err != nil {
		return "", "", err
	}
	if err := s.text.Execute(&tb, data); err != nil {
		return "", "", err
	}
	return hb.String(), tb.String(), nil
}

func (s *SMTPNotifier) compose(to, subject, htmlBody, textBody string) []byte {
	boundary := fmt.Sprintf("mixed_%d", time.Now().UnixNano())

	var msg bytes.Buffer
	write := func(format string, a ...any) { _, _ = fmt.Fprintf(&msg, format, a...) }

	write("From: %s\r\n", s.fromHeader())
	write("To: %s\r\n", to)
	write("Subject: %s\r\n", mimeWord(subject))
	write("Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	write("MIME-Version: 1.0\r\n")
	write("Content-Type: multipart/alternative; boundary=%q\r\n\r\n", boundary)

	write("--%s\r\n", boundary)
	write("Content-Type: text/plain; charset=UTF-8\r\n")
	write("Content-Transfer-Encoding: 8bit\r\n\r\n")
	write("%s\r\n\r\n", textBody)

	write("--%s\r\n", boundary)
	write("Content-Type: text/html; charset=UTF-8\r\n")
	write("Content-Transfer-Encoding: 8bit\r\n\r\n")
	write("%s\r\n\r\n", htmlBody)

	write("--%s--\r\n", boundary)
	return msg.Bytes()
}

func (s *SMTPNotifier) send(ctx context.Context, to, subject, htmlBody, textBody string) error {
	addr := net.JoinHostPort(s.cfg.Host, fmt.Sprint(s.cfg.Port))
	tlsCfg := &tls.Config{ServerName: s.cfg.Host, MinVersion: tls.VersionTLS12}

	conn, err := s.dial(ctx, addr)
	if err != nil {
		return err
	}
	defer conn.Close()
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	// SMTPS wraps the socket before the greeting; STARTTLS upgrades after it.
	if s.cfg.UseSSL {
		conn = tls.Client(conn, tlsCfg)
	}
	c, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		return err
	}
	defer c.Quit()

	if !s.cfg.UseSSL {
		if ok, _ := c.Extension("STARTTLS"); ok {
			if err := c.StartTLS(tlsCfg); err != nil {
				return err
			}
		} else if s.cfg.RequireTLS {
			return fmt.Errorf("smtp: %s does not offer STARTTLS", s.cfg.Host)
		}
	}

	if err := c.Auth(smtp.PlainAuth("", s.cfg.Username, s.cfg.APIKey, s.cfg.Host)); err != nil {
		return err
	}
	if err := c.Mail(s.cfg.From); err != nil {
		return err
	}
	if err := c.Rcpt(to); err != nil {
		return err
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(s.compose(to, subject, htmlBody, textBody)); err != nil {
		return err
	}
	return w.Close()
}

func (s *SMTPNotifier) fromHeader() string {
	name := strings.TrimSpace(s.cfg.FromName)
	if name == "" {
		return s.cfg.From
	}
	return fmt.Sprintf("%s <%s>", mimeWord(name), s.cfg.From)
}

// mimeWord encodes non-ASCII header text as an RFC 2047 word.
func mimeWord(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] > 127 {
			return "=?UTF-8?B?" + base64.StdEncoding.EncodeToString([]byte(s)) + "?="
		}
	}
	return s
}

// LogNotifier is used when no relay key is configured.
type LogNotifier struct {
	log *zap.Logger
}

func NewLogNotifier(log *zap.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (l *LogNotifier) Notify(_ context.Context, msg Message) error {
	l.log.Info("notification (not sent)",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("category", msg.Category),
		zap.String("cta_url", msg.CTAURL))
	return nil
}

// Dispatcher delivers notifications in the background so request latency
// never depends on the mail relay. Close waits for in-flight sends.
type Dispatcher struct {
	next    Notifier
	log     *zap.Logger
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

func NewDispatcher(next Notifier, log *zap.Logger) *Dispatcher {
	return &Dispatcher{next: next, log: log, timeout: 30 * time.Second}
}

func (d *Dispatcher) Notify(ctx context.Context, msg Message) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return fmt.Errorf("notifier closed")
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)
		defer cancel()
		if err := d.next.Notify(sendCtx, msg); err != nil {
			d.log.Warn("notification delivery failed",
				zap.String("to", msg.To),
				zap.String("category", msg.Category),
				zap.Error(err))
		}
	}()
	return nil
}

func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
