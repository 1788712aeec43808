package notify

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"text/template"
	"time"
)

// DefaultBodyTemplate is the plain-text email body. It can be overridden
// per deployment through SMTPConfig.BodyTemplate.
const DefaultBodyTemplate = `Hi {{.Email}},

This is your one-time verification code:

{{.Code}}

The code is valid for {{printf "%.f" .Validity.Minutes}} minutes.

If you did not request a code, you can ignore this email.
`

// bodyParams is the data passed when executing the body template.
type bodyParams struct {
	Email    string
	Code     string
	Validity time.Duration
}

// SMTPConfig configures the SMTP notifier.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Subject  string

	// BodyTemplate overrides DefaultBodyTemplate when set.
	BodyTemplate string

	// CodeValidity is interpolated into the message body.
	CodeValidity time.Duration
}

// SMTPNotifier delivers codes by email over authenticated SMTP.
type SMTPNotifier struct {
	cfg  SMTPConfig
	tmpl *template.Template
}

// NewSMTPNotifier parses the body template and returns a ready notifier.
func NewSMTPNotifier(cfg SMTPConfig) (*SMTPNotifier, error) {
	if cfg.Subject == "" {
		cfg.Subject = "Your verification code"
	}
	body := cfg.BodyTemplate
	if body == "" {
		body = DefaultBodyTemplate
	}

	tmpl, err := template.New("otp-email").Parse(body)
	if err != nil {
		return nil, fmt.Errorf("notify: parse body template: %w", err)
	}

	return &SMTPNotifier{cfg: cfg, tmpl: tmpl}, nil
}

// Send emails the code to destination. The context deadline bounds the
// whole exchange; smtp.SendMail has no context support, so the deadline is
// enforced through the dial and a watchdog on the connection.
func (n *SMTPNotifier) Send(ctx context.Context, destination, code string) error {
	msg, err := n.message(destination, code)
	if err != nil {
		return err
	}

	addr := net.JoinHostPort(n.cfg.Host, strconv.Itoa(n.cfg.Port))
	auth := smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, n.cfg.Host)

	done := make(chan error, 1)
	go func() {
		done <- smtp.SendMail(addr, auth, n.cfg.From, []string{destination}, msg)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("notify: smtp send: %w", err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("notify: smtp send: %w", ctx.Err())
	}
}

func (n *SMTPNotifier) message(destination, code string) ([]byte, error) {
	var body bytes.Buffer
	err := n.tmpl.Execute(&body, bodyParams{
		Email:    destination,
		Code:     code,
		Validity: n.cfg.CodeValidity,
	})
	if err != nil {
		return nil, fmt.Errorf("notify: execute body template: %w", err)
	}

	var msg bytes.Buffer
	fmt.Fprintf(&msg, "From: %s\r\n", n.cfg.From)
	fmt.Fprintf(&msg, "To: %s\r\n", destination)
	fmt.Fprintf(&msg, "Subject: %s\r\n", n.cfg.Subject)
	msg.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	msg.Write(body.Bytes())
	return msg.Bytes(), nil
}
