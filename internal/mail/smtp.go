// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authcore Contributors

// Package mail delivers authentication emails over SMTP.
package mail

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"html/template"
	"net/smtp"
	"time"

	"github.com/samber/oops"

	"github.com/authcore/authcore/internal/auth"
)

// Config holds SMTP transport settings.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Client sends mail over an implicit-TLS SMTP connection.
type Client struct {
	cfg Config
}

// NewClient creates a new SMTP Client.
func NewClient(cfg Config) *Client {
	return &Client{cfg: cfg}
}

var resetTemplate = template.Must(template.New("password_reset").Parse(`<!DOCTYPE html>
<html>
<body>
  <p>We received a request to reset the password for your account.</p>
  <p><a href="{{.ResetURL}}">Reset your password</a></p>
  <p>The link is valid for {{.ValidHours}} hours. If you did not request
  a reset, you can ignore this message.</p>
</body>
</html>
`))

// SendPasswordReset renders the recovery email and delivers it to the
// recipient. The caller bounds the call with ctx.
func (c *Client) SendPasswordReset(ctx context.Context, to, resetURL string) error {
	var body bytes.Buffer
	err := resetTemplate.Execute(&body, struct {
		ResetURL   string
		ValidHours int
	}{
		ResetURL:   resetURL,
		ValidHours: int(auth.ResetTokenTTL.Hours()),
	})
	if err != nil {
		return oops.Code("MAIL_TEMPLATE_FAILED").Wrap(err)
	}
	return c.send(ctx, to, "Reset your password", body.Bytes())
}

// send delivers a single HTML message. The SMTP dialogue is blocking;
// ctx cancellation is honored at the connect boundary via a deadline.
func (c *Client) send(ctx context.Context, to, subject string, body []byte) error {
	if err := ctx.Err(); err != nil {
		return oops.Code("MAIL_SEND_FAILED").With("operation", "context check").Wrap(err)
	}

	msg := buildMessage(c.cfg.From, to, subject, body)

	addr := fmt.Sprintf("%s:%d", c.cfg.Host, c.cfg.Port)
	dialer := &tls.Dialer{Config: &tls.Config{ServerName: c.cfg.Host, MinVersion: tls.VersionTLS12}}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return oops.Code("MAIL_SEND_FAILED").
			With("operation", "dial smtp server").
			With("addr", addr).
			Wrap(err)
	}
	defer conn.Close() //nolint:errcheck // best effort on an already-finished dialogue

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline) //nolint:errcheck // conn already established
	}

	client, err := smtp.NewClient(conn, c.cfg.Host)
	if err != nil {
		return oops.Code("MAIL_SEND_FAILED").With("operation", "create smtp client").Wrap(err)
	}
	defer client.Close() //nolint:errcheck // Quit below is the real close

	if c.cfg.Username != "" {
		authn := smtp.PlainAuth("", c.cfg.Username, c.cfg.Password, c.cfg.Host)
		if err := client.Auth(authn); err != nil {
			return oops.Code("MAIL_SEND_FAILED").With("operation", "authenticate").Wrap(err)
		}
	}

	if err := client.Mail(c.cfg.From); err != nil {
		return oops.Code("MAIL_SEND_FAILED").With("operation", "set sender").Wrap(err)
	}
	if err := client.Rcpt(to); err != nil {
		return oops.Code("MAIL_SEND_FAILED").With("operation", "set recipient").Wrap(err)
	}

	w, err := client.Data()
	if err != nil {
		return oops.Code("MAIL_SEND_FAILED").With("operation", "open data writer").Wrap(err)
	}
	if _, err := w.Write(msg); err != nil {
		return oops.Code("MAIL_SEND_FAILED").With("operation", "write message").Wrap(err)
	}
	if err := w.Close(); err != nil {
		return oops.Code("MAIL_SEND_FAILED").With("operation", "close data writer").Wrap(err)
	}

	if err := client.Quit(); err != nil {
		return oops.Code("MAIL_SEND_FAILED").With("operation", "quit").Wrap(err)
	}
	return nil
}

// buildMessage assembles RFC 5322 headers and the HTML body.
func buildMessage(from, to, subject string, body []byte) []byte {
	var msg bytes.Buffer
	fmt.Fprintf(&msg, "From: %s\r\n", from)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	fmt.Fprintf(&msg, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	msg.WriteString("\r\n")
	msg.Write(body)
	return msg.Bytes()
}

// Compile-time interface check.
var _ auth.Mailer = (*Client)(nil)
