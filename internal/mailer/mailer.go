// Package mailer delivers outgoing CRM mail through an SMTP relay.
package mailer

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/diewo77/go-crm/internal/config"
	"github.com/google/uuid"
)

// Message is one outgoing plain-text mail.
type Message struct {
	From    string
	To      string
	Subject string
	Body    string
	Date    time.Time
}

// Relay sends messages to the outside world.
type Relay interface {
	Send(ctx context.Context, msg Message) error
	Enabled() bool
}

// New returns an SMTP relay when host and user are configured, a Noop otherwise.
func New(cfg config.MailConfig) Relay {
	if !cfg.RelayEnabled() {
		return Noop{}
	}
	return &SMTPRelay{cfg: cfg}
}

// Noop accepts every message without sending it.
type Noop struct{}

func (Noop) Send(context.Context, Message) error { return nil }
func (Noop) Enabled() bool                       { return false }

// SMTPRelay talks to a mail submission server. Secure selects implicit TLS
// (port 465); otherwise STARTTLS is used when the server offers it.
type SMTPRelay struct {
	cfg config.MailConfig
}

func NewSMTPRelay(cfg config.MailConfig) *SMTPRelay { return &SMTPRelay{cfg: cfg} }

func (r *SMTPRelay) Enabled() bool { return r.cfg.RelayEnabled() }

func (r *SMTPRelay) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return errors.New("mailer: missing recipient")
	}
	if msg.From == "" {
		msg.From = r.cfg.From
	}
	addr := net.JoinHostPort(r.cfg.Host, strconv.Itoa(r.cfg.Port))
	dialer := &net.Dialer{Timeout: 10 * time.Second}

	var conn net.Conn
	var err error
	if r.cfg.Secure {
		td := &tls.Dialer{NetDialer: dialer, Config: &tls.Config{ServerName: r.cfg.Host}}
		conn, err = td.DialContext(ctx, "tcp", addr)
	} else {
		conn, err = dialer.DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return fmt.Errorf("mailer: dial %s: %w", addr, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	c, err := smtp.NewClient(conn, r.cfg.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("mailer: handshake: %w", err)
	}
	defer c.Close()

	if !r.cfg.Secure {
		if ok, _ := c.Extension("STARTTLS"); ok {
			if err := c.StartTLS(&tls.Config{ServerName: r.cfg.Host}); err != nil {
				return fmt.Errorf("mailer: starttls: %w", err)
			}
		}
	}
	if r.cfg.User != "" {
		if ok, _ := c.Extension("AUTH"); ok {
			if err := c.Auth(smtp.PlainAuth("", r.cfg.User, r.cfg.Password, r.cfg.Host)); err != nil {
				return fmt.Errorf("mailer: auth: %w", err)
			}
		}
	}
	if err := c.Mail(msg.From); err != nil {
		return fmt.Errorf("mailer: MAIL FROM: %w", err)
	}
	if err := c.Rcpt(msg.To); err != nil {
		return fmt.Errorf("mailer: RCPT TO: %w", err)
	}
	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("mailer: DATA: %w", err)
	}
	if _, err := w.Write(msg.Bytes()); err != nil {
		return fmt.Errorf("mailer: write body: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("mailer: end data: %w", err)
	}
	return c.Quit()
}

// Bytes renders the message in RFC 5322 form with CRLF line endings.
func (m Message) Bytes() []byte {
	date := m.Date
	if date.IsZero() {
		date = time.Now()
	}
	domain := "localhost"
	if at := strings.LastIndex(m.From, "@"); at >= 0 && at < len(m.From)-1 {
		domain = strings.Trim(m.From[at+1:], "> ")
	}

	var b bytes.Buffer
	header := func(k, v string) { fmt.Fprintf(&b, "%s: %s\r\n", k, v) }
	header("From", m.From)
	header("To", m.To)
	header("Subject", mime.QEncoding.Encode("utf-8", m.Subject))
	header("Date", date.Format(time.RFC1123Z))
	header("Message-ID", "<"+uuid.NewString()+"@"+domain+">")
	header("MIME-Version", "1.0")
	header("Content-Type", "text/plain; charset=utf-8")
	header("Content-Transfer-Encoding", "8bit")
	b.WriteString("\r\n")
	body := strings.ReplaceAll(m.Body, "\r\n", "\n")
	b.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	if !strings.HasSuffix(body, "\n") {
		b.WriteString("\r\n")
	}
	return b.Bytes()
}
