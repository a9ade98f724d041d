package service

import (
	"context"
	"crypto/tls"
	"fmt"
	"log"
	"net/mail"
	"net/smtp"
	"strings"
	"time"

	"trackshare/internal/config"
)

// Mailer dispatches plain-text mail. Implementations must be safe to
// call from request handlers; delivery happens synchronously on the
// request path.
type Mailer interface {
	Send(ctx context.Context, subject string, recipients []string, body string) error
}

// SMTPMailer is a Mailer over a plain SMTP relay. Supports implicit
// SSL (port 465) and STARTTLS (587/25).
type SMTPMailer struct {
	host     string
	port     int
	username string
	password string
	ssl      bool
	sender   string
}

func NewSMTPMailer(cfg *config.Config) *SMTPMailer {
	return &SMTPMailer{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		username: cfg.SMTPUsername,
		password: cfg.SMTPPassword,
		ssl:      cfg.SMTPSSL,
		sender:   cfg.MailSender,
	}
}

// Send delivers one message to all recipients. When SMTP is not
// configured the message is dropped with a log line, so local setups
// work without a relay.
func (m *SMTPMailer) Send(ctx context.Context, subject string, recipients []string, body string) error {
	if m.host == "" {
		log.Printf("[Mailer] SMTP not configured, dropping mail: subject=%q recipients=%d", subject, len(recipients))
		return nil
	}
	if len(recipients) == 0 {
		return nil
	}

	fromHeader, fromAddr, err := parseAddressForHeader(m.sender)
	if err != nil {
		return fmt.Errorf("invalid sender: %w", err)
	}

	toAddrs := make([]string, 0, len(recipients))
	toHeaders := make([]string, 0, len(recipients))
	for _, rcpt := range recipients {
		header, addr, err := parseAddressForHeader(rcpt)
		if err != nil {
			return fmt.Errorf("invalid recipient: %w", err)
		}
		toAddrs = append(toAddrs, addr)
		toHeaders = append(toHeaders, header)
	}

	msg, err := buildMessage(fromHeader, toHeaders, subject, body)
	if err != nil {
		return err
	}

	auth := smtp.PlainAuth("", m.username, m.password, m.host)
	addr := fmt.Sprintf("%s:%d", m.host, m.port)

	if m.ssl {
		return m.sendWithSSL(addr, auth, fromAddr, toAddrs, msg)
	}

	if err := smtp.SendMail(addr, auth, fromAddr, toAddrs, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

// sendWithSSL dials TLS first for relays that do not speak STARTTLS.
func (m *SMTPMailer) sendWithSSL(addr string, auth smtp.Auth, from string, to []string, msg []byte) error {
	tlsConfig := &tls.Config{ServerName: m.host}

	conn, err := tls.Dial("tcp", addr, tlsConfig)
	if err != nil {
		return fmt.Errorf("smtp tls dial: %w", err)
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, m.host)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	defer client.Close()

	if auth != nil {
		if ok, _ := client.Extension("AUTH"); ok {
			if err = client.Auth(auth); err != nil {
				return fmt.Errorf("smtp auth: %w", err)
			}
		}
	}

	if err = client.Mail(from); err != nil {
		return fmt.Errorf("smtp mail from: %w", err)
	}
	for _, rcpt := range to {
		if err = client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("smtp rcpt to: %w", err)
		}
	}
	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err = w.Write(msg); err != nil {
		return fmt.Errorf("smtp write: %w", err)
	}
	if err = w.Close(); err != nil {
		return fmt.Errorf("smtp close data: %w", err)
	}

	return client.Quit()
}

func parseAddressForHeader(input string) (string, string, error) {
	if err := rejectCRLF(input, "address"); err != nil {
		return "", "", err
	}

	addr, err := mail.ParseAddress(input)
	if err != nil {
		return "", "", err
	}

	headerValue := addr.String()
	if err := rejectCRLF(headerValue, "address"); err != nil {
		return "", "", err
	}

	return headerValue, addr.Address, nil
}

func buildMessage(fromHeader string, toHeaders []string, subject, body string) ([]byte, error) {
	if err := rejectCRLF(subject, "subject"); err != nil {
		return nil, err
	}

	header := fmt.Sprintf("Date: %s\r\nFrom: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n",
		time.Now().Format(time.RFC1123Z), fromHeader, strings.Join(toHeaders, ", "), subject)
	return []byte(header + body), nil
}

func rejectCRLF(value string, field string) error {
	if strings.ContainsAny(value, "\r\n") {
		return fmt.Errorf("invalid %s header: CRLF not allowed", field)
	}
	return nil
}
