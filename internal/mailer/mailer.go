// Package mailer is the one-way email collaborator: SMTP out, nothing back.
package mailer

import (
	"errors"

	"gopkg.in/gomail.v2"
)

// Message mirrors the send contract: to, subject, and at least one of
// text/html, with an optional from override.
type Message struct {
	To      []string
	Subject string
	Text    string
	HTML    string
	From    string
}

// Sender delivers messages. The SMTP implementation is the only real one;
// tests substitute their own.
type Sender interface {
	Send(m Message) error
}

// SMTP sends through a configured SMTP relay.
type SMTP struct {
	dialer      *gomail.Dialer
	defaultFrom string
}

// NewSMTP builds a sender. secure selects implicit TLS (port 465 style)
// over STARTTLS.
func NewSMTP(host string, port int, secure bool, user, pass, defaultFrom string) *SMTP {
	d := gomail.NewDialer(host, port, user, pass)
	d.SSL = secure
	if defaultFrom == "" {
		defaultFrom = user
	}
	return &SMTP{dialer: d, defaultFrom: defaultFrom}
}

// Send delivers one message synchronously. No retries; the caller surfaces
// the failure immediately.
func (s *SMTP) Send(m Message) error {
	if len(m.To) == 0 {
		return errors.New("to is required")
	}
	if m.Subject == "" {
		return errors.New("subject is required")
	}
	from := m.From
	if from == "" {
		from = s.defaultFrom
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", from)
	msg.SetHeader("To", m.To...)
	msg.SetHeader("Subject", m.Subject)
	switch {
	case m.Text != "" && m.HTML != "":
		msg.SetBody("text/plain", m.Text)
		msg.AddAlternative("text/html", m.HTML)
	case m.HTML != "":
		msg.SetBody("text/html", m.HTML)
	default:
		msg.SetBody("text/plain", m.Text)
	}

	return s.dialer.DialAndSend(msg)
}
