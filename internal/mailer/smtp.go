// Package mailer renders ticket emails and delivers them over SMTP.
package mailer

import (
	"context"
	"fmt"
	"io"

	"gopkg.in/gomail.v2"

	"github.com/iliyamo/event-ticketing/internal/config"
)

// Attachment is a file carried by a Message.  Inline attachments are
// embedded and can be referenced from the HTML body as cid:<Name>.
type Attachment struct {
	Name   string
	Data   []byte
	Inline bool
}

// Message is a rendered email ready to send.
type Message struct {
	To          string
	Subject     string
	HTML        string
	Attachments []Attachment
}

// Sender delivers messages.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPSender delivers messages through an authenticated SMTP relay.
type SMTPSender struct {
	from   string
	name   string
	dialer *gomail.Dialer
}

// NewSMTPSender returns a sender for cfg.  The From address is the SMTP user.
func NewSMTPSender(cfg config.SMTPConfig) *SMTPSender {
	return &SMTPSender{
		from:   cfg.User,
		name:   cfg.FromName,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Pass),
	}
}

// Send dials the relay and delivers msg.  gomail has no context support, so
// a cancelled ctx abandons the wait but not the dial already in flight.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.from, s.name)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/html", msg.HTML)
	for _, a := range msg.Attachments {
		data := a.Data
		copyFn := gomail.SetCopyFunc(func(w io.Writer) error {
			_, err := w.Write(data)
			return err
		})
		if a.Inline {
			m.Embed(a.Name, copyFn)
		} else {
			m.Attach(a.Name, copyFn)
		}
	}

	done := make(chan error, 1)
	go func() { done <- s.dialer.DialAndSend(m) }()
	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("smtp send to %s: %w", msg.To, err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
