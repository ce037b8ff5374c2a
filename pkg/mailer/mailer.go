package mailer

import (
	"bytes"
	"fmt"
	"io"

	"gopkg.in/gomail.v2"

	"github.com/sentinelworks/sentinel-backend/pkg/config"
)

// Message is a single outbound email with an optional PDF attachment.
type Message struct {
	To             string
	Subject        string
	Body           string
	AttachmentPDF  []byte
	AttachmentName string
}

// Sender delivers messages. The worker depends on this interface so tests can
// substitute a fake.
type Sender interface {
	Send(msg Message) error
}

// SMTPSender delivers mail over SMTP using gomail.
type SMTPSender struct {
	cfg    config.SMTPConfig
	dialer *gomail.Dialer
}

// NewSMTPSender builds a sender from SMTP config.
func NewSMTPSender(cfg config.SMTPConfig) (*SMTPSender, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("smtp host is required")
	}
	return &SMTPSender{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}, nil
}

// Send delivers a single message, dialing per call. Throughput is bounded by
// the outbox batch size so connection reuse is not worth the bookkeeping.
func (s *SMTPSender) Send(msg Message) error {
	if msg.To == "" {
		return fmt.Errorf("recipient is required")
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.DefaultFrom)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Body)

	if len(msg.AttachmentPDF) > 0 {
		name := msg.AttachmentName
		if name == "" {
			name = "quotation.pdf"
		}
		m.Attach(name,
			gomail.SetCopyFunc(func(w io.Writer) error {
				_, err := io.Copy(w, bytes.NewReader(msg.AttachmentPDF))
				return err
			}),
			gomail.SetHeader(map[string][]string{"Content-Type": {"application/pdf"}}),
		)
	}

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("sending mail to %s: %w", msg.To, err)
	}
	return nil
}
