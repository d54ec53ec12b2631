package mailer

import (
	"fmt"
	"time"

	mail "gopkg.in/mail.v2"
)

type SMTPMailer struct {
	dialer    *mail.Dialer
	fromEmail string
}

func NewSMTPMailer(host string, port int, username, password, fromEmail string) *SMTPMailer {
	return &SMTPMailer{
		dialer:    mail.NewDialer(host, port, username, password),
		fromEmail: fromEmail,
	}
}

// SendOrderConfirmation sends a plain-text receipt. Retries a few times
// with a short backoff since SMTP hiccups are usually transient.
func (m *SMTPMailer) SendOrderConfirmation(toEmail, toName, orderNumber string, totalCents int64) error {
	msg := mail.NewMessage()
	msg.SetHeader("From", msg.FormatAddress(m.fromEmail, fromName))
	msg.SetHeader("To", msg.FormatAddress(toEmail, toName))
	msg.SetHeader("Subject", fmt.Sprintf("Order %s confirmed", orderNumber))
	msg.SetBody("text/plain", fmt.Sprintf(
		"Hi %s,\n\nYour order %s has been paid. Total: $%.2f.\n\nThank you for shopping with us.\n",
		toName, orderNumber, float64(totalCents)/100,
	))

	var lastErr error
	for i := 0; i < maxRetries; i++ {
		if lastErr = m.dialer.DialAndSend(msg); lastErr == nil {
			return nil
		}
		time.Sleep(time.Duration(i+1) * time.Second)
	}
	return fmt.Errorf("%w: %v", ErrSendFailed, lastErr)
}
