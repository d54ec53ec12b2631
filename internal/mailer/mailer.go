package mailer

import "errors"

const (
	fromName   = "Bazar"
	maxRetries = 3
)

var ErrSendFailed = errors.New("could not send email after retries")

type Client interface {
	SendOrderConfirmation(toEmail, toName, orderNumber string, totalCents int64) error
}
