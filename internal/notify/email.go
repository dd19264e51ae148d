package notify

import (
	"context"
	"fmt"

	"lostwatch/pkg/protocol"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

type mailSender interface {
	Send(email *mail.SGMailV3) (*rest.Response, error)
}

// EmailNotifier sends notices through SendGrid.
type EmailNotifier struct {
	client    mailSender
	fromEmail string
	fromName  string
}

func NewEmailNotifier(apiKey, fromEmail, fromName string) *EmailNotifier {
	return &EmailNotifier{
		client:    sendgrid.NewSendClient(apiKey),
		fromEmail: fromEmail,
		fromName:  fromName,
	}
}

func (e *EmailNotifier) Notify(ctx context.Context, n protocol.Notice) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	from := mail.NewEmail(e.fromName, e.fromEmail)
	to := mail.NewEmail(n.Recipient, n.Recipient)
	message := mail.NewSingleEmail(from, n.Subject(), to, n.Body(), "")

	resp, err := e.client.Send(message)
	if err != nil {
		return fmt.Errorf("sendgrid: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid: status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}
