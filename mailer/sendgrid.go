package mailer

import (
	"context"
	"encoding/base64"
	"net/http"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendGridMailer submits mail through the SendGrid v3 API.
type SendGridMailer struct {
	apiKey string
	from   string
}

func NewSendGridMailer(apiKey, from string) *SendGridMailer {
	return &SendGridMailer{apiKey: apiKey, from: from}
}

func (m *SendGridMailer) Send(ctx context.Context, msg Message) error {
	from := sgmail.NewEmail("", m.from)
	to := sgmail.NewEmail("", msg.To)
	message := sgmail.NewSingleEmail(from, msg.Subject, to, msg.Body, msg.Body)

	attachment := sgmail.NewAttachment()
	attachment.SetContent(base64.StdEncoding.EncodeToString(msg.Attachment))
	attachment.SetType(msg.AttachmentType)
	attachment.SetFilename(msg.AttachmentName)
	attachment.SetDisposition("attachment")
	message.AddAttachment(attachment)

	client := sendgrid.NewSendClient(m.apiKey)
	resp, err := client.SendWithContext(ctx, message)
	if err != nil {
		return &DeliveryError{Provider: "sendgrid", Detail: err.Error(), Err: err}
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return &DeliveryError{Provider: "sendgrid", StatusCode: resp.StatusCode, Detail: resp.Body}
	}
	return nil
}
