package notify

import (
	"context"
	"fmt"

	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/emilythestrangee/reddit-companion/backend/internal/config"
	"github.com/emilythestrangee/reddit-companion/backend/internal/models"
)

// smsBodyLimit keeps messages inside a few SMS segments.
const smsBodyLimit = 320

type messageCreator interface {
	CreateMessage(params *openapi.CreateMessageParams) (*openapi.ApiV2010Message, error)
}

// SMSNotifier texts the account's phone. Accounts without a phone are skipped.
type SMSNotifier struct {
	api  messageCreator
	from string
}

func NewSMSNotifier(cfg config.Twilio) *SMSNotifier {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})
	return &SMSNotifier{api: client.Api, from: cfg.From}
}

func (s *SMSNotifier) Notify(ctx context.Context, n models.Notification) error {
	if n.Phone == "" {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	params := &openapi.CreateMessageParams{}
	params.SetTo(n.Phone)
	params.SetFrom(s.from)
	params.SetBody(smsBody(n))

	if _, err := s.api.CreateMessage(params); err != nil {
		return fmt.Errorf("send sms: %w", err)
	}
	return nil
}

// smsBody truncates the text part so the link always fits.
func smsBody(n models.Notification) string {
	text := n.Title
	if n.Body != "" {
		text += "\n" + n.Body
	}
	if r := []rune(text); len(r) > smsBodyLimit {
		text = string(r[:smsBodyLimit-1]) + "…"
	}
	if n.Link != "" {
		text += "\n" + n.Link
	}
	return text
}
