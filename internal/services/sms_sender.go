package services

import (
	"context"
	"fmt"

	"github.com/twilio/twilio-go"
	twilioapi "github.com/twilio/twilio-go/rest/api/v2010"
)

// SMSSender defines the interface for Twilio-backed text channels
type SMSSender interface {
	SendSMS(ctx context.Context, to, body string) error
	SendWhatsApp(ctx context.Context, to, body string) error
}

// TwilioSender delivers SMS and WhatsApp messages through the Twilio API.
// WhatsApp reuses the SMS sender number with the whatsapp: address scheme.
type TwilioSender struct {
	client     *twilio.RestClient
	fromNumber string
}

func NewTwilioSender(accountSID, authToken, fromNumber string) *TwilioSender {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})

	return &TwilioSender{
		client:     client,
		fromNumber: fromNumber,
	}
}

func (s *TwilioSender) SendSMS(ctx context.Context, to, body string) error {
	return s.send(ctx, to, s.fromNumber, body)
}

func (s *TwilioSender) SendWhatsApp(ctx context.Context, to, body string) error {
	return s.send(ctx, "whatsapp:"+to, "whatsapp:"+s.fromNumber, body)
}

// send posts one message. The Twilio client does not take a context, so
// cancellation is checked before the request goes out.
func (s *TwilioSender) send(ctx context.Context, to, from, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	params := &twilioapi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(from)
	params.SetBody(body)

	if _, err := s.client.Api.CreateMessage(params); err != nil {
		return fmt.Errorf("failed to send message via Twilio: %w", err)
	}

	return nil
}
