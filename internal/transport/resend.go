package transport

import (
	"context"
	"fmt"
	"time"

	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog/log"
)

const resendTimeout = 30 * time.Second

// ResendSender sends through the Resend API.
type ResendSender struct {
	client *resend.Client
}

func NewResendSender(apiKey string) *ResendSender {
	return &ResendSender{client: resend.NewClient(apiKey)}
}

func (s *ResendSender) Send(ctx context.Context, subject, body, from string, to []string) error {
	params := &resend.SendEmailRequest{
		From:    from,
		To:      to,
		Subject: subject,
		Text:    body,
	}

	ctx, cancel := context.WithTimeout(ctx, resendTimeout)
	defer cancel()

	sent, err := s.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return fmt.Errorf("resend send failed: %w", err)
	}

	log.Debug().Str("message_id", sent.Id).Strs("to", to).Msg("resend accepted email")
	return nil
}
