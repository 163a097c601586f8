package transport

import (
	"context"

	"github.com/rs/zerolog/log"
)

// NoopSender logs instead of delivering. Used in development.
type NoopSender struct{}

func (NoopSender) Send(_ context.Context, subject, _, from string, to []string) error {
	log.Info().Str("from", from).Strs("to", to).Str("subject", subject).Msg("noop email send")
	return nil
}
