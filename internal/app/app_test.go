package app_test

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/unclebandit/mailing-backend/internal/app"
	"github.com/unclebandit/mailing-backend/internal/config"
	"github.com/unclebandit/mailing-backend/internal/transport"
)

func TestNewSender(t *testing.T) {
	cases := []struct {
		transport string
		check     func(transport.Sender) bool
	}{
		{"smtp", func(s transport.Sender) bool { _, ok := s.(*transport.SMTPSender); return ok }},
		{"resend", func(s transport.Sender) bool { _, ok := s.(*transport.ResendSender); return ok }},
		{"noop", func(s transport.Sender) bool { _, ok := s.(transport.NoopSender); return ok }},
	}
	for _, tc := range cases {
		s, err := app.NewSender(config.MailConfig{Transport: tc.transport, ResendAPIKey: "re_test"})
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.transport, err)
		}
		if !tc.check(s) {
			t.Errorf("%s: unexpected sender type %T", tc.transport, s)
		}
	}

	if _, err := app.NewSender(config.MailConfig{Transport: "pigeon"}); err == nil {
		t.Error("expected error for unknown transport")
	}
}

func TestSetupLogging(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	if err := app.SetupLogging("debug"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if zerolog.GlobalLevel() != zerolog.DebugLevel {
		t.Errorf("expected debug level, got %s", zerolog.GlobalLevel())
	}
	if err := app.SetupLogging("loud"); err == nil {
		t.Error("expected error for unknown level")
	}
}
