// Package app wires configuration, storage and services shared by the
// server, the worker and the one-shot commands.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/unclebandit/mailing-backend/internal/audit"
	"github.com/unclebandit/mailing-backend/internal/cache"
	"github.com/unclebandit/mailing-backend/internal/config"
	"github.com/unclebandit/mailing-backend/internal/db"
	"github.com/unclebandit/mailing-backend/internal/metrics"
	"github.com/unclebandit/mailing-backend/internal/repository"
	"github.com/unclebandit/mailing-backend/internal/service"
	"github.com/unclebandit/mailing-backend/internal/transport"
)

type App struct {
	Config *config.Config
	DB     *sql.DB
	Audit  audit.Logger

	Campaigns  *repository.CampaignRepository
	Recipients *repository.RecipientRepository
	Attempts   *repository.AttemptRepository
	Users      *repository.UserRepository

	Mailing *service.MailingService
	Admin   *service.AdminService
	Catalog *service.CatalogService

	closers []io.Closer
}

// SetupLogging configures the global zerolog logger.
func SetupLogging(level string) error {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid LOG_LEVEL %q: %w", level, err)
	}
	zerolog.SetGlobalLevel(lvl)
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	return nil
}

// NewSender builds the mail transport selected by MAIL_TRANSPORT.
func NewSender(cfg config.MailConfig) (transport.Sender, error) {
	switch cfg.Transport {
	case "smtp":
		return transport.NewSMTPSender(transport.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			User:     cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			Timeout:  cfg.SMTPTimeout,
		}), nil
	case "resend":
		return transport.NewResendSender(cfg.ResendAPIKey), nil
	case "noop":
		return transport.NoopSender{}, nil
	}
	return nil, fmt.Errorf("unknown mail transport %q", cfg.Transport)
}

// New opens the audit log and the database and builds the services.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{Config: cfg}

	auditLog, closer, err := audit.Open(audit.Config{
		LogDir:   cfg.LoggerConfig.LogDir,
		FileName: cfg.LoggerConfig.AuditFile,
		Console:  cfg.LoggerConfig.AuditConsole,
	})
	if err != nil {
		return nil, err
	}
	a.Audit = auditLog
	a.closers = append(a.closers, closer)

	conn, err := db.Open(ctx, cfg.DataBaseConfig.DSN())
	if err != nil {
		a.Close()
		return nil, err
	}
	a.DB = conn
	a.closers = append(a.closers, conn)

	sender, err := NewSender(cfg.MailConfig)
	if err != nil {
		a.Close()
		return nil, err
	}

	metrics.Register()

	a.Campaigns = repository.NewCampaignRepository(conn)
	a.Recipients = &repository.RecipientRepository{DB: conn}
	a.Attempts = repository.NewAttemptRepository(conn)
	a.Users = &repository.UserRepository{DB: conn}

	a.Mailing = &service.MailingService{
		CampaignRepo: a.Campaigns,
		Dispatcher: &service.Dispatcher{
			Recipients:  a.Recipients,
			Ledger:      a.Attempts,
			Sender:      sender,
			Audit:       a.Audit,
			FromAddress: cfg.MailConfig.From,
		},
		Audit: a.Audit,
	}
	a.Admin = &service.AdminService{CampaignRepo: a.Campaigns, UserRepo: a.Users, Audit: a.Audit}
	a.Catalog = &service.CatalogService{
		CampaignRepo:  a.Campaigns,
		AttemptRepo:   a.Attempts,
		RecipientRepo: a.Recipients,
		Cache:         cache.NewListCache(cfg.CacheConfig.ListTTL),
	}

	log.Info().Str("transport", cfg.MailConfig.Transport).Msg("application components built")
	return a, nil
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			log.Warn().Err(err).Msg("close failed")
		}
	}
	a.closers = nil
}
