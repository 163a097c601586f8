package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/unclebandit/mailing-backend/internal/app"
	"github.com/unclebandit/mailing-backend/internal/config"
	"github.com/unclebandit/mailing-backend/internal/queue"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if err := app.SetupLogging(cfg.LoggerConfig.Level); err != nil {
		log.Fatal().Err(err).Msg("failed to set up logging")
	}
	if cfg.QueueConfig.AMQPURL == "" {
		log.Fatal().Msg("AMQP_URL is required for the worker")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build application")
	}
	defer a.Close()

	consumer := &queue.Consumer{
		URL:     cfg.QueueConfig.AMQPURL,
		Queue:   cfg.QueueConfig.QueueName,
		Handler: &queue.DispatchHandler{Mailing: a.Mailing, Users: a.Users},
	}
	if err := consumer.Run(ctx); err != nil {
		log.Error().Err(err).Msg("worker stopped")
		return
	}
	log.Info().Msg("worker stopped")
}
