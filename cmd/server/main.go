// cmd/server/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/unclebandit/mailing-backend/internal/app"
	"github.com/unclebandit/mailing-backend/internal/config"
	"github.com/unclebandit/mailing-backend/internal/controller"
	"github.com/unclebandit/mailing-backend/internal/handler"
	"github.com/unclebandit/mailing-backend/internal/queue"
	"github.com/unclebandit/mailing-backend/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if err := app.SetupLogging(cfg.LoggerConfig.Level); err != nil {
		log.Fatal().Err(err).Msg("failed to set up logging")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var wg sync.WaitGroup

	a, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build application")
	}
	defer a.Close()

	// async sends are only offered when a broker is configured
	var publisher queue.Publisher
	if cfg.QueueConfig.AMQPURL != "" {
		p, err := queue.DialPublisher(cfg.QueueConfig.AMQPURL, cfg.QueueConfig.QueueName)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to queue")
		}
		defer p.Close()
		publisher = p
	}

	campaignController := &controller.CampaignController{
		Mailing:   a.Mailing,
		Catalog:   a.Catalog,
		Publisher: publisher,
	}
	adminController := &controller.AdminController{
		Admin:     a.Admin,
		Mailing:   a.Mailing,
		Catalog:   a.Catalog,
		Publisher: publisher,
	}

	server := &http.Server{
		Addr: cfg.WebConfig.Addr,
		Handler: handler.NewRouter(handler.Deps{
			Users:     a.Users,
			Campaigns: campaignController,
			Admin:     adminController,
			Ping:      a.DB.PingContext,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	if interval := cfg.WebConfig.DispatchInterval; interval > 0 {
		job := worker.NewJob(interval, a.Mailing, true)
		job.Start(ctx, &wg)
		log.Info().Dur("interval", interval).Msg("periodic dispatch enabled")
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("server running")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	waitForShutdown(server, cancel, &wg)
	log.Info().Msg("server gracefully stopped")
}

func waitForShutdown(server *http.Server, cancelApp context.CancelFunc, wg *sync.WaitGroup) {
	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)
	<-shutdownChan

	log.Info().Msg("shutting down gracefully")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}

	// cancelling stops the ticker; a cycle already running finishes before
	// the process exits
	cancelApp()
	wg.Wait()
}
