// cmd/sendmailing runs one bulk dispatch cycle and exits. It is meant for
// cron or any other external scheduler.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/unclebandit/mailing-backend/internal/app"
	"github.com/unclebandit/mailing-backend/internal/config"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		log.Error().Err(err).Msg("failed to load config")
		return 1
	}
	if err := app.SetupLogging(cfg.LoggerConfig.Level); err != nil {
		log.Error().Err(err).Msg("failed to set up logging")
		return 1
	}

	ctx := context.Background()
	a, err := app.New(ctx, cfg)
	if err != nil {
		log.Error().Err(err).Msg("failed to build application")
		return 1
	}
	defer a.Close()

	report, err := a.Mailing.RunScheduled(ctx, time.Now())
	if report != nil {
		fmt.Printf("run %s: %d campaigns dispatched, %d skipped, %d halted, %d attempts (%d successful, %d failed)\n",
			report.RunID, report.CampaignsDispatched, report.CampaignsSkipped, report.CampaignsHalted,
			report.Attempts, report.Successes, report.Failures)
	}
	if err != nil {
		log.Error().Err(err).Msg("dispatch cycle aborted")
		return 1
	}
	return 0
}
