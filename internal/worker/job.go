package worker

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/unclebandit/mailing-backend/internal/service"
)

type ScheduledRunner interface {
	RunScheduled(ctx context.Context, now time.Time) (*service.DispatchReport, error)
}

// Job runs the bulk dispatch on a ticker. A tick that arrives while the
// previous run is still going is skipped. The guard is per process only.
// Every run is tracked by the WaitGroup passed to Start.
type Job struct {
	ticker     *time.Ticker
	quit       chan struct{}
	runner     ScheduledRunner
	isRunning  bool
	isFirstRun bool
	mu         sync.Mutex
	afterRun   func()
}

func NewJob(interval time.Duration, runner ScheduledRunner, isFirstRun bool) *Job {
	return &Job{
		ticker:     time.NewTicker(interval),
		quit:       make(chan struct{}),
		runner:     runner,
		isFirstRun: isFirstRun,
	}
}

func (j *Job) Start(ctx context.Context, wg *sync.WaitGroup) {
	log.Info().Msg("dispatch job started")
	j.mu.Lock()
	first := j.isFirstRun
	j.mu.Unlock()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if first {
			j.run(ctx)
		}

		for {
			select {
			case <-j.ticker.C:
				// ticks are handled in their own goroutine so an overlapping
				// tick reaches the guard instead of queueing behind the run
				wg.Add(1)
				go func() {
					defer wg.Done()
					j.run(ctx)
				}()
			case <-j.quit:
				j.ticker.Stop()
				log.Info().Msg("dispatch job stopped")
				return
			case <-ctx.Done():
				j.ticker.Stop()
				log.Info().Msg("shutdown signal received, stopping dispatch job")
				return
			}
		}
	}()
}

func (j *Job) Stop() {
	close(j.quit)
}

// run reports whether a dispatch cycle was started.
func (j *Job) run(ctx context.Context) bool {
	j.mu.Lock()
	if j.isRunning {
		log.Warn().Msg("dispatch job is already running, skipping this run")
		j.mu.Unlock()
		return false
	}
	j.isRunning = true
	j.isFirstRun = false
	j.mu.Unlock()

	defer func() {
		j.mu.Lock()
		j.isRunning = false
		j.mu.Unlock()
		if j.afterRun != nil {
			j.afterRun()
		}
	}()

	// shutdown stops the ticker, not a cycle that already began
	report, err := j.runner.RunScheduled(context.WithoutCancel(ctx), time.Now())
	if err != nil {
		log.Error().Err(err).Msg("scheduled dispatch failed")
		return true
	}
	log.Info().
		Str("run_id", report.RunID).
		Int("campaigns", report.CampaignsDispatched).
		Int("attempts", report.Attempts).
		Int("failures", report.Failures).
		Msg("scheduled dispatch finished")
	return true
}
