// internal/service/dispatcher.go
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/unclebandit/mailing-backend/internal/audit"
	appErrors "github.com/unclebandit/mailing-backend/internal/errors"
	"github.com/unclebandit/mailing-backend/internal/metrics"
	"github.com/unclebandit/mailing-backend/internal/model"
	"github.com/unclebandit/mailing-backend/internal/transport"
)

// RecipientSource defines the recipient lookup the dispatcher needs
type RecipientSource interface {
	ListByCampaign(ctx context.Context, campaignID int) ([]model.Recipient, error)
}

// AttemptLedger defines the append-only attempt store
type AttemptLedger interface {
	Record(ctx context.Context, campaignID, recipientID int, result model.AttemptResult, serverResponse string) (*model.Attempt, error)
}

// DispatchReport summarizes one dispatch cycle.
type DispatchReport struct {
	RunID               string `json:"run_id"`
	CampaignsConsidered int    `json:"campaigns_considered"`
	CampaignsDispatched int    `json:"campaigns_dispatched"`
	CampaignsSkipped    int    `json:"campaigns_skipped"`
	CampaignsHalted     int    `json:"campaigns_halted"`
	Attempts            int    `json:"attempts"`
	Successes           int    `json:"successes"`
	Failures            int    `json:"failures"`
}

// Dispatcher sends eligible campaigns to their recipients, one recipient at a
// time, recording one attempt per delivery.
type Dispatcher struct {
	Recipients  RecipientSource
	Ledger      AttemptLedger
	Sender      transport.Sender
	Audit       audit.Logger
	FromAddress string
	NewRunID    func() string
}

func (d *Dispatcher) auditLog() audit.Logger {
	if d.Audit == nil {
		return audit.Nop{}
	}
	return d.Audit
}

func (d *Dispatcher) runID() string {
	if d.NewRunID != nil {
		return d.NewRunID()
	}
	return uuid.NewString()
}

// RunCycle dispatches every eligible campaign among candidates, in order.
// Cancelling ctx does not stop a cycle; transports bound their own calls.
// Delivery failures are recorded and do not stop the cycle. A failure to load
// recipients or to write the ledger ends the cycle and is returned together
// with the report so far.
func (d *Dispatcher) RunCycle(ctx context.Context, candidates []*model.Campaign, now time.Time) (*DispatchReport, error) {
	// a started cycle runs to completion: a delivered email must always get
	// its attempt recorded, even after the caller went away
	ctx = context.WithoutCancel(ctx)

	report := &DispatchReport{RunID: d.runID()}
	log := d.auditLog().With(map[string]any{"run_id": report.RunID})

	log.Log(audit.LevelInfo, fmt.Sprintf("dispatch cycle started with %d candidate campaigns", len(candidates)))

	for _, c := range candidates {
		report.CampaignsConsidered++

		if ok, reason := CheckEligibility(c, now); !ok {
			report.CampaignsSkipped++
			metrics.IncCampaignSkipped(string(reason))
			log.Log(audit.LevelInfo, fmt.Sprintf("campaign %d is not started yet or has finished (%s), skipped", c.ID, reason))
			continue
		}

		if err := d.dispatchCampaign(ctx, log, c, report); err != nil {
			log.Log(audit.LevelError, fmt.Sprintf("dispatch cycle aborted: %v", err))
			return report, err
		}
	}

	log.Log(audit.LevelInfo, fmt.Sprintf(
		"dispatch cycle finished: %d attempts, %d successful, %d failed",
		report.Attempts, report.Successes, report.Failures,
	))
	return report, nil
}

func (d *Dispatcher) dispatchCampaign(ctx context.Context, log audit.Logger, c *model.Campaign, report *DispatchReport) error {
	recipients, err := d.Recipients.ListByCampaign(ctx, c.ID)
	if err != nil {
		return appErrors.NewInfrastructure(fmt.Sprintf("load recipients of campaign %d", c.ID), err)
	}
	report.CampaignsDispatched++

	for _, r := range recipients {
		if strings.TrimSpace(r.Email) == "" {
			// the rest of this campaign waits for the next cycle
			missing := &appErrors.ErrMissingRecipientAddress{CampaignID: c.ID, RecipientID: r.ID}
			report.CampaignsHalted++
			metrics.IncCampaignHalted()
			log.Log(audit.LevelWarning, fmt.Sprintf("%v, remaining recipients not processed", missing))
			return nil
		}

		result, response := model.ResultSuccessful, ""
		sendErr := d.Sender.Send(ctx, c.Message.Subject, c.Message.LetterBody, d.FromAddress, []string{r.Email})
		if sendErr != nil {
			failure := &appErrors.ErrDeliveryFailure{CampaignID: c.ID, RecipientID: r.ID, Err: sendErr}
			result, response = model.ResultFailed, failure.Error()
		}

		if _, err := d.Ledger.Record(ctx, c.ID, r.ID, result, response); err != nil {
			return appErrors.NewInfrastructure(fmt.Sprintf("record attempt for campaign %d", c.ID), err)
		}
		report.Attempts++
		metrics.IncAttempt(string(result))

		if sendErr != nil {
			report.Failures++
			log.Log(audit.LevelError, fmt.Sprintf("send error for campaign %d, recipient %d: %s", c.ID, r.ID, response))
			continue
		}
		report.Successes++
		log.Log(audit.LevelInfo, fmt.Sprintf("campaign %d delivered to recipient %d (%s)", c.ID, r.ID, r.FullName))
	}
	return nil
}
