// internal/controller/campaign_controller.go
package controller

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	appErrors "github.com/unclebandit/mailing-backend/internal/errors"
	"github.com/unclebandit/mailing-backend/internal/model"
	"github.com/unclebandit/mailing-backend/internal/queue"
	"github.com/unclebandit/mailing-backend/internal/service"
)

type MailingEntry interface {
	RunScheduled(ctx context.Context, now time.Time) (*service.DispatchReport, error)
	SendCampaign(ctx context.Context, campaignID int, actor service.Actor, now time.Time) (*service.DispatchReport, error)
}

type Catalog interface {
	ListCampaigns(ctx context.Context, actor service.Actor) ([]*model.Campaign, error)
	ListAttempts(ctx context.Context, actor service.Actor) ([]*model.Attempt, error)
	GetCampaign(ctx context.Context, actor service.Actor, id int) (*service.CampaignDetails, error)
	HomeStats(ctx context.Context, actor service.Actor) (*service.HomeStats, error)
	Invalidate()
}

type CampaignController struct {
	Mailing   MailingEntry
	Catalog   Catalog
	Publisher queue.Publisher // optional, enables ?async=true
	Now       func() time.Time
}

func (c *CampaignController) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

func (c *CampaignController) ListCampaigns(w http.ResponseWriter, r *http.Request) {
	campaigns, err := c.Catalog.ListCampaigns(r.Context(), ActorFrom(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": campaigns})
}

func (c *CampaignController) GetCampaign(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid campaign id")
		return
	}

	details, err := c.Catalog.GetCampaign(r.Context(), ActorFrom(r.Context()), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, details)
}

func (c *CampaignController) ListAttempts(w http.ResponseWriter, r *http.Request) {
	attempts, err := c.Catalog.ListAttempts(r.Context(), ActorFrom(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": attempts})
}

func (c *CampaignController) HomeStats(w http.ResponseWriter, r *http.Request) {
	stats, err := c.Catalog.HomeStats(r.Context(), ActorFrom(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// SendCampaign dispatches one campaign for its owner. With ?async=true the
// request is checked, then queued for the worker, which checks it again.
func (c *CampaignController) SendCampaign(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid campaign id")
		return
	}
	actor := ActorFrom(r.Context())

	if wantsAsync(r) && c.Publisher != nil {
		now := c.now()
		if err := c.checkQueueable(r.Context(), actor, id, now); err != nil {
			writeServiceError(w, r, err)
			return
		}
		req := queue.DispatchRequest{Kind: queue.KindCampaign, CampaignID: id, ActorID: actor.UserID(), RequestedAt: now}
		if err := c.Publisher.Publish(r.Context(), req); err != nil {
			log.Error().Err(err).Int("campaign_id", id).Msg("failed to publish dispatch request")
			writeError(w, http.StatusInternalServerError, "failed to queue campaign")
			return
		}
		writeJSON(w, http.StatusAccepted, map[string]any{"campaign_id": id, "status": "queued"})
		return
	}

	report, err := c.Mailing.SendCampaign(r.Context(), id, actor, c.now())
	if report != nil && report.Attempts > 0 {
		c.Catalog.Invalidate()
	}
	if err != nil {
		writeDispatchError(w, r, report, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// checkQueueable refuses, before queueing, what the worker would refuse: a
// campaign the caller cannot see, does not own, or that cannot send now.
func (c *CampaignController) checkQueueable(ctx context.Context, actor service.Actor, id int, now time.Time) error {
	details, err := c.Catalog.GetCampaign(ctx, actor, id)
	if err != nil {
		return err
	}
	if details.OwnerID != actor.UserID() {
		return appErrors.NewAuthorizationDenied(actor.UserID(), fmt.Sprintf("send campaign %d", id))
	}
	if ok, reason := service.CheckEligibility(details.Campaign, now); !ok {
		return appErrors.NewIneligibleCampaign(id, string(reason))
	}
	return nil
}

// writeDispatchError never presents a partial report as a success.
func writeDispatchError(w http.ResponseWriter, r *http.Request, report *service.DispatchReport, err error) {
	status := statusFor(err)
	if status != http.StatusInternalServerError || report == nil {
		writeServiceError(w, r, err)
		return
	}
	log.Error().Err(err).Str("run_id", report.RunID).Msg("dispatch cycle aborted")
	writeJSON(w, status, map[string]any{"error": "dispatch aborted", "partial_report": report})
}
