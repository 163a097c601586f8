package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/unclebandit/mailing-backend/internal/model"
	"github.com/unclebandit/mailing-backend/internal/queue"
	"github.com/unclebandit/mailing-backend/internal/service"
)

type Admin interface {
	CancelCampaign(ctx context.Context, actor service.Actor, campaignID int) error
	BlockUser(ctx context.Context, actor service.Actor, userID int) error
}

// AdminController serves the manager-only endpoints.
type AdminController struct {
	Admin     Admin
	Mailing   MailingEntry
	Catalog   Catalog
	Publisher queue.Publisher
	Now       func() time.Time
}

func (a *AdminController) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

func (a *AdminController) CancelCampaign(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid campaign id")
		return
	}
	if err := a.Admin.CancelCampaign(r.Context(), ActorFrom(r.Context()), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	a.Catalog.Invalidate()
	writeJSON(w, http.StatusOK, map[string]any{"campaign_id": id, "status": model.StatusCompleted})
}

func (a *AdminController) BlockUser(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	if err := a.Admin.BlockUser(r.Context(), ActorFrom(r.Context()), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user_id": id, "is_active": false})
}

// RunDispatch triggers the bulk run on demand.
func (a *AdminController) RunDispatch(w http.ResponseWriter, r *http.Request) {
	actor := ActorFrom(r.Context())
	if !actor.HasCapability(model.CapRunDispatch) {
		writeError(w, http.StatusForbidden, "not allowed to run dispatch")
		return
	}

	now := a.now()
	if wantsAsync(r) && a.Publisher != nil {
		if err := a.Publisher.Publish(r.Context(), queue.DispatchRequest{Kind: queue.KindBulk, ActorID: actor.UserID(), RequestedAt: now}); err != nil {
			log.Error().Err(err).Msg("failed to publish dispatch request")
			writeError(w, http.StatusInternalServerError, "failed to queue dispatch")
			return
		}
		writeJSON(w, http.StatusAccepted, map[string]any{"status": "queued"})
		return
	}

	report, err := a.Mailing.RunScheduled(r.Context(), now)
	if report != nil && report.Attempts > 0 {
		a.Catalog.Invalidate()
	}
	if err != nil {
		writeDispatchError(w, r, report, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
