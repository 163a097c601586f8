package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	appErrors "github.com/unclebandit/mailing-backend/internal/errors"
	"github.com/unclebandit/mailing-backend/internal/model"
	"github.com/unclebandit/mailing-backend/internal/service"
)

type MailingEntry interface {
	RunScheduled(ctx context.Context, now time.Time) (*service.DispatchReport, error)
	SendCampaign(ctx context.Context, campaignID int, actor service.Actor, now time.Time) (*service.DispatchReport, error)
}

type UserLookup interface {
	GetByID(ctx context.Context, id int) (*model.User, error)
}

// DispatchHandler runs queued requests through the mailing service. The
// actor of an on-demand request is loaded again so a user blocked after
// publishing cannot send.
type DispatchHandler struct {
	Mailing MailingEntry
	Users   UserLookup
	Now     func() time.Time
}

func (h *DispatchHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

func (h *DispatchHandler) Handle(ctx context.Context, req DispatchRequest) error {
	var (
		report *service.DispatchReport
		err    error
	)

	switch req.Kind {
	case KindBulk:
		report, err = h.Mailing.RunScheduled(ctx, h.now())
	case KindCampaign:
		var user *model.User
		user, err = h.Users.GetByID(ctx, req.ActorID)
		if err != nil {
			var notFound *appErrors.ErrUserNotFound
			if errors.As(err, &notFound) {
				return err
			}
			return appErrors.NewInfrastructure(fmt.Sprintf("load user %d", req.ActorID), err)
		}
		report, err = h.Mailing.SendCampaign(ctx, req.CampaignID, activeActor(user), h.now())
	default:
		return req.Validate()
	}

	if report != nil {
		log.Info().
			Str("run_id", report.RunID).
			Str("kind", string(req.Kind)).
			Int("attempts", report.Attempts).
			Int("failures", report.Failures).
			Msg("dispatch request processed")
	}
	return err
}

// activeActor turns a blocked user into a nil actor, which owns nothing.
func activeActor(u *model.User) service.Actor {
	if u == nil || !u.IsActive {
		return nil
	}
	return u
}
