// internal/service/mailing_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/unclebandit/mailing-backend/internal/audit"
	appErrors "github.com/unclebandit/mailing-backend/internal/errors"
	"github.com/unclebandit/mailing-backend/internal/metrics"
	"github.com/unclebandit/mailing-backend/internal/model"
)

// Actor is the authenticated user invoking an entry point.
type Actor interface {
	UserID() int
	HasCapability(c model.Capability) bool
}

// CampaignSource defines the campaign queries used by the entry points
type CampaignSource interface {
	GetStarted(ctx context.Context) ([]*model.Campaign, error)
	GetByID(ctx context.Context, id int) (*model.Campaign, error)
}

// MailingService exposes the two dispatch entry points.
type MailingService struct {
	CampaignRepo CampaignSource
	Dispatcher   *Dispatcher
	Audit        audit.Logger
}

func (s *MailingService) auditLog() audit.Logger {
	if s.Audit == nil {
		return audit.Nop{}
	}
	return s.Audit
}

// RunScheduled dispatches all started campaigns. It is meant to be called
// periodically; with nothing eligible it records nothing.
func (s *MailingService) RunScheduled(ctx context.Context, now time.Time) (*DispatchReport, error) {
	start := time.Now()

	campaigns, err := s.CampaignRepo.GetStarted(ctx)
	if err != nil {
		err = appErrors.NewInfrastructure("load started campaigns", err)
		s.auditLog().Log(audit.LevelError, fmt.Sprintf("scheduled dispatch failed: %v", err))
		metrics.ObserveCycle("scheduled", true, time.Since(start))
		return nil, err
	}

	report, err := s.Dispatcher.RunCycle(ctx, campaigns, now)
	metrics.ObserveCycle("scheduled", err != nil, time.Since(start))
	return report, err
}

// SendCampaign dispatches one campaign on behalf of its owner.
func (s *MailingService) SendCampaign(ctx context.Context, campaignID int, actor Actor, now time.Time) (*DispatchReport, error) {
	start := time.Now()

	c, err := s.CampaignRepo.GetByID(ctx, campaignID)
	if err != nil {
		var notFound *appErrors.ErrCampaignNotFound
		if errors.As(err, &notFound) {
			return nil, err
		}
		return nil, appErrors.NewInfrastructure(fmt.Sprintf("load campaign %d", campaignID), err)
	}

	if actor == nil || c.OwnerID != actor.UserID() {
		s.auditLog().Log(audit.LevelWarning, fmt.Sprintf("user %d tried to send campaign %d owned by user %d", actorID(actor), c.ID, c.OwnerID))
		return nil, appErrors.NewAuthorizationDenied(actorID(actor), fmt.Sprintf("send campaign %d", c.ID))
	}

	if ok, reason := CheckEligibility(c, now); !ok {
		s.auditLog().Log(audit.LevelInfo, fmt.Sprintf("campaign %d is not started yet or has finished (%s), nothing sent", c.ID, reason))
		metrics.IncCampaignSkipped(string(reason))
		metrics.ObserveCycle("on_demand", false, time.Since(start))
		return &DispatchReport{CampaignsConsidered: 1, CampaignsSkipped: 1}, appErrors.NewIneligibleCampaign(c.ID, string(reason))
	}

	report, err := s.Dispatcher.RunCycle(ctx, []*model.Campaign{c}, now)
	metrics.ObserveCycle("on_demand", err != nil, time.Since(start))
	return report, err
}
