// internal/service/admin_service.go
package service

import (
	"context"
	"fmt"

	"github.com/unclebandit/mailing-backend/internal/audit"
	appErrors "github.com/unclebandit/mailing-backend/internal/errors"
	"github.com/unclebandit/mailing-backend/internal/model"
)

type CampaignStatusUpdater interface {
	UpdateStatus(ctx context.Context, campaignID int, status model.CampaignStatus) error
}

type UserActivator interface {
	SetActive(ctx context.Context, id int, active bool) error
}

// AdminService holds the manager actions.
type AdminService struct {
	CampaignRepo CampaignStatusUpdater
	UserRepo     UserActivator
	Audit        audit.Logger
}

// CancelCampaign marks a campaign completed so that no later cycle sends it.
func (s *AdminService) CancelCampaign(ctx context.Context, actor Actor, campaignID int) error {
	if actor == nil || !actor.HasCapability(model.CapCancelCampaign) {
		return appErrors.NewAuthorizationDenied(actorID(actor), "cancel campaigns")
	}
	if err := s.CampaignRepo.UpdateStatus(ctx, campaignID, model.StatusCompleted); err != nil {
		return err
	}
	if s.Audit != nil {
		s.Audit.Log(audit.LevelInfo, fmt.Sprintf("campaign %d cancelled by user %d", campaignID, actor.UserID()))
	}
	return nil
}

// BlockUser deactivates an account.
func (s *AdminService) BlockUser(ctx context.Context, actor Actor, userID int) error {
	if actor == nil || !actor.HasCapability(model.CapBlockUser) {
		return appErrors.NewAuthorizationDenied(actorID(actor), "block users")
	}
	if actor.UserID() == userID {
		return appErrors.NewAuthorizationDenied(userID, "block their own account")
	}
	if err := s.UserRepo.SetActive(ctx, userID, false); err != nil {
		return err
	}
	if s.Audit != nil {
		s.Audit.Log(audit.LevelInfo, fmt.Sprintf("user %d blocked by user %d", userID, actor.UserID()))
	}
	return nil
}

func actorID(a Actor) int {
	if a == nil {
		return 0
	}
	return a.UserID()
}
