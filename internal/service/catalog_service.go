// internal/service/catalog_service.go
package service

import (
	"context"

	"github.com/unclebandit/mailing-backend/internal/cache"
	appErrors "github.com/unclebandit/mailing-backend/internal/errors"
	"github.com/unclebandit/mailing-backend/internal/model"
	"github.com/unclebandit/mailing-backend/internal/repository"
)

type CampaignReader interface {
	GetByID(ctx context.Context, id int) (*model.Campaign, error)
	List(ctx context.Context, ownerID *int) ([]*model.Campaign, error)
	CountByOwner(ctx context.Context, ownerID int, status model.CampaignStatus) (int, error)
}

type AttemptReader interface {
	List(ctx context.Context, f repository.AttemptFilter) ([]*model.Attempt, error)
	Stats(ctx context.Context, f repository.AttemptFilter) (model.AttemptStats, error)
}

type RecipientCounter interface {
	CountByOwner(ctx context.Context, ownerID int) (int, error)
}

// CatalogService serves the read side: lists, details and home statistics.
type CatalogService struct {
	CampaignRepo  CampaignReader
	AttemptRepo   AttemptReader
	RecipientRepo RecipientCounter
	Cache         *cache.ListCache
}

type CampaignDetails struct {
	*model.Campaign
	Stats model.AttemptStats `json:"stats"`
}

type HomeStats struct {
	TotalMailings    int `json:"total_mailings"`
	ActiveMailings   int `json:"active_mailings"`
	TotalAttempts    int `json:"total_attempts"`
	SuccessAttempts  int `json:"success_attempts"`
	FailedAttempts   int `json:"failed_attempts"`
	UniqueRecipients int `json:"unique_recipients"`
}

// visibleOwner returns nil for actors that may see everything.
func visibleOwner(actor Actor) *int {
	if actor.HasCapability(model.CapViewAll) {
		return nil
	}
	id := actor.UserID()
	return &id
}

func (s *CatalogService) ListCampaigns(ctx context.Context, actor Actor) ([]*model.Campaign, error) {
	owner := visibleOwner(actor)
	key := cache.Key("campaigns", owner)
	if v, ok := s.Cache.Get(key); ok {
		return v.([]*model.Campaign), nil
	}

	campaigns, err := s.CampaignRepo.List(ctx, owner)
	if err != nil {
		return nil, err
	}
	s.Cache.Set(key, campaigns)
	return campaigns, nil
}

func (s *CatalogService) ListAttempts(ctx context.Context, actor Actor) ([]*model.Attempt, error) {
	owner := visibleOwner(actor)
	key := cache.Key("attempts", owner)
	if v, ok := s.Cache.Get(key); ok {
		return v.([]*model.Attempt), nil
	}

	attempts, err := s.AttemptRepo.List(ctx, repository.AttemptFilter{OwnerID: owner})
	if err != nil {
		return nil, err
	}
	s.Cache.Set(key, attempts)
	return attempts, nil
}

// GetCampaign returns a campaign with its attempt counts. Campaigns of other
// users look missing unless the actor may view all.
func (s *CatalogService) GetCampaign(ctx context.Context, actor Actor, id int) (*CampaignDetails, error) {
	c, err := s.CampaignRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if owner := visibleOwner(actor); owner != nil && *owner != c.OwnerID {
		return nil, appErrors.NewCampaignNotFound(id)
	}

	stats, err := s.AttemptRepo.Stats(ctx, repository.AttemptFilter{CampaignID: &c.ID})
	if err != nil {
		return nil, err
	}
	return &CampaignDetails{Campaign: c, Stats: stats}, nil
}

// HomeStats counts the actor's own data.
func (s *CatalogService) HomeStats(ctx context.Context, actor Actor) (*HomeStats, error) {
	owner := actor.UserID()

	total, err := s.CampaignRepo.CountByOwner(ctx, owner, "")
	if err != nil {
		return nil, err
	}
	active, err := s.CampaignRepo.CountByOwner(ctx, owner, model.StatusStarted)
	if err != nil {
		return nil, err
	}
	attempts, err := s.AttemptRepo.Stats(ctx, repository.AttemptFilter{OwnerID: &owner})
	if err != nil {
		return nil, err
	}
	recipients, err := s.RecipientRepo.CountByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}

	return &HomeStats{
		TotalMailings:    total,
		ActiveMailings:   active,
		TotalAttempts:    attempts.Total,
		SuccessAttempts:  attempts.Successful,
		FailedAttempts:   attempts.Failed,
		UniqueRecipients: recipients,
	}, nil
}

// Invalidate drops cached lists after dispatch or admin writes.
func (s *CatalogService) Invalidate() {
	s.Cache.Flush()
}
