// internal/model/campaign.go
package model

import "time"

type CampaignStatus string

const (
	StatusCreated   CampaignStatus = "created"
	StatusStarted   CampaignStatus = "started"
	StatusCompleted CampaignStatus = "completed"
)

// Campaign is a scheduled mailing. EndTime is nil for open-ended campaigns.
type Campaign struct {
	ID        int            `db:"id" json:"id"`
	StartTime time.Time      `db:"start_time" json:"start_time"`
	EndTime   *time.Time     `db:"end_time" json:"end_time,omitempty"`
	Status    CampaignStatus `db:"status" json:"status"`
	MessageID int            `db:"message_id" json:"message_id"`
	Message   Message        `db:"-" json:"message"`
	OwnerID   int            `db:"owner_id" json:"owner_id"`
}
