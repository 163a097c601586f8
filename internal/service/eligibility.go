// internal/service/eligibility.go
package service

import (
	"time"

	"github.com/unclebandit/mailing-backend/internal/model"
)

// SkipReason says why a campaign may not send right now.
type SkipReason string

const (
	SkipNone        SkipReason = ""
	SkipNotStarted  SkipReason = "not_started"
	SkipBeforeStart SkipReason = "before_start"
	SkipAfterEnd    SkipReason = "after_end"
)

// CheckEligibility evaluates status and time window at now. A started
// campaign without an end time stays eligible from its start time onwards.
func CheckEligibility(c *model.Campaign, now time.Time) (bool, SkipReason) {
	if c.Status != model.StatusStarted {
		return false, SkipNotStarted
	}
	if now.Before(c.StartTime) {
		return false, SkipBeforeStart
	}
	if c.EndTime != nil && !now.Before(*c.EndTime) {
		return false, SkipAfterEnd
	}
	return true, SkipNone
}

func IsEligible(c *model.Campaign, now time.Time) bool {
	ok, _ := CheckEligibility(c, now)
	return ok
}
