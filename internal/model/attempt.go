// internal/model/attempt.go
package model

import "time"

type AttemptResult string

const (
	ResultSuccessful AttemptResult = "successful"
	ResultFailed     AttemptResult = "failed"
)

// Attempt is one delivery outcome. Rows are append-only; AttemptTime is set by
// the database when the row is inserted.
type Attempt struct {
	ID             int           `db:"id" json:"id"`
	AttemptTime    time.Time     `db:"attempt_time" json:"attempt_time"`
	Result         AttemptResult `db:"result" json:"result"`
	ServerResponse string        `db:"server_response" json:"server_response,omitempty"`
	CampaignID     int           `db:"campaign_id" json:"campaign_id"`
	RecipientID    *int          `db:"recipient_id" json:"recipient_id,omitempty"`
}

// AttemptStats counts attempts by result.
type AttemptStats struct {
	Total      int `json:"total"`
	Successful int `json:"successful"`
	Failed     int `json:"failed"`
}
