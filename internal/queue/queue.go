package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

type Kind string

const (
	KindBulk     Kind = "bulk"
	KindCampaign Kind = "campaign"
)

// DispatchRequest asks a worker to run a dispatch cycle.
type DispatchRequest struct {
	Kind        Kind      `json:"kind"`
	CampaignID  int       `json:"campaign_id,omitempty"`
	ActorID     int       `json:"actor_id,omitempty"`
	RequestedAt time.Time `json:"requested_at"`
}

// Publisher hands dispatch requests to the worker process.
type Publisher interface {
	Publish(ctx context.Context, req DispatchRequest) error
}

// Handler processes one decoded request.
type Handler interface {
	Handle(ctx context.Context, req DispatchRequest) error
}

type HandlerFunc func(ctx context.Context, req DispatchRequest) error

func (f HandlerFunc) Handle(ctx context.Context, req DispatchRequest) error { return f(ctx, req) }

var ErrInvalidRequest = errors.New("invalid dispatch request")

func (r DispatchRequest) Validate() error {
	switch r.Kind {
	case KindBulk:
		return nil
	case KindCampaign:
		if r.CampaignID <= 0 {
			return fmt.Errorf("%w: campaign_id is required", ErrInvalidRequest)
		}
		if r.ActorID <= 0 {
			return fmt.Errorf("%w: actor_id is required", ErrInvalidRequest)
		}
		return nil
	}
	return fmt.Errorf("%w: unknown kind %q", ErrInvalidRequest, r.Kind)
}

func Encode(req DispatchRequest) ([]byte, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal(req)
}

func Decode(body []byte) (DispatchRequest, error) {
	var req DispatchRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return req, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return req, req.Validate()
}
