// internal/errors/errors.go
package appErrors

import (
	"fmt"
)

// ErrCampaignNotFound is returned when a campaign id does not resolve.
type ErrCampaignNotFound struct {
	CampaignID int
}

func (e *ErrCampaignNotFound) Error() string {
	return fmt.Sprintf("campaign with ID %d not found", e.CampaignID)
}

// Helper constructor
func NewCampaignNotFound(id int) error {
	return &ErrCampaignNotFound{CampaignID: id}
}

type ErrUserNotFound struct {
	UserID int
}

func (e *ErrUserNotFound) Error() string {
	return fmt.Sprintf("user with ID %d not found", e.UserID)
}

func NewUserNotFound(id int) error {
	return &ErrUserNotFound{UserID: id}
}

// ErrAuthorizationDenied means the actor may not perform Action on the target.
type ErrAuthorizationDenied struct {
	ActorID int
	Action  string
}

func (e *ErrAuthorizationDenied) Error() string {
	return fmt.Sprintf("user %d is not allowed to %s", e.ActorID, e.Action)
}

func NewAuthorizationDenied(actorID int, action string) error {
	return &ErrAuthorizationDenied{ActorID: actorID, Action: action}
}

// ErrIneligibleCampaign is a normal skip for the bulk run. The on-demand path
// reports it to the caller.
type ErrIneligibleCampaign struct {
	CampaignID int
	Reason     string
}

func (e *ErrIneligibleCampaign) Error() string {
	return fmt.Sprintf("campaign %d is not eligible to send: %s", e.CampaignID, e.Reason)
}

func NewIneligibleCampaign(id int, reason string) error {
	return &ErrIneligibleCampaign{CampaignID: id, Reason: reason}
}

type ErrMissingRecipientAddress struct {
	CampaignID  int
	RecipientID int
}

func (e *ErrMissingRecipientAddress) Error() string {
	return fmt.Sprintf("recipient %d of campaign %d has no email address", e.RecipientID, e.CampaignID)
}

// ErrDeliveryFailure wraps a transport error for one recipient. Error returns
// the transport text verbatim because it is stored as the server response.
type ErrDeliveryFailure struct {
	CampaignID  int
	RecipientID int
	Err         error
}

func (e *ErrDeliveryFailure) Error() string {
	return e.Err.Error()
}

func (e *ErrDeliveryFailure) Unwrap() error { return e.Err }

// InfrastructureError is fatal to a dispatch cycle.
type InfrastructureError struct {
	Op  string
	Err error
}

func (e *InfrastructureError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *InfrastructureError) Unwrap() error { return e.Err }

func NewInfrastructure(op string, err error) error {
	return &InfrastructureError{Op: op, Err: err}
}
