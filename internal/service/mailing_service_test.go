package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	appErrors "github.com/unclebandit/mailing-backend/internal/errors"
	"github.com/unclebandit/mailing-backend/internal/metrics"
	"github.com/unclebandit/mailing-backend/internal/model"
	"github.com/unclebandit/mailing-backend/internal/service"
)

type mailingFixture struct {
	campaigns *MockCampaignRepo
	ledger    *MockLedger
	sender    *MockSender
	audit     *MockAudit
	svc       *service.MailingService
}

func newMailingFixture(campaigns map[int]*model.Campaign, recipients map[int][]model.Recipient) *mailingFixture {
	f := &mailingFixture{
		campaigns: &MockCampaignRepo{campaigns: campaigns},
		ledger:    &MockLedger{},
		sender:    &MockSender{},
		audit:     &MockAudit{},
	}
	f.svc = &service.MailingService{
		CampaignRepo: f.campaigns,
		Dispatcher: &service.Dispatcher{
			Recipients:  &MockRecipientRepo{byCampaign: recipients},
			Ledger:      f.ledger,
			Sender:      f.sender,
			Audit:       f.audit,
			FromAddress: "noreply@example.com",
		},
		Audit: f.audit,
	}
	return f
}

func owner(id int) *model.User {
	return &model.User{ID: id, Email: "owner@example.com", IsActive: true}
}

func TestSendCampaignByNonOwnerIsDenied(t *testing.T) {
	f := newMailingFixture(
		map[int]*model.Campaign{1: startedCampaign(1, 1)},
		map[int][]model.Recipient{1: {recipient(1, "a@example.com")}},
	)

	report, err := f.svc.SendCampaign(context.Background(), 1, owner(2), baseTime.Add(time.Minute))

	var denied *appErrors.ErrAuthorizationDenied
	if !errors.As(err, &denied) {
		t.Fatalf("expected authorization denied, got %v", err)
	}
	if denied.ActorID != 2 {
		t.Errorf("expected actor 2 in error, got %d", denied.ActorID)
	}
	if report != nil {
		t.Errorf("expected no report, got %+v", report)
	}
	if len(f.ledger.All()) != 0 || len(f.sender.sent) != 0 {
		t.Errorf("expected nothing sent or recorded")
	}
}

func TestSendCampaignManagerIsNotOwner(t *testing.T) {
	f := newMailingFixture(
		map[int]*model.Campaign{1: startedCampaign(1, 1)},
		map[int][]model.Recipient{1: {recipient(1, "a@example.com")}},
	)
	manager := &model.User{ID: 9, IsActive: true, IsManager: true}

	_, err := f.svc.SendCampaign(context.Background(), 1, manager, baseTime.Add(time.Minute))

	var denied *appErrors.ErrAuthorizationDenied
	if !errors.As(err, &denied) {
		t.Fatalf("expected authorization denied for manager, got %v", err)
	}
}

func TestSendCampaignNotFound(t *testing.T) {
	f := newMailingFixture(map[int]*model.Campaign{}, nil)

	_, err := f.svc.SendCampaign(context.Background(), 42, owner(1), baseTime)

	var notFound *appErrors.ErrCampaignNotFound
	if !errors.As(err, &notFound) {
		t.Fatalf("expected campaign not found, got %v", err)
	}
	if notFound.CampaignID != 42 {
		t.Errorf("expected id 42, got %d", notFound.CampaignID)
	}
}

func TestSendCampaignLoadFailureIsInfrastructure(t *testing.T) {
	f := newMailingFixture(nil, nil)
	f.campaigns.err = errDB

	_, err := f.svc.SendCampaign(context.Background(), 1, owner(1), baseTime)

	var infra *appErrors.InfrastructureError
	if !errors.As(err, &infra) {
		t.Fatalf("expected infrastructure error, got %v", err)
	}
}

func TestSendCampaignIneligible(t *testing.T) {
	c := startedCampaign(1, 1)
	c.Status = model.StatusCreated
	f := newMailingFixture(
		map[int]*model.Campaign{1: c},
		map[int][]model.Recipient{1: {recipient(1, "a@example.com")}},
	)

	report, err := f.svc.SendCampaign(context.Background(), 1, owner(1), baseTime.Add(time.Minute))

	var ineligible *appErrors.ErrIneligibleCampaign
	if !errors.As(err, &ineligible) {
		t.Fatalf("expected ineligible campaign, got %v", err)
	}
	if ineligible.Reason != string(service.SkipNotStarted) {
		t.Errorf("unexpected reason %q", ineligible.Reason)
	}
	if report == nil || report.CampaignsSkipped != 1 || report.Attempts != 0 {
		t.Errorf("unexpected report %+v", report)
	}
	if len(f.ledger.All()) != 0 {
		t.Error("expected no attempts")
	}
}

func TestSendCampaignByOwner(t *testing.T) {
	f := newMailingFixture(
		map[int]*model.Campaign{1: startedCampaign(1, 1)},
		map[int][]model.Recipient{1: {recipient(1, "a@example.com"), recipient(2, "b@example.com")}},
	)

	report, err := f.svc.SendCampaign(context.Background(), 1, owner(1), baseTime.Add(time.Minute))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Attempts != 2 || report.Successes != 2 {
		t.Errorf("unexpected report %+v", report)
	}
	if f.campaigns.updated != nil {
		t.Error("dispatch must not change campaign status")
	}
}

func TestRunScheduledWithoutStartedCampaigns(t *testing.T) {
	created := startedCampaign(1, 1)
	created.Status = model.StatusCreated
	f := newMailingFixture(map[int]*model.Campaign{1: created}, nil)

	report, err := f.svc.RunScheduled(context.Background(), baseTime)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Attempts != 0 || report.CampaignsConsidered != 0 {
		t.Errorf("unexpected report %+v", report)
	}
	if len(f.ledger.All()) != 0 {
		t.Error("expected no attempts")
	}
}

func TestRunScheduledTwiceRecordsDuplicateAttempts(t *testing.T) {
	f := newMailingFixture(
		map[int]*model.Campaign{1: startedCampaign(1, 1)},
		map[int][]model.Recipient{1: {recipient(1, "a@example.com"), recipient(2, "b@example.com")}},
	)
	now := baseTime.Add(time.Minute)

	for i := 0; i < 2; i++ {
		if _, err := f.svc.RunScheduled(context.Background(), now); err != nil {
			t.Fatalf("cycle %d: unexpected error: %v", i, err)
		}
	}

	attempts := f.ledger.All()
	if len(attempts) != 4 {
		t.Fatalf("expected 4 attempts after two cycles, got %d", len(attempts))
	}
	perRecipient := map[int]int{}
	for _, a := range attempts {
		perRecipient[*a.RecipientID]++
	}
	if perRecipient[1] != 2 || perRecipient[2] != 2 {
		t.Errorf("expected two attempts per recipient, got %v", perRecipient)
	}
}

func TestRunScheduledLoadFailure(t *testing.T) {
	f := newMailingFixture(nil, nil)
	f.campaigns.err = errDB

	report, err := f.svc.RunScheduled(context.Background(), baseTime)

	var infra *appErrors.InfrastructureError
	if !errors.As(err, &infra) {
		t.Fatalf("expected infrastructure error, got %v", err)
	}
	if report != nil {
		t.Errorf("expected nil report, got %+v", report)
	}
}

// counterValue reads a counter from the default registry, 0 when absent
func counterValue(t *testing.T, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	next:
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if labels[lp.GetName()] != lp.GetValue() {
					continue next
				}
			}
			return m.GetCounter().GetValue()
		}
	}
	return 0
}

func TestSendCampaignIneligibleCountsCycle(t *testing.T) {
	metrics.Register()

	c := startedCampaign(1, 1)
	c.Status = model.StatusCompleted
	f := newMailingFixture(map[int]*model.Campaign{1: c}, nil)

	labels := map[string]string{"trigger": "on_demand", "outcome": "ok"}
	before := counterValue(t, "mailing_dispatch_cycles_total", labels)

	if _, err := f.svc.SendCampaign(context.Background(), 1, owner(1), baseTime); err == nil {
		t.Fatal("expected ineligible error")
	}

	if got := counterValue(t, "mailing_dispatch_cycles_total", labels); got != before+1 {
		t.Errorf("expected on_demand ok cycles to grow by 1, went from %v to %v", before, got)
	}
}
