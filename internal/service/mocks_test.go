package service_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/unclebandit/mailing-backend/internal/audit"
	appErrors "github.com/unclebandit/mailing-backend/internal/errors"
	"github.com/unclebandit/mailing-backend/internal/model"
)

// MockRecipientRepo serves recipients per campaign from memory
type MockRecipientRepo struct {
	byCampaign map[int][]model.Recipient
	err        error
}

func (m *MockRecipientRepo) ListByCampaign(ctx context.Context, campaignID int) ([]model.Recipient, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.byCampaign[campaignID], nil
}

// MockLedger stores attempts in memory in insertion order
type MockLedger struct {
	mu       sync.Mutex
	attempts []model.Attempt
	err      error
}

func (m *MockLedger) Record(ctx context.Context, campaignID, recipientID int, result model.AttemptResult, serverResponse string) (*model.Attempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	rid := recipientID
	a := model.Attempt{
		ID:             len(m.attempts) + 1,
		AttemptTime:    time.Now(),
		Result:         result,
		ServerResponse: serverResponse,
		CampaignID:     campaignID,
		RecipientID:    &rid,
	}
	m.attempts = append(m.attempts, a)
	return &a, nil
}

func (m *MockLedger) All() []model.Attempt {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.Attempt(nil), m.attempts...)
}

// MockSender fails for the addresses listed in failures
type MockSender struct {
	failures map[string]error
	sent     []string
}

func (m *MockSender) Send(ctx context.Context, subject, body, from string, to []string) error {
	m.sent = append(m.sent, to...)
	if err, ok := m.failures[to[0]]; ok {
		return err
	}
	return nil
}

// MockCampaignRepo keeps campaigns by id
type MockCampaignRepo struct {
	campaigns map[int]*model.Campaign
	err       error
	updated   map[int]model.CampaignStatus
}

func (m *MockCampaignRepo) GetStarted(ctx context.Context) ([]*model.Campaign, error) {
	if m.err != nil {
		return nil, m.err
	}
	started := []*model.Campaign{}
	for id := 1; id <= len(m.campaigns); id++ {
		if c, ok := m.campaigns[id]; ok && c.Status == model.StatusStarted {
			started = append(started, c)
		}
	}
	return started, nil
}

func (m *MockCampaignRepo) GetByID(ctx context.Context, id int) (*model.Campaign, error) {
	if m.err != nil {
		return nil, m.err
	}
	c, ok := m.campaigns[id]
	if !ok {
		return nil, appErrors.NewCampaignNotFound(id)
	}
	return c, nil
}

func (m *MockCampaignRepo) UpdateStatus(ctx context.Context, campaignID int, status model.CampaignStatus) error {
	if _, ok := m.campaigns[campaignID]; !ok {
		return appErrors.NewCampaignNotFound(campaignID)
	}
	if m.updated == nil {
		m.updated = map[int]model.CampaignStatus{}
	}
	m.updated[campaignID] = status
	return nil
}

// MockAudit remembers every line
type MockAudit struct {
	mu    sync.Mutex
	lines []auditLine
}

type auditLine struct {
	level audit.Level
	msg   string
}

func (m *MockAudit) Log(level audit.Level, msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lines = append(m.lines, auditLine{level, msg})
}

func (m *MockAudit) With(map[string]any) audit.Logger { return m }

func (m *MockAudit) count(level audit.Level) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, l := range m.lines {
		if l.level == level {
			n++
		}
	}
	return n
}

var errDB = errors.New("connection refused")

var baseTime = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func startedCampaign(id, owner int) *model.Campaign {
	return &model.Campaign{
		ID:        id,
		StartTime: baseTime,
		Status:    model.StatusStarted,
		MessageID: 1,
		Message:   model.Message{ID: 1, Subject: "Spring sale", LetterBody: "Everything is half price."},
		OwnerID:   owner,
	}
}

func recipient(id int, email string) model.Recipient {
	return model.Recipient{ID: id, Email: email, FullName: "Recipient " + email, OwnerID: 1}
}
