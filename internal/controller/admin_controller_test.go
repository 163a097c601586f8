package controller_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/unclebandit/mailing-backend/internal/controller"
	appErrors "github.com/unclebandit/mailing-backend/internal/errors"
	"github.com/unclebandit/mailing-backend/internal/model"
	"github.com/unclebandit/mailing-backend/internal/queue"
	"github.com/unclebandit/mailing-backend/internal/service"
)

type MockAdmin struct {
	cancelled []int
	blocked   []int
	err       error
}

func (m *MockAdmin) CancelCampaign(ctx context.Context, actor service.Actor, campaignID int) error {
	if m.err != nil {
		return m.err
	}
	m.cancelled = append(m.cancelled, campaignID)
	return nil
}

func (m *MockAdmin) BlockUser(ctx context.Context, actor service.Actor, userID int) error {
	if m.err != nil {
		return m.err
	}
	m.blocked = append(m.blocked, userID)
	return nil
}

var manager = &model.User{ID: 9, IsActive: true, IsManager: true}

func TestCancelCampaign(t *testing.T) {
	admin := &MockAdmin{}
	catalog := &MockCatalog{}
	ctrl := &controller.AdminController{Admin: admin, Catalog: catalog}

	w := httptest.NewRecorder()
	ctrl.CancelCampaign(w, request(http.MethodPost, "/campaigns/3/cancel", "3", manager))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if len(admin.cancelled) != 1 || admin.cancelled[0] != 3 {
		t.Errorf("unexpected cancelled %v", admin.cancelled)
	}
	if catalog.invalidated != 1 {
		t.Error("expected cache invalidation")
	}
}

func TestAdminErrorsAreMapped(t *testing.T) {
	ctrl := &controller.AdminController{
		Admin:   &MockAdmin{err: appErrors.NewAuthorizationDenied(1, "block users")},
		Catalog: &MockCatalog{},
	}

	w := httptest.NewRecorder()
	ctrl.BlockUser(w, request(http.MethodPost, "/users/2/block", "2", owner))
	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}

	ctrl.Admin = &MockAdmin{err: appErrors.NewUserNotFound(2)}
	w = httptest.NewRecorder()
	ctrl.BlockUser(w, request(http.MethodPost, "/users/2/block", "2", manager))
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestRunDispatch(t *testing.T) {
	mailing := &MockMailing{report: &service.DispatchReport{RunID: "r", Attempts: 2}}
	catalog := &MockCatalog{}
	ctrl := &controller.AdminController{Mailing: mailing, Catalog: catalog}

	w := httptest.NewRecorder()
	ctrl.RunDispatch(w, request(http.MethodPost, "/dispatch/run", "", owner))
	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403 for non-manager, got %d", w.Code)
	}
	if mailing.calls != 0 {
		t.Error("dispatch must not run for non-manager")
	}

	w = httptest.NewRecorder()
	ctrl.RunDispatch(w, request(http.MethodPost, "/dispatch/run", "", manager))
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if mailing.calls != 1 || catalog.invalidated != 1 {
		t.Errorf("expected one run and one invalidation, got %d and %d", mailing.calls, catalog.invalidated)
	}
}

func TestRunDispatchAsync(t *testing.T) {
	publisher := &MockPublisher{}
	mailing := &MockMailing{}
	ctrl := &controller.AdminController{Mailing: mailing, Catalog: &MockCatalog{}, Publisher: publisher}

	w := httptest.NewRecorder()
	ctrl.RunDispatch(w, request(http.MethodPost, "/dispatch/run?async=true", "", manager))

	if w.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", w.Code)
	}
	if len(publisher.published) != 1 || publisher.published[0].Kind != queue.KindBulk {
		t.Errorf("unexpected published %v", publisher.published)
	}
	if mailing.calls != 0 {
		t.Error("async run must not dispatch in the request")
	}
}
