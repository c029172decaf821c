package controllers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventhub/internal/domain"
)

const testUserID = "33333333-3333-3333-3333-333333333333"

// fakeAdminService implements domain.AdminService for handler tests.
type fakeAdminService struct {
	pendingResult  []*domain.Event
	moderateErr    error
	moderateResult *domain.Event
	usersResult    []*domain.User
	roleErr        error
	roleResult     *domain.User
	deactivateErr  error
	deactivateRes  *domain.User
	dashboard      *domain.Dashboard

	lastApprovedID   string
	lastRejectedID   string
	lastRejectReason string
	lastRoleUserID   string
	lastRole         string
	lastUserFilter   domain.UserFilter
}

func (f *fakeAdminService) ListPendingEvents(ctx context.Context, params domain.PaginationParams) ([]*domain.Event, int, error) {
	return f.pendingResult, len(f.pendingResult), nil
}

func (f *fakeAdminService) ApproveEvent(ctx context.Context, eventID string) (*domain.Event, error) {
	f.lastApprovedID = eventID
	if f.moderateErr != nil {
		return nil, f.moderateErr
	}
	return f.moderateResult, nil
}

func (f *fakeAdminService) RejectEvent(ctx context.Context, eventID, reason string) (*domain.Event, error) {
	f.lastRejectedID = eventID
	f.lastRejectReason = reason
	if f.moderateErr != nil {
		return nil, f.moderateErr
	}
	return f.moderateResult, nil
}

func (f *fakeAdminService) ListUsers(ctx context.Context, filter domain.UserFilter, params domain.PaginationParams) ([]*domain.User, int, error) {
	f.lastUserFilter = filter
	return f.usersResult, len(f.usersResult), nil
}

func (f *fakeAdminService) UpdateUserRole(ctx context.Context, userID, role string) (*domain.User, error) {
	f.lastRoleUserID = userID
	f.lastRole = role
	if f.roleErr != nil {
		return nil, f.roleErr
	}
	return f.roleResult, nil
}

func (f *fakeAdminService) DeactivateUser(ctx context.Context, userID string) (*domain.User, error) {
	if f.deactivateErr != nil {
		return nil, f.deactivateErr
	}
	return f.deactivateRes, nil
}

func (f *fakeAdminService) GetDashboard(ctx context.Context) (*domain.Dashboard, error) {
	return f.dashboard, nil
}

func TestAdminController_ApproveEvent(t *testing.T) {
	svc := &fakeAdminService{moderateResult: &domain.Event{ID: testEventID, Status: domain.EventStatusApproved}}
	c := NewAdminController(testLogger, svc)

	req := httptest.NewRequest(http.MethodPut, "/admin/events/"+testEventID+"/approve", nil)
	req.SetPathValue("eventID", testEventID)
	req = authed(req, "admin-1", domain.RoleAdmin)
	rec := httptest.NewRecorder()

	c.ApproveEvent(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, testEventID, svc.lastApprovedID)
}

func TestAdminController_ApproveEvent_NotFound(t *testing.T) {
	svc := &fakeAdminService{moderateErr: domain.ErrNotFound}
	c := NewAdminController(testLogger, svc)

	req := httptest.NewRequest(http.MethodPut, "/admin/events/"+testEventID+"/approve", nil)
	req.SetPathValue("eventID", testEventID)
	req = authed(req, "admin-1", domain.RoleAdmin)
	rec := httptest.NewRecorder()

	c.ApproveEvent(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminController_RejectEvent(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantReason string
	}{
		{name: "with reason", body: `{"reason":"duplicate listing"}`, wantStatus: http.StatusOK, wantReason: "duplicate listing"},
		{name: "without body", body: "", wantStatus: http.StatusOK, wantReason: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeAdminService{moderateResult: &domain.Event{ID: testEventID, Status: domain.EventStatusRejected}}
			c := NewAdminController(testLogger, svc)

			var req *http.Request
			if tt.body != "" {
				req = httptest.NewRequest(http.MethodPut, "/admin/events/"+testEventID+"/reject", bytes.NewBufferString(tt.body))
			} else {
				req = httptest.NewRequest(http.MethodPut, "/admin/events/"+testEventID+"/reject", nil)
			}
			req.SetPathValue("eventID", testEventID)
			req = authed(req, "admin-1", domain.RoleAdmin)
			rec := httptest.NewRecorder()

			c.RejectEvent(rec, req)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, testEventID, svc.lastRejectedID)
			assert.Equal(t, tt.wantReason, svc.lastRejectReason)
		})
	}
}

func TestAdminController_ListUsers_Filters(t *testing.T) {
	svc := &fakeAdminService{usersResult: []*domain.User{{ID: testUserID}}}
	c := NewAdminController(testLogger, svc)

	req := httptest.NewRequest(http.MethodGet, "/admin/users?role=admin&isActive=false", nil)
	req = authed(req, "admin-1", domain.RoleAdmin)
	rec := httptest.NewRecorder()

	c.ListUsers(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.RoleAdmin, svc.lastUserFilter.Role)
	require.NotNil(t, svc.lastUserFilter.IsActive)
	assert.False(t, *svc.lastUserFilter.IsActive)
}

func TestAdminController_UpdateUserRole(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{name: "promote to admin", body: `{"role":"admin"}`, wantStatus: http.StatusOK},
		{name: "invalid role", body: `{"role":"superuser"}`, wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeAdminService{roleResult: &domain.User{ID: testUserID, Role: domain.RoleAdmin}}
			c := NewAdminController(testLogger, svc)

			req := httptest.NewRequest(http.MethodPut, "/admin/users/"+testUserID+"/role", bytes.NewBufferString(tt.body))
			req.SetPathValue("userID", testUserID)
			req = authed(req, "admin-1", domain.RoleAdmin)
			rec := httptest.NewRecorder()

			c.UpdateUserRole(rec, req)
			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, testUserID, svc.lastRoleUserID)
				assert.Equal(t, domain.RoleAdmin, svc.lastRole)
			}
		})
	}
}

func TestAdminController_DeactivateUser(t *testing.T) {
	svc := &fakeAdminService{deactivateRes: &domain.User{ID: testUserID, IsActive: false}}
	c := NewAdminController(testLogger, svc)

	req := httptest.NewRequest(http.MethodPut, "/admin/users/"+testUserID+"/deactivate", nil)
	req.SetPathValue("userID", testUserID)
	req = authed(req, "admin-1", domain.RoleAdmin)
	rec := httptest.NewRecorder()

	c.DeactivateUser(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminController_GetDashboard(t *testing.T) {
	svc := &fakeAdminService{dashboard: &domain.Dashboard{
		Stats: domain.DashboardStats{TotalUsers: 3, TotalEvents: 2, PendingEvents: 1, TotalRegistrations: 5},
	}}
	c := NewAdminController(testLogger, svc)

	req := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	req = authed(req, "admin-1", domain.RoleAdmin)
	rec := httptest.NewRecorder()

	c.GetDashboard(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	resp := decodeEnvelope(t, rec)
	require.Nil(t, resp.Error)
	require.NotNil(t, resp.Data)
}
