package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventhub/internal/domain"
)

type adminFixture struct {
	store *memStore
	email *fakeEmailService
	svc   domain.AdminService
}

func newAdminFixture() *adminFixture {
	store := newMemStore()
	f := &adminFixture{
		store: store,
		email: &fakeEmailService{},
	}
	f.svc = NewAdminService(
		&fakeEventRepo{store: store},
		&fakeRegRepo{store: store},
		newFakeUserRepo(store),
		f.email,
		newTestLogger(),
		testTimeout,
	)
	return f
}

func (f *adminFixture) pendingEvent() *domain.Event {
	f.store.addUser(&domain.User{
		ID:        "organizer-1",
		Email:     "organizer@example.com",
		FirstName: "Olive",
		IsActive:  true,
	})
	return f.store.addEvent(&domain.Event{
		Title:       "Pending Conf",
		Date:        time.Now().Add(72 * time.Hour),
		Capacity:    100,
		OrganizerID: "organizer-1",
		Status:      domain.EventStatusPending,
	})
}

func TestApproveEvent(t *testing.T) {
	f := newAdminFixture()
	event := f.pendingEvent()
	event.CurrentRegistrations = 0

	approved, err := f.svc.ApproveEvent(context.Background(), event.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.EventStatusApproved, approved.Status)
	// Moderation never touches the ledger.
	assert.Equal(t, 0, approved.CurrentRegistrations)

	require.Len(t, f.email.moderation, 1)
	assert.True(t, f.email.moderation[0].Approved)
	assert.Equal(t, "organizer@example.com", f.email.moderation[0].Email)
}

func TestRejectEvent(t *testing.T) {
	f := newAdminFixture()
	event := f.pendingEvent()

	rejected, err := f.svc.RejectEvent(context.Background(), event.ID, "duplicate listing")
	require.NoError(t, err)
	assert.Equal(t, domain.EventStatusRejected, rejected.Status)
	assert.Equal(t, "duplicate listing", rejected.RejectionReason)

	require.Len(t, f.email.moderation, 1)
	assert.False(t, f.email.moderation[0].Approved)
	assert.Equal(t, "duplicate listing", f.email.moderation[0].Reason)
}

func TestModerate_NotFound(t *testing.T) {
	f := newAdminFixture()

	_, err := f.svc.ApproveEvent(context.Background(), "missing")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestModerate_EmailFailureIsNotFatal(t *testing.T) {
	f := newAdminFixture()
	event := f.pendingEvent()
	f.email.err = context.DeadlineExceeded

	approved, err := f.svc.ApproveEvent(context.Background(), event.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.EventStatusApproved, approved.Status)
}

func TestListPendingEvents(t *testing.T) {
	f := newAdminFixture()
	f.pendingEvent()
	f.store.addEvent(&domain.Event{
		Title:  "Live Conf",
		Status: domain.EventStatusApproved,
	})

	events, total, err := f.svc.ListPendingEvents(context.Background(), domain.PaginationParams{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventStatusPending, events[0].Status)
}

func TestUpdateUserRole(t *testing.T) {
	f := newAdminFixture()
	user := f.store.addUser(&domain.User{Role: domain.RoleUser, IsActive: true})

	updated, err := f.svc.UpdateUserRole(context.Background(), user.ID, domain.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, updated.Role)

	_, err = f.svc.UpdateUserRole(context.Background(), user.ID, "superuser")
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.svc.UpdateUserRole(context.Background(), "missing", domain.RoleAdmin)
	require.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestDeactivateUser(t *testing.T) {
	f := newAdminFixture()
	user := f.store.addUser(&domain.User{Role: domain.RoleUser, IsActive: true})

	updated, err := f.svc.DeactivateUser(context.Background(), user.ID)
	require.NoError(t, err)
	assert.False(t, updated.IsActive)
}

func TestGetDashboard(t *testing.T) {
	f := newAdminFixture()
	event := f.pendingEvent()
	f.store.addEvent(&domain.Event{Status: domain.EventStatusApproved})
	f.store.addRegistration(&domain.Registration{
		UserID:  "organizer-1",
		EventID: event.ID,
		Status:  domain.RegistrationStatusActive,
	})
	f.store.addRegistration(&domain.Registration{
		UserID:  "user-2",
		EventID: event.ID,
		Status:  domain.RegistrationStatusCancelled,
	})

	dash, err := f.svc.GetDashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, dash.Stats.TotalUsers)
	assert.Equal(t, 2, dash.Stats.TotalEvents)
	assert.Equal(t, 1, dash.Stats.PendingEvents)
	// Cancelled registrations do not count.
	assert.Equal(t, 1, dash.Stats.TotalRegistrations)
	assert.NotEmpty(t, dash.RecentEvents)
	assert.NotEmpty(t, dash.RecentUsers)
}
